package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gigwork/contracts-api/internal/api/metrics"
	"github.com/gigwork/contracts-api/internal/core/ports"
)

const reportDateLayout = "2006-01-02"

// ReportHandler handles HTTP requests for the earnings reports.
type ReportHandler struct {
	service ports.ReportService
}

func NewReportHandler(service ports.ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

type bestClientsResponse struct {
	Clients []ports.ClientPayments `json:"clients"`
}

// BestProfession handles GET /v1/admin/best-profession.
//
// @Summary      Best earning profession
// @Description  Returns the profession that earned the most over jobs paid in the window.
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        start  query     string  true  "Window start (YYYY-MM-DD)"
// @Param        end    query     string  true  "Window end, inclusive (YYYY-MM-DD)"
// @Success      200    {object}  ports.ProfessionEarnings
// @Failure      400    {object}  map[string]string
// @Failure      404    {object}  map[string]string
// @Router       /v1/admin/best-profession [get]
func (h *ReportHandler) BestProfession(c echo.Context) error {
	start, end, err := reportWindow(c)
	if err != nil {
		return err
	}

	top, err := h.service.BestProfession(c.Request().Context(), ports.BestProfessionInput{
		Start: start,
		End:   end,
	})
	if err != nil {
		return err
	}

	metrics.ReportsServedTotal.WithLabelValues("best_profession").Inc()
	return c.JSON(http.StatusOK, top)
}

// BestClients handles GET /v1/admin/best-clients.
//
// @Summary      Best paying clients
// @Description  Returns the clients that paid the most over jobs paid in the window.
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        start  query     string  true   "Window start (YYYY-MM-DD)"
// @Param        end    query     string  true   "Window end, inclusive (YYYY-MM-DD)"
// @Param        limit  query     int     false  "Maximum clients to return (default 2)"
// @Success      200    {object}  bestClientsResponse
// @Failure      400    {object}  map[string]string
// @Router       /v1/admin/best-clients [get]
func (h *ReportHandler) BestClients(c echo.Context) error {
	start, end, err := reportWindow(c)
	if err != nil {
		return err
	}

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be an integer")
		}
	}

	clients, err := h.service.BestClients(c.Request().Context(), ports.BestClientsInput{
		Start: start,
		End:   end,
		Limit: limit,
	})
	if err != nil {
		return err
	}

	metrics.ReportsServedTotal.WithLabelValues("best_clients").Inc()
	return c.JSON(http.StatusOK, bestClientsResponse{Clients: clients})
}

// reportWindow parses the start and end query parameters. Both are required;
// the service widens end to the final instant of its day.
func reportWindow(c echo.Context) (time.Time, time.Time, error) {
	start, err := time.Parse(reportDateLayout, c.QueryParam("start"))
	if err != nil {
		return time.Time{}, time.Time{}, echo.NewHTTPError(http.StatusBadRequest, "start must be a date (YYYY-MM-DD)")
	}
	end, err := time.Parse(reportDateLayout, c.QueryParam("end"))
	if err != nil {
		return time.Time{}, time.Time{}, echo.NewHTTPError(http.StatusBadRequest, "end must be a date (YYYY-MM-DD)")
	}
	return start, end, nil
}
