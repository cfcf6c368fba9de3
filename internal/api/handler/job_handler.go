package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gigwork/contracts-api/internal/core/domain"
	"github.com/gigwork/contracts-api/internal/core/ports"
)

// JobHandler handles HTTP requests for job lookups.
type JobHandler struct {
	service ports.JobService
}

func NewJobHandler(service ports.JobService) *JobHandler {
	return &JobHandler{service: service}
}

type jobListResponse struct {
	Jobs []*domain.Job `json:"jobs"`
}

// ListUnpaid handles GET /v1/jobs/unpaid.
//
// @Summary      List the caller's unpaid jobs
// @Description  Returns unpaid jobs under the caller's active contracts.
// @Tags         jobs
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  jobListResponse
// @Router       /v1/jobs/unpaid [get]
func (h *JobHandler) ListUnpaid(c echo.Context) error {
	callerID, err := ctxProfile(c)
	if err != nil {
		return err
	}

	jobs, err := h.service.ListUnpaidJobs(c.Request().Context(), callerID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jobListResponse{Jobs: jobs})
}
