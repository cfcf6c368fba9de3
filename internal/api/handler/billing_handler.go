package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gigwork/contracts-api/internal/api/metrics"
	"github.com/gigwork/contracts-api/internal/core/domain"
	"github.com/gigwork/contracts-api/internal/core/ports"
)

// BillingHandler handles HTTP requests for the money-moving operations.
type BillingHandler struct {
	service ports.BillingService
}

func NewBillingHandler(service ports.BillingService) *BillingHandler {
	return &BillingHandler{service: service}
}

// --- Request / Response types ---

type depositRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

type paymentResponse struct {
	JobID             string  `json:"job_id"`
	Price             float64 `json:"price"`
	ClientBalance     float64 `json:"client_balance"`
	ContractorBalance float64 `json:"contractor_balance"`
	PaidAt            string  `json:"paid_at"`
}

type depositResponse struct {
	ProfileID string  `json:"profile_id"`
	Balance   float64 `json:"balance"`
}

// Pay handles POST /v1/jobs/:job_id/pay.
//
// @Summary      Pay for a job
// @Description  Atomically moves the job price from the calling client to the contractor.
// @Tags         billing
// @Produce      json
// @Security     BearerAuth
// @Param        job_id  path      string  true  "Job identifier"
// @Success      200     {object}  paymentResponse
// @Failure      403     {object}  map[string]string
// @Failure      404     {object}  map[string]string
// @Failure      422     {object}  map[string]string
// @Failure      503     {object}  map[string]string
// @Router       /v1/jobs/{job_id}/pay [post]
func (h *BillingHandler) Pay(c echo.Context) error {
	callerID, err := ctxProfile(c)
	if err != nil {
		return err
	}

	result, err := h.service.PayJob(c.Request().Context(), ports.PayJobInput{
		JobID:           c.Param("job_id"),
		CallerProfileID: callerID,
	})
	if err != nil {
		metrics.PaymentsTotal.WithLabelValues(paymentResult(err)).Inc()
		return err
	}

	metrics.PaymentsTotal.WithLabelValues("success").Inc()
	metrics.PaymentVolume.Add(result.Price)

	return c.JSON(http.StatusOK, paymentResponse{
		JobID:             result.JobID,
		Price:             result.Price,
		ClientBalance:     result.ClientBalance,
		ContractorBalance: result.ContractorBalance,
		PaidAt:            result.PaidAt.UTC().Format(time.RFC3339),
	})
}

// Deposit handles POST /v1/balances/deposit/:profile_id.
//
// @Summary      Deposit into a client balance
// @Description  Credits the target client, capped at a quarter of their unpaid job total.
// @Tags         billing
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        profile_id  path      string          true  "Target client profile"
// @Param        body        body      depositRequest  true  "Deposit amount"
// @Success      200         {object}  depositResponse
// @Failure      400         {object}  map[string]string
// @Failure      403         {object}  map[string]string
// @Failure      404         {object}  map[string]string
// @Failure      422         {object}  map[string]string
// @Router       /v1/balances/deposit/{profile_id} [post]
func (h *BillingHandler) Deposit(c echo.Context) error {
	callerID, err := ctxProfile(c)
	if err != nil {
		return err
	}

	var req depositRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.service.Deposit(c.Request().Context(), ports.DepositInput{
		CallerProfileID: callerID,
		TargetProfileID: c.Param("profile_id"),
		Amount:          req.Amount,
	})
	if err != nil {
		metrics.DepositsTotal.WithLabelValues(depositResult(err)).Inc()
		return err
	}

	metrics.DepositsTotal.WithLabelValues("success").Inc()

	return c.JSON(http.StatusOK, depositResponse{
		ProfileID: result.ProfileID,
		Balance:   result.Balance,
	})
}

func paymentResult(err error) string {
	if errors.Is(err, domain.ErrBusy) {
		return "busy"
	}
	return "rejected"
}

func depositResult(err error) string {
	var limitErr *domain.LimitExceededError
	switch {
	case errors.Is(err, domain.ErrBusy):
		return "busy"
	case errors.As(err, &limitErr):
		return "limit_exceeded"
	default:
		return "rejected"
	}
}
