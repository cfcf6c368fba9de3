package ports

import (
	"context"
	"time"
)

// PayJobInput carries the parameters of a job payment. CallerProfileID is the
// identity resolved by the auth layer, never taken from the request body.
type PayJobInput struct {
	JobID           string
	CallerProfileID string
}

// PaymentResult reports the applied transfer.
type PaymentResult struct {
	JobID             string
	Price             float64
	ClientBalance     float64
	ContractorBalance float64
	PaidAt            time.Time
}

// DepositInput carries the parameters of a balance deposit. Target may differ
// from the caller: deposits on behalf of another client are permitted.
type DepositInput struct {
	CallerProfileID string
	TargetProfileID string
	Amount          float64
}

// DepositResult reports the target's balance after the credit.
type DepositResult struct {
	ProfileID string
	Balance   float64
}

// BillingService owns every balance mutation in the system: the atomic job
// payment transfer and the limit-checked deposit.
type BillingService interface {
	PayJob(ctx context.Context, input PayJobInput) (*PaymentResult, error)
	Deposit(ctx context.Context, input DepositInput) (*DepositResult, error)
}
