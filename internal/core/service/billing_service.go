package service

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/gigwork/contracts-api/internal/core/domain"
	"github.com/gigwork/contracts-api/internal/core/ports"
)

// BillingService implements the two balance-mutating use cases. Every
// precondition is checked inside the same transactional scope that applies the
// mutation, so a violated check and a half-applied transfer are both
// structurally impossible.
type BillingService struct {
	store  ports.Store
	logger zerolog.Logger
}

func NewBillingService(store ports.Store, logger zerolog.Logger) *BillingService {
	return &BillingService{store: store, logger: logger}
}

// PayJob executes a single job's payment: debit the client, credit the
// contractor, flip the paid flag — all four mutations or none. At most one
// payment ever succeeds per job, even under concurrent duplicate requests.
func (s *BillingService) PayJob(ctx context.Context, input ports.PayJobInput) (*ports.PaymentResult, error) {
	if input.JobID == "" || input.CallerProfileID == "" {
		return nil, domain.ErrInvalidInput
	}

	var result ports.PaymentResult
	err := s.store.InTransaction(ctx, func(ctx context.Context, tx ports.TxStore) error {
		caller, err := tx.ProfileByID(ctx, input.CallerProfileID)
		if err != nil {
			return err
		}
		if err := domain.Authorize(caller, domain.OpPayJob); err != nil {
			return err
		}

		job, err := tx.JobByID(ctx, input.JobID)
		if err != nil {
			return err
		}
		if job.Paid {
			return domain.ErrJobNotFound
		}

		contract, err := tx.ContractByID(ctx, job.ContractID)
		if err != nil {
			// A job whose contract is gone is invisible, same as any other
			// failed payment lookup.
			return domain.ErrJobNotFound
		}
		if contract.Status == domain.ContractTerminated || contract.ClientID != caller.ID {
			return domain.ErrJobNotFound
		}

		contractor, err := tx.ProfileByID(ctx, contract.ContractorID)
		if err != nil {
			return err
		}

		if caller.Balance < job.Price {
			return domain.ErrInsufficientFunds
		}

		now := time.Now().UTC()
		if err := tx.MarkJobPaid(ctx, job.ID, now); err != nil {
			return err
		}
		if err := tx.DebitBalance(ctx, caller.ID, job.Price); err != nil {
			return err
		}
		if err := tx.CreditBalance(ctx, contractor.ID, job.Price); err != nil {
			return err
		}

		result = ports.PaymentResult{
			JobID:             job.ID,
			Price:             job.Price,
			ClientBalance:     caller.Balance - job.Price,
			ContractorBalance: contractor.Balance + job.Price,
			PaidAt:            now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("job_id", result.JobID).
		Str("client_id", input.CallerProfileID).
		Float64("price", result.Price).
		Msg("job paid")

	return &result, nil
}

// Deposit credits the target client's balance after checking the amount
// against the deposit ceiling, computed in the same scope as the credit. The
// ceiling is DepositLimitRatio times the target's outstanding unpaid job
// total; with no unpaid jobs the ceiling is zero and every positive deposit
// is rejected.
func (s *BillingService) Deposit(ctx context.Context, input ports.DepositInput) (*ports.DepositResult, error) {
	if input.CallerProfileID == "" || input.TargetProfileID == "" {
		return nil, domain.ErrInvalidInput
	}
	// NaN compares false against both the sign and the ceiling bounds, so
	// non-finite amounts must be rejected outright or they would be credited.
	if math.IsNaN(input.Amount) || math.IsInf(input.Amount, 0) || input.Amount <= 0 {
		return nil, domain.ErrInvalidInput
	}

	var result ports.DepositResult
	err := s.store.InTransaction(ctx, func(ctx context.Context, tx ports.TxStore) error {
		caller, err := tx.ProfileByID(ctx, input.CallerProfileID)
		if err != nil {
			return err
		}
		if err := domain.Authorize(caller, domain.OpDeposit); err != nil {
			return err
		}

		target := caller
		if input.TargetProfileID != caller.ID {
			if target, err = tx.ProfileByID(ctx, input.TargetProfileID); err != nil {
				return err
			}
		}
		// Deposits land on client balances only; the limiter never touches
		// the contractor side.
		if target.Role != domain.RoleClient {
			return domain.ErrInvalidInput
		}

		unpaidTotal, err := tx.UnpaidTotalForClient(ctx, target.ID)
		if err != nil {
			return err
		}
		ceiling := unpaidTotal * domain.DepositLimitRatio
		if input.Amount > ceiling {
			return &domain.LimitExceededError{Ceiling: ceiling}
		}

		if err := tx.CreditBalance(ctx, target.ID, input.Amount); err != nil {
			return err
		}

		result = ports.DepositResult{
			ProfileID: target.ID,
			Balance:   target.Balance + input.Amount,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("target_id", result.ProfileID).
		Float64("amount", input.Amount).
		Msg("deposit applied")

	return &result, nil
}
