package ports

import (
	"context"

	"github.com/gigwork/contracts-api/internal/core/domain"
)

// GetContractInput identifies a contract lookup scoped to the caller.
type GetContractInput struct {
	ContractID      string
	CallerProfileID string
}

// ContractService exposes read-only contract lookups. A contract is only
// visible to its client or its contractor; anything else is not found.
type ContractService interface {
	GetContract(ctx context.Context, input GetContractInput) (*domain.Contract, error)
	// ListContracts returns the caller's non-terminated contracts.
	ListContracts(ctx context.Context, callerProfileID string) ([]*domain.Contract, error)
}

// JobService exposes read-only job lookups.
type JobService interface {
	// ListUnpaidJobs returns unpaid jobs under the caller's non-terminated
	// contracts.
	ListUnpaidJobs(ctx context.Context, callerProfileID string) ([]*domain.Job, error)
}
