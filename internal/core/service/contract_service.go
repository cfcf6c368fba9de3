package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/gigwork/contracts-api/internal/core/domain"
	"github.com/gigwork/contracts-api/internal/core/ports"
)

// ContractService serves read-only contract lookups scoped to the caller.
type ContractService struct {
	repo ports.ContractRepository
	log  zerolog.Logger
}

func NewContractService(repo ports.ContractRepository, log zerolog.Logger) *ContractService {
	return &ContractService{repo: repo, log: log}
}

// GetContract returns the contract only when the caller is a party to it.
// Someone else's contract is indistinguishable from a missing one.
func (s *ContractService) GetContract(ctx context.Context, input ports.GetContractInput) (*domain.Contract, error) {
	if input.ContractID == "" || input.CallerProfileID == "" {
		return nil, domain.ErrInvalidInput
	}

	contract, err := s.repo.FindByID(ctx, input.ContractID)
	if err != nil {
		return nil, err
	}
	if !contract.Involves(input.CallerProfileID) {
		return nil, domain.ErrContractNotFound
	}
	return contract, nil
}

// ListContracts returns the caller's non-terminated contracts.
func (s *ContractService) ListContracts(ctx context.Context, callerProfileID string) ([]*domain.Contract, error) {
	if callerProfileID == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.repo.ListForProfile(ctx, callerProfileID)
}

// JobLister serves the unpaid-jobs listing.
type JobLister struct {
	repo ports.JobRepository
	log  zerolog.Logger
}

func NewJobLister(repo ports.JobRepository, log zerolog.Logger) *JobLister {
	return &JobLister{repo: repo, log: log}
}

// ListUnpaidJobs returns unpaid jobs under the caller's non-terminated
// contracts, for either party.
func (s *JobLister) ListUnpaidJobs(ctx context.Context, callerProfileID string) ([]*domain.Job, error) {
	if callerProfileID == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.repo.ListUnpaidForProfile(ctx, callerProfileID)
}
