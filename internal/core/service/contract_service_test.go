package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/gigwork/contracts-api/internal/core/domain"
	"github.com/gigwork/contracts-api/internal/core/ports"
)

type stubContractRepo struct {
	byID    map[string]*domain.Contract
	listed  map[string][]*domain.Contract
	listErr error
}

func (r *stubContractRepo) FindByID(_ context.Context, id string) (*domain.Contract, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrContractNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *stubContractRepo) ListForProfile(_ context.Context, profileID string) ([]*domain.Contract, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.listed[profileID], nil
}

func contractFixture() *stubContractRepo {
	c := &domain.Contract{ID: "contract-1", ClientID: "client-1", ContractorID: "contractor-1", Status: domain.ContractInProgress}
	return &stubContractRepo{
		byID:   map[string]*domain.Contract{"contract-1": c},
		listed: map[string][]*domain.Contract{"client-1": {c}},
	}
}

func TestGetContract_PartySeesContract(t *testing.T) {
	svc := NewContractService(contractFixture(), zerolog.Nop())

	for _, caller := range []string{"client-1", "contractor-1"} {
		got, err := svc.GetContract(context.Background(), ports.GetContractInput{
			ContractID: "contract-1", CallerProfileID: caller,
		})
		if err != nil {
			t.Fatalf("caller %s: unexpected error: %v", caller, err)
		}
		if got.ID != "contract-1" {
			t.Errorf("caller %s: wrong contract %s", caller, got.ID)
		}
	}
}

func TestGetContract_StrangerSeesNotFound(t *testing.T) {
	svc := NewContractService(contractFixture(), zerolog.Nop())

	_, err := svc.GetContract(context.Background(), ports.GetContractInput{
		ContractID: "contract-1", CallerProfileID: "client-999",
	})
	if !errors.Is(err, domain.ErrContractNotFound) {
		t.Fatalf("expected ErrContractNotFound, got %v", err)
	}
}

func TestGetContract_Missing(t *testing.T) {
	svc := NewContractService(contractFixture(), zerolog.Nop())

	_, err := svc.GetContract(context.Background(), ports.GetContractInput{
		ContractID: "nope", CallerProfileID: "client-1",
	})
	if !errors.Is(err, domain.ErrContractNotFound) {
		t.Fatalf("expected ErrContractNotFound, got %v", err)
	}
}

func TestListContracts_ScopedToCaller(t *testing.T) {
	svc := NewContractService(contractFixture(), zerolog.Nop())

	got, err := svc.ListContracts(context.Background(), "client-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected 1 contract, got %d", len(got))
	}

	empty, err := svc.ListContracts(context.Background(), "client-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected no contracts, got %d", len(empty))
	}
}

type stubJobRepo struct {
	unpaid map[string][]*domain.Job
}

func (r *stubJobRepo) ListUnpaidForProfile(_ context.Context, profileID string) ([]*domain.Job, error) {
	return r.unpaid[profileID], nil
}

func TestListUnpaidJobs(t *testing.T) {
	repo := &stubJobRepo{unpaid: map[string][]*domain.Job{
		"client-1": {{ID: "job-1", ContractID: "contract-1", Price: 200}},
	}}
	svc := NewJobLister(repo, zerolog.Nop())

	got, err := svc.ListUnpaidJobs(context.Background(), "client-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "job-1" {
		t.Errorf("unexpected jobs: %+v", got)
	}

	if _, err := svc.ListUnpaidJobs(context.Background(), ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty caller, got %v", err)
	}
}
