package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/gigwork/contracts-api/internal/core/domain"
	"github.com/gigwork/contracts-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub store
// ---------------------------------------------------------------------------

// memStore serializes transactions with a mutex and restores a snapshot on
// failure, mirroring the all-or-nothing semantics of the real store.
type memStore struct {
	mu        sync.Mutex
	profiles  map[string]*domain.Profile
	contracts map[string]*domain.Contract
	jobs      map[string]*domain.Job
	txErr     error // if set, InTransaction fails without running fn
}

func newMemStore() *memStore {
	return &memStore{
		profiles:  make(map[string]*domain.Profile),
		contracts: make(map[string]*domain.Contract),
		jobs:      make(map[string]*domain.Job),
	}
}

func (m *memStore) InTransaction(ctx context.Context, fn func(ctx context.Context, tx ports.TxStore) error) error {
	if m.txErr != nil {
		return m.txErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	profiles, contracts, jobs := m.snapshot()
	if err := fn(ctx, (*memTx)(m)); err != nil {
		m.profiles, m.contracts, m.jobs = profiles, contracts, jobs
		return err
	}
	return nil
}

func (m *memStore) snapshot() (map[string]*domain.Profile, map[string]*domain.Contract, map[string]*domain.Job) {
	profiles := make(map[string]*domain.Profile, len(m.profiles))
	for k, v := range m.profiles {
		clone := *v
		profiles[k] = &clone
	}
	contracts := make(map[string]*domain.Contract, len(m.contracts))
	for k, v := range m.contracts {
		clone := *v
		contracts[k] = &clone
	}
	jobs := make(map[string]*domain.Job, len(m.jobs))
	for k, v := range m.jobs {
		clone := *v
		jobs[k] = &clone
	}
	return profiles, contracts, jobs
}

// memTx is the in-transaction view over memStore's maps.
type memTx memStore

func (t *memTx) ProfileByID(_ context.Context, id string) (*domain.Profile, error) {
	p, ok := t.profiles[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	clone := *p
	return &clone, nil
}

func (t *memTx) ContractByID(_ context.Context, id string) (*domain.Contract, error) {
	c, ok := t.contracts[id]
	if !ok {
		return nil, domain.ErrContractNotFound
	}
	clone := *c
	return &clone, nil
}

func (t *memTx) JobByID(_ context.Context, id string) (*domain.Job, error) {
	j, ok := t.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	clone := *j
	return &clone, nil
}

func (t *memTx) MarkJobPaid(_ context.Context, jobID string, at time.Time) error {
	j, ok := t.jobs[jobID]
	if !ok || j.Paid {
		return domain.ErrJobNotFound
	}
	j.Paid = true
	paidAt := at
	j.PaymentDate = &paidAt
	return nil
}

func (t *memTx) DebitBalance(_ context.Context, profileID string, amount float64) error {
	p, ok := t.profiles[profileID]
	if !ok {
		return domain.ErrProfileNotFound
	}
	if p.Balance < amount {
		return domain.ErrInsufficientFunds
	}
	p.Balance -= amount
	return nil
}

func (t *memTx) CreditBalance(_ context.Context, profileID string, amount float64) error {
	p, ok := t.profiles[profileID]
	if !ok {
		return domain.ErrProfileNotFound
	}
	p.Balance += amount
	return nil
}

func (t *memTx) UnpaidTotalForClient(_ context.Context, clientID string) (float64, error) {
	var total float64
	for _, j := range t.jobs {
		if j.Paid {
			continue
		}
		c, ok := t.contracts[j.ContractID]
		if ok && c.ClientID == clientID {
			total += j.Price
		}
	}
	return total, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func seedProfile(store *memStore, id, role string, balance float64) {
	store.profiles[id] = &domain.Profile{ID: id, FirstName: "Test", LastName: id, Role: role, Balance: balance}
}

func seedContract(store *memStore, id, clientID, contractorID string, status domain.ContractStatus) {
	store.contracts[id] = &domain.Contract{ID: id, ClientID: clientID, ContractorID: contractorID, Status: status}
}

func seedJob(store *memStore, id, contractID string, price float64, paid bool) {
	store.jobs[id] = &domain.Job{ID: id, ContractID: contractID, Price: price, Paid: paid}
}

// paymentFixture wires one client, one contractor, one in-progress contract
// and one unpaid job.
func paymentFixture(clientBalance, price float64) *memStore {
	store := newMemStore()
	seedProfile(store, "client-1", domain.RoleClient, clientBalance)
	seedProfile(store, "contractor-1", domain.RoleContractor, 0)
	seedContract(store, "contract-1", "client-1", "contractor-1", domain.ContractInProgress)
	seedJob(store, "job-1", "contract-1", price, false)
	return store
}

func totalBalance(store *memStore) float64 {
	var sum float64
	for _, p := range store.profiles {
		sum += p.Balance
	}
	return sum
}

// ---------------------------------------------------------------------------
// PayJob tests
// ---------------------------------------------------------------------------

func TestPayJob_Success(t *testing.T) {
	store := paymentFixture(1000, 600)
	svc := NewBillingService(store, zerolog.Nop())

	before := totalBalance(store)
	result, err := svc.PayJob(context.Background(), ports.PayJobInput{JobID: "job-1", CallerProfileID: "client-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Price != 600 {
		t.Errorf("price: want 600, got %v", result.Price)
	}
	if result.ClientBalance != 400 {
		t.Errorf("client balance: want 400, got %v", result.ClientBalance)
	}
	if result.ContractorBalance != 600 {
		t.Errorf("contractor balance: want 600, got %v", result.ContractorBalance)
	}
	if result.PaidAt.IsZero() {
		t.Error("PaidAt must not be zero")
	}

	if !store.jobs["job-1"].Paid {
		t.Error("job must be marked paid")
	}
	if store.jobs["job-1"].PaymentDate == nil {
		t.Error("payment date must be set")
	}
	if got := store.profiles["client-1"].Balance; got != 400 {
		t.Errorf("stored client balance: want 400, got %v", got)
	}
	if got := store.profiles["contractor-1"].Balance; got != 600 {
		t.Errorf("stored contractor balance: want 600, got %v", got)
	}

	// Money is conserved: the debit equals the credit exactly.
	if after := totalBalance(store); after != before {
		t.Errorf("total balance changed: before %v, after %v", before, after)
	}
}

func TestPayJob_InsufficientFunds(t *testing.T) {
	store := paymentFixture(100, 600)
	svc := NewBillingService(store, zerolog.Nop())

	_, err := svc.PayJob(context.Background(), ports.PayJobInput{JobID: "job-1", CallerProfileID: "client-1"})
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	if store.jobs["job-1"].Paid {
		t.Error("job must stay unpaid")
	}
	if got := store.profiles["client-1"].Balance; got != 100 {
		t.Errorf("client balance must be untouched: got %v", got)
	}
	if got := store.profiles["contractor-1"].Balance; got != 0 {
		t.Errorf("contractor balance must be untouched: got %v", got)
	}
}

func TestPayJob_ContractorCaller_Forbidden(t *testing.T) {
	store := paymentFixture(1000, 600)
	svc := NewBillingService(store, zerolog.Nop())

	_, err := svc.PayJob(context.Background(), ports.PayJobInput{JobID: "job-1", CallerProfileID: "contractor-1"})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestPayJob_NotFoundCases(t *testing.T) {
	cases := []struct {
		name string
		prep func(store *memStore)
		job  string
	}{
		{
			name: "unknown job",
			prep: func(*memStore) {},
			job:  "job-missing",
		},
		{
			name: "already paid",
			prep: func(store *memStore) { store.jobs["job-1"].Paid = true },
			job:  "job-1",
		},
		{
			name: "terminated contract",
			prep: func(store *memStore) { store.contracts["contract-1"].Status = domain.ContractTerminated },
			job:  "job-1",
		},
		{
			name: "another client's job",
			prep: func(store *memStore) {
				seedProfile(store, "client-2", domain.RoleClient, 5000)
				store.contracts["contract-1"].ClientID = "client-2"
			},
			job: "job-1",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := paymentFixture(1000, 600)
			tc.prep(store)
			svc := NewBillingService(store, zerolog.Nop())

			_, err := svc.PayJob(context.Background(), ports.PayJobInput{JobID: tc.job, CallerProfileID: "client-1"})
			if !errors.Is(err, domain.ErrJobNotFound) {
				t.Fatalf("expected ErrJobNotFound, got %v", err)
			}
		})
	}
}

func TestPayJob_UnknownCaller(t *testing.T) {
	store := paymentFixture(1000, 600)
	svc := NewBillingService(store, zerolog.Nop())

	_, err := svc.PayJob(context.Background(), ports.PayJobInput{JobID: "job-1", CallerProfileID: "ghost"})
	if !errors.Is(err, domain.ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestPayJob_EmptyInput(t *testing.T) {
	svc := NewBillingService(newMemStore(), zerolog.Nop())

	if _, err := svc.PayJob(context.Background(), ports.PayJobInput{}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestPayJob_BusyPropagates(t *testing.T) {
	store := paymentFixture(1000, 600)
	store.txErr = domain.ErrBusy
	svc := NewBillingService(store, zerolog.Nop())

	_, err := svc.PayJob(context.Background(), ports.PayJobInput{JobID: "job-1", CallerProfileID: "client-1"})
	if !errors.Is(err, domain.ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
}

// TestPayJob_ConcurrentExactlyOnce fires duplicate payments at one job:
// exactly one wins, every loser observes the completed payment as not found,
// and the transfer is applied once.
func TestPayJob_ConcurrentExactlyOnce(t *testing.T) {
	const attempts = 16

	store := paymentFixture(10000, 600)
	svc := NewBillingService(store, zerolog.Nop())

	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.PayJob(context.Background(), ports.PayJobInput{JobID: "job-1", CallerProfileID: "client-1"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var successes, notFound int
	for err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, domain.ErrJobNotFound):
			notFound++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if successes != 1 {
		t.Errorf("expected exactly 1 success, got %d", successes)
	}
	if notFound != attempts-1 {
		t.Errorf("expected %d not-found, got %d", attempts-1, notFound)
	}
	if got := store.profiles["client-1"].Balance; got != 10000-600 {
		t.Errorf("client balance: want %v, got %v", 10000-600, got)
	}
	if got := store.profiles["contractor-1"].Balance; got != 600 {
		t.Errorf("contractor balance: want 600, got %v", got)
	}
}

// ---------------------------------------------------------------------------
// Deposit tests
// ---------------------------------------------------------------------------

// depositFixture wires a client with unpaid work totalling unpaidTotal.
func depositFixture(unpaidTotal float64) *memStore {
	store := newMemStore()
	seedProfile(store, "client-1", domain.RoleClient, 0)
	seedProfile(store, "contractor-1", domain.RoleContractor, 0)
	seedContract(store, "contract-1", "client-1", "contractor-1", domain.ContractInProgress)
	if unpaidTotal > 0 {
		seedJob(store, "job-1", "contract-1", unpaidTotal, false)
	}
	return store
}

func TestDeposit_WithinCeiling(t *testing.T) {
	store := depositFixture(300)
	svc := NewBillingService(store, zerolog.Nop())

	result, err := svc.Deposit(context.Background(), ports.DepositInput{
		CallerProfileID: "client-1", TargetProfileID: "client-1", Amount: 75,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Balance != 75 {
		t.Errorf("balance: want 75, got %v", result.Balance)
	}
	if got := store.profiles["client-1"].Balance; got != 75 {
		t.Errorf("stored balance: want 75, got %v", got)
	}
}

func TestDeposit_AboveCeiling(t *testing.T) {
	store := depositFixture(300)
	svc := NewBillingService(store, zerolog.Nop())

	_, err := svc.Deposit(context.Background(), ports.DepositInput{
		CallerProfileID: "client-1", TargetProfileID: "client-1", Amount: 76,
	})

	var limitErr *domain.LimitExceededError
	if !errors.As(err, &limitErr) {
		t.Fatalf("expected LimitExceededError, got %v", err)
	}
	if limitErr.Ceiling != 75 {
		t.Errorf("ceiling: want 75, got %v", limitErr.Ceiling)
	}
	if got := store.profiles["client-1"].Balance; got != 0 {
		t.Errorf("balance must be untouched: got %v", got)
	}
}

func TestDeposit_NoUnpaidJobs_Rejected(t *testing.T) {
	store := depositFixture(0)
	svc := NewBillingService(store, zerolog.Nop())

	_, err := svc.Deposit(context.Background(), ports.DepositInput{
		CallerProfileID: "client-1", TargetProfileID: "client-1", Amount: 1,
	})

	var limitErr *domain.LimitExceededError
	if !errors.As(err, &limitErr) {
		t.Fatalf("expected LimitExceededError, got %v", err)
	}
	if limitErr.Ceiling != 0 {
		t.Errorf("ceiling: want 0, got %v", limitErr.Ceiling)
	}
}

func TestDeposit_PaidJobsExcludedFromCeiling(t *testing.T) {
	store := depositFixture(300)
	seedJob(store, "job-paid", "contract-1", 1000, true)
	svc := NewBillingService(store, zerolog.Nop())

	// Ceiling stays 75: the paid job contributes nothing.
	_, err := svc.Deposit(context.Background(), ports.DepositInput{
		CallerProfileID: "client-1", TargetProfileID: "client-1", Amount: 76,
	})
	var limitErr *domain.LimitExceededError
	if !errors.As(err, &limitErr) {
		t.Fatalf("expected LimitExceededError, got %v", err)
	}
	if limitErr.Ceiling != 75 {
		t.Errorf("ceiling: want 75, got %v", limitErr.Ceiling)
	}
}

func TestDeposit_OnBehalfOfAnotherClient(t *testing.T) {
	store := depositFixture(300)
	seedProfile(store, "client-2", domain.RoleClient, 0)
	svc := NewBillingService(store, zerolog.Nop())

	// client-2 deposits into client-1's balance; the ceiling derives from the
	// target's unpaid work, not the caller's.
	result, err := svc.Deposit(context.Background(), ports.DepositInput{
		CallerProfileID: "client-2", TargetProfileID: "client-1", Amount: 50,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ProfileID != "client-1" {
		t.Errorf("target: want client-1, got %s", result.ProfileID)
	}
	if got := store.profiles["client-1"].Balance; got != 50 {
		t.Errorf("target balance: want 50, got %v", got)
	}
	if got := store.profiles["client-2"].Balance; got != 0 {
		t.Errorf("caller balance must be untouched: got %v", got)
	}
}

func TestDeposit_ContractorCaller_Forbidden(t *testing.T) {
	store := depositFixture(300)
	svc := NewBillingService(store, zerolog.Nop())

	_, err := svc.Deposit(context.Background(), ports.DepositInput{
		CallerProfileID: "contractor-1", TargetProfileID: "contractor-1", Amount: 10,
	})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestDeposit_ContractorTarget_Invalid(t *testing.T) {
	store := depositFixture(300)
	svc := NewBillingService(store, zerolog.Nop())

	_, err := svc.Deposit(context.Background(), ports.DepositInput{
		CallerProfileID: "client-1", TargetProfileID: "contractor-1", Amount: 10,
	})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestDeposit_NonPositiveAmount(t *testing.T) {
	svc := NewBillingService(newMemStore(), zerolog.Nop())

	for _, amount := range []float64{0, -5} {
		_, err := svc.Deposit(context.Background(), ports.DepositInput{
			CallerProfileID: "client-1", TargetProfileID: "client-1", Amount: amount,
		})
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("amount %v: expected ErrInvalidInput, got %v", amount, err)
		}
	}
}

func TestDeposit_NonFiniteAmount(t *testing.T) {
	store := depositFixture(300)
	svc := NewBillingService(store, zerolog.Nop())

	for _, amount := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := svc.Deposit(context.Background(), ports.DepositInput{
			CallerProfileID: "client-1", TargetProfileID: "client-1", Amount: amount,
		})
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("amount %v: expected ErrInvalidInput, got %v", amount, err)
		}
	}

	if got := store.profiles["client-1"].Balance; got != 0 {
		t.Errorf("stored balance mutated: want 0, got %v", got)
	}
}

func TestDeposit_UnknownTarget(t *testing.T) {
	store := depositFixture(300)
	svc := NewBillingService(store, zerolog.Nop())

	_, err := svc.Deposit(context.Background(), ports.DepositInput{
		CallerProfileID: "client-1", TargetProfileID: "ghost", Amount: 10,
	})
	if !errors.Is(err, domain.ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

// ceilingRecord pairs a committed deposit with the unpaid total observed in
// the same transactional scope as the credit.
type ceilingRecord struct {
	amount float64
	unpaid float64
}

// recordingStore wraps memStore so each committed deposit re-reads the
// target's unpaid total right at the credit, inside the same scope. If the
// ceiling check and the credit ever ran in separate scopes, a payment
// committing in between would show up as a record violating the ceiling.
type recordingStore struct {
	inner   *memStore
	target  string
	records []ceilingRecord
}

func (s *recordingStore) InTransaction(ctx context.Context, fn func(ctx context.Context, tx ports.TxStore) error) error {
	return s.inner.InTransaction(ctx, func(ctx context.Context, tx ports.TxStore) error {
		return fn(ctx, &recordingTx{TxStore: tx, store: s})
	})
}

type recordingTx struct {
	ports.TxStore
	store *recordingStore
}

func (t *recordingTx) CreditBalance(ctx context.Context, profileID string, amount float64) error {
	if profileID == t.store.target {
		unpaid, err := t.TxStore.UnpaidTotalForClient(ctx, profileID)
		if err != nil {
			return err
		}
		// Appended under the store mutex; aborted scopes never reach the
		// deposit credit, so every record belongs to a committed deposit.
		t.store.records = append(t.store.records, ceilingRecord{amount: amount, unpaid: unpaid})
	}
	return t.TxStore.CreditBalance(ctx, profileID, amount)
}

func TestDeposit_CeilingTracksConcurrentPayments(t *testing.T) {
	store := newMemStore()
	seedProfile(store, "client-1", domain.RoleClient, 400)
	seedProfile(store, "contractor-1", domain.RoleContractor, 0)
	seedContract(store, "contract-1", "client-1", "contractor-1", domain.ContractInProgress)
	seedJob(store, "job-1", "contract-1", 200, false)
	seedJob(store, "job-2", "contract-1", 200, false)

	recording := &recordingStore{inner: store, target: "client-1"}
	svc := NewBillingService(recording, zerolog.Nop())

	// Unpaid total shrinks 400 → 200 → 0 as the two payments land, so the
	// ceiling shrinks 100 → 50 → 0 underneath the deposit stream.
	var wg sync.WaitGroup
	for _, jobID := range []string{"job-1", "job-2"} {
		wg.Add(1)
		go func(jobID string) {
			defer wg.Done()
			if _, err := svc.PayJob(context.Background(), ports.PayJobInput{
				JobID: jobID, CallerProfileID: "client-1",
			}); err != nil {
				t.Errorf("pay %s: unexpected error: %v", jobID, err)
			}
		}(jobID)
	}

	depositErrs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		amount := 100.0
		if i%2 == 1 {
			amount = 50
		}
		wg.Add(1)
		go func(amount float64) {
			defer wg.Done()
			_, err := svc.Deposit(context.Background(), ports.DepositInput{
				CallerProfileID: "client-1", TargetProfileID: "client-1", Amount: amount,
			})
			depositErrs <- err
		}(amount)
	}
	wg.Wait()
	close(depositErrs)

	var deposited float64
	accepted := 0
	for err := range depositErrs {
		var limitErr *domain.LimitExceededError
		switch {
		case err == nil:
			accepted++
		case errors.As(err, &limitErr):
		default:
			t.Fatalf("unexpected deposit error: %v", err)
		}
	}

	if accepted != len(recording.records) {
		t.Fatalf("accepted %d deposits but recorded %d credits", accepted, len(recording.records))
	}
	for _, rec := range recording.records {
		ceiling := rec.unpaid * domain.DepositLimitRatio
		if rec.amount > ceiling {
			t.Errorf("deposit %v committed above ceiling %v (unpaid %v at credit)", rec.amount, ceiling, rec.unpaid)
		}
		deposited += rec.amount
	}

	for _, jobID := range []string{"job-1", "job-2"} {
		if !store.jobs[jobID].Paid {
			t.Errorf("%s not paid", jobID)
		}
	}
	if got := store.profiles["contractor-1"].Balance; got != 400 {
		t.Errorf("contractor balance: want 400, got %v", got)
	}
	if got := store.profiles["client-1"].Balance; got != deposited {
		t.Errorf("client balance: want %v (deposits only), got %v", deposited, got)
	}
}
