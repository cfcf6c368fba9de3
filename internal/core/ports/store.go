package ports

import (
	"context"
	"time"

	"github.com/gigwork/contracts-api/internal/core/domain"
)

// TxStore is the view of the store available inside one transactional scope.
// Reads observe a consistent snapshot; every write either commits with the
// scope or is discarded with it.
type TxStore interface {
	ProfileByID(ctx context.Context, id string) (*domain.Profile, error)
	ContractByID(ctx context.Context, id string) (*domain.Contract, error)
	JobByID(ctx context.Context, id string) (*domain.Job, error)

	// MarkJobPaid flips the paid flag and stamps the payment date. The update
	// is guarded on paid=false: losing a race for the same job returns
	// domain.ErrJobNotFound.
	MarkJobPaid(ctx context.Context, jobID string, at time.Time) error

	// DebitBalance subtracts amount from a profile balance, guarded on
	// balance >= amount so a balance can never go negative at commit.
	DebitBalance(ctx context.Context, profileID string, amount float64) error

	// CreditBalance adds amount to a profile balance.
	CreditBalance(ctx context.Context, profileID string, amount float64) error

	// UnpaidTotalForClient sums the price of every unpaid job whose contract
	// belongs to the given client.
	UnpaidTotalForClient(ctx context.Context, clientID string) (float64, error)
}

// Store opens transactional scopes against the persistent store. fn runs with
// exclusive write access to the rows it touches; any error discards all
// mutations. Contention beyond the store's bounded wait surfaces as
// domain.ErrBusy.
type Store interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx TxStore) error) error
}
