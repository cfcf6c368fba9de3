package ports

import (
	"context"

	"github.com/gigwork/contracts-api/internal/core/domain"
)

// ProfileRepository defines non-transactional profile persistence. Create is
// used by provisioning only; the billing core never creates profiles.
type ProfileRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Profile, error)
	Create(ctx context.Context, p *domain.Profile) error
}

// ContractRepository defines read-only contract persistence.
type ContractRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Contract, error)
	// ListForProfile returns the non-terminated contracts where the profile is
	// either party.
	ListForProfile(ctx context.Context, profileID string) ([]*domain.Contract, error)
}

// JobRepository defines read-only job persistence outside the billing
// transaction.
type JobRepository interface {
	// ListUnpaidForProfile returns unpaid jobs under the profile's
	// non-terminated contracts.
	ListUnpaidForProfile(ctx context.Context, profileID string) ([]*domain.Job, error)
}

// AuthRepository defines credential persistence for the identity layer.
type AuthRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}
