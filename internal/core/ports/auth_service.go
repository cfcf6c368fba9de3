package ports

import (
	"context"

	"github.com/gigwork/contracts-api/internal/core/domain"
)

// RegisterInput carries everything needed to provision a user and its profile.
type RegisterInput struct {
	Username   string
	Password   string
	Role       string
	FirstName  string
	LastName   string
	Profession string
}

// AuthService provisions identities and exchanges credentials for tokens.
// The token carries the resolved profile id and role; downstream the billing
// core re-validates both against stored state.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
}
