package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/gigwork/contracts-api/internal/core/domain"
	"github.com/gigwork/contracts-api/internal/core/ports"
)

// AuthService provisions users with their backing profile and issues tokens.
type AuthService struct {
	users     ports.AuthRepository
	profiles  ports.ProfileRepository
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAuthService(users ports.AuthRepository, profiles ports.ProfileRepository, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{users: users, profiles: profiles, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

// Register creates the credential record and the profile it resolves to. The
// profile starts with a zero balance; funding goes through the deposit
// limiter like any other credit.
func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	if input.Username == "" || input.Password == "" || input.FirstName == "" || input.LastName == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if input.Role != domain.RoleClient && input.Role != domain.RoleContractor {
		return nil, domain.ErrInvalidCredentials
	}
	if input.Role == domain.RoleContractor && input.Profession == "" {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Username:     input.Username,
		PasswordHash: string(hash),
		Role:         input.Role,
		ProfileID:    newProfileID(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	profile := &domain.Profile{
		ID:         created.ProfileID,
		FirstName:  input.FirstName,
		LastName:   input.LastName,
		Profession: input.Profession,
		Role:       input.Role,
		Balance:    0,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, err
	}

	return created, nil
}

// Login verifies the credentials and returns a signed token carrying the
// resolved profile id and role.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	if username == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"profile_id": user.ProfileID,
		"role":       user.Role,
		"exp":        time.Now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

// newProfileID returns a unique profile identifier in the format prf-XXXXXXXXXXXX.
func newProfileID() string {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("prf-%012X", time.Now().UnixNano())
	}
	return fmt.Sprintf("prf-%012X", b)
}
