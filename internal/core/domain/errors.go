package domain

import (
	"errors"
	"fmt"
)

var (
	ErrProfileNotFound  = errors.New("profile not found")
	ErrContractNotFound = errors.New("contract not found")

	// ErrJobNotFound covers every failed payment lookup: missing job, already
	// paid, terminated contract, or a job belonging to another client. The
	// sub-causes are deliberately conflated so callers cannot probe which
	// condition failed.
	ErrJobNotFound = errors.New("job not found")

	ErrForbidden         = errors.New("access forbidden")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidInput      = errors.New("invalid input")

	// ErrBusy signals transactional contention on the store. It is the only
	// error callers may retry unchanged.
	ErrBusy = errors.New("store busy")

	// ErrNoEarnings is returned by the profession report when no paid job
	// falls inside the requested window.
	ErrNoEarnings = errors.New("no earnings in the requested period")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
)

// LimitExceededError rejects a deposit above the allowed ceiling. The ceiling
// is carried so callers can surface it.
type LimitExceededError struct {
	Ceiling float64
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("deposit exceeds limit: at most %.2f allowed", e.Ceiling)
}
