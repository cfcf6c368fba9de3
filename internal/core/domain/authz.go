package domain

// Operation identifies a balance-mutating use case for authorization.
type Operation string

const (
	OpPayJob  Operation = "pay_job"
	OpDeposit Operation = "deposit"
)

// requiredRole is the single source of truth for which role may perform
// which operation. Both money-moving operations are client-only.
var requiredRole = map[Operation]string{
	OpPayJob:  RoleClient,
	OpDeposit: RoleClient,
}

// Authorize checks whether the caller profile may perform op. It is called
// once per operation, against the stored profile, inside the transactional
// scope that performs the mutation.
func Authorize(caller *Profile, op Operation) error {
	if caller == nil {
		return ErrForbidden
	}
	role, ok := requiredRole[op]
	if !ok || caller.Role != role {
		return ErrForbidden
	}
	return nil
}
