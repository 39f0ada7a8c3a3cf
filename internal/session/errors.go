package session

import "errors"

var (
	// ErrValidation indicates a missing precondition; no remote call was made.
	ErrValidation = errors.New("validation failed")
	// ErrRemote indicates a failed remote operation.
	ErrRemote = errors.New("remote operation failed")
	// ErrTimeout indicates a remote operation exceeded its deadline.
	ErrTimeout = errors.New("remote operation timed out")
	// ErrBusy indicates another operation is already in flight for this session.
	ErrBusy = errors.New("another operation is in flight")
	// ErrContractViolation indicates a broken internal invariant.
	ErrContractViolation = errors.New("contract violation")
)

// IsUserFacing reports whether err should be surfaced to the user rather than treated as a bug.
func IsUserFacing(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrRemote) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrBusy)
}
