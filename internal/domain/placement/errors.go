package placement

import (
	"fmt"

	"github.com/exchange-insight/exchange-insight/internal/domain/shared"
)

// Precondition violations. Each is matchable with errors.Is and also matches
// the shared base kind it wraps (shared.IsValidation reports true for all of them).
var (
	ErrGPAOutOfRange       = shared.NewDomainError("placement", "Validate", shared.ErrValueOutOfRange, "gpa out of range")
	ErrFailureBoundary     = shared.NewDomainError("placement", "Validate", shared.ErrValueOutOfRange, "failure boundary out of range")
	ErrInvalidCapacity     = shared.NewDomainError("placement", "Validate", shared.ErrValueOutOfRange, "capacity must be at least 1")
	ErrDuplicatePreference = shared.NewDomainError("placement", "Validate", shared.ErrInvalidInput, "duplicate agreement in preference order")
	ErrTooManyRanks        = shared.NewDomainError("placement", "Validate", shared.ErrInvalidInput, "more authoritative ranks than preferences")
	ErrInvalidRank         = shared.NewDomainError("placement", "Validate", shared.ErrValueOutOfRange, "authoritative rank must be positive")
	ErrIndexOutOfRange     = shared.NewDomainError("placement", "Classify", shared.ErrValueOutOfRange, "choice index out of range")
	ErrStandingMismatch    = shared.NewDomainError("placement", "Compose", shared.ErrInvalidInput, "standing does not match preference order")
)

func violation(op string, kind *shared.DomainError, format string, args ...any) error {
	return shared.WrapError("placement", op, kind, fmt.Sprintf(format, args...), nil)
}
