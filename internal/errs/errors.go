package errs

import "errors"

// Common sentinel errors for cross-layer signaling.
var (
	ErrNotFound = errors.New("not_found")
	ErrInvalid  = errors.New("invalid")
	ErrConflict = errors.New("conflict")
	// ErrAlreadyLinked indicates a movement already exists for the invoice;
	// recoverable by the caller via force_create.
	ErrAlreadyLinked = errors.New("already_linked")
	// ErrInvalidVatCode indicates a self-contradictory VAT-code configuration
	// (negative rate, or natura set together with a non-zero rate).
	ErrInvalidVatCode = errors.New("invalid_vat_code")
)
