package primitives

import "errors"

// Error taxonomy shared by every lsystemx package. Callers match with errors.Is;
// producers wrap with fmt.Errorf("%w: ...") to add context.
var (
	ErrValidation       = errors.New("validation failed")
	ErrKeyConflict      = errors.New("key already in use")
	ErrNotFound         = errors.New("not found")
	ErrPermission       = errors.New("alphabet is read-only")
	ErrIndex            = errors.New("index out of range")
	ErrAlphabetMismatch = errors.New("alphabet mismatch")
	ErrConfiguration    = errors.New("invalid rule configuration")
)
