package classifier

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrDecode          = errors.New("decode artifact failed")
	ErrInvalidArtifact = errors.New("invalid model artifact")
	ErrUnknownKind     = errors.New("unknown model kind")
	ErrShapeMismatch   = errors.New("feature shape mismatch")
)
