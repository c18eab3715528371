package artifact

import (
	"errors"
)

// Sentinel error kinds for artifact sources.
var (
	ErrInvalidURI       = errors.New("invalid artifact uri")
	ErrFetch            = errors.New("fetch artifact failed")
	ErrChecksumMismatch = errors.New("artifact checksum mismatch")
)
