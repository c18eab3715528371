package cache

import "errors"

// Sentinel kinds for cache errors.
var (
	ErrInvalidSize = errors.New("invalid cache size")
	ErrKeyWidth    = errors.New("feature vector has wrong width")
)
