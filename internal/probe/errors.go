package probe

import "errors"

// Sentinel kinds for probe failures.
var (
	ErrUnhealthy    = errors.New("service unhealthy")
	ErrVerification = errors.New("verification failed")
	ErrConfig       = errors.New("invalid probe config")
)
