package probe

import "time"

// Defaults used when Config leaves a field empty.
const (
	DefaultPath     = "/predict"
	DefaultRequests = 100
	DefaultWorkers  = 8
	DefaultTimeout  = 10 * time.Second
)

// Status codes the probe expects.
const (
	statusOK                  = 200
	statusUnprocessableEntity = 422
)

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o600
)
