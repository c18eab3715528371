package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNoSource = errors.New("no model source configured")
	ErrLoad     = errors.New("model load failed")
)
