// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import "errors"

// Construction errors.
var (
	ErrMissingLogger     = errors.New("logger is required")
	ErrMissingAPIHandler = errors.New("API handler is required")
	ErrMissingManager    = errors.New("manager is required")
)

// Lifecycle errors.
var (
	// ErrManagerStarted is returned when Start is called twice.
	ErrManagerStarted = errors.New("manager already started")
	// ErrManagerNotStarted is returned by Shutdown before Start.
	ErrManagerNotStarted = errors.New("manager not started")
)
