// File: api/errors.go
// Package api
// License: Apache-2.0
//
// Common error values shared across the streamsock packages.

package api

import "fmt"

// Common errors used across the library.
var (
	ErrStreamClosed    = fmt.Errorf("stream writer is closed")
	ErrQueueClosed     = fmt.Errorf("frame queue is closed")
	ErrEngineClosed    = fmt.Errorf("engine is shut down")
	ErrSessionActive   = fmt.Errorf("a session is already active")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrNotSupported    = fmt.Errorf("operation not supported")
)
