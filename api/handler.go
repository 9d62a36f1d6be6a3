// File: api/handler.go
// Package api defines Handler interface.
// License: Apache-2.0

package api

// Handler processes inbound protocol units delivered by the transport.
type Handler interface {
	Handle(data any) error
}
