// File: adapters/handler_adapter.go
// Package adapters
// License: Apache-2.0
//
// HandlerFunc glue and middleware chaining for the inbound frame path.

package adapters

import (
	"log"

	"streamsock/api"
	"streamsock/protocol"
)

// HandlerFunc converts a function into an api.Handler.
type HandlerFunc func(data any) error

// Handle calls the underlying function.
func (f HandlerFunc) Handle(data any) error {
	return f(data)
}

// MiddlewareHandler wraps a base Handler and applies middleware in chain.
type MiddlewareHandler struct {
	handler    api.Handler
	middleware []func(api.Handler) api.Handler
}

// NewMiddlewareHandler creates a new MiddlewareHandler for the given base handler.
func NewMiddlewareHandler(handler api.Handler) *MiddlewareHandler {
	return &MiddlewareHandler{handler: handler}
}

// Use appends a middleware to the chain.
func (m *MiddlewareHandler) Use(mw func(api.Handler) api.Handler) *MiddlewareHandler {
	m.middleware = append(m.middleware, mw)
	return m
}

// Handle applies all middleware then calls the base handler.
func (m *MiddlewareHandler) Handle(data any) error {
	handler := m.handler
	for i := len(m.middleware) - 1; i >= 0; i-- {
		handler = m.middleware[i](handler)
	}
	return handler.Handle(data)
}

// LoggingMiddleware logs each inbound frame and any handler error.
func LoggingMiddleware(next api.Handler) api.Handler {
	return HandlerFunc(func(data any) error {
		if frame, ok := data.(*protocol.Frame); ok {
			log.Printf("[handler] inbound %v frame, %d bytes", frame.Opcode, len(frame.Payload))
		}
		err := next.Handle(data)
		if err != nil {
			log.Printf("[handler] error: %v", err)
		}
		return err
	})
}

// RecoveryMiddleware recovers from panics in the handler. The inbound path
// runs on the transport's delivery thread and must never take it down.
func RecoveryMiddleware(next api.Handler) api.Handler {
	return HandlerFunc(func(data any) error {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[handler] panic recovered: %v", r)
			}
		}()
		return next.Handle(data)
	})
}

// MetricsMiddleware counts processed frames in the Control metrics.
func MetricsMiddleware(control api.Control) func(api.Handler) api.Handler {
	counter, _ := control.(interface{ AddMetric(string, int64) })
	return func(next api.Handler) api.Handler {
		return HandlerFunc(func(data any) error {
			if counter != nil {
				counter.AddMetric("frames.enqueued", 1)
			}
			return next.Handle(data)
		})
	}
}
