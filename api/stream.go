// File: api/stream.go
// Package api defines the streaming writer abstraction.
// License: Apache-2.0
//
// StreamWriter models the host transport's long-lived outbound channel:
// a response-like object that accepts incremental byte pushes toward the
// peer without closing the underlying delivery mechanism.

package api

// StreamOptions carries the parameters used to open an outbound stream.
type StreamOptions struct {
	// MIME is the content type announced to the peer.
	MIME string

	// Headers are transport-level headers sent when the stream opens.
	Headers map[string]string
}

// StreamWriter is a long-lived outbound channel to the peer.
//
// Start must be called exactly once before the first Write. Write pushes
// encoded frame bytes immediately and may block if the transport applies
// backpressure. Valid reports whether the channel is still usable; once it
// returns false no further Write will succeed. Finish closes the channel
// and is idempotent.
type StreamWriter interface {
	Start(opts StreamOptions) error
	Write(p []byte) error
	Valid() bool
	Finish() error
}
