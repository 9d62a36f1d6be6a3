// File: transport/pipe.go
// Package transport provides concrete local transports for the engine.
// License: Apache-2.0
//
// Pipe is an in-memory duplex transport connecting an engine to an
// in-process peer. The engine side is an api.StreamWriter; the peer side
// reads outbound chunks with Receive and submits inbound bytes with
// Deliver. A configurable chunk size splits deliveries to exercise
// partial-frame handling the way a real streaming transport would.

package transport

import (
	"sync"
	"sync/atomic"

	"streamsock/api"
)

// Pipe is an in-memory transport carrying bytes both ways.
type Pipe struct {
	chunkSize int
	outbound  chan []byte
	done      chan struct{}

	valid    atomic.Bool
	once     sync.Once
	started  atomic.Bool
	optsMu   sync.Mutex
	opts     api.StreamOptions

	deliverMu sync.Mutex
	deliver   func([]byte) int
}

// PipeOption customizes pipe construction.
type PipeOption func(*Pipe)

// WithChunkSize splits both directions into at most n-byte pieces,
// simulating a transport that fragments deliveries mid-frame.
func WithChunkSize(n int) PipeOption {
	return func(p *Pipe) {
		p.chunkSize = n
	}
}

// NewPipe constructs an open pipe.
func NewPipe(opts ...PipeOption) *Pipe {
	p := &Pipe{
		outbound: make(chan []byte, 64),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.valid.Store(true)
	return p
}

// Writer returns the engine-facing stream writer end of the pipe.
func (p *Pipe) Writer() api.StreamWriter { return p }

// Start records the stream options announced by the engine.
func (p *Pipe) Start(opts api.StreamOptions) error {
	if !p.valid.Load() {
		return api.ErrStreamClosed
	}
	p.optsMu.Lock()
	p.opts = opts
	p.optsMu.Unlock()
	p.started.Store(true)
	return nil
}

// StreamOptions returns the options the engine started the stream with.
func (p *Pipe) StreamOptions() api.StreamOptions {
	p.optsMu.Lock()
	defer p.optsMu.Unlock()
	return p.opts
}

// Write pushes encoded frame bytes toward the peer, split into chunks when
// a chunk size is configured. Blocks when the peer is slow; fails once the
// pipe is finished.
func (p *Pipe) Write(b []byte) error {
	for _, chunk := range p.split(b) {
		select {
		case p.outbound <- chunk:
		case <-p.done:
			return api.ErrStreamClosed
		}
	}
	return nil
}

// Valid reports whether the pipe is still open.
func (p *Pipe) Valid() bool { return p.valid.Load() }

// Finish closes the pipe. Chunks already buffered remain receivable.
func (p *Pipe) Finish() error {
	p.once.Do(func() {
		p.valid.Store(false)
		close(p.done)
	})
	return nil
}

// Close tears down the pipe from the peer side.
func (p *Pipe) Close() { p.Finish() }

// Receive blocks for the next outbound chunk. Returns false once the pipe
// is finished and drained.
func (p *Pipe) Receive() ([]byte, bool) {
	select {
	case b := <-p.outbound:
		return b, true
	case <-p.done:
		select {
		case b := <-p.outbound:
			return b, true
		default:
			return nil, false
		}
	}
}

// Bind routes inbound deliveries to the engine's decode-and-enqueue entry
// point.
func (p *Pipe) Bind(fn func([]byte) int) {
	p.deliverMu.Lock()
	p.deliver = fn
	p.deliverMu.Unlock()
}

// Deliver submits peer bytes to the bound engine on the caller's
// goroutine, split into chunks when a chunk size is configured. Returns
// the number of complete frames the engine decoded.
func (p *Pipe) Deliver(b []byte) int {
	p.deliverMu.Lock()
	fn := p.deliver
	p.deliverMu.Unlock()
	if fn == nil {
		return 0
	}
	n := 0
	for _, chunk := range p.split(b) {
		n += fn(chunk)
	}
	return n
}

// split copies b into chunkSize pieces; a single copy when unchunked.
func (p *Pipe) split(b []byte) [][]byte {
	if p.chunkSize <= 0 || len(b) <= p.chunkSize {
		return [][]byte{append([]byte(nil), b...)}
	}
	var chunks [][]byte
	for len(b) > 0 {
		n := p.chunkSize
		if n > len(b) {
			n = len(b)
		}
		chunks = append(chunks, append([]byte(nil), b[:n]...))
		b = b[n:]
	}
	return chunks
}
