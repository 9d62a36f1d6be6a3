// File: facade/engine.go
// Unified facade layer for the streamsock engine.
// License: Apache-2.0
//
// Engine aggregates the frame queue, session runner, and control plane
// behind the two entry points the host transport needs: Connect, which
// accepts the transport's stream writer and spawns the session loop, and
// OnInbound, which decodes raw delivery bytes and enqueues the resulting
// frames. One Engine serves one logical peer; sessions are serialized.

package facade

import (
	"errors"
	"log"
	"sync"

	"streamsock/adapters"
	"streamsock/api"
	"streamsock/internal/concurrency"
	"streamsock/protocol"
	"streamsock/session"
)

// Engine is the per-connection protocol engine facade.
type Engine struct {
	cfg     *Config
	queue   *concurrency.FrameQueue
	runner  *concurrency.Runner
	control api.Control
	handler api.Handler

	mu      sync.Mutex
	current *session.Session
	pend    []byte
	closed  bool
}

// New constructs an Engine from cfg (nil means DefaultConfig) and options.
func New(cfg *Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.PingCount <= 0 || cfg.PingTimeout <= 0 || cfg.PollInterval <= 0 {
		return nil, api.ErrInvalidArgument
	}

	e := &Engine{
		cfg:     cfg,
		queue:   concurrency.NewFrameQueue(),
		runner:  concurrency.NewRunner(cfg.PinCPU),
		control: adapters.NewControlAdapter(),
	}

	// The inbound chain ends in a queue push; middleware keeps the
	// delivery thread safe and observable.
	base := adapters.HandlerFunc(func(data any) error {
		frame, ok := data.(*protocol.Frame)
		if !ok {
			return api.ErrInvalidArgument
		}
		return e.queue.Push(frame)
	})
	chain := adapters.NewMiddlewareHandler(base).
		Use(adapters.RecoveryMiddleware).
		Use(adapters.MetricsMiddleware(e.control))
	if cfg.EnableDebug {
		chain.Use(adapters.LoggingMiddleware)
	}
	e.handler = chain

	e.control.SetConfig(map[string]any{
		"mode":          cfg.Mode.String(),
		"ping_count":    cfg.PingCount,
		"ping_timeout":  cfg.PingTimeout.String(),
		"poll_interval": cfg.PollInterval.String(),
	})
	e.control.RegisterDebugProbe("queue.pending", func() any {
		return e.queue.Len()
	})
	e.control.RegisterDebugProbe("session.active", func() any {
		e.mu.Lock()
		defer e.mu.Unlock()
		return e.current != nil && e.current.Running()
	})

	return e, nil
}

// Connect starts a session over the given stream writer. The frame queue is
// reset first so the new session never consumes frames left over from a
// prior one. The session loop runs on a dedicated, joined goroutine.
func (e *Engine) Connect(w api.StreamWriter) (*session.Session, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, api.ErrEngineClosed
	}
	if e.current != nil && e.current.Running() {
		e.mu.Unlock()
		return nil, api.ErrSessionActive
	}

	e.queue.Reset()
	e.pend = nil
	s := session.New()
	e.current = s
	e.mu.Unlock()

	orch := session.NewOrchestrator(e.queue, e.cfg.PingCount, e.cfg.PingTimeout, e.cfg.PollInterval, e.cfg.StreamMIME)
	if err := e.runner.Go("session-"+s.ID(), func() {
		orch.Run(s, w, e.cfg.Mode)
	}); err != nil {
		return nil, err
	}

	log.Printf("[facade] session %s started, mode=%s", s.ID(), e.cfg.Mode)
	return s, nil
}

// OnInbound accepts one inbound delivery unit from the transport, decodes
// zero or more frames from it, and enqueues each in wire order. Bytes
// forming a trailing partial frame are retained for the next delivery.
// Returns the number of frames enqueued.
//
// It runs on the transport's delivery thread and never blocks beyond the
// queue's internal lock.
func (e *Engine) OnInbound(data []byte) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return 0
	}

	e.pend = append(e.pend, data...)

	n := 0
	for len(e.pend) > 0 {
		frame, consumed, err := protocol.DecodeFrame(e.pend)
		if errors.Is(err, protocol.ErrIncompleteFrame) {
			break
		}
		if err != nil {
			// Corrupt header: the stream cannot be resynchronized, so the
			// rest of this delivery is dropped.
			log.Printf("[facade] dropping %d inbound bytes: %v", len(e.pend), err)
			if counter, ok := e.control.(interface{ AddMetric(string, int64) }); ok {
				counter.AddMetric("frames.malformed", 1)
			}
			e.pend = nil
			break
		}

		e.pend = e.pend[consumed:]
		_ = e.handler.Handle(frame)
		n++
	}
	if len(e.pend) == 0 {
		e.pend = nil
	}
	return n
}

// ActiveSession returns the most recently started session, or nil.
func (e *Engine) ActiveSession() *session.Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// Control exposes the engine's config/metrics/debug interface.
func (e *Engine) Control() api.Control {
	return e.control
}

// Shutdown stops the active session, closes the queue to wake its consumer
// immediately, and joins every session goroutine. Idempotent.
func (e *Engine) Shutdown() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	cur := e.current
	e.mu.Unlock()

	if cur != nil {
		cur.Stop()
	}
	e.queue.Close()
	e.runner.Wait()
	log.Printf("[facade] engine shut down")
}
