// File: session/session.go
// Package session drives the frame exchange lifecycle over a stream writer.
// License: Apache-2.0
//
// A Session exists only while a transport connection is open. Its counters
// are independent atomics used for observability, never for correctness
// decisions.

package session

import (
	"sync"
	"sync/atomic"

	"github.com/gbrlsnchs/uuid"
)

// Mode selects the session loop behavior at session start.
type Mode int

const (
	// ModeEcho runs the open-ended interactive loop: data frames are echoed
	// back verbatim until the peer closes.
	ModeEcho Mode = iota

	// ModeVerify runs the scripted ping/pong self-test with a pass/fail
	// outcome.
	ModeVerify
)

func (m Mode) String() string {
	if m == ModeVerify {
		return "verify"
	}
	return "echo"
}

// Outcome is the scripted verification result, with exit-status semantics.
type Outcome int32

const (
	OutcomeSuccess Outcome = 0
	OutcomeFailure Outcome = 1
)

// Session holds per-connection state.
type Session struct {
	id string

	running   atomic.Bool
	connected atomic.Bool
	outcome   atomic.Int32

	pingsSent     atomic.Int64
	pongsReceived atomic.Int64
	framesEchoed  atomic.Int64

	done chan struct{}
	once sync.Once
}

// New creates a session in the running state. The outcome starts as failure
// and flips to success only when the scripted exchange completes.
func New() *Session {
	s := &Session{
		id:   newSessionID(),
		done: make(chan struct{}),
	}
	s.running.Store(true)
	s.outcome.Store(int32(OutcomeFailure))
	return s
}

// newSessionID returns a random v4 UUID, or a fixed fallback when the
// entropy source fails.
func newSessionID() string {
	guid, err := uuid.GenerateV4(nil)
	if err != nil {
		return "00000000-0000-4000-8000-000000000000"
	}
	return guid.String()
}

// ID returns the unique session identifier.
func (s *Session) ID() string { return s.id }

// Running reports whether the session loop should keep going.
func (s *Session) Running() bool { return s.running.Load() }

// Stop requests cooperative termination of the session loop.
func (s *Session) Stop() { s.running.Store(false) }

// Connected reports whether the outbound stream is established.
func (s *Session) Connected() bool { return s.connected.Load() }

// Outcome returns the verification result.
func (s *Session) Outcome() Outcome { return Outcome(s.outcome.Load()) }

// ExitCode returns the process exit status for a finished session. The
// verification outcome is meaningful only in verify mode; an echo session
// that ran to completion exits zero regardless of it.
func (s *Session) ExitCode(mode Mode) int {
	if mode == ModeVerify {
		return int(s.Outcome())
	}
	return 0
}

// Done returns a channel closed when the session loop has fully exited.
func (s *Session) Done() <-chan struct{} { return s.done }

// finish marks the session ended; idempotent.
func (s *Session) finish() {
	s.running.Store(false)
	s.connected.Store(false)
	s.once.Do(func() { close(s.done) })
}

// Stats returns a snapshot of the session counters.
func (s *Session) Stats() map[string]int64 {
	return map[string]int64{
		"pings_sent":     s.pingsSent.Load(),
		"pongs_received": s.pongsReceived.Load(),
		"frames_echoed":  s.framesEchoed.Load(),
	}
}
