// File: session/orchestrator.go
// Package session
// License: Apache-2.0
//
// Orchestrator runs one session loop per connection on a dedicated
// goroutine. It is the sole consumer of the frame queue; the only blocking
// operation it performs is the queue's timed pop, so a termination request
// is observed within one poll interval at worst and immediately once the
// queue closes.

package session

import (
	"bytes"
	"fmt"
	"log"
	"time"

	"streamsock/api"
	"streamsock/internal/concurrency"
	"streamsock/protocol"
)

// Orchestrator drives connect, exchange, and close over a stream writer.
type Orchestrator struct {
	queue *concurrency.FrameQueue

	pingCount    int
	pingTimeout  time.Duration
	pollInterval time.Duration
	streamMIME   string
}

// NewOrchestrator constructs an orchestrator consuming q.
func NewOrchestrator(q *concurrency.FrameQueue, pingCount int, pingTimeout, pollInterval time.Duration, streamMIME string) *Orchestrator {
	return &Orchestrator{
		queue:        q,
		pingCount:    pingCount,
		pingTimeout:  pingTimeout,
		pollInterval: pollInterval,
		streamMIME:   streamMIME,
	}
}

// Run executes the session loop for s over w in the given mode. It returns
// only when the session has terminated; the caller provides the dedicated
// goroutine.
func (o *Orchestrator) Run(s *Session, w api.StreamWriter, mode Mode) {
	defer s.finish()

	if err := w.Start(api.StreamOptions{
		MIME: o.streamMIME,
		Headers: map[string]string{
			"Access-Control-Allow-Origin": "*",
			"Cache-Control":               "no-cache",
		},
	}); err != nil {
		log.Printf("[session %s] stream start failed: %v", s.id, err)
		return
	}

	s.connected.Store(true)
	log.Printf("[session %s] peer connected, mode=%s", s.id, mode)

	switch mode {
	case ModeVerify:
		o.runVerify(s, w)
	default:
		o.runEcho(s, w)
	}

	// The close frame is sent unconditionally, whatever ended the loop.
	o.sendClose(s, w)
	w.Finish()
}

// runVerify performs the fixed-round ping/pong exchange. Any timeout,
// wrong opcode, or payload mismatch is a hard terminal failure.
func (o *Orchestrator) runVerify(s *Session, w api.StreamWriter) {
	for i := 0; i < o.pingCount && s.Running() && w.Valid(); i++ {
		tag := fmt.Sprintf("ping-%d", i)

		if err := w.Write(protocol.EncodeFrame(protocol.PingFrame([]byte(tag)))); err != nil {
			log.Printf("[session %s] write failed: %v", s.id, err)
			return
		}
		s.pingsSent.Add(1)
		log.Printf("[session %s] sent PING %q", s.id, tag)

		resp, ok := o.queue.WaitPop(o.pingTimeout)
		if !ok {
			log.Printf("[session %s] verify failed: no response to %q", s.id, tag)
			return
		}
		if resp.Opcode != protocol.OpcodePong {
			log.Printf("[session %s] verify failed: got %v, want PONG", s.id, resp.Opcode)
			return
		}
		if !bytes.Equal(resp.Payload, []byte(tag)) {
			log.Printf("[session %s] verify failed: PONG payload %q, want %q", s.id, resp.Payload, tag)
			return
		}

		s.pongsReceived.Add(1)
		log.Printf("[session %s] PONG matched %q", s.id, tag)

		if i == o.pingCount-1 {
			s.outcome.Store(int32(OutcomeSuccess))
			log.Printf("[session %s] verify succeeded: %d rounds", s.id, o.pingCount)
		}
	}
}

// runEcho loops until the peer closes, the writer dies, or the session is
// stopped. A pop timeout here is the normal nothing-to-do case.
func (o *Orchestrator) runEcho(s *Session, w api.StreamWriter) {
	for s.Running() && w.Valid() {
		frame, ok := o.queue.WaitPop(o.pollInterval)
		if !ok {
			// A drained closed queue never yields again; polling it would
			// spin instead of sleeping the interval.
			if o.queue.Closed() {
				log.Printf("[session %s] queue closed, ending echo loop", s.id)
				return
			}
			continue
		}

		switch frame.Opcode {
		case protocol.OpcodeText, protocol.OpcodeBinary:
			if err := w.Write(protocol.EncodeFrame(frame)); err != nil {
				log.Printf("[session %s] echo write failed: %v", s.id, err)
				return
			}
			s.framesEchoed.Add(1)
			log.Printf("[session %s] echoed %d bytes", s.id, len(frame.Payload))

		case protocol.OpcodePong:
			s.pongsReceived.Add(1)

		case protocol.OpcodeClose:
			log.Printf("[session %s] peer sent CLOSE %d", s.id, protocol.CloseCode(frame.Payload))
			return
		}
	}
}

// sendClose pushes one CLOSE(1000) frame, best effort.
func (o *Orchestrator) sendClose(s *Session, w api.StreamWriter) {
	if !w.Valid() {
		return
	}
	if err := w.Write(protocol.EncodeFrame(protocol.CloseFrame(protocol.CloseNormalClosure))); err != nil {
		log.Printf("[session %s] close write failed: %v", s.id, err)
	}
}
