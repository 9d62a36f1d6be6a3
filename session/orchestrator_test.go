package session

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"streamsock/api"
	"streamsock/internal/concurrency"
	"streamsock/protocol"
)

// fakeWriter captures encoded frames and exposes them to the test as they
// are written.
type fakeWriter struct {
	mu       sync.Mutex
	started  bool
	opts     api.StreamOptions
	frames   []*protocol.Frame
	writes   chan *protocol.Frame
	valid    atomic.Bool
	finished atomic.Bool
}

func newFakeWriter() *fakeWriter {
	w := &fakeWriter{writes: make(chan *protocol.Frame, 16)}
	w.valid.Store(true)
	return w
}

func (w *fakeWriter) Start(opts api.StreamOptions) error {
	w.mu.Lock()
	w.started = true
	w.opts = opts
	w.mu.Unlock()
	return nil
}

func (w *fakeWriter) Write(p []byte) error {
	if !w.valid.Load() {
		return api.ErrStreamClosed
	}
	frame, _, err := protocol.DecodeFrame(p)
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.frames = append(w.frames, frame)
	w.mu.Unlock()
	w.writes <- frame
	return nil
}

func (w *fakeWriter) Valid() bool { return w.valid.Load() }

func (w *fakeWriter) Finish() error {
	w.valid.Store(false)
	w.finished.Store(true)
	return nil
}

func (w *fakeWriter) written() []*protocol.Frame {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]*protocol.Frame(nil), w.frames...)
}

func runSession(t *testing.T, o *Orchestrator, w api.StreamWriter, mode Mode) *Session {
	t.Helper()
	s := New()
	go o.Run(s, w, mode)
	select {
	case <-s.Done():
	case <-time.After(10 * time.Second):
		t.Fatal("session did not terminate")
	}
	return s
}

func TestVerifySuccess(t *testing.T) {
	q := concurrency.NewFrameQueue()
	w := newFakeWriter()
	o := NewOrchestrator(q, 3, time.Second, 100*time.Millisecond, "application/octet-stream")

	// Peer mirror: answer every PING with a matching PONG.
	go func() {
		for frame := range w.writes {
			if frame.Opcode == protocol.OpcodePing {
				q.Push(protocol.PongFrame(frame.Payload))
			}
		}
	}()

	s := runSession(t, o, w, ModeVerify)

	if s.Outcome() != OutcomeSuccess {
		t.Fatalf("outcome %v, want success", s.Outcome())
	}
	stats := s.Stats()
	if stats["pings_sent"] != 3 || stats["pongs_received"] != 3 {
		t.Errorf("counters %v, want 3 pings and 3 pongs", stats)
	}

	frames := w.written()
	last := frames[len(frames)-1]
	if last.Opcode != protocol.OpcodeClose {
		t.Fatalf("final frame %v, want CLOSE", last.Opcode)
	}
	if last.Payload[0] != 0x03 || last.Payload[1] != 0xE8 {
		t.Errorf("close payload %v, want {0x03,0xE8}", last.Payload)
	}
	if !w.finished.Load() {
		t.Error("stream writer was not finished")
	}
}

func TestVerifyPongMismatch(t *testing.T) {
	q := concurrency.NewFrameQueue()
	w := newFakeWriter()
	o := NewOrchestrator(q, 3, time.Second, 100*time.Millisecond, "application/octet-stream")

	go func() {
		for frame := range w.writes {
			if frame.Opcode == protocol.OpcodePing {
				q.Push(protocol.PongFrame([]byte("wrong-tag")))
			}
		}
	}()

	s := runSession(t, o, w, ModeVerify)

	if s.Outcome() != OutcomeFailure {
		t.Fatalf("outcome %v, want failure", s.Outcome())
	}
	// Failure is immediate: no further rounds after the mismatch.
	if got := s.Stats()["pings_sent"]; got != 1 {
		t.Errorf("%d pings sent, want 1", got)
	}
	frames := w.written()
	if frames[len(frames)-1].Opcode != protocol.OpcodeClose {
		t.Error("CLOSE not sent after mismatch")
	}
}

func TestVerifyWrongOpcode(t *testing.T) {
	q := concurrency.NewFrameQueue()
	w := newFakeWriter()
	o := NewOrchestrator(q, 3, time.Second, 100*time.Millisecond, "application/octet-stream")

	go func() {
		for frame := range w.writes {
			if frame.Opcode == protocol.OpcodePing {
				q.Push(protocol.TextFrame(frame.Payload))
			}
		}
	}()

	s := runSession(t, o, w, ModeVerify)
	if s.Outcome() != OutcomeFailure {
		t.Fatalf("outcome %v, want failure", s.Outcome())
	}
}

func TestVerifyTimeout(t *testing.T) {
	q := concurrency.NewFrameQueue()
	w := newFakeWriter()
	o := NewOrchestrator(q, 3, 50*time.Millisecond, 20*time.Millisecond, "application/octet-stream")

	// Drain writes; nobody answers.
	go func() {
		for range w.writes {
		}
	}()

	s := runSession(t, o, w, ModeVerify)

	if s.Outcome() != OutcomeFailure {
		t.Fatalf("outcome %v, want failure", s.Outcome())
	}
	if got := s.Stats()["pings_sent"]; got != 1 {
		t.Errorf("%d pings sent, want 1", got)
	}
}

func TestEchoLoop(t *testing.T) {
	q := concurrency.NewFrameQueue()
	w := newFakeWriter()
	o := NewOrchestrator(q, 3, time.Second, 20*time.Millisecond, "application/octet-stream")

	q.Push(protocol.TextFrame([]byte("hello")))
	q.Push(protocol.PongFrame(nil))
	q.Push(protocol.CloseFrame(protocol.CloseNormalClosure))

	go func() {
		for range w.writes {
		}
	}()

	s := runSession(t, o, w, ModeEcho)

	frames := w.written()
	if len(frames) != 2 {
		t.Fatalf("wrote %d frames, want echo + close", len(frames))
	}
	if frames[0].Opcode != protocol.OpcodeText || string(frames[0].Payload) != "hello" {
		t.Errorf("echo frame %v %q, want TEXT hello", frames[0].Opcode, frames[0].Payload)
	}
	if frames[1].Opcode != protocol.OpcodeClose {
		t.Errorf("final frame %v, want CLOSE", frames[1].Opcode)
	}

	stats := s.Stats()
	if stats["frames_echoed"] != 1 || stats["pongs_received"] != 1 {
		t.Errorf("counters %v", stats)
	}
	if s.Connected() {
		t.Error("session still marked connected after exit")
	}
}

func TestEchoExitCodeIgnoresOutcome(t *testing.T) {
	q := concurrency.NewFrameQueue()
	w := newFakeWriter()
	o := NewOrchestrator(q, 3, time.Second, 10*time.Millisecond, "application/octet-stream")

	q.Push(protocol.CloseFrame(protocol.CloseNormalClosure))
	go func() {
		for range w.writes {
		}
	}()

	s := runSession(t, o, w, ModeEcho)

	// The outcome never flips in echo mode; the exit status must not
	// inherit its failure seed.
	if s.Outcome() != OutcomeFailure {
		t.Fatalf("echo session outcome %v", s.Outcome())
	}
	if code := s.ExitCode(ModeEcho); code != 0 {
		t.Fatalf("clean echo run exit code %d, want 0", code)
	}
	if code := s.ExitCode(ModeVerify); code != 1 {
		t.Fatalf("verify exit code %d, want outcome value 1", code)
	}
}

func TestEchoExitsWhenQueueCloses(t *testing.T) {
	q := concurrency.NewFrameQueue()
	w := newFakeWriter()
	o := NewOrchestrator(q, 3, time.Second, 10*time.Millisecond, "application/octet-stream")

	go func() {
		for range w.writes {
		}
	}()

	s := New()
	go o.Run(s, w, ModeEcho)

	// Close the queue without stopping the session: the loop must end
	// rather than spin on instant empty pops.
	time.Sleep(30 * time.Millisecond)
	q.Close()

	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("echo loop kept polling a closed queue")
	}
}

func TestEchoStopsWhenSessionStopped(t *testing.T) {
	q := concurrency.NewFrameQueue()
	w := newFakeWriter()
	o := NewOrchestrator(q, 3, time.Second, 10*time.Millisecond, "application/octet-stream")

	go func() {
		for range w.writes {
		}
	}()

	s := New()
	go o.Run(s, w, ModeEcho)

	time.Sleep(30 * time.Millisecond)
	s.Stop()
	q.Close()

	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("echo loop ignored stop request")
	}
}
