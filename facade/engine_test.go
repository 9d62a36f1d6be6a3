package facade_test

import (
	"testing"
	"time"

	"streamsock/api"
	"streamsock/client"
	"streamsock/facade"
	"streamsock/protocol"
	"streamsock/session"
	"streamsock/transport"
)

func newTestEngine(t *testing.T, opts ...facade.Option) *facade.Engine {
	t.Helper()
	eng, err := facade.New(nil, opts...)
	if err != nil {
		t.Fatalf("engine init failed: %v", err)
	}
	t.Cleanup(eng.Shutdown)
	return eng
}

func TestOnInboundPartialDelivery(t *testing.T) {
	eng := newTestEngine(t)

	encoded := protocol.EncodeMaskedFrame(protocol.TextFrame([]byte("hello")), [4]byte{9, 8, 7, 6})
	split := len(encoded) / 2

	if n := eng.OnInbound(encoded[:split]); n != 0 {
		t.Fatalf("half a frame decoded %d frames", n)
	}
	if n := eng.OnInbound(encoded[split:]); n != 1 {
		t.Fatalf("completed frame decoded %d frames, want 1", n)
	}
}

func TestOnInboundMultiFramePacking(t *testing.T) {
	eng := newTestEngine(t)

	packed := append(
		protocol.EncodeMaskedFrame(protocol.TextFrame([]byte("one")), [4]byte{1, 1, 1, 1}),
		protocol.EncodeMaskedFrame(protocol.PongFrame([]byte("two")), [4]byte{2, 2, 2, 2})...,
	)

	if n := eng.OnInbound(packed); n != 2 {
		t.Fatalf("packed delivery decoded %d frames, want 2", n)
	}
}

func TestOnInboundMalformedDropsDelivery(t *testing.T) {
	eng := newTestEngine(t)

	bad := protocol.EncodeFrame(protocol.TextFrame([]byte("bad")))
	bad[0] |= 0x40 // reserved bit

	if n := eng.OnInbound(bad); n != 0 {
		t.Fatalf("malformed delivery decoded %d frames", n)
	}

	// The next clean delivery decodes normally; the corrupt bytes are gone.
	good := protocol.EncodeMaskedFrame(protocol.TextFrame([]byte("good")), [4]byte{5, 5, 5, 5})
	if n := eng.OnInbound(good); n != 1 {
		t.Fatalf("post-drop delivery decoded %d frames, want 1", n)
	}
}

func TestVerifyEndToEnd(t *testing.T) {
	// Chunked pipe: both directions split mid-frame, exercising
	// reassembly on each side.
	pipe := transport.NewPipe(transport.WithChunkSize(3))
	eng := newTestEngine(t,
		facade.WithMode(session.ModeVerify),
		facade.WithPingTimeout(2*time.Second),
	)
	pipe.Bind(eng.OnInbound)

	cl := client.New(func(b []byte) { pipe.Deliver(b) })
	go func() {
		for {
			chunk, ok := pipe.Receive()
			if !ok {
				return
			}
			cl.Feed(chunk)
		}
	}()

	s, err := eng.Connect(pipe.Writer())
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}

	select {
	case <-s.Done():
	case <-time.After(10 * time.Second):
		t.Fatal("verification did not finish")
	}

	if s.Outcome() != session.OutcomeSuccess {
		t.Fatalf("outcome %v, want success", s.Outcome())
	}
	if mime := pipe.StreamOptions().MIME; mime != "application/octet-stream" {
		t.Errorf("stream MIME %q", mime)
	}

	// Wait for the trailing CLOSE to drain through the pipe.
	deadline := time.Now().Add(2 * time.Second)
	for !cl.Closed() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if !cl.Closed() {
		t.Error("client never saw CLOSE")
	}
	frames := cl.Frames()
	last := frames[len(frames)-1]
	if last.Opcode != protocol.OpcodeClose || protocol.CloseCode(last.Payload) != protocol.CloseNormalClosure {
		t.Errorf("final frame %v code %d", last.Opcode, protocol.CloseCode(last.Payload))
	}
}

func TestEchoEndToEnd(t *testing.T) {
	pipe := transport.NewPipe()
	eng := newTestEngine(t,
		facade.WithMode(session.ModeEcho),
		facade.WithPollInterval(20*time.Millisecond),
	)
	pipe.Bind(eng.OnInbound)

	echoed := make(chan *protocol.Frame, 16)
	cl := client.New(
		func(b []byte) { pipe.Deliver(b) },
		client.OnFrame(func(f *protocol.Frame) {
			if f.Opcode == protocol.OpcodeText {
				echoed <- f
			}
		}),
	)
	go func() {
		for {
			chunk, ok := pipe.Receive()
			if !ok {
				return
			}
			cl.Feed(chunk)
		}
	}()

	s, err := eng.Connect(pipe.Writer())
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}

	if err := cl.SendText("hello"); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	select {
	case f := <-echoed:
		if string(f.Payload) != "hello" {
			t.Fatalf("echo payload %q, want hello", f.Payload)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no echo received")
	}

	if err := cl.SendClose(protocol.CloseNormalClosure); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	select {
	case <-s.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("session did not terminate on CLOSE")
	}

	if got := s.Stats()["frames_echoed"]; got != 1 {
		t.Errorf("frames_echoed %d, want 1", got)
	}
}

func TestConnectSerializesSessions(t *testing.T) {
	pipe := transport.NewPipe()
	eng := newTestEngine(t, facade.WithPollInterval(10*time.Millisecond))
	pipe.Bind(eng.OnInbound)

	go func() {
		for {
			if _, ok := pipe.Receive(); !ok {
				return
			}
		}
	}()

	s, err := eng.Connect(pipe.Writer())
	if err != nil {
		t.Fatalf("first connect failed: %v", err)
	}
	if _, err := eng.Connect(transport.NewPipe().Writer()); err != api.ErrSessionActive {
		t.Fatalf("second connect: got %v, want ErrSessionActive", err)
	}

	s.Stop()
	eng.Shutdown()
	<-s.Done()

	if _, err := eng.Connect(transport.NewPipe().Writer()); err != api.ErrEngineClosed {
		t.Fatalf("connect after shutdown: got %v, want ErrEngineClosed", err)
	}
}

func TestControlSnapshot(t *testing.T) {
	eng := newTestEngine(t, facade.WithMode(session.ModeVerify))

	cfg := eng.Control().GetConfig()
	if cfg["mode"] != "verify" {
		t.Errorf("control mode %v", cfg["mode"])
	}

	stats := eng.Control().Stats()
	if _, ok := stats["debug.queue.pending"]; !ok {
		t.Error("queue.pending probe missing")
	}
}
