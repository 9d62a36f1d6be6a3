// File: client/client.go
// Package client implements the peer role of the frame protocol.
// License: Apache-2.0
//
// Client mirrors the engine codec from the other direction: every outgoing
// frame is masked with a fresh random key, and the engine's outbound
// stream is scanned through a growing receive buffer, so chunked
// deliveries that split frames are reassembled. It stands in for the
// remote peer in tests and local demos, answering PING with a matching
// PONG the way a conforming endpoint must.

package client

import (
	"crypto/rand"
	"fmt"
	"sync"

	"streamsock/protocol"
)

// Client drives the peer side of a connection.
type Client struct {
	send     func([]byte)
	onFrame  func(*protocol.Frame)
	autoPong bool

	mu     sync.Mutex
	buf    []byte
	frames []*protocol.Frame
	closed bool
}

// Option customizes client behavior.
type Option func(*Client)

// WithAutoPong controls the automatic PONG reply to engine PINGs.
// Enabled by default; disable to simulate an unresponsive peer.
func WithAutoPong(enabled bool) Option {
	return func(c *Client) {
		c.autoPong = enabled
	}
}

// OnFrame registers a callback invoked for every frame decoded from the
// engine stream, after any automatic reply.
func OnFrame(fn func(*protocol.Frame)) Option {
	return func(c *Client) {
		c.onFrame = fn
	}
}

// New constructs a client whose masked wire bytes are handed to send,
// typically the engine's inbound delivery entry point.
func New(send func([]byte), opts ...Option) *Client {
	c := &Client{send: send, autoPong: true}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SendText submits a masked TEXT frame.
func (c *Client) SendText(text string) error {
	return c.sendFrame(protocol.TextFrame([]byte(text)))
}

// SendBinary submits a masked BINARY frame.
func (c *Client) SendBinary(payload []byte) error {
	return c.sendFrame(protocol.BinaryFrame(payload))
}

// SendPong submits a masked PONG frame echoing the given payload.
func (c *Client) SendPong(payload []byte) error {
	return c.sendFrame(protocol.PongFrame(payload))
}

// SendClose submits a masked CLOSE frame with the given status code and
// marks the client closed.
func (c *Client) SendClose(code uint16) error {
	err := c.sendFrame(protocol.CloseFrame(code))
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return err
}

func (c *Client) sendFrame(f *protocol.Frame) error {
	key, err := newMaskKey()
	if err != nil {
		return err
	}
	c.send(protocol.EncodeMaskedFrame(f, key))
	return nil
}

// newMaskKey draws a fresh 4-byte masking key.
func newMaskKey() ([4]byte, error) {
	var key [4]byte
	if _, err := rand.Read(key[:]); err != nil {
		return key, fmt.Errorf("mask key: %w", err)
	}
	return key, nil
}

// Feed accepts one chunk of the engine's outbound stream, decoding every
// complete frame buffered so far. PING frames are answered automatically
// when auto-pong is on; CLOSE marks the client closed.
func (c *Client) Feed(chunk []byte) {
	c.mu.Lock()
	c.buf = append(c.buf, chunk...)

	for len(c.buf) > 0 {
		frame, consumed, err := protocol.DecodeFrame(c.buf)
		if err != nil {
			if err == protocol.ErrMalformedFrame {
				c.buf = nil
			}
			break
		}
		c.buf = c.buf[consumed:]
		c.frames = append(c.frames, frame)

		closed := false
		switch frame.Opcode {
		case protocol.OpcodePing:
			if c.autoPong {
				c.mu.Unlock()
				_ = c.SendPong(frame.Payload)
				c.mu.Lock()
			}
		case protocol.OpcodeClose:
			closed = true
		}
		if closed {
			c.closed = true
		}

		if c.onFrame != nil {
			c.mu.Unlock()
			c.onFrame(frame)
			c.mu.Lock()
		}
	}
	if len(c.buf) == 0 {
		c.buf = nil
	}
	c.mu.Unlock()
}

// Closed reports whether a CLOSE frame has been seen or sent.
func (c *Client) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Frames returns a snapshot of every frame decoded so far.
func (c *Client) Frames() []*protocol.Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*protocol.Frame(nil), c.frames...)
}
