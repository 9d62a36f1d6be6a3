//go:build linux

// File: transport/socketpair_linux.go
// Package transport
// License: Apache-2.0
//
// SocketPair is a local IPC transport over a connected UNIX socket pair,
// for hosts that deliver peer bytes as direct binary IPC rather than
// in-process calls. The engine side implements api.StreamWriter over one
// descriptor; the peer side reads and writes the other.

package transport

import (
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/unix"

	"streamsock/api"
)

// SocketPair carries frame bytes across a unix socketpair.
type SocketPair struct {
	engineFD int
	peerFD   int

	valid atomic.Bool
	once  sync.Once
}

// NewSocketPair creates a connected stream socket pair.
func NewSocketPair() (*SocketPair, error) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("socketpair create: %w", err)
	}
	sp := &SocketPair{engineFD: fds[0], peerFD: fds[1]}
	sp.valid.Store(true)
	return sp, nil
}

// Writer returns the engine-facing stream writer end.
func (sp *SocketPair) Writer() api.StreamWriter { return sp }

// Start is a no-op for the IPC transport; stream options have no wire
// representation on a local socket.
func (sp *SocketPair) Start(opts api.StreamOptions) error {
	if !sp.valid.Load() {
		return api.ErrStreamClosed
	}
	return nil
}

// Write pushes bytes to the peer, handling short writes.
func (sp *SocketPair) Write(b []byte) error {
	for len(b) > 0 {
		n, err := unix.Write(sp.engineFD, b)
		if err != nil {
			sp.valid.Store(false)
			return fmt.Errorf("socketpair write: %w", err)
		}
		b = b[n:]
	}
	return nil
}

// Valid reports whether the engine side is still usable.
func (sp *SocketPair) Valid() bool { return sp.valid.Load() }

// Finish shuts down the outbound direction, signalling EOF to the peer.
func (sp *SocketPair) Finish() error {
	sp.valid.Store(false)
	return unix.Shutdown(sp.engineFD, unix.SHUT_WR)
}

// Pump reads peer-submitted bytes from the engine side and forwards each
// delivery to fn until EOF or error. Runs on the caller's goroutine.
func (sp *SocketPair) Pump(fn func([]byte) int) error {
	buf := make([]byte, 64*1024)
	for {
		n, err := unix.Read(sp.engineFD, buf)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return fmt.Errorf("socketpair read: %w", err)
		}
		if n == 0 {
			return nil
		}
		fn(append([]byte(nil), buf[:n]...))
	}
}

// PeerWrite submits bytes from the peer role toward the engine.
func (sp *SocketPair) PeerWrite(b []byte) error {
	for len(b) > 0 {
		n, err := unix.Write(sp.peerFD, b)
		if err != nil {
			return fmt.Errorf("socketpair peer write: %w", err)
		}
		b = b[n:]
	}
	return nil
}

// PeerRead reads engine stream bytes from the peer role. Returns 0 at EOF.
func (sp *SocketPair) PeerRead(buf []byte) (int, error) {
	for {
		n, err := unix.Read(sp.peerFD, buf)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("socketpair peer read: %w", err)
		}
		return n, nil
	}
}

// Close releases both descriptors. Idempotent.
func (sp *SocketPair) Close() {
	sp.once.Do(func() {
		sp.valid.Store(false)
		_ = unix.Close(sp.engineFD)
		_ = unix.Close(sp.peerFD)
	})
}
