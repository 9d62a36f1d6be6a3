//go:build !linux

// File: transport/socketpair_other.go
// Package transport
// License: Apache-2.0
//
// Stub socket pair for platforms without unix socketpair support.

package transport

import "streamsock/api"

// SocketPair is unavailable on this platform.
type SocketPair struct{}

// NewSocketPair reports the transport as unsupported.
func NewSocketPair() (*SocketPair, error) {
	return nil, api.ErrNotSupported
}

func (sp *SocketPair) Writer() api.StreamWriter            { return sp }
func (sp *SocketPair) Start(opts api.StreamOptions) error  { return api.ErrNotSupported }
func (sp *SocketPair) Write(b []byte) error                { return api.ErrNotSupported }
func (sp *SocketPair) Valid() bool                         { return false }
func (sp *SocketPair) Finish() error                       { return api.ErrNotSupported }
func (sp *SocketPair) Pump(fn func([]byte) int) error      { return api.ErrNotSupported }
func (sp *SocketPair) PeerWrite(b []byte) error            { return api.ErrNotSupported }
func (sp *SocketPair) PeerRead(buf []byte) (int, error)    { return 0, api.ErrNotSupported }
func (sp *SocketPair) Close()                              {}
