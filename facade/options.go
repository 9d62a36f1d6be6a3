// File: facade/options.go
// Package facade defines functional options for Engine construction.
// License: Apache-2.0

package facade

import (
	"time"

	"streamsock/session"
)

// Option customizes engine initialization.
type Option func(*Config)

// WithMode selects the session loop behavior.
func WithMode(m session.Mode) Option {
	return func(c *Config) {
		c.Mode = m
	}
}

// WithPingCount sets the number of scripted verification rounds.
func WithPingCount(n int) Option {
	return func(c *Config) {
		c.PingCount = n
	}
}

// WithPingTimeout sets the per-round PONG wait.
func WithPingTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.PingTimeout = d
	}
}

// WithPollInterval sets the echo-mode queue poll granularity.
func WithPollInterval(d time.Duration) Option {
	return func(c *Config) {
		c.PollInterval = d
	}
}

// WithPinnedCPU pins session threads to the given CPU core.
func WithPinnedCPU(cpu int) Option {
	return func(c *Config) {
		c.PinCPU = cpu
	}
}

// WithDebug enables per-frame logging on the inbound path.
func WithDebug(enabled bool) Option {
	return func(c *Config) {
		c.EnableDebug = enabled
	}
}
