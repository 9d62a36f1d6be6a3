// File: facade/config.go
// Package facade
// License: Apache-2.0
//
// Engine configuration, immutable per run, optionally loaded from a YAML
// file by host glue.

package facade

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"streamsock/session"
)

// Config holds parameters immutable per engine instance.
type Config struct {
	Mode         session.Mode  // session loop behavior (echo or verify)
	PingCount    int           // rounds in the scripted verification
	PingTimeout  time.Duration // per-round PONG wait in verification mode
	PollInterval time.Duration // queue poll granularity in echo mode
	StreamMIME   string        // content type announced on stream start
	PinCPU       int           // CPU to pin session threads to; -1 disables
	EnableDebug  bool          // per-frame logging on the inbound path
}

// DefaultConfig returns the defaults matching the reference exchange:
// three verification rounds with a 3-second window, and a 100ms echo tick.
func DefaultConfig() *Config {
	return &Config{
		Mode:         session.ModeEcho,
		PingCount:    3,
		PingTimeout:  3 * time.Second,
		PollInterval: 100 * time.Millisecond,
		StreamMIME:   "application/octet-stream",
		PinCPU:       -1,
		EnableDebug:  false,
	}
}

// fileConfig is the YAML form of Config; durations are strings parsed with
// time.ParseDuration.
type fileConfig struct {
	Mode         string `yaml:"mode"`
	PingCount    *int   `yaml:"ping_count"`
	PingTimeout  string `yaml:"ping_timeout"`
	PollInterval string `yaml:"poll_interval"`
	StreamMIME   string `yaml:"stream_mime"`
	PinCPU       *int   `yaml:"pin_cpu"`
	Debug        *bool  `yaml:"debug"`
}

// LoadConfig reads a YAML config file, applying defaults for absent keys.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML config bytes over DefaultConfig.
func ParseConfig(data []byte) (*Config, error) {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("config: failed to parse YAML: %w", err)
	}

	cfg := DefaultConfig()
	switch fc.Mode {
	case "":
	case "echo":
		cfg.Mode = session.ModeEcho
	case "verify":
		cfg.Mode = session.ModeVerify
	default:
		return nil, fmt.Errorf("config: unknown mode %q", fc.Mode)
	}
	if fc.PingCount != nil {
		cfg.PingCount = *fc.PingCount
	}
	if fc.PingTimeout != "" {
		d, err := time.ParseDuration(fc.PingTimeout)
		if err != nil {
			return nil, fmt.Errorf("config: ping_timeout: %w", err)
		}
		cfg.PingTimeout = d
	}
	if fc.PollInterval != "" {
		d, err := time.ParseDuration(fc.PollInterval)
		if err != nil {
			return nil, fmt.Errorf("config: poll_interval: %w", err)
		}
		cfg.PollInterval = d
	}
	if fc.StreamMIME != "" {
		cfg.StreamMIME = fc.StreamMIME
	}
	if fc.PinCPU != nil {
		cfg.PinCPU = *fc.PinCPU
	}
	if fc.Debug != nil {
		cfg.EnableDebug = *fc.Debug
	}
	return cfg, nil
}
