// File: control/doc.go
// Package control
// License: Apache-2.0
//
// Runtime configuration, metrics, and debug introspection for the frame
// engine. Provides concurrent-safe primitives:
//   - snapshot config reads and atomic updates with reload listeners
//   - a metrics registry fed by session and codec counters
//   - debug probe registration and state export
package control
