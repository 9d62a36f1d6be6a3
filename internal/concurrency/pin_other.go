//go:build !linux

// File: internal/concurrency/pin_other.go
// License: Apache-2.0
//
// No-op pinning fallback for platforms without sched_setaffinity.

package concurrency

// pinCurrentThread is a no-op on unsupported platforms.
func pinCurrentThread(cpuID int) error {
	return nil
}
