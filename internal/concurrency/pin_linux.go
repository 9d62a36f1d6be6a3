//go:build linux

// File: internal/concurrency/pin_linux.go
// License: Apache-2.0
//
// Linux CPU pinning for session threads via sched_setaffinity.

package concurrency

import "golang.org/x/sys/unix"

// pinCurrentThread binds the calling OS thread to the given CPU core.
// The caller must hold runtime.LockOSThread.
func pinCurrentThread(cpuID int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpuID)
	return unix.SchedSetaffinity(0, &set)
}
