// File: internal/concurrency/runner.go
// Package concurrency
// License: Apache-2.0
//
// Runner owns the goroutines that execute session loops. Unlike a detached
// thread, every loop is tracked and joined on shutdown, so an abrupt host
// exit never leaks a running session.

package concurrency

import (
	"log"
	"runtime"
	"sync"

	"streamsock/api"
)

// Runner launches and joins session goroutines.
type Runner struct {
	mu     sync.Mutex
	wg     sync.WaitGroup
	closed bool
	pinCPU int
}

// NewRunner constructs a Runner. pinCPU >= 0 locks each session goroutine
// to an OS thread and binds it to that CPU on platforms that support it.
func NewRunner(pinCPU int) *Runner {
	return &Runner{pinCPU: pinCPU}
}

// Go starts fn on a dedicated goroutine. Returns api.ErrEngineClosed once
// Wait has begun.
func (r *Runner) Go(name string, fn func()) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return api.ErrEngineClosed
	}
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("[runner] %s: panic recovered: %v", name, rec)
			}
		}()
		if r.pinCPU >= 0 {
			runtime.LockOSThread()
			if err := pinCurrentThread(r.pinCPU); err != nil {
				log.Printf("[runner] %s: cpu pin warning: %v", name, err)
			}
		}
		fn()
	}()
	return nil
}

// Wait refuses further Go calls and blocks until every launched goroutine
// has returned. Idempotent.
func (r *Runner) Wait() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.wg.Wait()
}
