package concurrency

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestRunnerJoinsOnWait(t *testing.T) {
	r := NewRunner(-1)
	var done atomic.Int32

	for i := 0; i < 3; i++ {
		if err := r.Go("loop", func() {
			time.Sleep(10 * time.Millisecond)
			done.Add(1)
		}); err != nil {
			t.Fatalf("Go failed: %v", err)
		}
	}

	r.Wait()
	if done.Load() != 3 {
		t.Fatalf("joined with %d loops finished, want 3", done.Load())
	}

	if err := r.Go("late", func() {}); err == nil {
		t.Error("Go succeeded after Wait")
	}
}

func TestRunnerRecoversPanic(t *testing.T) {
	r := NewRunner(-1)
	if err := r.Go("panics", func() { panic("boom") }); err != nil {
		t.Fatalf("Go failed: %v", err)
	}
	// Wait must not hang or crash the test binary.
	r.Wait()
}
