// Package task runs a blocking operation on its own goroutine and
// exposes a non-blocking readiness poll so the caller can keep
// emitting progress ticks. Tasks are never cancelled: once launched
// they run to completion or process exit, and there is no timeout.
package task

import (
	"fmt"
	"time"
)

// PollInterval is how long callers sleep between readiness polls.
const PollInterval = 50 * time.Millisecond

// FailureError reports that the background goroutine itself failed
// (panicked) rather than the operation returning an ordinary error.
type FailureError struct {
	Reason any
}

func (e *FailureError) Error() string {
	return fmt.Sprintf("background task failed: %v", e.Reason)
}

// Handle is a one-shot promise for a background operation's result.
type Handle[T any] struct {
	done   chan struct{}
	result T
	err    error
}

// Run launches fn on a new goroutine and returns immediately.
func Run[T any](fn func() (T, error)) *Handle[T] {
	h := &Handle[T]{done: make(chan struct{})}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				h.err = &FailureError{Reason: r}
			}
			close(h.done)
		}()
		h.result, h.err = fn()
	}()
	return h
}

// Ready reports whether the operation has completed, without blocking.
func (h *Handle[T]) Ready() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the operation completes and returns its result, or
// a *FailureError if the goroutine terminated abnormally.
func (h *Handle[T]) Wait() (T, error) {
	<-h.done
	return h.result, h.err
}

// Await polls h at the given interval, calling tick before each sleep,
// until the operation completes. tick may be nil.
func Await[T any](h *Handle[T], interval time.Duration, tick func()) (T, error) {
	for !h.Ready() {
		if tick != nil {
			tick()
		}
		time.Sleep(interval)
	}
	return h.Wait()
}
