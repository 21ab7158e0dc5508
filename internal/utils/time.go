package utils

import (
	"context"
	"time"
)

// RunOnInterval the given fn once every interval, starting at the moment the
// function is called.  It stops when ctx is cancelled.  A call of fn is
// never interrupted, and calls never overlap since they all run on the same
// goroutine.  The returned channel is closed once the last call has
// returned after cancellation.
func RunOnInterval(ctx context.Context, fn func(), interval time.Duration) <-chan struct{} {
	timer := time.NewTicker(interval)
	done := make(chan struct{})

	fn()
	go func() {
		defer close(done)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
				fn()
			}
		}
	}()

	return done
}
