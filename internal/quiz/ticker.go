package quiz

import (
	"context"
	"time"
)

// Probe reads the elapsed time of a session without changing it. done is
// true once the session has completed or is gone.
type Probe func(ctx context.Context) (elapsed time.Duration, done bool, err error)

// RunTicker calls emit with the probed elapsed time every interval until ctx
// is cancelled, the probe reports done, or the probe fails. It blocks, so
// callers run it in its own goroutine and stop it by cancelling ctx.
func RunTicker(ctx context.Context, interval time.Duration, probe Probe, emit func(time.Duration)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			elapsed, done, err := probe(ctx)
			if err != nil {
				return err
			}
			if done {
				return nil
			}
			emit(elapsed)
		}
	}
}
