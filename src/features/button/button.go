// Package button exposes the hardware button as a single event primitive.
// The production backend lives in infra/gpio; tests use programmable fakes.
package button

import (
	"context"
)

// Input is one debounced digital input line. Presses returns a channel with a
// single-slot buffer: multiple presses while the consumer is busy collapse
// into one pending wakeup, and a press that loses a race stays latched for
// the next wait instead of being dropped.
type Input interface {
	Presses() <-chan struct{}
	Close() error
}

// Wait blocks until the button fires or the context is cancelled. Returns
// true on a press, false on cancellation.
func Wait(ctx context.Context, in Input) (bool, error) {
	select {
	case <-in.Presses():
		return true, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}
