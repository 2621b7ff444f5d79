// Package gpio implements the button input against the Linux GPIO character
// device. The line is active-low with the internal pull-up enabled, so a
// physical press shows up as a falling edge.
package gpio

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// Button is an interrupt-driven hardware button on a single GPIO line.
type Button struct {
	line    *gpiocdev.Line
	presses chan struct{}
}

// NewButton requests the given line offset on chip with edge detection and
// hardware debouncing.
func NewButton(chip string, offset int, debounce time.Duration) (*Button, error) {
	b := &Button{presses: make(chan struct{}, 1)}

	line, err := gpiocdev.RequestLine(chip, offset,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithDebounce(debounce),
		gpiocdev.WithFallingEdge,
		gpiocdev.WithEventHandler(b.handleEvent),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to request GPIO line %s:%d: %w", chip, offset, err)
	}
	b.line = line

	slog.Info("Button input ready", "chip", chip, "pin", offset, "debounce", debounce)
	return b, nil
}

// handleEvent latches a press into the single-slot channel. A press arriving
// while one is already pending collapses into it.
func (b *Button) handleEvent(evt gpiocdev.LineEvent) {
	if evt.Type != gpiocdev.LineEventFallingEdge {
		return
	}
	select {
	case b.presses <- struct{}{}:
		slog.Debug("Button press latched", "offset", evt.Offset)
	default:
	}
}

// Presses returns the press event channel.
func (b *Button) Presses() <-chan struct{} {
	return b.presses
}

// Close releases the GPIO line.
func (b *Button) Close() error {
	return b.line.Close()
}
