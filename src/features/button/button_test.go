package button

import (
	"context"
	"testing"
	"time"
)

type fakeInput struct {
	presses chan struct{}
}

func newFakeInput() *fakeInput {
	return &fakeInput{presses: make(chan struct{}, 1)}
}

func (f *fakeInput) Presses() <-chan struct{} { return f.presses }
func (f *fakeInput) Close() error             { return nil }

func TestWaitConsumesLatchedPress(t *testing.T) {
	in := newFakeInput()
	in.presses <- struct{}{}

	pressed, err := Wait(context.Background(), in)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !pressed {
		t.Error("expected a press")
	}
	select {
	case <-in.presses:
		t.Error("expected press to be consumed exactly once")
	default:
	}
}

func TestWaitReturnsOnCancellation(t *testing.T) {
	in := newFakeInput()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	pressed, err := Wait(ctx, in)
	if err == nil {
		t.Error("expected a context error")
	}
	if pressed {
		t.Error("expected no press on cancellation")
	}
}
