package player

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"pressplay/src/features/button"
	"pressplay/src/features/metrics"
)

// State is the lifecycle state of the current player session.
type State string

const (
	StateStopped          State = "stopped"
	StateStarting         State = "starting"
	StatePausedFirstFrame State = "paused_first_frame"
	StatePlaying          State = "playing"
	// StateEnded means playback reached end of file but the process is
	// still up holding the last frame and can be reused.
	StateEnded State = "ended"
)

// Outcome is the winning event of a WaitForEndOrSignal rendezvous.
type Outcome string

const (
	OutcomeEnded   Outcome = "ended"
	OutcomeButton  Outcome = "button"
	OutcomeCrashed Outcome = "crashed"
)

// Driver abstracts the external playback process and its IPC channel. The
// production implementation lives in infra/mpv.
type Driver interface {
	Start(ctx context.Context, file string) error
	Connect(timeout time.Duration) error
	SetPause(paused bool) error
	SeekToStart() error
	EOFReached() bool
	Alive() bool
	Stop() error
}

const (
	// connectTimeout is the bounded retry window for the IPC handshake.
	connectTimeout = 3 * time.Second
	// startAttempts is how many times a session is recreated from scratch
	// when the handshake fails.
	startAttempts = 3
	// endPollInterval is the cadence of the EOF/liveness check during
	// playback.
	endPollInterval = 100 * time.Millisecond
)

// Service owns the lifecycle of exactly one external playback process at a
// time. Mutating calls come from the single orchestration goroutine; the
// mutex only protects the state snapshot read by the status server.
type Service struct {
	driver Driver

	mu        sync.Mutex
	state     State
	current   string
	sessionID string
}

// NewService creates a new player session controller. Any socket left over
// from a crashed prior run is cleaned up immediately.
func NewService(driver Driver) *Service {
	s := &Service{driver: driver, state: StateStopped}
	if err := driver.Stop(); err != nil {
		slog.Warn("Initial driver cleanup failed", "error", err)
	}
	return s
}

// State returns the current session state.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Current returns the path of the currently loaded file, if any.
func (s *Service) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// SessionID returns the identifier of the current session, if any.
func (s *Service) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

func (s *Service) set(state State, current, sessionID string) {
	s.mu.Lock()
	s.state = state
	s.current = current
	s.sessionID = sessionID
	s.mu.Unlock()
}

func (s *Service) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// EnsureIdleOn guarantees a player process is running with file loaded.
// A live process already holding the file is reused and fresh is false; the
// caller decides whether it needs repositioning. Otherwise a new session is
// started paused at the first frame.
func (s *Service) EnsureIdleOn(ctx context.Context, file string) (fresh bool, err error) {
	if s.Current() == file && s.State() != StateStopped && s.driver.Alive() {
		return false, nil
	}
	return true, s.startSession(ctx, file, true)
}

// SwapTo tears down any running session and starts a fresh one playing file
// immediately, skipping the pause-at-first-frame step. Used when new media
// was just imported.
func (s *Service) SwapTo(ctx context.Context, file string) error {
	return s.startSession(ctx, file, false)
}

// startSession replaces the live session with a fresh process loading file.
// A failed IPC handshake discards the half-started process and retries from
// scratch, bounded by startAttempts.
func (s *Service) startSession(ctx context.Context, file string, pauseFirst bool) error {
	var lastErr error
	for attempt := 1; attempt <= startAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		// at most one live session: full teardown before anything new
		if err := s.Shutdown(); err != nil {
			slog.Warn("Teardown before new session reported error", "error", err)
		}

		s.set(StateStarting, file, uuid.New().String())
		if err := s.driver.Start(ctx, file); err != nil {
			lastErr = err
			slog.Error("Failed to start player process", "file", file, "attempt", attempt, "error", err)
			continue
		}
		if err := s.driver.Connect(connectTimeout); err != nil {
			lastErr = err
			slog.Error("IPC handshake failed, discarding session", "file", file, "attempt", attempt, "error", err)
			continue
		}

		if pauseFirst {
			if err := s.driver.SeekToStart(); err != nil {
				lastErr = err
				slog.Error("Failed to hold first frame", "file", file, "attempt", attempt, "error", err)
				continue
			}
			s.setState(StatePausedFirstFrame)
		} else {
			if err := s.driver.SetPause(false); err != nil {
				lastErr = err
				slog.Error("Failed to begin playback", "file", file, "attempt", attempt, "error", err)
				continue
			}
			s.setState(StatePlaying)
		}

		metrics.SessionsStartedTotal.Inc()
		slog.Info("Player session started", "file", file, "session", s.SessionID(), "paused", pauseFirst)
		return nil
	}

	s.set(StateStopped, "", "")
	if err := s.driver.Stop(); err != nil {
		slog.Warn("Teardown after failed session reported error", "error", err)
	}
	return fmt.Errorf("could not start player session for %s after %d attempts: %w", file, startAttempts, lastErr)
}

// RepositionToFirstFrame re-arms the idle display: seek to zero, step one
// frame, pause.
func (s *Service) RepositionToFirstFrame() error {
	if err := s.driver.SeekToStart(); err != nil {
		return fmt.Errorf("failed to reposition to first frame: %w", err)
	}
	s.setState(StatePausedFirstFrame)
	return nil
}

// ResumeFromFirstFrame unpauses playback from the idle frame.
func (s *Service) ResumeFromFirstFrame() error {
	if err := s.driver.SetPause(false); err != nil {
		return fmt.Errorf("failed to resume playback: %w", err)
	}
	s.setState(StatePlaying)
	return nil
}

// WaitForEndOrSignal blocks until playback ends or the button fires,
// whichever comes first. Exactly one winner is observed; a button press that
// loses the race stays latched in the input's buffer for the next wait. A
// process found dead while playback was believed live is reported as
// OutcomeCrashed and torn down, but callers treat it like an end of file.
func (s *Service) WaitForEndOrSignal(ctx context.Context, in button.Input) (Outcome, error) {
	waitCtx, cancel := context.WithCancel(ctx)
	end := make(chan Outcome, 1)
	pollDone := make(chan struct{})
	// the poller is joined before returning: a driver call still in flight
	// here would race the teardown/start the caller does next
	defer func() {
		cancel()
		<-pollDone
	}()

	go func() {
		defer close(pollDone)
		ticker := time.NewTicker(endPollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-waitCtx.Done():
				return
			case <-ticker.C:
			}
			if !s.driver.Alive() {
				end <- OutcomeCrashed
				return
			}
			if s.driver.EOFReached() {
				end <- OutcomeEnded
				return
			}
		}
	}()

	select {
	case <-waitCtx.Done():
		return "", waitCtx.Err()
	case <-in.Presses():
		slog.Debug("Button press won the wait", "session", s.SessionID())
		return OutcomeButton, nil
	case outcome := <-end:
		switch outcome {
		case OutcomeCrashed:
			slog.Error("Player process died unexpectedly", "file", s.Current(), "session", s.SessionID())
			metrics.PlayerCrashesTotal.Inc()
			if err := s.Shutdown(); err != nil {
				slog.Warn("Cleanup after player crash reported error", "error", err)
			}
		case OutcomeEnded:
			slog.Info("Playback reached end of file", "file", s.Current(), "session", s.SessionID())
			s.setState(StateEnded)
		}
		return outcome, nil
	}
}

// Shutdown tears down the live session: graceful quit, bounded wait, kill if
// needed. The IPC socket file is removed unconditionally so a future session
// never dials a stale socket. Safe to call with no session live.
func (s *Service) Shutdown() error {
	err := s.driver.Stop()
	s.set(StateStopped, "", "")
	return err
}
