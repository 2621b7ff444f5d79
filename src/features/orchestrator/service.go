// Package orchestrator runs the kiosk control loop: import removable media,
// position the player, wait for the button or end of playback, repeat.
package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"pressplay/src/features/button"
	"pressplay/src/features/history"
	"pressplay/src/features/importing"
	"pressplay/src/features/metrics"
	"pressplay/src/features/player"
	"pressplay/src/media"
)

// cycleBackoff is how long the loop sleeps after a failed cycle before
// retrying. The external supervisor is the backstop, not the first line of
// recovery.
const cycleBackoff = 3 * time.Second

// emptyStoreRecheck bounds the empty-store wait so the importer gets another
// look at attached devices even when no filesystem event arrives.
const emptyStoreRecheck = 2 * time.Second

// Store is the media directory surface the loop consumes.
type Store interface {
	WaitForMedia(ctx context.Context) error
	Newest() (media.File, error)
	Count() (int, error)
}

// Importer runs one removable media import cycle.
type Importer interface {
	ImportNewMedia(ctx context.Context) (importing.Decision, error)
}

// Player is the session controller surface the loop drives.
type Player interface {
	EnsureIdleOn(ctx context.Context, file string) (fresh bool, err error)
	SwapTo(ctx context.Context, file string) error
	RepositionToFirstFrame() error
	ResumeFromFirstFrame() error
	WaitForEndOrSignal(ctx context.Context, in button.Input) (player.Outcome, error)
	State() player.State
	Current() string
	Shutdown() error
}

// Recorder receives ledger entries; nil-able pieces are guarded by Service.
type Recorder interface {
	ImportCompleted(ctx context.Context, filesCopied int)
	PlaybackEnded(ctx context.Context, file string, startedAt time.Time, reason string)
}

// Notifier pushes operator notifications for noteworthy events.
type Notifier interface {
	ImportCompleted(filesCopied int, newest string)
	PlayerCrashed(file string)
}

// Service binds store, importer, player, and button into the control loop.
// All process-wide mutable state lives here as explicit fields.
type Service struct {
	store    Store
	importer Importer
	player   Player
	button   button.Input
	history  Recorder
	notifier Notifier

	// playbackEnded marks that the previous cycle finished a playback, so
	// a reused session needs repositioning to the idle frame.
	playbackEnded bool
	// playStart is when the current playback began, for the ledger.
	playStart time.Time
}

// NewService creates a new orchestrator. history and notifier may be nil.
func NewService(store Store, importer Importer, pl Player, in button.Input, hist Recorder, notifier Notifier) *Service {
	return &Service{
		store:    store,
		importer: importer,
		player:   pl,
		button:   in,
		history:  hist,
		notifier: notifier,
	}
}

// Run drives the loop until the context is cancelled. Cycle errors are
// logged and retried after a short backoff; only cancellation exits.
func (s *Service) Run(ctx context.Context) error {
	defer func() {
		// a playback cut short by termination still gets its ledger row
		if s.history != nil && s.player.State() == player.StatePlaying {
			s.history.PlaybackEnded(context.Background(), s.player.Current(), s.playStart, history.ReasonShutdown)
		}
		if err := s.player.Shutdown(); err != nil {
			slog.Warn("Player shutdown on loop exit reported error", "error", err)
		}
	}()

	slog.Info("Orchestration loop starting")
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		metrics.CyclesTotal.Inc()
		if err := s.cycle(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			metrics.CycleErrorsTotal.Inc()
			slog.Error("Cycle failed, backing off and retrying", "error", err, "backoff", cycleBackoff)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(cycleBackoff):
			}
		}
	}
}

// cycle runs one pass: import, position the player, wait for press while
// idle, then wait for end of playback or a button wakeup. The import step
// runs first: with an empty store, removable media is the only way anything
// can ever arrive, so the importer must get its look before the wait.
func (s *Service) cycle(ctx context.Context) error {
	decision, err := s.importer.ImportNewMedia(ctx)
	if err != nil {
		return err
	}
	metrics.ImportRunsTotal.Inc()
	if count, err := s.store.Count(); err == nil {
		metrics.StoreFiles.Set(float64(count))
	}

	newest, err := s.store.Newest()
	if errors.Is(err, media.ErrNoMedia) {
		return s.waitForFirstMedia(ctx)
	}
	if err != nil {
		return err
	}

	if decision.Copied {
		metrics.FilesCopiedTotal.Add(float64(len(decision.Copies)))
		if s.history != nil {
			s.history.ImportCompleted(ctx, len(decision.Copies))
		}
		if s.notifier != nil {
			s.notifier.ImportCompleted(len(decision.Copies), newest.Name())
		}
		// the swap may cut a running playback short; close its ledger row
		if s.history != nil && s.player.State() == player.StatePlaying {
			s.history.PlaybackEnded(ctx, s.player.Current(), s.playStart, history.ReasonSwap)
		}
		// hot-swap: new media plays immediately, no idle step
		if err := s.player.SwapTo(ctx, newest.Path); err != nil {
			return err
		}
		s.playStart = time.Now()
	} else {
		fresh, err := s.player.EnsureIdleOn(ctx, newest.Path)
		if err != nil {
			return err
		}
		if !fresh && s.playbackEnded {
			if err := s.player.RepositionToFirstFrame(); err != nil {
				return err
			}
		}
	}
	s.playbackEnded = false

	if s.player.State() == player.StatePausedFirstFrame {
		slog.Info("Idle on first frame, waiting for button", "file", newest.Name())
		if _, err := button.Wait(ctx, s.button); err != nil {
			return err
		}
		metrics.ButtonPressesTotal.Inc()
		slog.Info("Button pressed, starting playback", "file", newest.Name())
		if err := s.player.ResumeFromFirstFrame(); err != nil {
			return err
		}
		s.playStart = time.Now()
	}

	outcome, err := s.player.WaitForEndOrSignal(ctx, s.button)
	if err != nil {
		return err
	}
	switch outcome {
	case player.OutcomeEnded:
		s.playbackEnded = true
		if s.history != nil {
			s.history.PlaybackEnded(ctx, newest.Path, s.playStart, history.ReasonEOF)
		}
	case player.OutcomeCrashed:
		s.playbackEnded = true
		if s.history != nil {
			s.history.PlaybackEnded(ctx, newest.Path, s.playStart, history.ReasonCrash)
		}
		if s.notifier != nil {
			s.notifier.PlayerCrashed(newest.Name())
		}
	case player.OutcomeButton:
		// a press while already playing is just a wakeup, no action
		slog.Debug("Button press during playback, ignoring")
	}
	return nil
}

// waitForFirstMedia blocks on the empty store for at most emptyStoreRecheck,
// then returns so the next cycle re-runs the importer. An elapsed window is
// not an error; only cancellation is.
func (s *Service) waitForFirstMedia(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, emptyStoreRecheck)
	defer cancel()
	if err := s.store.WaitForMedia(waitCtx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}
	return nil
}
