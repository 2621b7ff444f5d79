// Package history keeps an operator-facing ledger of import cycles and
// playback sessions. The kiosk has no screen UI, so this ledger plus the logs
// is how an operator reconstructs what the box has been doing.
package history

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"pressplay/src/features/metrics"
)

// End reasons recorded per playback.
const (
	ReasonEOF      = "eof"
	ReasonCrash    = "crash"
	ReasonSwap     = "swap"
	ReasonShutdown = "shutdown"
)

// Playback is one completed playback session.
type Playback struct {
	ID        string
	File      string
	StartedAt time.Time
	EndedAt   time.Time
	Reason    string
}

// Import is one import run that copied something.
type Import struct {
	ID          string
	At          time.Time
	FilesCopied int
}

// Stats summarizes the ledger for the status endpoint.
type Stats struct {
	Playbacks   int
	Imports     int
	FilesCopied int
}

// Ledger is the persistence interface, implemented by infra/database.
type Ledger interface {
	RecordImport(ctx context.Context, imp Import) error
	RecordPlayback(ctx context.Context, p Playback) error
	RecentPlaybacks(ctx context.Context, limit int) ([]Playback, error)
	Stats(ctx context.Context) (Stats, error)
}

// Service wraps the ledger. Recording failures are logged and swallowed; the
// ledger is observability, never a reason to stop the loop.
type Service struct {
	ledger Ledger
}

// NewService creates a new history service.
func NewService(ledger Ledger) *Service {
	return &Service{ledger: ledger}
}

// ImportCompleted records an import run that copied filesCopied files.
func (s *Service) ImportCompleted(ctx context.Context, filesCopied int) {
	imp := Import{
		ID:          uuid.New().String(),
		At:          time.Now(),
		FilesCopied: filesCopied,
	}
	if err := s.ledger.RecordImport(ctx, imp); err != nil {
		slog.Error("Failed to record import in ledger", "error", err)
	}
}

// PlaybackEnded records one finished playback.
func (s *Service) PlaybackEnded(ctx context.Context, file string, startedAt time.Time, reason string) {
	p := Playback{
		ID:        uuid.New().String(),
		File:      file,
		StartedAt: startedAt,
		EndedAt:   time.Now(),
		Reason:    reason,
	}
	metrics.PlaybacksTotal.WithLabelValues(reason).Inc()
	if err := s.ledger.RecordPlayback(ctx, p); err != nil {
		slog.Error("Failed to record playback in ledger", "error", err)
	}
}

// RecentPlaybacks returns the latest playbacks, newest first.
func (s *Service) RecentPlaybacks(ctx context.Context, limit int) ([]Playback, error) {
	return s.ledger.RecentPlaybacks(ctx, limit)
}

// Stats returns ledger totals.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	return s.ledger.Stats(ctx)
}
