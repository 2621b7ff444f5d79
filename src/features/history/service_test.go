package history

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeLedger struct {
	imports   []Import
	playbacks []Playback
	failWith  error
}

func (f *fakeLedger) RecordImport(ctx context.Context, imp Import) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.imports = append(f.imports, imp)
	return nil
}

func (f *fakeLedger) RecordPlayback(ctx context.Context, p Playback) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.playbacks = append(f.playbacks, p)
	return nil
}

func (f *fakeLedger) RecentPlaybacks(ctx context.Context, limit int) ([]Playback, error) {
	return f.playbacks, nil
}

func (f *fakeLedger) Stats(ctx context.Context) (Stats, error) {
	return Stats{Playbacks: len(f.playbacks), Imports: len(f.imports)}, nil
}

func TestImportCompletedFillsIDAndTime(t *testing.T) {
	ledger := &fakeLedger{}
	service := NewService(ledger)

	service.ImportCompleted(context.Background(), 3)

	if len(ledger.imports) != 1 {
		t.Fatalf("expected 1 import recorded, got %d", len(ledger.imports))
	}
	imp := ledger.imports[0]
	if imp.ID == "" {
		t.Error("expected a generated import ID")
	}
	if imp.FilesCopied != 3 {
		t.Errorf("expected 3 files copied, got %d", imp.FilesCopied)
	}
	if imp.At.IsZero() {
		t.Error("expected a recorded timestamp")
	}
}

func TestPlaybackEndedRecordsReason(t *testing.T) {
	ledger := &fakeLedger{}
	service := NewService(ledger)

	started := time.Now().Add(-10 * time.Second)
	service.PlaybackEnded(context.Background(), "/videos/a.mp4", started, ReasonEOF)

	if len(ledger.playbacks) != 1 {
		t.Fatalf("expected 1 playback recorded, got %d", len(ledger.playbacks))
	}
	p := ledger.playbacks[0]
	if p.File != "/videos/a.mp4" || p.Reason != ReasonEOF {
		t.Errorf("unexpected playback record: %+v", p)
	}
	if !p.StartedAt.Equal(started) {
		t.Errorf("expected started at %v, got %v", started, p.StartedAt)
	}
	if p.EndedAt.Before(p.StartedAt) {
		t.Error("expected ended at after started at")
	}
}

func TestLedgerFailuresAreSwallowed(t *testing.T) {
	ledger := &fakeLedger{failWith: errors.New("disk full")}
	service := NewService(ledger)

	// Must not panic or propagate; the loop keeps running without the ledger.
	service.ImportCompleted(context.Background(), 1)
	service.PlaybackEnded(context.Background(), "/videos/a.mp4", time.Now(), ReasonCrash)

	if len(ledger.imports) != 0 || len(ledger.playbacks) != 0 {
		t.Error("expected nothing recorded when the ledger fails")
	}
}
