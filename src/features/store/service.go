package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"pressplay/src/media"
)

// pollInterval is the fallback cadence for the empty-store wait when the
// filesystem watch is unavailable or events are missed.
const pollInterval = 2 * time.Second

// Service is the canonical local cache of playable files: a single flat
// directory with a newest-file-wins selection policy.
type Service struct {
	path string
}

// NewService creates a new store service for the given directory.
func NewService(path string) *Service {
	return &Service{path: path}
}

// Dir returns the store directory path.
func (s *Service) Dir() string {
	return s.path
}

// EnsureDir creates the store directory if it doesn't exist.
func (s *Service) EnsureDir() error {
	if err := os.MkdirAll(s.path, 0755); err != nil {
		return fmt.Errorf("failed to create media directory %s: %w", s.path, err)
	}
	return nil
}

// List returns every playable file currently in the store.
func (s *Service) List() ([]media.File, error) {
	entries, err := os.ReadDir(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read media directory %s: %w", s.path, err)
	}

	var files []media.File
	for _, entry := range entries {
		if entry.IsDir() || !media.IsVideo(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			slog.Warn("Skipping unreadable store entry", "name", entry.Name(), "error", err)
			continue
		}
		files = append(files, media.FromInfo(filepath.Join(s.path, entry.Name()), info))
	}
	return files, nil
}

// Count returns the number of playable files in the store.
func (s *Service) Count() (int, error) {
	files, err := s.List()
	if err != nil {
		return 0, err
	}
	return len(files), nil
}

// Newest returns the most recently modified playable file in the store.
// Returns media.ErrNoMedia when the store is empty.
func (s *Service) Newest() (media.File, error) {
	files, err := s.List()
	if err != nil {
		return media.File{}, err
	}
	return media.Newest(files)
}

// WaitForMedia blocks until the store contains at least one playable file or
// the context is cancelled. An empty store is a normal condition; the wait
// uses a filesystem watch with a poll fallback so media imported or uploaded
// while waiting is picked up promptly.
func (s *Service) WaitForMedia(ctx context.Context) error {
	if _, err := s.Newest(); err == nil {
		return nil
	}

	var events chan fsnotify.Event
	watcher, err := fsnotify.NewWatcher()
	if err == nil {
		if err := watcher.Add(s.path); err == nil {
			events = watcher.Events
		} else {
			slog.Warn("Cannot watch media directory, falling back to polling", "path", s.path, "error", err)
		}
		defer watcher.Close()
	} else {
		slog.Warn("Cannot create filesystem watcher, falling back to polling", "error", err)
	}

	slog.Info("Media directory is empty, waiting for media", "path", s.path)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		case event := <-events:
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
		}
		if _, err := s.Newest(); err == nil {
			slog.Info("Media available", "path", s.path)
			return nil
		}
	}
}
