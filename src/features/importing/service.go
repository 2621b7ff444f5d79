package importing

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gosimple/unidecode"

	"pressplay/src/features/config"
	"pressplay/src/features/store"
	"pressplay/src/media"
)

// Service detects, mounts, scans, and selectively copies video files from
// attached removable storage into the media store, then unmounts.
type Service struct {
	volumes VolumeManager
	store   *store.Service
	cfg     *config.Manager
}

// NewService creates a new importing service.
func NewService(volumes VolumeManager, store *store.Service, cfg *config.Manager) *Service {
	return &Service{volumes: volumes, store: store, cfg: cfg}
}

// ImportNewMedia runs one import cycle: every candidate partition is mounted,
// scanned and copied from, and unmounted again. Per-partition failures are
// logged and skipped; they never abort the cycle. No attached device is a
// normal outcome and produces an empty Decision.
func (s *Service) ImportNewMedia(ctx context.Context) (Decision, error) {
	var decision Decision

	devs, err := s.volumes.Partitions()
	if err != nil {
		return decision, fmt.Errorf("failed to enumerate removable partitions: %w", err)
	}

	for _, dev := range devs {
		if err := ctx.Err(); err != nil {
			return decision, err
		}
		if err := s.importPartition(ctx, dev, &decision); err != nil {
			slog.Error("Skipping removable partition", "device", dev, "error", err)
		}
	}

	if decision.Copied {
		slog.Info("Import cycle copied new media", "files", len(decision.Copies))
	}
	return decision, nil
}

// importPartition mounts one partition, copies anything new or changed into
// the store, and unmounts iff this process performed the mount. The unmount
// runs on every exit path, including scan and copy errors.
func (s *Service) importPartition(ctx context.Context, dev string, decision *Decision) error {
	vol, err := s.volumes.Mount(dev)
	if err != nil {
		return err
	}
	defer func() {
		if !vol.MountedByUs {
			return
		}
		if err := s.volumes.Unmount(vol); err != nil {
			slog.Error("Failed to unmount removable partition", "device", vol.Device, "error", err)
		}
	}()

	candidates, err := s.scanVolume(vol)
	if err != nil {
		return err
	}

	for _, src := range candidates {
		if err := ctx.Err(); err != nil {
			return err
		}
		dest := filepath.Join(s.store.Dir(), unidecode.Unidecode(src.Name()))
		if !needsCopy(src, dest) {
			continue
		}
		if err := copyFile(src, dest); err != nil {
			slog.Error("Failed to copy media file", "source", src.Path, "dest", dest, "error", err)
			continue
		}
		slog.Info("Imported media file", "source", src.Path, "dest", dest, "size", src.Size)
		decision.Copies = append(decision.Copies, Copy{Source: src, Dest: dest})
		decision.Copied = true
	}
	return nil
}

// scanVolume collects playable files from the volume root and the configured
// video subdirectories, one level deep.
func (s *Service) scanVolume(vol media.Volume) ([]media.File, error) {
	dirs := []string{vol.MountPoint}
	for _, sub := range s.cfg.Get().Import.ScanDirs {
		dirs = append(dirs, filepath.Join(vol.MountPoint, sub))
	}

	seen := make(map[string]bool)
	var files []media.File
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !media.IsVideo(entry.Name()) || seen[entry.Name()] {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				slog.Warn("Skipping unreadable file on removable media", "name", entry.Name(), "error", err)
				continue
			}
			seen[entry.Name()] = true
			files = append(files, media.FromInfo(filepath.Join(dir, entry.Name()), info))
		}
	}
	return files, nil
}

// needsCopy reports whether dest is absent or differs from src by size or
// modification time (seconds granularity, FAT volumes don't keep more).
func needsCopy(src media.File, dest string) bool {
	info, err := os.Stat(dest)
	if err != nil {
		return true
	}
	return info.Size() != src.Size || info.ModTime().Unix() != src.ModTime.Unix()
}

// copyFile copies src to dest and preserves the source modification time so
// re-importing an unchanged file stays a no-op.
func copyFile(src media.File, dest string) error {
	in, err := os.Open(src.Path)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dest)
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chtimes(dest, src.ModTime, src.ModTime)
}
