package importing

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"pressplay/src/features/config"
	"pressplay/src/features/store"
	"pressplay/src/media"
)

// fakeVolumes is an in-memory VolumeManager backed by a local directory.
type fakeVolumes struct {
	devs        []string
	mountPoint  string
	mountedByUs bool
	mounts      int
	unmounts    int
}

func (f *fakeVolumes) Partitions() ([]string, error) {
	return f.devs, nil
}

func (f *fakeVolumes) Mount(dev string) (media.Volume, error) {
	f.mounts++
	return media.Volume{Device: dev, MountPoint: f.mountPoint, MountedByUs: f.mountedByUs}, nil
}

func (f *fakeVolumes) Unmount(vol media.Volume) error {
	f.unmounts++
	return nil
}

func testConfig() *config.Manager {
	return config.NewManager(&config.Config{
		Import: config.Import{ScanDirs: []string{"videos", "Videos", "media"}},
	})
}

func writeFile(t *testing.T, dir, name string, data string, mtime time.Time) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("failed to set mtime on %s: %v", name, err)
	}
}

func TestImportCopiesOnlyNewFiles(t *testing.T) {
	storeDir := t.TempDir()
	volDir := t.TempDir()
	mtime := time.Now().Add(-time.Hour).Truncate(time.Second)

	// a.mp4 already in the store, unchanged on the volume; b.mkv is new
	writeFile(t, storeDir, "a.mp4", "aaaa", mtime)
	writeFile(t, volDir, "a.mp4", "aaaa", mtime)
	writeFile(t, volDir, "b.mkv", "bbbb", mtime)

	volumes := &fakeVolumes{devs: []string{"/dev/sda1"}, mountPoint: volDir, mountedByUs: true}
	s := NewService(volumes, store.NewService(storeDir), testConfig())

	decision, err := s.ImportNewMedia(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !decision.Copied {
		t.Fatal("expected decision.Copied to be true")
	}
	if len(decision.Copies) != 1 {
		t.Fatalf("expected exactly 1 copy, got %d", len(decision.Copies))
	}
	if decision.Copies[0].Source.Name() != "b.mkv" {
		t.Errorf("expected b.mkv to be copied, got %s", decision.Copies[0].Source.Name())
	}
	if _, err := os.Stat(filepath.Join(storeDir, "b.mkv")); err != nil {
		t.Errorf("expected b.mkv in store: %v", err)
	}
}

func TestImportIsIdempotent(t *testing.T) {
	storeDir := t.TempDir()
	volDir := t.TempDir()
	writeFile(t, volDir, "a.mp4", "aaaa", time.Now().Add(-time.Hour).Truncate(time.Second))

	volumes := &fakeVolumes{devs: []string{"/dev/sda1"}, mountPoint: volDir, mountedByUs: true}
	s := NewService(volumes, store.NewService(storeDir), testConfig())

	first, err := s.ImportNewMedia(context.Background())
	if err != nil {
		t.Fatalf("first import failed: %v", err)
	}
	if !first.Copied {
		t.Fatal("expected first import to copy")
	}

	second, err := s.ImportNewMedia(context.Background())
	if err != nil {
		t.Fatalf("second import failed: %v", err)
	}
	if second.Copied {
		t.Error("expected second import against unchanged volume to copy nothing")
	}
}

func TestImportDetectsChangedFile(t *testing.T) {
	storeDir := t.TempDir()
	volDir := t.TempDir()
	old := time.Now().Add(-2 * time.Hour).Truncate(time.Second)
	newer := time.Now().Add(-time.Hour).Truncate(time.Second)
	writeFile(t, storeDir, "a.mp4", "old content", old)
	writeFile(t, volDir, "a.mp4", "new content!", newer)

	volumes := &fakeVolumes{devs: []string{"/dev/sda1"}, mountPoint: volDir, mountedByUs: true}
	s := NewService(volumes, store.NewService(storeDir), testConfig())

	decision, err := s.ImportNewMedia(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !decision.Copied {
		t.Error("expected changed file to be re-copied")
	}
}

func TestImportScansVideoSubdirectories(t *testing.T) {
	storeDir := t.TempDir()
	volDir := t.TempDir()
	if err := os.Mkdir(filepath.Join(volDir, "videos"), 0755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(volDir, "videos"), "sub.mp4", "data", time.Now().Truncate(time.Second))

	volumes := &fakeVolumes{devs: []string{"/dev/sda1"}, mountPoint: volDir, mountedByUs: true}
	s := NewService(volumes, store.NewService(storeDir), testConfig())

	decision, err := s.ImportNewMedia(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(decision.Copies) != 1 {
		t.Fatalf("expected file from videos/ subdirectory to be copied, got %d copies", len(decision.Copies))
	}
}

func TestNoVolumeAttachedIsNoOp(t *testing.T) {
	volumes := &fakeVolumes{}
	s := NewService(volumes, store.NewService(t.TempDir()), testConfig())

	decision, err := s.ImportNewMedia(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if decision.Copied {
		t.Error("expected no copies with no volume attached")
	}
}

func TestMountSymmetryOnScanError(t *testing.T) {
	storeDir := t.TempDir()
	// mount point is a file, so scanning it fails after the mount succeeds
	bogus := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(bogus, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	volumes := &fakeVolumes{devs: []string{"/dev/sda1"}, mountPoint: bogus, mountedByUs: true}
	s := NewService(volumes, store.NewService(storeDir), testConfig())

	decision, err := s.ImportNewMedia(context.Background())
	if err != nil {
		t.Fatalf("per-volume errors must not abort the cycle, got %v", err)
	}
	if decision.Copied {
		t.Error("expected nothing copied")
	}
	if volumes.mounts != 1 || volumes.unmounts != 1 {
		t.Errorf("expected 1 mount and 1 unmount, got %d/%d", volumes.mounts, volumes.unmounts)
	}
}

func TestNoUnmountWhenNotMountedByUs(t *testing.T) {
	volDir := t.TempDir()
	writeFile(t, volDir, "a.mp4", "aaaa", time.Now().Truncate(time.Second))

	volumes := &fakeVolumes{devs: []string{"/dev/sda1"}, mountPoint: volDir, mountedByUs: false}
	s := NewService(volumes, store.NewService(t.TempDir()), testConfig())

	if _, err := s.ImportNewMedia(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if volumes.unmounts != 0 {
		t.Errorf("expected no unmount for a pre-existing mount, got %d", volumes.unmounts)
	}
}
