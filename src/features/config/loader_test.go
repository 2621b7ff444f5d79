package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadParsesAndValidates(t *testing.T) {
	dir := t.TempDir()
	yaml := `
mediaPath: ` + filepath.Join(dir, "videos") + `
import:
  mount_point: ` + filepath.Join(dir, "usb") + `
  device_pattern: "/dev/sd*[0-9]"
  scan_dirs: [videos, media]
player:
  binary: mpv
  socket: /tmp/mpv-test-sock
button:
  chip: gpiochip0
  pin: 18
  debounce_ms: 50
logger:
  enabled: true
  level: info
  format: text
server:
  enabled: false
  port: 3636
database:
  path: ` + filepath.Join(dir, "ledger.db") + `
`
	path := writeConfig(t, dir, yaml)

	manager, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	cfg := manager.Get()
	if cfg.Button.Pin != 18 {
		t.Errorf("expected pin 18, got %d", cfg.Button.Pin)
	}
	if len(cfg.Import.ScanDirs) != 2 {
		t.Errorf("expected 2 scan dirs, got %v", cfg.Import.ScanDirs)
	}
	// EnsureDirectories must have created the media dir
	if _, err := os.Stat(cfg.MediaPath); err != nil {
		t.Errorf("expected media directory to exist: %v", err)
	}
}

func TestLoadRejectsInvalidPin(t *testing.T) {
	dir := t.TempDir()
	yaml := `
mediaPath: ` + filepath.Join(dir, "videos") + `
import:
  mount_point: ` + filepath.Join(dir, "usb") + `
  device_pattern: "/dev/sd*[0-9]"
player:
  binary: mpv
  socket: /tmp/mpv-test-sock
button:
  chip: gpiochip0
  pin: 7
database:
  path: ` + filepath.Join(dir, "ledger.db") + `
`
	path := writeConfig(t, dir, yaml)

	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "validation") {
		t.Errorf("expected validation error for unsupported pin, got %v", err)
	}
}

func TestLoadRejectsMissingMediaPath(t *testing.T) {
	dir := t.TempDir()
	yaml := `
import:
  mount_point: ` + filepath.Join(dir, "usb") + `
  device_pattern: "/dev/sd*[0-9]"
player:
  binary: mpv
  socket: /tmp/mpv-test-sock
button:
  chip: gpiochip0
  pin: 24
database:
  path: ` + filepath.Join(dir, "ledger.db") + `
`
	path := writeConfig(t, dir, yaml)

	if _, err := Load(path); err == nil {
		t.Error("expected validation error for missing mediaPath")
	}
}

func TestTelegramTokenEnvOverride(t *testing.T) {
	dir := t.TempDir()
	yaml := `
mediaPath: ` + filepath.Join(dir, "videos") + `
import:
  mount_point: ` + filepath.Join(dir, "usb") + `
  device_pattern: "/dev/sd*[0-9]"
player:
  binary: mpv
  socket: /tmp/mpv-test-sock
button:
  chip: gpiochip0
  pin: 24
database:
  path: ` + filepath.Join(dir, "ledger.db") + `
`
	path := writeConfig(t, dir, yaml)
	t.Setenv("TELEGRAM_TOKEN", "from-env")

	manager, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if manager.Get().Telegram.Token != "from-env" {
		t.Errorf("expected token from environment, got %q", manager.Get().Telegram.Token)
	}
}
