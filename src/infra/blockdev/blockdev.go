// Package blockdev enumerates removable block-device partitions and performs
// read-only mounts for the importing feature. Mount and umount shell out to
// the system binaries and require the process to run with mount privileges.
package blockdev

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"pressplay/src/media"
)

const procMounts = "/proc/mounts"

// Manager implements the importing.VolumeManager interface against real
// block devices.
type Manager struct {
	pattern    string
	mountPoint string
}

// NewManager creates a volume manager that enumerates device nodes matching
// pattern (a filepath glob such as /dev/sd*[0-9], which never matches the
// boot/root mmcblk or nvme devices) and mounts them at mountPoint.
func NewManager(pattern, mountPoint string) *Manager {
	return &Manager{pattern: pattern, mountPoint: mountPoint}
}

// Partitions returns the device nodes of candidate removable partitions.
func (m *Manager) Partitions() ([]string, error) {
	devs, err := filepath.Glob(m.pattern)
	if err != nil {
		return nil, fmt.Errorf("bad device pattern %q: %w", m.pattern, err)
	}
	return devs, nil
}

// Mount makes the partition available read-only and returns the resulting
// volume. If the device is already mounted elsewhere the existing mount point
// is reused and MountedByUs is false.
func (m *Manager) Mount(dev string) (media.Volume, error) {
	if mnt := m.mountPointOf(dev); mnt != "" {
		return media.Volume{Device: dev, MountPoint: mnt, MountedByUs: false}, nil
	}

	if err := os.MkdirAll(m.mountPoint, 0755); err != nil {
		return media.Volume{}, fmt.Errorf("failed to create mount point %s: %w", m.mountPoint, err)
	}

	out, err := exec.Command("mount", "-o", "ro", dev, m.mountPoint).CombinedOutput()
	if err != nil {
		return media.Volume{}, fmt.Errorf("mount %s failed: %w: %s", dev, err, strings.TrimSpace(string(out)))
	}

	mnt := m.mountPointOf(dev)
	if mnt == "" {
		return media.Volume{}, fmt.Errorf("mount %s reported success but device is not mounted", dev)
	}
	slog.Info("Mounted removable partition", "device", dev, "mount", mnt)
	return media.Volume{Device: dev, MountPoint: mnt, MountedByUs: true}, nil
}

// Unmount detaches a volume previously mounted by this process.
func (m *Manager) Unmount(vol media.Volume) error {
	out, err := exec.Command("umount", vol.MountPoint).CombinedOutput()
	if err != nil {
		return fmt.Errorf("umount %s failed: %w: %s", vol.MountPoint, err, strings.TrimSpace(string(out)))
	}
	slog.Info("Unmounted removable partition", "device", vol.Device, "mount", vol.MountPoint)
	return nil
}

// mountPointOf returns where dev is currently mounted, or "" if it isn't.
func (m *Manager) mountPointOf(dev string) string {
	f, err := os.Open(procMounts)
	if err != nil {
		slog.Warn("Cannot read mount table", "path", procMounts, "error", err)
		return ""
	}
	defer f.Close()
	return findMount(f, dev)
}

// findMount scans an /proc/mounts-formatted table for dev and returns its
// mount point, decoding the octal escapes the kernel uses for whitespace.
func findMount(r io.Reader, dev string) string {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		if fields[0] == dev {
			return unescapeMount(fields[1])
		}
	}
	return ""
}

// unescapeMount decodes the \040-style octal escapes in a mount table entry.
func unescapeMount(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+3 < len(s) {
			var c byte
			valid := true
			for _, d := range []byte(s[i+1 : i+4]) {
				if d < '0' || d > '7' {
					valid = false
					break
				}
				c = c<<3 | (d - '0')
			}
			if valid {
				b.WriteByte(c)
				i += 3
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
