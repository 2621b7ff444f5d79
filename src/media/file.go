package media

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"time"
)

// ErrNoMedia is returned when a scan finds no playable file.
var ErrNoMedia = errors.New("no playable media found")

// Extensions is the allow-list of playable file extensions.
var Extensions = []string{".mp4", ".mov", ".mkv", ".avi", ".m4v"}

// File represents a single playable video file on disk or on removable media.
type File struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// Name returns the file's base name.
func (f File) Name() string {
	return filepath.Base(f.Path)
}

// IsVideo reports whether name carries one of the allow-listed extensions.
func IsVideo(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// FromInfo builds a File from a path and its fs.FileInfo.
func FromInfo(path string, info fs.FileInfo) File {
	return File{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}
}

// Newest returns the most recently modified file of the given set.
func Newest(files []File) (File, error) {
	if len(files) == 0 {
		return File{}, ErrNoMedia
	}
	newest := files[0]
	for _, f := range files[1:] {
		if f.ModTime.After(newest.ModTime) {
			newest = f
		}
	}
	return newest, nil
}
