package importing

import (
	"pressplay/src/media"
)

// VolumeManager abstracts the block-device surface so the importer can be
// tested without real hardware.
type VolumeManager interface {
	// Partitions enumerates candidate removable partitions by device node.
	Partitions() ([]string, error)
	// Mount makes a partition available read-only, reusing an existing
	// mount when present.
	Mount(dev string) (media.Volume, error)
	// Unmount detaches a volume this process mounted.
	Unmount(vol media.Volume) error
}

// Copy is one scheduled copy operation from removable media into the store.
type Copy struct {
	Source media.File
	Dest   string
}

// Decision is the outcome of one import cycle. It only lives for the cycle
// that produced it.
type Decision struct {
	Copies []Copy
	// Copied is true if any new or changed file landed in the store.
	Copied bool
}
