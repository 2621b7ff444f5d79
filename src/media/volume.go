package media

// Volume represents one candidate removable storage partition for a single
// import cycle. Volumes are never held across cycles.
type Volume struct {
	Device     string // block device node, e.g. /dev/sda1
	MountPoint string
	// MountedByUs is true only if this process performed the mount, in
	// which case it is also responsible for the unmount.
	MountedByUs bool
}
