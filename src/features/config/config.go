package config

// Config holds the application configuration.
type Config struct {
	MediaPath string   `yaml:"mediaPath" validate:"required"`
	Import    Import   `yaml:"import"`
	Player    Player   `yaml:"player"`
	Button    Button   `yaml:"button"`
	Telegram  Telegram `yaml:"telegram"`
	Logger    Logger   `yaml:"logger"`
	Server    Server   `yaml:"server"`
	Database  Database `yaml:"database"`
}

// Import holds the configuration for removable media ingestion.
type Import struct {
	MountPoint    string   `yaml:"mount_point" validate:"required"`
	DevicePattern string   `yaml:"device_pattern" validate:"required"`
	ScanDirs      []string `yaml:"scan_dirs"`
}

// Player holds the configuration for the external playback process.
type Player struct {
	Binary    string   `yaml:"binary" validate:"required"`
	Socket    string   `yaml:"socket" validate:"required"`
	ExtraArgs []string `yaml:"extra_args"`
}

// Button holds the configuration for the hardware button input. Pin is the
// BCM line offset; the board wiring supports two mappings.
type Button struct {
	Chip       string `yaml:"chip" validate:"required"`
	Pin        int    `yaml:"pin" validate:"oneof=18 24"`
	DebounceMs int    `yaml:"debounce_ms" validate:"gte=0"`
}

// Telegram holds the configuration for operator notifications.
type Telegram struct {
	Enabled bool    `yaml:"enabled"`
	Token   string  `yaml:"token"`
	ChatIDs []int64 `yaml:"chat_ids"`
}

// Logger holds the configuration for the app logging
type Logger struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`
}

// Server holds the configuration for the Fiber status server.
type Server struct {
	Enabled     bool   `yaml:"enabled"`
	PrintRoutes bool   `yaml:"show_routes"`
	Port        uint32 `yaml:"port"`
}

// Database holds the configuration for the playback ledger database.
type Database struct {
	Path string `yaml:"path" validate:"required"`
}
