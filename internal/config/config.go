// Package config owns the daemon configuration: defaults, loading,
// validation and the immutable per-batch snapshots the sync engine consumes.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/minecart-tools/regionsync/internal/region"
	"github.com/minecart-tools/regionsync/internal/utils"
)

var (
	home, _           = os.UserHomeDir()
	DefaultConfigPath = filepath.Join(home, ".regionsync", "config.json")
	DefaultLogsDir    = filepath.Join(home, ".regionsync", "logs")
	DefaultHTTPAddr   = "localhost:7335"
)

const (
	DefaultProtectedFileName = "protected-regions.json"
	DefaultCountdownSecs     = 5
	DefaultSettleSecs        = 1
	DefaultStopTimeoutSecs   = 60
	DefaultLocatorTTLSecs    = 10
	DefaultStopCommand       = "stop"
)

// ServiceConfig describes the served game-server process the daemon
// supervises.
type ServiceConfig struct {
	// Command is the executable that runs the served world. Required for
	// update batches; without it the daemon cannot bracket a restart.
	Command string   `json:"command"`
	Args    []string `json:"args,omitempty"`
	WorkDir string   `json:"workdir,omitempty"`
	// StopCommand is written to the service console for a graceful stop
	// before escalating to signals.
	StopCommand     string `json:"stop_command,omitempty"`
	StopTimeoutSecs int    `json:"stop_timeout_secs,omitempty"`
	// Autostart launches the service when the daemon boots.
	Autostart bool `json:"autostart"`
}

// LocatorConfig points at the player position API used to derive a region
// from a player's current location.
type LocatorConfig struct {
	URL          string `json:"url,omitempty"`
	Token        string `json:"token,omitempty"`
	CacheTTLSecs int    `json:"cache_ttl_secs,omitempty"`
}

type Config struct {
	Enabled           bool             `json:"enabled"`
	SourceWorldDir    string           `json:"source_world_directory"`
	DestWorldDir      string           `json:"destination_world_directory"`
	DimensionFolders  region.FolderMap `json:"dimension_region_folder"`
	ProtectedFileName string           `json:"protected_region_file_name"`
	CountdownSecs     int              `json:"countdown_secs"`
	SettleSecs        int              `json:"settle_secs"`
	Service           ServiceConfig    `json:"service"`
	Locator           LocatorConfig    `json:"locator"`
	WatchSource       bool             `json:"watch_source"`
	HTTPAddr          string           `json:"http_addr"`
	HTTPToken         string           `json:"http_token,omitempty"`
	LogsDir           string           `json:"logs_dir"`

	Path string `json:"-"`
}

// Default returns a config mirroring the stock deployment layout: source world
// in backup slot one, destination under ./server.
func Default() *Config {
	return &Config{
		Enabled:           true,
		SourceWorldDir:    "./backup/slot1/world",
		DestWorldDir:      "./server/world",
		DimensionFolders:  region.DefaultFolderMap(),
		ProtectedFileName: DefaultProtectedFileName,
		CountdownSecs:     DefaultCountdownSecs,
		SettleSecs:        DefaultSettleSecs,
		Service: ServiceConfig{
			StopCommand:     DefaultStopCommand,
			StopTimeoutSecs: DefaultStopTimeoutSecs,
			Autostart:       true,
		},
		Locator: LocatorConfig{
			CacheTTLSecs: DefaultLocatorTTLSecs,
		},
		HTTPAddr: DefaultHTTPAddr,
		LogsDir:  DefaultLogsDir,
	}
}

// Load reads the config file at path, filling defaults for absent fields.
// A missing file yields the defaults; an unreadable or unparseable file is a
// configuration error.
func Load(path string) (*Config, error) {
	cfg := Default()
	cfg.Path = path

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config read %s: %w", path, err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// applyDefaults backfills zero values that have non-zero defaults.
func (c *Config) applyDefaults() {
	if len(c.DimensionFolders) == 0 {
		c.DimensionFolders = region.DefaultFolderMap()
	}
	if c.ProtectedFileName == "" {
		c.ProtectedFileName = DefaultProtectedFileName
	}
	if c.CountdownSecs <= 0 {
		c.CountdownSecs = DefaultCountdownSecs
	}
	if c.SettleSecs < 0 {
		c.SettleSecs = DefaultSettleSecs
	}
	if c.Service.StopCommand == "" {
		c.Service.StopCommand = DefaultStopCommand
	}
	if c.Service.StopTimeoutSecs <= 0 {
		c.Service.StopTimeoutSecs = DefaultStopTimeoutSecs
	}
	if c.Locator.CacheTTLSecs <= 0 {
		c.Locator.CacheTTLSecs = DefaultLocatorTTLSecs
	}
	if c.HTTPAddr == "" {
		c.HTTPAddr = DefaultHTTPAddr
	}
	if c.LogsDir == "" {
		c.LogsDir = DefaultLogsDir
	}
}

// Save writes the config to path atomically.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("config marshal: %w", err)
	}
	return utils.WriteFileAtomic(path, data, 0o644)
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.SourceWorldDir) == "" {
		return errors.New("source_world_directory is required")
	}
	if strings.TrimSpace(c.DestWorldDir) == "" {
		return errors.New("destination_world_directory is required")
	}
	if c.SourceWorldDir == c.DestWorldDir {
		return errors.New("source and destination world directories must differ")
	}
	if strings.ContainsAny(c.ProtectedFileName, `/\`) {
		return fmt.Errorf("protected_region_file_name %q must be a bare file name", c.ProtectedFileName)
	}
	if len(c.DimensionFolders) == 0 {
		return errors.New("dimension_region_folder must map at least one dimension")
	}
	return nil
}

// Snapshot returns a deep copy. A batch captures one snapshot up front so a
// reload mid-batch is never observed by that batch.
func (c *Config) Snapshot() *Config {
	clone := *c
	clone.DimensionFolders = c.DimensionFolders.Clone()
	clone.Service.Args = append([]string(nil), c.Service.Args...)
	return &clone
}

func (c *Config) Countdown() time.Duration {
	return time.Duration(c.CountdownSecs) * time.Second
}

func (c *Config) Settle() time.Duration {
	return time.Duration(c.SettleSecs) * time.Second
}

// ProtectedFilePath is the protected-set store location under the destination
// world root.
func (c *Config) ProtectedFilePath() string {
	return filepath.Join(c.DestWorldDir, c.ProtectedFileName)
}

// AuditLogPath derives the audit log location from the application name.
func (c *Config) AuditLogPath() string {
	return filepath.Join(c.LogsDir, "regionsync.log")
}

// ServiceLogPath is where the supervised service's console output lands.
func (c *Config) ServiceLogPath() string {
	return filepath.Join(c.LogsDir, "service.log")
}

// DaemonLogPath is the daemon's own structured log file.
func (c *Config) DaemonLogPath() string {
	return filepath.Join(c.LogsDir, "daemon.log")
}

// JournalPath is the sqlite batch journal location.
func (c *Config) JournalPath() string {
	return filepath.Join(c.LogsDir, "journal.db")
}
