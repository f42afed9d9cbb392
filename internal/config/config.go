package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Journal types.
const (
	JournalNone   = "none"
	JournalMemory = "memory"
	JournalSQLite = "sqlite"
)

// Config represents the settings file for wallsort. Everything here is
// optional: a missing file behaves like an empty one.
type Config struct {
	LogDir     string           `toml:"log_dir"`   // empty: log to the console only
	LogLevel   string           `toml:"log_level"` // debug, info, warn or error
	Journal    JournalConfig    `toml:"journal"`
	Filesystem FilesystemConfig `toml:"filesystem"`
	Move       MoveConfig       `toml:"move"`
}

// JournalConfig represents configuration for the run journal.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type JournalConfig struct {
	Type    string `toml:"type"`               // "none" (default), "memory" or "sqlite"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// FilesystemConfig holds walk-related settings.
type FilesystemConfig struct {
	Ignore []string `toml:"ignore"`
}

// MoveConfig controls destination handling and parallelism.
type MoveConfig struct {
	CreateParents bool `toml:"create_parents"` // MkdirAll instead of a single-level Mkdir
	Workers       int  `toml:"workers"`        // 0 or 1 processes files sequentially
}

// NewConfig creates the Config written by `wallsort config init`: file
// logging and a SQLite journal under baseDir.
func NewConfig(baseDir string) *Config {
	return &Config{
		LogDir:   filepath.Join(baseDir, "log"),
		LogLevel: "info",
		Journal: JournalConfig{
			Type:    JournalSQLite,
			DataDir: filepath.Join(baseDir, "db"),
		},
		Move: MoveConfig{Workers: 1},
	}
}

// Validate checks field values and fills in defaults for omitted ones.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "":
		c.LogLevel = "info"
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level: %q", c.LogLevel)
	}

	switch c.Journal.Type {
	case "":
		c.Journal.Type = JournalNone
	case JournalNone, JournalMemory:
	case JournalSQLite:
		if c.Journal.DataDir == "" {
			return fmt.Errorf("journal.data_dir required for sqlite journal")
		}
	default:
		return fmt.Errorf("unknown journal type: %q", c.Journal.Type)
	}

	if c.Move.Workers < 0 {
		return fmt.Errorf("move.workers must not be negative, got %d", c.Move.Workers)
	}
	if c.Move.Workers == 0 {
		c.Move.Workers = 1
	}
	return nil
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// Load reads and validates the config at path. A missing file yields the
// defaults: console logging, no journal, sequential processing.
func Load(path string) (*Config, error) {
	cfg, err := ReadFromFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg, err = &Config{}, nil
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
