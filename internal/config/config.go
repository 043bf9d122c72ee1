package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/dshills/devboot/internal/ctxlog"
)

// Config represents the devboot configuration.
type Config struct {
	PackageManager        string        `json:"packageManager"`
	BootstrapCommand      []string      `json:"bootstrapCommand,omitempty"`
	ShimDir               string        `json:"shimDir,omitempty"`
	ProfileFile           string        `json:"profileFile,omitempty"`
	LogLevel              string        `json:"logLevel"`
	CommandTimeoutSeconds int           `json:"commandTimeoutSeconds"`
	Elevate               bool          `json:"elevate"`
	Journal               JournalConfig `json:"journal"`
}

// JournalConfig controls the change journal.
type JournalConfig struct {
	Enabled bool   `json:"enabled"`
	Dir     string `json:"dir,omitempty"`
}

// fileConfig is the on-disk shape. Booleans are pointers so an explicit
// false in the file can be told apart from an absent key.
type fileConfig struct {
	PackageManager        string   `json:"packageManager"`
	BootstrapCommand      []string `json:"bootstrapCommand"`
	ShimDir               string   `json:"shimDir"`
	ProfileFile           string   `json:"profileFile"`
	LogLevel              string   `json:"logLevel"`
	CommandTimeoutSeconds int      `json:"commandTimeoutSeconds"`
	Elevate               *bool    `json:"elevate"`
	Journal               struct {
		Enabled *bool  `json:"enabled"`
		Dir     string `json:"dir"`
	} `json:"journal"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		PackageManager: "scoop",
		LogLevel:       "info",
		Elevate:        true,
		Journal: JournalConfig{
			Enabled: true,
		},
	}
}

// CommandTimeout returns the per-command timeout, zero meaning none.
func (c Config) CommandTimeout() time.Duration {
	return time.Duration(c.CommandTimeoutSeconds) * time.Second
}

// Validate reports the first invalid value.
func (c Config) Validate() error {
	if strings.TrimSpace(c.PackageManager) == "" {
		return fmt.Errorf("packageManager must not be empty")
	}
	if _, err := ctxlog.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.CommandTimeoutSeconds < 0 {
		return fmt.Errorf("commandTimeoutSeconds must be >= 0, got %d", c.CommandTimeoutSeconds)
	}
	return nil
}

// ConfigDir returns the platform-appropriate config directory for devboot.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "devboot"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "devboot"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "devboot"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "devboot"), nil
	default:
		return filepath.Join(home, ".config", "devboot"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// DefaultProfilePath returns where devboot looks for a profile when
// profileFile is not set.
func DefaultProfilePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "devboot.hcl"), nil
}

// LoadFile returns the defaults with the config file merged on top. A missing
// file yields the defaults.
func LoadFile() (Config, error) {
	cfg := Default()
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	mergeFile(&cfg, fc)
	return cfg, nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load builds the effective config by merging: defaults <- file <- env <- overrides.
// The overrides map comes from CLI flags (only non-zero values should be set).
func Load(overrides map[string]string) (Config, error) {
	cfg, err := LoadFile()
	if err != nil {
		return Config{}, err
	}
	if err := mergeEnv(&cfg); err != nil {
		return Config{}, err
	}
	mergeOverrides(&cfg, overrides)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func mergeFile(dst *Config, src fileConfig) {
	if src.PackageManager != "" {
		dst.PackageManager = src.PackageManager
	}
	if len(src.BootstrapCommand) > 0 {
		dst.BootstrapCommand = src.BootstrapCommand
	}
	if src.ShimDir != "" {
		dst.ShimDir = src.ShimDir
	}
	if src.ProfileFile != "" {
		dst.ProfileFile = src.ProfileFile
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
	if src.CommandTimeoutSeconds > 0 {
		dst.CommandTimeoutSeconds = src.CommandTimeoutSeconds
	}
	if src.Elevate != nil {
		dst.Elevate = *src.Elevate
	}
	if src.Journal.Enabled != nil {
		dst.Journal.Enabled = *src.Journal.Enabled
	}
	if src.Journal.Dir != "" {
		dst.Journal.Dir = src.Journal.Dir
	}
}

func mergeEnv(cfg *Config) error {
	if v := os.Getenv("DEVBOOT_PACKAGE_MANAGER"); v != "" {
		cfg.PackageManager = v
	}
	if v := os.Getenv("DEVBOOT_PROFILE"); v != "" {
		cfg.ProfileFile = v
	}
	if v := os.Getenv("DEVBOOT_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("DEVBOOT_COMMAND_TIMEOUT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DEVBOOT_COMMAND_TIMEOUT must be an integer: %w", err)
		}
		cfg.CommandTimeoutSeconds = n
	}
	if v := os.Getenv("DEVBOOT_ELEVATE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("DEVBOOT_ELEVATE must be a boolean: %w", err)
		}
		cfg.Elevate = b
	}
	return nil
}

func mergeOverrides(cfg *Config, overrides map[string]string) {
	if overrides == nil {
		return
	}
	if v, ok := overrides["profileFile"]; ok && v != "" {
		cfg.ProfileFile = v
	}
	if v, ok := overrides["logLevel"]; ok && v != "" {
		cfg.LogLevel = v
	}
	if v, ok := overrides["packageManager"]; ok && v != "" {
		cfg.PackageManager = v
	}
}

// SetField sets a single config field by key name. Returns error if key is unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "packageManager":
		cfg.PackageManager = value
	case "bootstrapCommand":
		var argv []string
		if strings.HasPrefix(strings.TrimSpace(value), "[") {
			if err := json.Unmarshal([]byte(value), &argv); err != nil {
				return fmt.Errorf("bootstrapCommand must be a JSON array of strings: %w", err)
			}
		} else {
			argv = strings.Fields(value)
		}
		cfg.BootstrapCommand = argv
	case "shimDir":
		cfg.ShimDir = value
	case "profileFile":
		cfg.ProfileFile = value
	case "logLevel":
		if _, err := ctxlog.ParseLevel(value); err != nil {
			return err
		}
		cfg.LogLevel = value
	case "commandTimeoutSeconds":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("commandTimeoutSeconds must be an integer: %w", err)
		}
		cfg.CommandTimeoutSeconds = n
	case "elevate":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("elevate must be a boolean: %w", err)
		}
		cfg.Elevate = b
	case "journal.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("journal.enabled must be a boolean: %w", err)
		}
		cfg.Journal.Enabled = b
	case "journal.dir":
		cfg.Journal.Dir = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}
