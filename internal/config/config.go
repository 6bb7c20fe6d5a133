package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	// AppName is the application name.
	AppName = "opkscan"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "toml"
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "OPKSCAN"
	// IndexFileName is the default index database name inside the home path.
	IndexFileName = "opkscan.db"
)

// Configuration keys.
const (
	KeyPrimaryRoot   = "primary_root"
	KeyHomePath      = "home_path"
	KeyMediaRoot     = "media_root"
	KeyPlatform      = "platform"
	KeyAnyPlatform   = "any_platform"
	KeyPackageSuffix = "package_suffix"
	KeyIndexPath     = "index_path"
	KeyLogLevel      = "log_level"
	KeySync          = "sync"
	KeyDirMode       = "dir_mode"
	KeyFileMode      = "file_mode"
)

var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// Config holds the effective settings of a scan.
type Config struct {
	// PrimaryRoot is the internal storage root whose subdirectories are scanned.
	PrimaryRoot string `mapstructure:"primary_root" toml:"primary_root"`
	// HomePath holds the sections tree; it defaults to PrimaryRoot.
	HomePath string `mapstructure:"home_path" toml:"home_path"`
	// MediaRoot is where removable media are mounted.
	MediaRoot string `mapstructure:"media_root" toml:"media_root"`
	// Platform is the current device's platform identifier.
	Platform string `mapstructure:"platform" toml:"platform"`
	// AnyPlatform installs documents of every platform.
	AnyPlatform bool `mapstructure:"any_platform" toml:"any_platform"`
	// PackageSuffix selects package files, compared case-insensitively.
	PackageSuffix string `mapstructure:"package_suffix" toml:"package_suffix"`
	// IndexPath is the install index database; empty disables the index.
	IndexPath string `mapstructure:"index_path" toml:"index_path"`
	LogLevel  string `mapstructure:"log_level" toml:"log_level"`
	// Sync flushes filesystem buffers after a scan.
	Sync bool `mapstructure:"sync" toml:"sync"`
	// DirMode and FileMode are the octal modes of sections and links.
	DirMode  string `mapstructure:"dir_mode" toml:"dir_mode"`
	FileMode string `mapstructure:"file_mode" toml:"file_mode"`
}

// DefaultConfig returns the built-in settings of a RetroFW device.
func DefaultConfig() *Config {
	return &Config{
		PrimaryRoot:   "/home/retrofw",
		MediaRoot:     "/media",
		Platform:      "gcw0",
		PackageSuffix: ".opk",
		Sync:          true,
		DirMode:       DefaultDirMode,
		FileMode:      DefaultFileMode,
	}
}

// ConfigDir returns $XDG_CONFIG_HOME/opkscan, defaulting to ~/.config/opkscan.
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, AppName), nil
}

// Validate rejects settings a scan cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.HomePath == "" {
		errs = append(errs, fmt.Errorf("%w: %s is empty", ErrInvalidConfig, KeyHomePath))
	}
	if c.Platform == "" {
		errs = append(errs, fmt.Errorf("%w: %s is empty", ErrInvalidConfig, KeyPlatform))
	}
	if !strings.HasPrefix(c.PackageSuffix, ".") || len(c.PackageSuffix) < 2 {
		errs = append(errs, fmt.Errorf("%w: %s %q must start with a dot", ErrInvalidConfig, KeyPackageSuffix, c.PackageSuffix))
	}
	if _, _, err := c.Modes(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// TOML renders the configuration in config file syntax.
func (c *Config) TOML() (string, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to encode config: %w", err)
	}
	return string(data), nil
}
