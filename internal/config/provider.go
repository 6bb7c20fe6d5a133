package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// LoadOptions defines explicit configuration loading inputs.
type LoadOptions struct {
	// ConfigFilePath forces loading from a specific config file when set.
	ConfigFilePath string
	// ConfigDirPath overrides the config directory lookup when set.
	ConfigDirPath string
	// Overrides are applied above every other source, keyed like the file.
	Overrides map[string]any
	// Fs is the filesystem config files are read from; nil means the OS.
	Fs afero.Fs
}

// Provider loads configuration from explicit options.
type Provider interface {
	Load(ctx context.Context, opts LoadOptions) (*Config, error)
}

type viperProvider struct{}

// NewProvider creates a configuration provider.
func NewProvider() Provider {
	return &viperProvider{}
}

// Load resolves the configuration and validates it.
func (p *viperProvider) Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	fsys := opts.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}

	v := viper.New()
	v.SetFs(fsys)

	defaults := DefaultConfig()
	v.SetDefault(KeyPrimaryRoot, defaults.PrimaryRoot)
	v.SetDefault(KeyHomePath, defaults.HomePath)
	v.SetDefault(KeyMediaRoot, defaults.MediaRoot)
	v.SetDefault(KeyPlatform, defaults.Platform)
	v.SetDefault(KeyAnyPlatform, defaults.AnyPlatform)
	v.SetDefault(KeyPackageSuffix, defaults.PackageSuffix)
	v.SetDefault(KeyLogLevel, defaults.LogLevel)
	v.SetDefault(KeySync, defaults.Sync)
	v.SetDefault(KeyDirMode, defaults.DirMode)
	v.SetDefault(KeyFileMode, defaults.FileMode)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	path, err := configFile(fsys, opts)
	if err != nil {
		return nil, err
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType(ConfigFileExt)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	for key, value := range opts.Overrides {
		v.Set(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.HomePath == "" {
		cfg.HomePath = cfg.PrimaryRoot
	}
	// index_path has no default so that IsSet tells an explicit empty value,
	// which disables the index, from an absent one.
	if v.IsSet(KeyIndexPath) {
		cfg.IndexPath = v.GetString(KeyIndexPath)
	} else {
		cfg.IndexPath = filepath.Join(cfg.HomePath, IndexFileName)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	dir, file, _ := cfg.Modes()
	cfg.DirMode, cfg.FileMode = FormatMode(dir), FormatMode(file)
	return &cfg, nil
}

// configFile returns the file to read, or "" when only defaults apply.
func configFile(fsys afero.Fs, opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if _, err := fsys.Stat(opts.ConfigFilePath); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", fmt.Errorf("%w: %s", ErrConfigNotFound, opts.ConfigFilePath)
			}
			return "", fmt.Errorf("failed to stat config %s: %w", opts.ConfigFilePath, err)
		}
		return opts.ConfigFilePath, nil
	}

	dir := opts.ConfigDirPath
	if dir == "" {
		var err error
		if dir, err = ConfigDir(); err != nil {
			return "", err
		}
	}

	path := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	if ok, _ := afero.Exists(fsys, path); ok {
		return path, nil
	}
	return "", nil
}
