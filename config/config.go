// Package config loads scopeq.toml.
package config

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
)

// FileName is the config file looked up in the workspace root.
const FileName = "scopeq.toml"

// DefaultMaxBytes skips files over 2 MiB while indexing.
const DefaultMaxBytes = 2 * 1024 * 1024

// Config is the scopeq configuration.
type Config struct {
	// Root is the workspace root. Relative roots resolve against the
	// directory holding the config file.
	Root string `toml:"root"`
	// PackagePath is searched for packages before the XDG directories.
	PackagePath string `toml:"package-path"`
	// FontPaths are scanned for fonts.
	FontPaths []string `toml:"font-paths"`
	// SystemFonts adds the XDG font directories to FontPaths.
	SystemFonts bool `toml:"system-fonts"`
	// Exclude holds doublestar patterns of paths not to index.
	Exclude  []string `toml:"exclude"`
	MaxBytes int64    `toml:"max-bytes"`
	// Jobs is the number of indexing workers. 0 means one per CPU.
	Jobs int `toml:"jobs"`
	Log  Log `toml:"log"`
}

// Log configures logging.
type Log struct {
	// Level is one of debug, info, warn and error.
	Level string `toml:"level"`
	// JSON switches from console to JSON encoding.
	JSON bool `toml:"json"`
}

// Default returns the configuration used when no file sets a key.
func Default() Config {
	return Config{
		Root:        ".",
		SystemFonts: true,
		MaxBytes:    DefaultMaxBytes,
		Log:         Log{Level: "info"},
	}
}

// Load reads the config file at path over the defaults. When path is empty,
// scopeq.toml in dir is used if it exists.
func Load(path, dir string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = filepath.Join(dir, FileName)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			cfg.Root = dir
			return cfg, nil
		}
		return Config{}, errors.Wrap(err, "read config")
	}
	if err := Parse(data, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "load %s", path)
	}

	if !filepath.IsAbs(cfg.Root) {
		cfg.Root = filepath.Join(filepath.Dir(path), cfg.Root)
	}
	return cfg, nil
}

// Parse decodes a config document into cfg, keeping fields the document
// does not set.
func Parse(data []byte, cfg *Config) error {
	if err := toml.Unmarshal(data, cfg); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return errors.WithHint(errors.Wrapf(err, "line %d, column %d", row, col), derr.String())
		}
		return err
	}
	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.Newf("unknown log level %q", cfg.Log.Level)
	}
	if cfg.MaxBytes < 0 {
		return errors.Newf("max-bytes must not be negative, got %d", cfg.MaxBytes)
	}
	if cfg.Jobs < 0 {
		return errors.Newf("jobs must not be negative, got %d", cfg.Jobs)
	}
	return nil
}
