// Package config handles configuration loading and validation for sagaview.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds the complete observer configuration.
type Config struct {
	// Server configuration for the saga host.
	Server ServerConfig `toml:"server"`

	// Diagram configuration for the rendered layout document.
	Diagram DiagramConfig `toml:"diagram"`

	// View configuration for the pan/zoom canvas.
	View ViewConfig `toml:"view"`

	// Archive configuration for the local scope store.
	Archive ArchiveConfig `toml:"archive"`

	// Logging configuration.
	Logging LoggingConfig `toml:"logging"`
}

// ServerConfig describes the saga host endpoint.
type ServerConfig struct {
	// URL is the base saga URL, e.g. "http://host:8080/saga/acme-42".
	// Its final path segment is the company id attached to published
	// commands.
	URL string `toml:"url"`

	// PollIntervalMs is the render-readiness poll period in
	// milliseconds. The poll cancels itself once the snapshot has been
	// fetched.
	PollIntervalMs int `toml:"poll_interval_ms"`
}

// DiagramConfig describes where the rendered layout comes from.
type DiagramConfig struct {
	// Path is the layout document written by the external graph
	// renderer.
	Path string `toml:"path"`

	// Watch reloads the diagram whenever the renderer rewrites the
	// layout file.
	Watch bool `toml:"watch"`
}

// ViewConfig holds canvas interaction settings.
type ViewConfig struct {
	// ZoomInFactor is the multiplicative step per wheel-up notch, > 1.
	ZoomInFactor float64 `toml:"zoom_in_factor"`

	// ZoomOutFactor is the step per wheel-down notch, between 0 and 1.
	ZoomOutFactor float64 `toml:"zoom_out_factor"`
}

// ArchiveConfig holds the local scope archive settings.
type ArchiveConfig struct {
	// Enabled turns scope archival on.
	Enabled bool `toml:"enabled"`

	// Path is the SQLite database location. Empty means the
	// platform-specific default.
	Path string `toml:"path"`
}

// LoggingConfig holds the logging settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`

	// Format is "text" or "json".
	Format string `toml:"format"`

	// Output is "stdout", "stderr", or "file".
	Output string `toml:"output"`

	// FilePath is the log file location when Output is "file".
	FilePath string `toml:"file_path"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			URL:            "http://localhost:8080/saga/default",
			PollIntervalMs: 250,
		},
		Diagram: DiagramConfig{
			Path:  "diagram.json",
			Watch: true,
		},
		View: ViewConfig{
			ZoomInFactor:  1.1,
			ZoomOutFactor: 0.9,
		},
		Archive: ArchiveConfig{
			Enabled: true,
			Path:    defaultArchivePath(),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// defaultArchivePath returns the platform-specific default archive path.
func defaultArchivePath() string {
	switch runtime.GOOS {
	case "darwin":
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, "Library", "Application Support", "sagaview", "scopes.db")
	case "windows":
		appData := os.Getenv("LOCALAPPDATA")
		if appData == "" {
			appData = os.Getenv("APPDATA")
		}
		return filepath.Join(appData, "sagaview", "scopes.db")
	default:
		stateHome := os.Getenv("XDG_STATE_HOME")
		if stateHome == "" {
			homeDir, _ := os.UserHomeDir()
			stateHome = filepath.Join(homeDir, ".local", "state")
		}
		return filepath.Join(stateHome, "sagaview", "scopes.db")
	}
}

// Load reads the TOML file at path over the defaults. A missing file is
// not an error; the defaults apply.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if c.Server.URL == "" {
		return errors.New("server.url must be set")
	}
	if c.Server.PollIntervalMs <= 0 {
		return errors.New("server.poll_interval_ms must be positive")
	}
	if c.View.ZoomInFactor <= 1 {
		return errors.New("view.zoom_in_factor must be greater than 1")
	}
	if c.View.ZoomOutFactor <= 0 || c.View.ZoomOutFactor >= 1 {
		return errors.New("view.zoom_out_factor must be between 0 and 1")
	}
	if c.Diagram.Path == "" {
		return errors.New("diagram.path must be set")
	}
	if c.Archive.Enabled && c.Archive.Path == "" {
		return errors.New("archive.path must be set when archive is enabled")
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format %q is not text or json", c.Logging.Format)
	}
	if c.Logging.Output == "file" && c.Logging.FilePath == "" {
		return errors.New("logging.file_path must be set when output is file")
	}
	return nil
}

// PollInterval returns the readiness poll period as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Server.PollIntervalMs) * time.Millisecond
}
