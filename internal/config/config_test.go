package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	if cfg.View.ZoomInFactor != 1.1 || cfg.View.ZoomOutFactor != 0.9 {
		t.Errorf("default zoom factors = %v/%v", cfg.View.ZoomInFactor, cfg.View.ZoomOutFactor)
	}
	if cfg.PollInterval() != 250*time.Millisecond {
		t.Errorf("default poll interval = %v", cfg.PollInterval())
	}
	if !strings.Contains(cfg.Archive.Path, "sagaview") {
		t.Errorf("archive path %q not under a sagaview directory", cfg.Archive.Path)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.PollIntervalMs != 250 {
		t.Errorf("poll interval = %d, want default 250", cfg.Server.PollIntervalMs)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sagaview.toml")
	doc := `
[server]
url = "http://saga-host:9000/saga/acme-42"
poll_interval_ms = 100

[diagram]
path = "/tmp/order-saga.json"
watch = false

[view]
zoom_in_factor = 1.25
zoom_out_factor = 0.8

[logging]
level = "debug"
format = "json"
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.URL != "http://saga-host:9000/saga/acme-42" {
		t.Errorf("server url = %q", cfg.Server.URL)
	}
	if cfg.PollInterval() != 100*time.Millisecond {
		t.Errorf("poll interval = %v", cfg.PollInterval())
	}
	if cfg.Diagram.Watch {
		t.Error("diagram.watch not overridden")
	}
	if cfg.View.ZoomInFactor != 1.25 {
		t.Errorf("zoom in factor = %v", cfg.View.ZoomInFactor)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("logging format = %q", cfg.Logging.Format)
	}
	// Sections absent from the file keep their defaults.
	if !cfg.Archive.Enabled {
		t.Error("archive default lost")
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	cases := map[string]string{
		"bad toml":      `[server` + "\n",
		"zoom in <= 1":  "[view]\nzoom_in_factor = 0.9\n",
		"zoom out >= 1": "[view]\nzoom_out_factor = 1.5\n",
		"empty url":     "[server]\nurl = \"\"\n",
		"bad format":    "[logging]\nformat = \"xml\"\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.toml")
			if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("invalid config accepted")
			}
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Server.PollIntervalMs = 0
	if err := cfg.Validate(); err == nil {
		t.Error("zero poll interval accepted")
	}

	cfg = Default()
	cfg.Diagram.Path = ""
	if err := cfg.Validate(); err == nil {
		t.Error("empty diagram path accepted")
	}

	cfg = Default()
	cfg.Logging.Output = "file"
	cfg.Logging.FilePath = ""
	if err := cfg.Validate(); err == nil {
		t.Error("file output without path accepted")
	}
}
