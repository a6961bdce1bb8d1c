// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// clearEnv unsets every override so tests see only file contents.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PICOMENU_CONFIG", "PICOMENU_MODE", "PICOMENU_LISTEN", "PICOMENU_DEVICE",
		"PICOMENU_BAUD", "PICOMENU_LOG_LEVEL", "PICOMENU_LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}
	if cfg.Menu.InputBuffer != 128 || cfg.Menu.OutputBuffer != 128 {
		t.Errorf("default buffers = %d/%d, want 128/128", cfg.Menu.InputBuffer, cfg.Menu.OutputBuffer)
	}
	if cfg.Transport.Mode != "stdio" {
		t.Errorf("default mode = %q, want stdio", cfg.Transport.Mode)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{name: "defaults", modify: func(c *Config) {}},
		{name: "minimum buffers", modify: func(c *Config) { c.Menu.InputBuffer, c.Menu.OutputBuffer = 2, 2 }},
		{name: "input buffer too small", modify: func(c *Config) { c.Menu.InputBuffer = 1 }, wantErr: "menu.input_buffer"},
		{name: "output buffer too large", modify: func(c *Config) { c.Menu.OutputBuffer = MaxBufferSize + 1 }, wantErr: "menu.output_buffer"},
		{name: "multiline banner", modify: func(c *Config) { c.Menu.Banner = "a\nb" }, wantErr: "menu.banner"},
		{name: "bad mode", modify: func(c *Config) { c.Transport.Mode = "usb" }, wantErr: "transport.mode"},
		{name: "tcp without listen", modify: func(c *Config) { c.Transport.Mode, c.Transport.Listen = "tcp", "" }, wantErr: "transport.listen"},
		{name: "serial without device", modify: func(c *Config) { c.Transport.Mode, c.Transport.Device = "serial", "" }, wantErr: "transport.device"},
		{name: "negative idle timeout", modify: func(c *Config) { c.Transport.IdleTimeout = -1 }, wantErr: "transport.idle_timeout"},
		{name: "odd baud", modify: func(c *Config) { c.Transport.Baud = 12345 }, wantErr: "transport.baud"},
		{name: "bad level", modify: func(c *Config) { c.Log.Level = "verbose" }, wantErr: "log.level"},
		{name: "bad format", modify: func(c *Config) { c.Log.Format = "xml" }, wantErr: "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error on %s", tt.wantErr)
			}
			var verrs ValidateErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("Validate() error type = %T, want ValidateErrors", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want field %s", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateCollectsAll(t *testing.T) {
	cfg := Default()
	cfg.Menu.InputBuffer = 0
	cfg.Log.Format = "yaml"

	var verrs ValidateErrors
	if !errors.As(cfg.Validate(), &verrs) {
		t.Fatal("expected ValidateErrors")
	}
	if len(verrs) != 2 {
		t.Errorf("got %d errors, want 2: %v", len(verrs), verrs)
	}
}

func TestLoadFromPath_TOML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[menu]
input_buffer = 64
banner = "bench rig"

[transport]
mode = "tcp"
listen = "0.0.0.0:4000"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if cfg.Menu.InputBuffer != 64 {
		t.Errorf("InputBuffer = %d, want 64", cfg.Menu.InputBuffer)
	}
	if cfg.Menu.OutputBuffer != 128 {
		t.Errorf("OutputBuffer = %d, want default 128", cfg.Menu.OutputBuffer)
	}
	if cfg.Menu.Banner != "bench rig" {
		t.Errorf("Banner = %q", cfg.Menu.Banner)
	}
	if cfg.Transport.Mode != "tcp" || cfg.Transport.Listen != "0.0.0.0:4000" {
		t.Errorf("Transport = %+v", cfg.Transport)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want default info", cfg.Log.Level)
	}
}

func TestLoadFromPath_JSON(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"menu": {"output_buffer": 256}, "log": {"format": "json"}}`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if cfg.Menu.OutputBuffer != 256 || cfg.Log.Format != "json" {
		t.Errorf("got output_buffer=%d format=%q", cfg.Menu.OutputBuffer, cfg.Log.Format)
	}
}

func TestLoadFromPath_Errors(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{name: "unknown key", file: "a.toml", content: "[menu]\ninput_bufer = 10\n"},
		{name: "malformed", file: "b.toml", content: "[menu\n"},
		{name: "invalid value", file: "c.toml", content: "[transport]\nbaud = 7\n"},
		{name: "unknown json field", file: "d.json", content: `{"menu": {"size": 1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadFromPath(path); err == nil {
				t.Error("LoadFromPath() = nil error, want failure")
			}
		})
	}

	if _, err := LoadFromPath(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestLoad_EnvPath(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "custom.toml")
	if err := os.WriteFile(path, []byte("[menu]\ntrim_cr = true\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PICOMENU_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.Menu.TrimCR {
		t.Error("TrimCR should come from $PICOMENU_CONFIG")
	}
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Transport.Baud != 115200 {
		t.Errorf("Baud = %d, want default", cfg.Transport.Baud)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PICOMENU_MODE", "serial")
	t.Setenv("PICOMENU_DEVICE", "/dev/ttyACM0")
	t.Setenv("PICOMENU_BAUD", "9600")
	t.Setenv("PICOMENU_LOG_LEVEL", "debug")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Transport.Mode != "serial" || cfg.Transport.Device != "/dev/ttyACM0" {
		t.Errorf("Transport = %+v", cfg.Transport)
	}
	if cfg.Transport.Baud != 9600 {
		t.Errorf("Baud = %d, want 9600", cfg.Transport.Baud)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}

	t.Setenv("PICOMENU_BAUD", "fast")
	cfg.ApplyEnvOverrides()
	if cfg.Transport.Baud != 9600 {
		t.Errorf("non-numeric baud should be ignored, got %d", cfg.Transport.Baud)
	}
}

func TestSaveTOML_RoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.Menu.Banner = "hello"
	cfg.Transport.Pace = true
	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file mode = %o, want 0600", perm)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if loaded.Menu.Banner != "hello" || !loaded.Transport.Pace || !loaded.Transport.Reconnect {
		t.Errorf("round trip lost values: %+v", loaded)
	}
}

func TestConfig_GetSet(t *testing.T) {
	cfg := Default()

	tests := []struct {
		key   string
		value interface{}
		want  interface{}
	}{
		{"menu.input_buffer", "256", 256},
		{"menu.banner", "welcome", "welcome"},
		{"menu.trim_cr", "yes", true},
		{"transport.mode", "tcp", "tcp"},
		{"transport.baud", 9600, 9600},
		{"transport.reconnect", false, false},
		{"log.level", "warn", "warn"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if err := cfg.Set(tt.key, tt.value); err != nil {
				t.Fatalf("Set(%q) error = %v", tt.key, err)
			}
			got, err := cfg.Get(tt.key)
			if err != nil {
				t.Fatalf("Get(%q) error = %v", tt.key, err)
			}
			if got != tt.want {
				t.Errorf("Get(%q) = %v (%T), want %v", tt.key, got, got, tt.want)
			}
		})
	}
}

func TestConfig_GetSetErrors(t *testing.T) {
	cfg := Default()

	if _, err := cfg.Get("menu.nope"); err == nil {
		t.Error("Get unknown field should fail")
	}
	if _, err := cfg.Get("menu"); err == nil {
		t.Error("Get on a section should fail")
	}
	if _, err := cfg.Get(""); err == nil {
		t.Error("Get empty key should fail")
	}
	if err := cfg.Set("menu.input_buffer", "big"); err == nil {
		t.Error("Set non-numeric int should fail")
	}
	if err := cfg.Set("menu.trim_cr", "maybe"); err == nil {
		t.Error("Set invalid bool should fail")
	}
	if err := cfg.Set("version.major", "1"); err == nil {
		t.Error("Set through a non-struct should fail")
	}
}

func TestGetAllKeys_Resolvable(t *testing.T) {
	cfg := Default()
	for _, key := range GetAllKeys() {
		if _, err := cfg.Get(key); err != nil {
			t.Errorf("Get(%q) error = %v", key, err)
		}
	}
}
