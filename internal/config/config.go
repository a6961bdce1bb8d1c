// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for picomenu.
//
// Supports both TOML and JSON configuration formats, with defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - $PICOMENU_CONFIG
//   - ~/.picomenu/config.toml
//   - ~/.picomenu/config.json
//   - Built-in defaults
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/picomenu/internal/transport"
	"github.com/jeranaias/picomenu/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete picomenu configuration.
type Config struct {
	// Version of the configuration schema
	Version string `toml:"version" json:"version"`

	// Menu buffer and protocol settings
	Menu MenuConfig `toml:"menu" json:"menu"`

	// Transport selection and parameters
	Transport TransportConfig `toml:"transport" json:"transport"`

	// Logging configuration
	Log LogConfig `toml:"log" json:"log"`
}

// MenuConfig contains menu engine settings.
type MenuConfig struct {
	// InputBuffer is the input buffer capacity in bytes. The longest accepted
	// line is one byte shorter (the newline must fit too).
	InputBuffer int `toml:"input_buffer" json:"input_buffer"`
	// OutputBuffer is the output buffer capacity in bytes. One byte is always
	// kept free, so a single formatted write may be OutputBuffer-1 bytes.
	OutputBuffer int `toml:"output_buffer" json:"output_buffer"`
	// Banner is written once per session when non-empty
	Banner string `toml:"banner" json:"banner"`
	// TrimCR strips a trailing '\r' from each line (CRLF terminals)
	TrimCR bool `toml:"trim_cr" json:"trim_cr"`
}

// TransportConfig selects how the menu is reached.
type TransportConfig struct {
	// Mode is one of "stdio", "tcp", "serial"
	Mode string `toml:"mode" json:"mode"`
	// Listen is the TCP address for "tcp" mode
	Listen string `toml:"listen" json:"listen"`
	// Device is the character device for "serial" mode
	Device string `toml:"device" json:"device"`
	// Baud is the serial line rate
	Baud int `toml:"baud" json:"baud"`
	// Pace limits output to the serial line rate
	Pace bool `toml:"pace" json:"pace"`
	// Reconnect waits for the device to reappear after a disconnect
	Reconnect bool `toml:"reconnect" json:"reconnect"`
	// IdleTimeout ends a TCP session after this many silent seconds; 0 disables
	IdleTimeout int `toml:"idle_timeout" json:"idle_timeout"`
}

// LogConfig contains logging configuration.
type LogConfig struct {
	// Level is one of "debug", "info", "warn", "error"
	Level string `toml:"level" json:"level"`
	// Format is "console" or "json"
	Format string `toml:"format" json:"format"`
	// File receives log output; empty means stderr
	File string `toml:"file" json:"file"`
}

// Limits on buffer sizes accepted by Validate.
const (
	MinBufferSize = 2
	MaxBufferSize = 64 * 1024
)

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Version: "1",

		Menu: MenuConfig{
			InputBuffer:  128,
			OutputBuffer: 128,
			Banner:       "",
			TrimCR:       false,
		},

		Transport: TransportConfig{
			Mode:        "stdio",
			Listen:      "127.0.0.1:2323",
			Device:      "/dev/ttyUSB0",
			Baud:        115200,
			Pace:        false,
			Reconnect:   true,
			IdleTimeout: 0,
		},

		Log: LogConfig{
			Level:  "info",
			Format: "console",
			File:   "",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the picomenu configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".picomenu"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from $PICOMENU_CONFIG or the default locations,
// TOML before JSON, falling back to defaults when no file exists.
// Environment overrides are applied last.
func Load() (*Config, error) {
	if path := os.Getenv("PICOMENU_CONFIG"); path != "" {
		return LoadFromPath(path)
	}

	for _, locate := range []func() (string, error){ConfigPathTOML, ConfigPathJSON} {
		path, err := locate()
		if err != nil {
			continue
		}
		if _, statErr := os.Stat(path); statErr == nil {
			return LoadFromPath(path)
		}
	}

	cfg := Default()
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file into cfg.
func LoadTOML(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return fillDefaults(cfg)
}

// LoadJSON decodes a JSON file into cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return fillDefaults(cfg)
}

// LoadFromPath loads configuration from a specific file path with full
// validation. Files ending in .json are read as JSON, anything else as TOML.
func LoadFromPath(path string) (*Config, error) {
	cfg := &Config{}

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// fillDefaults fills in any missing values with defaults. Booleans are left
// as decoded, so a file that omits them gets false.
func fillDefaults(cfg *Config) error {
	defaults := Default()

	if cfg.Version == "" {
		cfg.Version = defaults.Version
	}

	// Menu
	if cfg.Menu.InputBuffer == 0 {
		cfg.Menu.InputBuffer = defaults.Menu.InputBuffer
	}
	if cfg.Menu.OutputBuffer == 0 {
		cfg.Menu.OutputBuffer = defaults.Menu.OutputBuffer
	}

	// Transport
	if cfg.Transport.Mode == "" {
		cfg.Transport.Mode = defaults.Transport.Mode
	}
	if cfg.Transport.Listen == "" {
		cfg.Transport.Listen = defaults.Transport.Listen
	}
	if cfg.Transport.Device == "" {
		cfg.Transport.Device = defaults.Transport.Device
	}
	if cfg.Transport.Baud == 0 {
		cfg.Transport.Baud = defaults.Transport.Baud
	}

	// Log
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = defaults.Log.Format
	}

	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration to a TOML file atomically with 0600
// permissions.
func SaveTOML(cfg *Config, path string) error {
	data, err := cfg.MarshalTOML()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	buf.WriteString("# picomenu configuration file\n")
	buf.WriteString("# Generated by picomenu - edit with care\n\n")
	buf.Write(data)

	if err := util.AtomicWriteFileWithDir(path, buf.Bytes(), 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// MarshalTOML encodes the configuration as TOML.
func (c *Config) MarshalTOML() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

var (
	validModes   = map[string]bool{"stdio": true, "tcp": true, "serial": true}
	validLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validFormats = map[string]bool{"console": true, "json": true}
)

// Validate validates the configuration and returns every problem found as
// ValidateErrors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	checkBuffer := func(field string, size int) {
		if size < MinBufferSize || size > MaxBufferSize {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("buffer size %d out of range [%d, %d]", size, MinBufferSize, MaxBufferSize),
			})
		}
	}
	checkBuffer("menu.input_buffer", c.Menu.InputBuffer)
	checkBuffer("menu.output_buffer", c.Menu.OutputBuffer)

	if strings.Contains(c.Menu.Banner, "\n") {
		errs = append(errs, ValidationError{
			Field:   "menu.banner",
			Message: "banner must be a single line",
		})
	}

	if !validModes[strings.ToLower(c.Transport.Mode)] {
		errs = append(errs, ValidationError{
			Field:   "transport.mode",
			Message: fmt.Sprintf("invalid mode '%s', must be one of: stdio, tcp, serial", c.Transport.Mode),
		})
	}

	switch strings.ToLower(c.Transport.Mode) {
	case "tcp":
		if c.Transport.Listen == "" {
			errs = append(errs, ValidationError{Field: "transport.listen", Message: "listen address is required in tcp mode"})
		}
	case "serial":
		if c.Transport.Device == "" {
			errs = append(errs, ValidationError{Field: "transport.device", Message: "device path is required in serial mode"})
		}
	}

	if c.Transport.IdleTimeout < 0 {
		errs = append(errs, ValidationError{
			Field:   "transport.idle_timeout",
			Message: "idle timeout must not be negative",
		})
	}

	if !transport.IsSupportedBaud(c.Transport.Baud) {
		errs = append(errs, ValidationError{
			Field:   "transport.baud",
			Message: fmt.Sprintf("unsupported baud rate %d", c.Transport.Baud),
		})
	}

	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level),
		})
	}
	if !validFormats[strings.ToLower(c.Log.Format)] {
		errs = append(errs, ValidationError{
			Field:   "log.format",
			Message: fmt.Sprintf("invalid format '%s', must be one of: console, json", c.Log.Format),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - PICOMENU_MODE: overrides transport.mode
//   - PICOMENU_LISTEN: overrides transport.listen
//   - PICOMENU_DEVICE: overrides transport.device
//   - PICOMENU_BAUD: overrides transport.baud (ignored if not a number)
//   - PICOMENU_LOG_LEVEL: overrides log.level
//   - PICOMENU_LOG_FORMAT: overrides log.format
func (c *Config) ApplyEnvOverrides() {
	if mode := os.Getenv("PICOMENU_MODE"); mode != "" {
		c.Transport.Mode = mode
	}
	if listen := os.Getenv("PICOMENU_LISTEN"); listen != "" {
		c.Transport.Listen = listen
	}
	if device := os.Getenv("PICOMENU_DEVICE"); device != "" {
		c.Transport.Device = device
	}
	if baud := os.Getenv("PICOMENU_BAUD"); baud != "" {
		if n, err := strconv.Atoi(baud); err == nil {
			c.Transport.Baud = n
		}
	}
	if level := os.Getenv("PICOMENU_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	if format := os.Getenv("PICOMENU_LOG_FORMAT"); format != "" {
		c.Log.Format = format
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "menu.input_buffer").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation. String values are
// converted to the field's type.
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

// lookup walks the dot-separated key to a leaf field.
func (c *Config) lookup(key string) (reflect.Value, error) {
	if key == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}

		if i == len(parts)-1 {
			if field.Kind() == reflect.Struct {
				return reflect.Value{}, fmt.Errorf("field '%s' is a section, not a value", key)
			}
			return field, nil
		}

		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}

	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}

	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Bool:
			boolVal, err := strconv.ParseBool(strVal)
			if err != nil {
				lower := strings.ToLower(strVal)
				if lower != "yes" && lower != "no" {
					return fmt.Errorf("invalid boolean value: %q", strVal)
				}
				boolVal = lower == "yes"
			}
			field.SetBool(boolVal)
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return fmt.Errorf("cannot assign nil to %s", field.Type())
	}
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) && val.Kind() != reflect.String {
		field.Set(val.Convert(field.Type()))
		return nil
	}

	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"version",
		"menu.input_buffer",
		"menu.output_buffer",
		"menu.banner",
		"menu.trim_cr",
		"transport.mode",
		"transport.listen",
		"transport.device",
		"transport.baud",
		"transport.pace",
		"transport.reconnect",
		"transport.idle_timeout",
		"log.level",
		"log.format",
		"log.file",
	}
}
