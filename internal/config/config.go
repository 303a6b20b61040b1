/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"

	"sceneweaver/internal/coverage"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.
// Unknown fields are ignored on unmarshal.
type AppConfig struct {
	ConfigVersion int               `yaml:"config_version"`
	General       GeneralConfig     `yaml:"general"`
	Storage       StorageConfig     `yaml:"storage"`
	Logging       LoggingConfig     `yaml:"logging"`
	Presets       []coverage.Preset `yaml:"presets,omitempty"`
}

type GeneralConfig struct {
	DefaultPreset string `yaml:"default_preset"`
	StyleMode     string `yaml:"style_mode"` // "storyboard" | "cinematic"
}

// StorageConfig selects the shot store. The Postgres DSN is not stored on
// disk; it lives in the OS keychain.
type StorageConfig struct {
	Driver     string `yaml:"driver"` // "sqlite" | "postgres"
	SQLitePath string `yaml:"sqlite_path"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{DefaultPreset: coverage.DefaultPresetID, StyleMode: string(coverage.Storyboard)},
		Storage:       StorageConfig{Driver: DriverSQLite, SQLitePath: ""},
		Logging:       LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvConfigFile    = "SW_CONFIG"
	EnvDefaultPreset = "SW_DEFAULT_PRESET"
	EnvStyleMode     = "SW_STYLE_MODE"
	EnvStoreDriver   = "SW_STORE_DRIVER"
	EnvSQLitePath    = "SW_SQLITE_PATH"
	EnvPGDSN         = "SW_PG_DSN"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "SW_LOG_LEVEL"
	EnvLogFormat = "SW_LOG_FORMAT"
	EnvLogSource = "SW_LOG_SOURCE"
	EnvLogFile   = "SW_LOG_FILE"
)

// Service/keys for OS keyring.
const (
	keyringService = "SceneWeaver"
	keyringDSN     = "postgres_dsn"
)

// tokenStore abstracts keyring, so we can stub in tests.
var tokenStore TokenStore = osKeyring{}

type TokenStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

// osKeyring implements TokenStore using the OS keyring via github.com/zalando/go-keyring.
type osKeyring struct{}

func (osKeyring) Get(service, key string) (string, error) { return keyring.Get(service, key) }
func (osKeyring) Set(service, key, value string) error    { return keyring.Set(service, key, value) }
func (osKeyring) Delete(service, key string) error        { return keyring.Delete(service, key) }

// ConfigPath returns the per-user config file path. SW_CONFIG overrides it.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigFile)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "SceneWeaver")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "SceneWeaver")
	default: // linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = filepath.Join(xdg, "sceneweaver")
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".config", "sceneweaver")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, and merges environment overrides.
// It also returns the Postgres DSN: SW_PG_DSN when set, the keyring entry otherwise.
// A malformed file is reported; a missing one is not.
func Load() (AppConfig, string, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, "", err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return cfg, "", fmt.Errorf("parse %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	} else if !errors.Is(err, os.ErrNotExist) {
		return cfg, "", fmt.Errorf("read %s: %w", path, err)
	}
	applyEnvOverrides(&cfg)
	dsn := strings.TrimSpace(os.Getenv(EnvPGDSN))
	if dsn == "" {
		dsn, _ = tokenStore.Get(keyringService, keyringDSN)
	}
	return cfg, dsn, nil
}

// Save writes the user config YAML and persists the DSN into OS keyring (if non-empty).
func Save(cfg AppConfig, dsn string) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if dsn != "" {
		if err := tokenStore.Set(keyringService, keyringDSN, dsn); err != nil {
			return fmt.Errorf("store dsn in keyring: %w", err)
		}
	}
	return nil
}

// ForgetDSN removes the stored Postgres DSN from the keyring.
func ForgetDSN() error {
	err := tokenStore.Delete(keyringService, keyringDSN)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

// Catalog builds the coverage preset catalog with the configured custom
// presets layered over the builtin ones.
func (c AppConfig) Catalog() (*coverage.Catalog, error) {
	if len(c.Presets) == 0 {
		return coverage.Default(), nil
	}
	return coverage.NewCatalog(c.Presets...)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if s := strings.TrimSpace(src.General.DefaultPreset); s != "" {
		dst.General.DefaultPreset = s
	}
	if s := strings.TrimSpace(src.General.StyleMode); s != "" {
		dst.General.StyleMode = strings.ToLower(s)
	}
	if s := strings.TrimSpace(src.Storage.Driver); s != "" {
		dst.Storage.Driver = strings.ToLower(s)
	}
	if s := strings.TrimSpace(src.Storage.SQLitePath); s != "" {
		dst.Storage.SQLitePath = s
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
	if len(src.Presets) > 0 {
		dst.Presets = append([]coverage.Preset(nil), src.Presets...)
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvDefaultPreset)); v != "" {
		cfg.General.DefaultPreset = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvStyleMode)); v != "" {
		cfg.General.StyleMode = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvStoreDriver)); v != "" {
		cfg.Storage.Driver = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvSQLitePath)); v != "" {
		cfg.Storage.SQLitePath = v
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		lv := strings.ToLower(v)
		cfg.Logging.Source = lv == "1" || lv == "true" || lv == "on" || lv == "yes"
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	var env string
	switch key {
	case "general.default_preset":
		env = EnvDefaultPreset
	case "general.style_mode":
		env = EnvStyleMode
	case "storage.driver":
		env = EnvStoreDriver
	case "storage.sqlite_path":
		env = EnvSQLitePath
	case "storage.postgres_dsn":
		env = EnvPGDSN
	case "logging.level":
		env = EnvLogLevel
	case "logging.format":
		env = EnvLogFormat
	case "logging.source":
		env = EnvLogSource
	case "logging.file":
		env = EnvLogFile
	default:
		return "", false
	}
	if os.Getenv(env) != "" {
		return env, true
	}
	return "", false
}
