// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/bot360/bot360-tui/internal/util"
)

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config is the complete bot360-tui configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Chat    ChatConfig    `toml:"chat"`
	Preview PreviewConfig `toml:"preview"`
	Jobs    JobsConfig    `toml:"jobs"`
	UI      UIConfig      `toml:"ui"`
	History HistoryConfig `toml:"history"`
}

// ServerConfig addresses the bot360 backend.
type ServerConfig struct {
	// BaseURL of the backend, without trailing slash.
	BaseURL string `toml:"base_url"`
	// TimeoutSeconds bounds non-streaming requests. Streaming chat
	// requests are never subject to this timeout.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// ChatConfig controls the streaming chat view.
type ChatConfig struct {
	// Markdown renders assistant replies through glamour when true.
	Markdown bool `toml:"markdown"`
	// RepaintFPS caps how often streaming tokens repaint the viewport.
	RepaintFPS int `toml:"repaint_fps"`
}

// PreviewConfig controls the WhatsApp-preview typing simulation.
type PreviewConfig struct {
	// WordDelayMS is the fixed cadence between revealed words.
	WordDelayMS int `toml:"word_delay_ms"`
	// QueueSize bounds the number of words buffered ahead of the reveal.
	QueueSize int `toml:"queue_size"`
}

// JobsConfig controls polling of long-running backend jobs
// (knowledge-base indexing, test-suite runs).
type JobsConfig struct {
	// PollIntervalMS is the fixed backoff between status queries.
	PollIntervalMS int `toml:"poll_interval_ms"`
	// PollTimeoutMinutes bounds how long a watch waits for a terminal
	// status before giving up.
	PollTimeoutMinutes int `toml:"poll_timeout_minutes"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	// Theme is one of "auto", "dark", "light".
	Theme string `toml:"theme"`
}

// HistoryConfig controls local conversation persistence.
type HistoryConfig struct {
	Enabled bool `toml:"enabled"`
	// Path overrides the default ~/.bot360/history.db location.
	Path string `toml:"path"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL:        "http://localhost:8000",
			TimeoutSeconds: 30,
		},
		Chat: ChatConfig{
			Markdown:   true,
			RepaintFPS: 30,
		},
		Preview: PreviewConfig{
			WordDelayMS: 60,
			QueueSize:   256,
		},
		Jobs: JobsConfig{
			PollIntervalMS:     1500,
			PollTimeoutMinutes: 10,
		},
		UI: UIConfig{
			Theme: "auto",
		},
		History: HistoryConfig{
			Enabled: true,
		},
	}
}

// RequestTimeout returns the non-streaming request timeout as a Duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.TimeoutSeconds) * time.Second
}

// WordDelay returns the preview reveal cadence as a Duration.
func (c *Config) WordDelay() time.Duration {
	return time.Duration(c.Preview.WordDelayMS) * time.Millisecond
}

// PollInterval returns the job polling backoff as a Duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Jobs.PollIntervalMS) * time.Millisecond
}

// PollTimeout returns the job polling deadline as a Duration.
func (c *Config) PollTimeout() time.Duration {
	return time.Duration(c.Jobs.PollTimeoutMinutes) * time.Minute
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Dir returns the bot360 configuration directory, honoring
// BOT360_CONFIG_DIR for tests and unusual setups.
func Dir() (string, error) {
	if dir := os.Getenv("BOT360_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".bot360"), nil
}

// Path returns the config file location.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the configuration file, applying defaults for missing fields
// and BOT360_* environment overrides afterwards. A missing file is not an
// error: defaults (plus overrides) are returned.
func Load() (*Config, error) {
	cfg := Default()

	path, err := Path()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.ApplyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ensureSecurePermissions(path)
	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration atomically with 0600 permissions.
func (c *Config) Save() error {
	if err := c.Validate(); err != nil {
		return err
	}

	path, err := Path()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.Indent = ""
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return util.AtomicWriteFile(path, buf.Bytes(), 0600)
}

// CONFIG: The file may point at a private backend behind a VPN; keep it
// owner-only like the credentials file.
func ensureSecurePermissions(path string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	if info.Mode().Perm()&0077 != 0 {
		if err := os.Chmod(path, 0600); err != nil {
			log.Printf("config: failed to tighten permissions on %s: %v", path, err)
		}
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies BOT360_* environment variables on top of the
// loaded values. Invalid numeric values are ignored with a log line rather
// than failing startup.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("BOT360_BASE_URL"); v != "" {
		c.Server.BaseURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("BOT360_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Server.TimeoutSeconds = n
		} else {
			log.Printf("config: ignoring invalid BOT360_TIMEOUT_SECONDS=%q", v)
		}
	}
	if v := os.Getenv("BOT360_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("BOT360_WORD_DELAY_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Preview.WordDelayMS = n
		} else {
			log.Printf("config: ignoring invalid BOT360_WORD_DELAY_MS=%q", v)
		}
	}
	if v := os.Getenv("BOT360_HISTORY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.History.Enabled = b
		}
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError describes a single invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// ValidationErrors aggregates all invalid fields so the user sees every
// problem at once instead of fixing them one failed start at a time.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Error()
	}
	return strings.Join(msgs, "; ")
}

var validThemes = map[string]bool{"auto": true, "dark": true, "light": true}

// Validate checks field ranges. Called on load and before save.
func (c *Config) Validate() error {
	var errs ValidationErrors

	if c.Server.BaseURL == "" {
		errs = append(errs, ValidationError{"server.base_url", "must not be empty"})
	} else if !strings.HasPrefix(c.Server.BaseURL, "http://") && !strings.HasPrefix(c.Server.BaseURL, "https://") {
		errs = append(errs, ValidationError{"server.base_url", "must start with http:// or https://"})
	}
	if c.Server.TimeoutSeconds <= 0 {
		errs = append(errs, ValidationError{"server.timeout_seconds", "must be positive"})
	}
	if c.Chat.RepaintFPS < 1 || c.Chat.RepaintFPS > 120 {
		errs = append(errs, ValidationError{"chat.repaint_fps", "must be between 1 and 120"})
	}
	if c.Preview.WordDelayMS <= 0 {
		errs = append(errs, ValidationError{"preview.word_delay_ms", "must be positive"})
	}
	if c.Preview.QueueSize < 1 {
		errs = append(errs, ValidationError{"preview.queue_size", "must be at least 1"})
	}
	if c.Jobs.PollIntervalMS < 100 {
		errs = append(errs, ValidationError{"jobs.poll_interval_ms", "must be at least 100"})
	}
	if c.Jobs.PollTimeoutMinutes <= 0 {
		errs = append(errs, ValidationError{"jobs.poll_timeout_minutes", "must be positive"})
	}
	if !validThemes[c.UI.Theme] {
		errs = append(errs, ValidationError{"ui.theme", "must be one of auto, dark, light"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Clone returns a deep copy. The watcher hands clones to subscribers so a
// reload can never race a reader.
func (c *Config) Clone() *Config {
	dup := *c
	return &dup
}

// =============================================================================
// GLOBAL SINGLETON
// =============================================================================

var (
	globalMu  sync.RWMutex
	globalCfg *Config
	loadOnce  sync.Once
)

// Global returns the process-wide configuration, loading it on first use.
// Load failures fall back to defaults with a log line; commands that need
// strict validation call Load directly.
func Global() *Config {
	loadOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			log.Printf("config: %v (using defaults)", err)
			cfg = Default()
			cfg.ApplyEnvOverrides()
		}
		globalMu.Lock()
		globalCfg = cfg
		globalMu.Unlock()
	})
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalCfg
}

// SetGlobal replaces the process-wide configuration. The watcher calls
// this on hot reload; tests use it to inject fixtures.
func SetGlobal(cfg *Config) {
	loadOnce.Do(func() {})
	globalMu.Lock()
	globalCfg = cfg
	globalMu.Unlock()
}
