// internal/config/config.go
//
// This package handles configuration and the .thoughtline directory structure.
// Every project viewed with thoughtline gets a .thoughtline/ folder in its root.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// Dir is the name of the directory we create in each project
	Dir = ".thoughtline"

	defaultTargetLanguage = "zh-CN"
	defaultProvider       = "deepseek"
	defaultTimeoutMS      = 30000
	defaultMaxWaitMS      = 5000
)

const defaultProjectConfigYAML = `# thoughtline project configuration
version: 1

# Reasoning translation. Set enabled: true and an api_key (or
# THOUGHTLINE_TRANSLATION_API_KEY) to translate reasoning blocks inline.
translation:
  enabled: false
  target_language: zh-CN
  provider: deepseek
  timeout_ms: 30000
  # How long the transcript waits for a translation before giving up.
  # THOUGHTLINE_TRANSLATION_MAX_WAIT_MS overrides this at runtime.
  max_wait_ms: 5000

# Local event bridge agents post transcript events to.
bridge:
  enabled: true
  host: 127.0.0.1
  port: 8765
  # /stream websocket limits.
  max_frame_bytes: 1048576
  ping_interval_ms: 30000
`

// TranslationConfig configures the reasoning translator and its provider.
type TranslationConfig struct {
	Enabled        bool    `yaml:"enabled"`
	TargetLanguage string  `yaml:"target_language"`
	Provider       string  `yaml:"provider"`
	APIKey         string  `yaml:"api_key,omitempty"`
	Model          string  `yaml:"model,omitempty"`
	BaseURL        string  `yaml:"base_url,omitempty"`
	TimeoutMS      int     `yaml:"timeout_ms,omitempty"`
	MaxWaitMS      int     `yaml:"max_wait_ms,omitempty"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps,omitempty"`
}

// BridgeConfig captures the event bridge listener preferences.
type BridgeConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Host    string `yaml:"host,omitempty"`
	Port    int    `yaml:"port,omitempty"`

	// MaxFrameBytes caps one /stream websocket frame.
	MaxFrameBytes  int64 `yaml:"max_frame_bytes,omitempty"`
	// PingIntervalMS is how often /stream clients are pinged.
	PingIntervalMS int   `yaml:"ping_interval_ms,omitempty"`
}

// ProjectConfig models .thoughtline/config.yaml.
type ProjectConfig struct {
	Version     int               `yaml:"version"`
	Translation TranslationConfig `yaml:"translation"`
	Bridge      BridgeConfig      `yaml:"bridge"`
}

// Config holds the runtime configuration for thoughtline.
type Config struct {
	// ProjectDir is the directory thoughtline was started from
	ProjectDir string

	// StateDir is ProjectDir/.thoughtline
	StateDir string

	Project ProjectConfig
}

// InitDir creates the .thoughtline directory structure in the given project
// directory and writes a default config.yaml when none exists.
//
// Structure created:
// .thoughtline/
// ├── config.yaml
// └── logs/       <- thoughtline.log (diagnostics) and journey.log (logbook)
func InitDir(projectDir string) error {
	stateDir := filepath.Join(projectDir, Dir)
	if err := os.MkdirAll(filepath.Join(stateDir, "logs"), 0o755); err != nil {
		return err
	}
	return ensureProjectConfig(filepath.Join(stateDir, "config.yaml"))
}

// NewConfig creates a new Config instance populated with project settings.
func NewConfig(projectDir string) (*Config, error) {
	cfg := &Config{
		ProjectDir: projectDir,
		StateDir:   filepath.Join(projectDir, Dir),
		Project:    defaultProjectConfig(),
	}
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.StateDir, "logs")
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.StateDir, "config.yaml")
}

// EnvFile returns the optional .env file for projectDir. It is loaded before
// the config and never overrides variables already in the environment.
func EnvFile(projectDir string) string {
	return filepath.Join(projectDir, ".env")
}

// Translation returns the translation section.
func (c *Config) Translation() TranslationConfig {
	return c.Project.Translation
}

// SetTranslationEnabled toggles translation and persists the change.
func (c *Config) SetTranslationEnabled(enabled bool) error {
	c.Project.Translation.Enabled = enabled
	return c.Save()
}

// Keys lists the dotted keys accepted by Set.
func Keys() []string {
	return []string{
		"translation.enabled",
		"translation.target_language",
		"translation.provider",
		"translation.api_key",
		"translation.model",
		"translation.base_url",
		"translation.timeout_ms",
		"translation.max_wait_ms",
		"translation.rate_limit_rps",
		"bridge.enabled",
		"bridge.host",
		"bridge.port",
		"bridge.max_frame_bytes",
		"bridge.ping_interval_ms",
	}
}

// Set assigns a dotted key (see Keys) from its string form and persists the
// result. A rejected value leaves the config unchanged.
func (c *Config) Set(key, value string) error {
	if c == nil {
		return fmt.Errorf("config: nil receiver")
	}
	value = strings.TrimSpace(value)
	prev := c.Project
	tr := &c.Project.Translation
	var err error
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "translation.enabled":
		tr.Enabled, err = strconv.ParseBool(value)
	case "translation.target_language":
		tr.TargetLanguage = value
	case "translation.provider":
		tr.Provider = value
	case "translation.api_key":
		tr.APIKey = value
	case "translation.model":
		tr.Model = value
	case "translation.base_url":
		tr.BaseURL = value
	case "translation.timeout_ms":
		tr.TimeoutMS, err = strconv.Atoi(value)
	case "translation.max_wait_ms":
		tr.MaxWaitMS, err = strconv.Atoi(value)
	case "translation.rate_limit_rps":
		tr.RateLimitRPS, err = strconv.ParseFloat(value, 64)
	case "bridge.enabled":
		var enabled bool
		if enabled, err = strconv.ParseBool(value); err == nil {
			c.Project.Bridge.Enabled = &enabled
		}
	case "bridge.host":
		c.Project.Bridge.Host = value
	case "bridge.port":
		c.Project.Bridge.Port, err = strconv.Atoi(value)
	case "bridge.max_frame_bytes":
		c.Project.Bridge.MaxFrameBytes, err = strconv.ParseInt(value, 10, 64)
	case "bridge.ping_interval_ms":
		c.Project.Bridge.PingIntervalMS, err = strconv.Atoi(value)
	default:
		return fmt.Errorf("config: unknown key %q", key)
	}
	if err != nil {
		c.Project = prev
		return fmt.Errorf("config: %s: %w", key, err)
	}
	if err := c.Save(); err != nil {
		c.Project = prev
		return err
	}
	return nil
}

// Save validates the project config and writes it back to
// .thoughtline/config.yaml. The file is owner-only since it may hold an API key.
func (c *Config) Save() error {
	if c == nil {
		return fmt.Errorf("config: nil receiver")
	}
	c.Project.applyDefaults()
	c.Project.normalize()
	if err := c.Project.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.MkdirAll(c.StateDir, 0o755); err != nil {
		return fmt.Errorf("config: ensure state dir: %w", err)
	}
	data, err := yaml.Marshal(c.Project)
	if err != nil {
		return fmt.Errorf("config: encode config: %w", err)
	}
	path := c.ProjectConfigPath()
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("config: write project config: %w", err)
	}
	// WriteFile keeps the mode of an existing file.
	_ = os.Chmod(path, 0o600)
	return nil
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	parsed := defaultProjectConfig()
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize()
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.Project = parsed
	return nil
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version: 1,
		Translation: TranslationConfig{
			TargetLanguage: defaultTargetLanguage,
			Provider:       defaultProvider,
			TimeoutMS:      defaultTimeoutMS,
			MaxWaitMS:      defaultMaxWaitMS,
		},
	}
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	tr := &pc.Translation
	if strings.TrimSpace(tr.TargetLanguage) == "" {
		tr.TargetLanguage = defaultTargetLanguage
	}
	if strings.TrimSpace(tr.Provider) == "" {
		tr.Provider = defaultProvider
	}
	if tr.TimeoutMS == 0 {
		tr.TimeoutMS = defaultTimeoutMS
	}
	if tr.MaxWaitMS == 0 {
		tr.MaxWaitMS = defaultMaxWaitMS
	}
}

func (pc *ProjectConfig) normalize() {
	tr := &pc.Translation
	tr.TargetLanguage = strings.TrimSpace(tr.TargetLanguage)
	tr.Provider = strings.ToLower(strings.TrimSpace(tr.Provider))
	tr.APIKey = strings.TrimSpace(tr.APIKey)
	tr.Model = strings.TrimSpace(tr.Model)
	tr.BaseURL = strings.TrimSpace(tr.BaseURL)
	pc.Bridge.Host = strings.TrimSpace(pc.Bridge.Host)
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	tr := pc.Translation
	if tr.TimeoutMS < 0 {
		return fmt.Errorf("translation.timeout_ms must be >= 0")
	}
	if tr.MaxWaitMS < 0 {
		return fmt.Errorf("translation.max_wait_ms must be >= 0")
	}
	if tr.RateLimitRPS < 0 {
		return fmt.Errorf("translation.rate_limit_rps must be >= 0")
	}
	if tr.BaseURL != "" && !strings.HasPrefix(tr.BaseURL, "http://") && !strings.HasPrefix(tr.BaseURL, "https://") {
		return fmt.Errorf("translation.base_url must start with http:// or https://")
	}
	if pc.Bridge.Port < 0 || pc.Bridge.Port > 65535 {
		return fmt.Errorf("bridge.port must be between 0 and 65535")
	}
	if pc.Bridge.MaxFrameBytes < 0 {
		return fmt.Errorf("bridge.max_frame_bytes must be >= 0")
	}
	if pc.Bridge.PingIntervalMS < 0 {
		return fmt.Errorf("bridge.ping_interval_ms must be >= 0")
	}
	return nil
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0o600)
}
