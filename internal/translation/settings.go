package translation

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kingrea/thoughtline/internal/config"
	"github.com/kingrea/thoughtline/internal/reasoning"
)

const (
	// DefaultTimeout bounds a single provider request.
	DefaultTimeout = 30 * time.Second
	// DefaultTargetLanguage is used when none is configured.
	DefaultTargetLanguage = "zh-CN"
)

// Settings is the resolved translation configuration: provider defaults
// merged with the project config and environment overrides.
type Settings struct {
	Enabled        bool
	Provider       ProviderID
	TargetLanguage string
	APIKey         string
	Model          string
	BaseURL        string
	Timeout        time.Duration
	MaxWait        time.Duration
	RateLimitRPS   float64
}

// SettingsFromConfig builds Settings using the project's .thoughtline config
// and environment overrides.
func SettingsFromConfig(cfg *config.Config) Settings {
	var raw config.TranslationConfig
	if cfg != nil {
		raw = cfg.Translation()
	}
	return settingsFrom(raw, os.Getenv)
}

func settingsFrom(raw config.TranslationConfig, getenv func(string) string) Settings {
	settings := Settings{
		Enabled:        raw.Enabled,
		Provider:       DefaultProvider,
		TargetLanguage: strings.TrimSpace(raw.TargetLanguage),
		APIKey:         strings.TrimSpace(raw.APIKey),
		Model:          strings.TrimSpace(raw.Model),
		BaseURL:        strings.TrimSpace(raw.BaseURL),
		Timeout:        time.Duration(raw.TimeoutMS) * time.Millisecond,
		MaxWait:        time.Duration(raw.MaxWaitMS) * time.Millisecond,
		RateLimitRPS:   raw.RateLimitRPS,
	}
	if id, ok := ParseProviderID(raw.Provider); ok {
		settings.Provider = id
	}
	settings.applyEnvOverrides(getenv)
	settings.normalize()
	return settings
}

func (s *Settings) applyEnvOverrides(getenv func(string) string) {
	if s == nil || getenv == nil {
		return
	}
	if value := strings.TrimSpace(getenv("THOUGHTLINE_TRANSLATION_ENABLED")); value != "" {
		if enabled, err := strconv.ParseBool(value); err == nil {
			s.Enabled = enabled
		}
	}
	if value := strings.TrimSpace(getenv("THOUGHTLINE_TRANSLATION_PROVIDER")); value != "" {
		if id, ok := ParseProviderID(value); ok {
			s.Provider = id
		}
	}
	if value := strings.TrimSpace(getenv("THOUGHTLINE_TRANSLATION_API_KEY")); value != "" {
		s.APIKey = value
	}
	if value := strings.TrimSpace(getenv("THOUGHTLINE_TRANSLATION_TARGET")); value != "" {
		s.TargetLanguage = value
	}
}

func (s *Settings) normalize() {
	if s == nil {
		return
	}
	def := s.Provider.Definition()
	s.Provider = def.ID
	if s.TargetLanguage == "" {
		s.TargetLanguage = DefaultTargetLanguage
	}
	if s.Model == "" {
		s.Model = def.DefaultModel
	}
	if s.BaseURL == "" {
		s.BaseURL = def.DefaultBaseURL
	}
	if s.Timeout <= 0 {
		s.Timeout = DefaultTimeout
	}
	if s.MaxWait <= 0 {
		s.MaxWait = reasoning.DefaultMaxWait
	}
	if s.RateLimitRPS < 0 {
		s.RateLimitRPS = 0
	}
}

// Definition returns the provider definition for the resolved provider.
func (s Settings) Definition() ProviderDef {
	return s.Provider.Definition()
}

// HasAPIKey reports whether an API key is configured.
func (s Settings) HasAPIKey() bool {
	return s.APIKey != ""
}

// Ready reports whether a client can be built from these settings.
func (s Settings) Ready() bool {
	return !s.Definition().RequiresAPIKey || s.HasAPIKey()
}

// ReasoningConfig returns the translator configuration for these settings.
func (s Settings) ReasoningConfig() reasoning.Config {
	return reasoning.Config{
		Enabled:        s.Enabled,
		TargetLanguage: s.TargetLanguage,
		MaxWait:        s.MaxWait,
	}
}
