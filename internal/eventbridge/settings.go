package eventbridge

import (
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kingrea/thoughtline/internal/config"
)

const (
	DefaultHost = "127.0.0.1"
	DefaultPort = 8765

	// DefaultMaxBodyBytes limits one POST /events body.
	DefaultMaxBodyBytes int64 = 1 << 20
	// DefaultMaxFrameBytes limits one /stream text frame.
	DefaultMaxFrameBytes int64 = 1 << 20
	// DefaultPingInterval is how often /stream clients are pinged. A client
	// that stays silent for two intervals is dropped.
	DefaultPingInterval = 30 * time.Second
	// DefaultStreamWriteWait bounds one ack or control frame write.
	DefaultStreamWriteWait = 5 * time.Second

	DefaultReadTimeout  = 15 * time.Second
	DefaultWriteTimeout = 15 * time.Second
	DefaultIdleTimeout  = 60 * time.Second
)

// Settings is the resolved bridge configuration. POST /events uses the HTTP
// timeouts; /stream connections are hijacked and use the stream limits.
type Settings struct {
	Enabled bool
	Host    string
	Port    int

	MaxBodyBytes int64
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	MaxFrameBytes   int64
	PingInterval    time.Duration
	StreamWriteWait time.Duration
}

// DefaultSettings returns an enabled loopback bridge on DefaultPort.
func DefaultSettings() Settings {
	return Settings{
		Enabled:         true,
		Host:            DefaultHost,
		Port:            DefaultPort,
		MaxBodyBytes:    DefaultMaxBodyBytes,
		ReadTimeout:     DefaultReadTimeout,
		WriteTimeout:    DefaultWriteTimeout,
		IdleTimeout:     DefaultIdleTimeout,
		MaxFrameBytes:   DefaultMaxFrameBytes,
		PingInterval:    DefaultPingInterval,
		StreamWriteWait: DefaultStreamWriteWait,
	}
}

// SettingsFromConfig merges the project's bridge section and the
// THOUGHTLINE_BRIDGE_* environment over DefaultSettings.
func SettingsFromConfig(cfg *config.Config) Settings {
	var raw config.BridgeConfig
	if cfg != nil {
		raw = cfg.Project.Bridge
	}
	return settingsFrom(raw, os.Getenv)
}

func settingsFrom(raw config.BridgeConfig, getenv func(string) string) Settings {
	s := DefaultSettings()
	if raw.Enabled != nil {
		s.Enabled = *raw.Enabled
	}
	if host := strings.TrimSpace(raw.Host); host != "" {
		s.Host = host
	}
	if isValidPort(raw.Port) {
		s.Port = raw.Port
	}
	if raw.MaxFrameBytes > 0 {
		s.MaxFrameBytes = raw.MaxFrameBytes
	}
	if raw.PingIntervalMS > 0 {
		s.PingInterval = time.Duration(raw.PingIntervalMS) * time.Millisecond
	}
	if getenv != nil {
		s.applyEnv(getenv)
	}
	s.normalize()
	return s
}

// applyEnv reads the THOUGHTLINE_BRIDGE_* overrides. Values that do not
// parse are ignored.
func (s *Settings) applyEnv(getenv func(string) string) {
	lookup := func(name string) (string, bool) {
		v := strings.TrimSpace(getenv("THOUGHTLINE_BRIDGE_" + name))
		return v, v != ""
	}
	if v, ok := lookup("ENABLED"); ok {
		if enabled, err := strconv.ParseBool(v); err == nil {
			s.Enabled = enabled
		}
	}
	if v, ok := lookup("HOST"); ok {
		s.Host = v
	}
	if v, ok := lookup("PORT"); ok {
		if port, err := strconv.Atoi(v); err == nil && isValidPort(port) {
			s.Port = port
		}
	}
	if v, ok := lookup("MAX_FRAME_BYTES"); ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			s.MaxFrameBytes = n
		}
	}
	if v, ok := lookup("PING_INTERVAL_MS"); ok {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			s.PingInterval = time.Duration(ms) * time.Millisecond
		}
	}
}

// normalize replaces unusable values with defaults so hand-built Settings
// (tests, embedders) behave like resolved ones.
func (s *Settings) normalize() {
	def := DefaultSettings()
	s.Host = strings.TrimSpace(s.Host)
	if s.Host == "" {
		s.Host = def.Host
	}
	if s.Port != 0 && !isValidPort(s.Port) {
		s.Port = def.Port
	}
	positive := func(v *int64, fallback int64) {
		if *v <= 0 {
			*v = fallback
		}
	}
	positive(&s.MaxBodyBytes, def.MaxBodyBytes)
	positive(&s.MaxFrameBytes, def.MaxFrameBytes)
	for _, d := range []struct {
		v        *time.Duration
		fallback time.Duration
	}{
		{&s.ReadTimeout, def.ReadTimeout},
		{&s.WriteTimeout, def.WriteTimeout},
		{&s.IdleTimeout, def.IdleTimeout},
		{&s.PingInterval, def.PingInterval},
		{&s.StreamWriteWait, def.StreamWriteWait},
	} {
		if *d.v <= 0 {
			*d.v = d.fallback
		}
	}
}

// pongWait is how long a /stream connection may stay silent.
func (s Settings) pongWait() time.Duration {
	return 2 * s.PingInterval
}

// Address returns the TCP bind address in host:port form.
func (s Settings) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// URL returns the HTTP base URL for the server.
func (s Settings) URL() string {
	return "http://" + s.Address()
}

// StreamURL returns the websocket ingest endpoint.
func (s Settings) StreamURL() string {
	return "ws://" + s.Address() + "/stream"
}

func isValidPort(port int) bool {
	return port > 0 && port <= 65535
}
