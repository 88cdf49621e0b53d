package config

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vango-dev/doclisten/internal/errors"
	"github.com/vango-dev/doclisten/pkg/dom"
	"github.com/vango-dev/doclisten/pkg/listen"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "doclisten.json"

	// DefaultAddress is the default bridge server address.
	DefaultAddress = ":8080"

	// DefaultReadLimit is the default maximum size of a client frame in bytes.
	DefaultReadLimit = 64 * 1024

	// DefaultWriteTimeout is the default deadline for a single frame write.
	DefaultWriteTimeout = "10s"

	// DefaultNamespace is the default Prometheus namespace and tracer name.
	DefaultNamespace = "doclisten"
)

// Built-in listener actions.
const (
	ActionLog   = "log"
	ActionCount = "count"
	ActionEcho  = "echo"
)

// Config represents the complete doclisten.json configuration.
type Config struct {
	// Server contains bridge server configuration.
	Server ServerConfig `json:"server,omitempty"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `json:"metrics,omitempty"`

	// Tracing contains OpenTelemetry configuration.
	Tracing TracingConfig `json:"tracing,omitempty"`

	// Log contains logging configuration.
	Log LogConfig `json:"log,omitempty"`

	// Listeners are the declared document listeners.
	Listeners []ListenerConfig `json:"listeners,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains bridge server settings.
type ServerConfig struct {
	// Address is the TCP address to listen on.
	Address string `json:"address,omitempty"`

	// ReadLimit is the maximum size of a client frame in bytes.
	ReadLimit int64 `json:"readLimit,omitempty"`

	// WriteTimeout is the deadline for a single frame write (e.g., "10s").
	WriteTimeout string `json:"writeTimeout,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Namespace is the metrics namespace.
	Namespace string `json:"namespace,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	// TracerName is the name of the tracer.
	TracerName string `json:"tracerName,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty"`
}

// ListenerConfig declares one document listener.
type ListenerConfig struct {
	// Event is the document event type, e.g. "keydown".
	Event string `json:"event"`

	// When is mounted, unmounted or both.
	When listen.When `json:"when"`

	// Action is the built-in callback: log, count or echo.
	Action string `json:"action"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Address:      DefaultAddress,
			ReadLimit:    DefaultReadLimit,
			WriteTimeout: DefaultWriteTimeout,
		},
		Metrics: MetricsConfig{
			Namespace: DefaultNamespace,
		},
		Tracing: TracingConfig{
			TracerName: DefaultNamespace,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for doclisten.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("L022").
				WithDetail("No " + filepath.Base(path) + " found in " + filepath.Dir(path)).
				WithSuggestion("Create one or pass --config with the path to your configuration")
		}
		return nil, errors.New("L020").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("L021").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check that the file is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("L020").Wrap(err)
	}

	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("L020").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = DefaultAddress
	}
	if c.Server.ReadLimit == 0 {
		c.Server.ReadLimit = DefaultReadLimit
	}
	if c.Server.WriteTimeout == "" {
		c.Server.WriteTimeout = DefaultWriteTimeout
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = DefaultNamespace
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks the configuration for errors. Server and log settings stop
// at the first problem; every listener problem is reported, joined.
func (c *Config) Validate() error {
	if c.Server.ReadLimit < 0 {
		return errors.New("L021").
			WithField("server.readLimit").
			WithDetail("readLimit must not be negative")
	}
	if _, err := c.WriteTimeout(); err != nil {
		return errors.New("L021").
			WithField("server.writeTimeout").
			WithSuggestion(`Use a Go duration such as "10s"`).
			Wrap(err)
	}
	if _, err := c.SlogLevel(); err != nil {
		return errors.New("L021").
			WithField("log.level").
			WithSuggestion("Use debug, info, warn or error").
			Wrap(err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.New("L021").
			WithField("log.format").
			WithDetail(fmt.Sprintf("unknown log format %q", c.Log.Format)).
			WithSuggestion("Use text or json")
	}

	var errs []error
	for i, l := range c.Listeners {
		field := fmt.Sprintf("listeners[%d]", i)
		errs = append(errs, listen.Check(field, dom.EventType(l.Event), l.When)...)
		switch l.Action {
		case ActionLog, ActionCount, ActionEcho:
		default:
			errs = append(errs, errors.New("L005").
				WithField(field+".action").
				WithDetail(fmt.Sprintf("unknown action %q", l.Action)))
		}
	}

	return stderrors.Join(errs...)
}

// WriteTimeout returns the parsed server write timeout.
func (c *Config) WriteTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Server.WriteTimeout)
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(strings.ToLower(c.Log.Level)))
	return level, err
}
