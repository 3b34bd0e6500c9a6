package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" toml:"server"`
	DB        DBConfig        `yaml:"db" toml:"db"`
	Log       LogConfig       `yaml:"log" toml:"log"`
	Auth      AuthConfig      `yaml:"auth" toml:"auth"`
	Transport TransportConfig `yaml:"transport" toml:"transport"`
	Assistant AssistantConfig `yaml:"assistant" toml:"assistant"`
	Clock     ClockConfig     `yaml:"clock" toml:"clock"`

	// Path is the file the configuration was read from, if any.
	Path string `yaml:"-" toml:"-"`
}

type ServerConfig struct {
	Host string `yaml:"host" toml:"host"`
	Port int    `yaml:"port" toml:"port"`
}

type DBConfig struct {
	Path string `yaml:"path" toml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level" toml:"level"`
	// Path enables a size-capped log file instead of the console.
	Path string `yaml:"path" toml:"path"`
}

type AuthConfig struct {
	Enabled bool     `yaml:"enabled" toml:"enabled"`
	Tokens  []string `yaml:"tokens" toml:"tokens"`
}

type TransportConfig struct {
	// Mode is "http" or "stdio".
	Mode string `yaml:"mode" toml:"mode"`
}

type AssistantConfig struct {
	APIKey      string `yaml:"api_key" toml:"api_key"`
	Model       string `yaml:"model" toml:"model"`
	MinInterval string `yaml:"min_interval" toml:"min_interval"` // e.g. "2s"
	Burst       int    `yaml:"burst" toml:"burst"`
	History     int    `yaml:"history" toml:"history"`
	Timeout     string `yaml:"timeout" toml:"timeout"`
}

type ClockConfig struct {
	// Timezone is an IANA zone name; empty uses the host zone.
	Timezone string `yaml:"timezone" toml:"timezone"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
		DB: DBConfig{
			Path: "streamos.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Transport: TransportConfig{
			Mode: "http",
		},
		Assistant: AssistantConfig{
			Model:       "gemini-2.5-flash",
			MinInterval: "2s",
			Burst:       3,
			History:     40,
			Timeout:     "60s",
		},
	}
}

// Load reads configuration from an optional YAML or TOML file named by
// STREAMOS_CONFIG_PATH and environment variables.
func Load() (Config, error) {
	return LoadFile(os.Getenv("STREAMOS_CONFIG_PATH"))
}

// LoadFile is Load with an explicit file. An empty path reads no file.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
		cfg.Path = path
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if host := os.Getenv("STREAMOS_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("STREAMOS_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid STREAMOS_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if dbPath := os.Getenv("STREAMOS_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("STREAMOS_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if logPath := os.Getenv("STREAMOS_LOG_PATH"); logPath != "" {
		cfg.Log.Path = logPath
	}
	if mode := os.Getenv("STREAMOS_TRANSPORT"); mode != "" {
		cfg.Transport.Mode = mode
	}
	if token := os.Getenv("STREAMOS_AUTH_TOKEN"); token != "" {
		cfg.Auth.Enabled = true
		cfg.Auth.Tokens = append(cfg.Auth.Tokens, token)
	}
	if tz := os.Getenv("STREAMOS_TIMEZONE"); tz != "" {
		cfg.Clock.Timezone = tz
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.Assistant.APIKey = key
	}
	if key := os.Getenv("STREAMOS_ASSISTANT_API_KEY"); key != "" {
		cfg.Assistant.APIKey = key
	}
	if model := os.Getenv("STREAMOS_ASSISTANT_MODEL"); model != "" {
		cfg.Assistant.Model = model
	}
	return nil
}

// Validate checks the configuration values.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Transport.Mode != "http" && c.Transport.Mode != "stdio" {
		return fmt.Errorf("invalid transport mode %q", c.Transport.Mode)
	}
	if c.Auth.Enabled && len(c.Auth.Tokens) == 0 {
		return fmt.Errorf("auth enabled without tokens")
	}
	if _, err := c.Assistant.Interval(); err != nil {
		return err
	}
	if _, err := c.Assistant.RequestTimeout(); err != nil {
		return err
	}
	if c.Clock.Timezone != "" {
		if _, err := time.LoadLocation(c.Clock.Timezone); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", c.Clock.Timezone, err)
		}
	}
	return nil
}

// Interval returns the minimum spacing between assistant calls.
func (a AssistantConfig) Interval() (time.Duration, error) {
	return parseDuration("assistant.min_interval", a.MinInterval)
}

// RequestTimeout returns the per-call assistant timeout.
func (a AssistantConfig) RequestTimeout() (time.Duration, error) {
	return parseDuration("assistant.timeout", a.Timeout)
}

func parseDuration(name, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return d, nil
}

// ParseLevel maps a level name to a slog level. Unknown names are info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
