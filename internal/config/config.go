// Package config загружает конфигурацию rmqlink из YAML файла
// и переменных окружения.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/shaiso/rmqlink/internal/dsl"
)

const (
	defaultListen           = ":8084"
	defaultConnectTimeoutMs = 30000
	defaultConnectionID     = "default"
)

// Config — конфигурация rmqlink.
type Config struct {
	// Endpoints — строки определения endpoint'ов в формате DSL.
	Endpoints []string `yaml:"endpoints"`

	Defaults  DefaultsConfig  `yaml:"defaults"`
	Transport TransportConfig `yaml:"transport"`
	Server    ServerConfig    `yaml:"server"`

	// Bindings — именованные ссылки на endpoint'ы: литеральный ID
	// или динамическое выражение ("$query.cid").
	Bindings map[string]string `yaml:"bindings"`
}

// DefaultsConfig — значения по умолчанию для разбора определений.
type DefaultsConfig struct {
	MinFrames int  `yaml:"min_frames"`
	Frames    int  `yaml:"frames"`
	Heartbeat *int `yaml:"heartbeat"`
	Retries   *int `yaml:"retries"`
}

// TransportConfig — параметры подключения к брокеру.
type TransportConfig struct {
	ConnectTimeoutMs int `yaml:"connect_timeout_ms"`
}

// ServerConfig — HTTP сервер агента.
type ServerConfig struct {
	Listen string `yaml:"listen"`
}

// Option изменяет конфигурацию после переменных окружения, до валидации.
type Option func(*Config)

// WithEndpoints заменяет список определений, если он не пуст.
func WithEndpoints(defs []string) Option {
	return func(cfg *Config) {
		if len(defs) > 0 {
			cfg.Endpoints = defs
		}
	}
}

// Load читает файл path, применяет значения по умолчанию и переменные
// окружения. Пустой path — только значения по умолчанию и окружение.
func Load(path string, opts ...Option) (*Config, error) {
	var cfg Config

	if path != "" {
		// #nosec G304 -- path is provided by trusted config/flag.
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ParserOptions возвращает параметры разбора определений.
// Незаданные значения (Config собран не через Load) берутся из dsl.DefaultOptions.
func (c *Config) ParserOptions() dsl.Options {
	opts := dsl.DefaultOptions()
	if c.Defaults.MinFrames > 0 {
		opts.MinFrames = c.Defaults.MinFrames
	}
	if c.Defaults.Frames > 0 {
		opts.DefaultFrames = c.Defaults.Frames
	}
	if c.Defaults.Heartbeat != nil {
		opts.DefaultHeartbeat = *c.Defaults.Heartbeat
	}
	if c.Defaults.Retries != nil {
		opts.DefaultRetries = *c.Defaults.Retries
	}
	return opts
}

// ConnectTimeout возвращает таймаут подключения. 0 — таймаут клиента по умолчанию.
func (c *Config) ConnectTimeout() time.Duration {
	return time.Duration(c.Transport.ConnectTimeoutMs) * time.Millisecond
}

func applyDefaults(cfg *Config) {
	if cfg.Defaults.MinFrames == 0 {
		cfg.Defaults.MinFrames = dsl.DefaultMinFrames
	}
	if cfg.Defaults.Frames == 0 {
		cfg.Defaults.Frames = dsl.DefaultFrames
	}
	if cfg.Defaults.Heartbeat == nil {
		v := dsl.DefaultHeartbeat
		cfg.Defaults.Heartbeat = &v
	}
	if cfg.Defaults.Retries == nil {
		v := dsl.DefaultRetries
		cfg.Defaults.Retries = &v
	}
	if cfg.Transport.ConnectTimeoutMs <= 0 {
		cfg.Transport.ConnectTimeoutMs = defaultConnectTimeoutMs
	}
	if strings.TrimSpace(cfg.Server.Listen) == "" {
		cfg.Server.Listen = defaultListen
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("RMQLINK_ENDPOINTS")); v != "" {
		cfg.Endpoints = splitLines(v)
	}
	if v := strings.TrimSpace(os.Getenv("RMQLINK_LISTEN")); v != "" {
		cfg.Server.Listen = v
	}
	if n, ok := envInt("RMQLINK_CONNECT_TIMEOUT_MS"); ok && n > 0 {
		cfg.Transport.ConnectTimeoutMs = n
	}

	// Один брокер без явной конфигурации.
	if len(cfg.Endpoints) == 0 {
		if v := strings.TrimSpace(os.Getenv("RABBITMQ_URL")); v != "" {
			cfg.Endpoints = []string{"[" + defaultConnectionID + "] uri=" + v}
		}
	}
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func envInt(name string) (int, bool) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func validate(cfg *Config) error {
	if len(cfg.Endpoints) == 0 {
		return errors.New("at least one endpoint must be configured (endpoints, RMQLINK_ENDPOINTS or RABBITMQ_URL)")
	}
	if cfg.Defaults.MinFrames <= 0 {
		return errors.New("defaults.min_frames must be > 0")
	}
	if cfg.Defaults.Frames < cfg.Defaults.MinFrames {
		return fmt.Errorf("defaults.frames must be >= defaults.min_frames (%d)", cfg.Defaults.MinFrames)
	}
	if *cfg.Defaults.Heartbeat < 0 {
		return errors.New("defaults.heartbeat must be >= 0")
	}
	if *cfg.Defaults.Retries < 0 {
		return errors.New("defaults.retries must be >= 0")
	}
	for name, ref := range cfg.Bindings {
		if strings.TrimSpace(name) == "" {
			return errors.New("bindings: empty binding name")
		}
		if strings.TrimSpace(ref) == "" {
			return fmt.Errorf("bindings.%s: empty reference", name)
		}
	}
	return nil
}
