// Package config handles configuration loading and validation for formwatch
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/iiroan/formwatch/internal/store"
	"github.com/iiroan/formwatch/internal/validate"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FORMWATCH_"

// Config represents the main configuration for formwatch
type Config struct {
	Form    FormConfig    `yaml:"form" toml:"form"`
	Checker CheckerConfig `yaml:"checker" toml:"checker"`
	Store   StoreConfig   `yaml:"store" toml:"store"`
	Server  ServerConfig  `yaml:"server" toml:"server"`
	Events  EventsConfig  `yaml:"events" toml:"events"`
	UI      UIConfig      `yaml:"ui" toml:"ui"`
}

// FormConfig holds debounce and field settings
type FormConfig struct {
	Fields        []string            `yaml:"fields" toml:"fields" validate:"min=1,unique,dive,oneof=email username phone"`
	Debounce      Duration            `yaml:"debounce" toml:"debounce" validate:"gt=0"`
	FieldDebounce map[string]Duration `yaml:"field_debounce,omitempty" toml:"field_debounce,omitempty" validate:"dive,keys,oneof=email username phone,endkeys,gt=0"`
}

// CheckerConfig selects where availability answers come from
type CheckerConfig struct {
	Backend         string   `yaml:"backend" toml:"backend" validate:"oneof=random store http"`
	URL             string   `yaml:"url,omitempty" toml:"url,omitempty" validate:"required_if=Backend http,omitempty,url"`
	Timeout         Duration `yaml:"timeout" toml:"timeout" validate:"gt=0"`
	EmailLatency    Duration `yaml:"email_latency" toml:"email_latency"`
	UsernameLatency Duration `yaml:"username_latency" toml:"username_latency"`
	Seed            int64    `yaml:"seed,omitempty" toml:"seed,omitempty"`
}

// StoreConfig holds the claimed-value store settings
type StoreConfig struct {
	Backend string              `yaml:"backend" toml:"backend" validate:"oneof=memory redis sql"`
	Taken   map[string][]string `yaml:"taken,omitempty" toml:"taken,omitempty" validate:"dive,keys,oneof=email username,endkeys"`
	Redis   RedisConfig         `yaml:"redis" toml:"redis"`
	SQL     SQLConfig           `yaml:"sql" toml:"sql"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Addr     string `yaml:"addr" toml:"addr" validate:"required_with=Password,omitempty,hostname_port"`
	Password string `yaml:"password,omitempty" toml:"password,omitempty"`
	DB       int    `yaml:"db" toml:"db" validate:"gte=0"`
}

// SQLConfig holds database settings for the sql store
type SQLConfig struct {
	Driver string `yaml:"driver" toml:"driver" validate:"oneof=sqlite3 postgres"`
	DSN    string `yaml:"dsn,omitempty" toml:"dsn,omitempty"`
}

// ServerConfig holds HTTP service settings
type ServerConfig struct {
	Addr            string   `yaml:"addr" toml:"addr" validate:"required"`
	ReadTimeout     Duration `yaml:"read_timeout" toml:"read_timeout" validate:"gt=0"`
	WriteTimeout    Duration `yaml:"write_timeout" toml:"write_timeout" validate:"gt=0"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout" toml:"shutdown_timeout" validate:"gt=0"`
}

// EventsConfig holds verdict publishing settings
type EventsConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	URL     string `yaml:"url" toml:"url" validate:"required_if=Enabled true"`
	Subject string `yaml:"subject" toml:"subject" validate:"required_if=Enabled true"`
}

// UIConfig holds terminal preferences
type UIConfig struct {
	Theme   string `yaml:"theme,omitempty" toml:"theme,omitempty" validate:"omitempty,oneof=aurora ember mono meadow"`
	NoColor bool   `yaml:"no_color" toml:"no_color"`
	Dense   bool   `yaml:"dense" toml:"dense"`
}

// Duration wraps time.Duration so it reads and writes as "800ms"
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// DefaultConfig returns a sensible default configuration
func DefaultConfig() *Config {
	return &Config{
		Form: FormConfig{
			Fields:   []string{"email", "username", "phone"},
			Debounce: Duration{800 * time.Millisecond},
		},
		Checker: CheckerConfig{
			Backend:         "random",
			Timeout:         Duration{5 * time.Second},
			EmailLatency:    Duration{1200 * time.Millisecond},
			UsernameLatency: Duration{3000 * time.Millisecond},
		},
		Store: StoreConfig{
			Backend: "memory",
			Redis:   RedisConfig{Addr: "localhost:6379"},
			SQL:     SQLConfig{Driver: "sqlite3", DSN: "formwatch.db"},
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     Duration{10 * time.Second},
			WriteTimeout:    Duration{10 * time.Second},
			ShutdownTimeout: Duration{5 * time.Second},
		},
		Events: EventsConfig{
			URL:     "nats://127.0.0.1:4222",
			Subject: "formwatch",
		},
	}
}

// DefaultPath returns FORMWATCH_CONFIG or the per-user config file
func DefaultPath() string {
	if p := os.Getenv(EnvPrefix + "CONFIG"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "formwatch.yaml"
	}
	return filepath.Join(dir, "formwatch", "config.yaml")
}

// Load loads configuration from a YAML or TOML file and applies
// environment overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := cfg.decode(path, data); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(path string, data []byte) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		_, err := toml.Decode(string(data), c)
		return err
	default:
		return yaml.Unmarshal(data, c)
	}
}

// LoadDotEnv reads .env style files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides settings from FORMWATCH_* variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	str("CHECKER_BACKEND", &c.Checker.Backend)
	str("CHECKER_URL", &c.Checker.URL)
	str("STORE_BACKEND", &c.Store.Backend)
	str("REDIS_ADDR", &c.Store.Redis.Addr)
	str("REDIS_PASSWORD", &c.Store.Redis.Password)
	str("SQL_DRIVER", &c.Store.SQL.Driver)
	str("SQL_DSN", &c.Store.SQL.DSN)
	str("SERVER_ADDR", &c.Server.Addr)
	str("NATS_URL", &c.Events.URL)
	str("NATS_SUBJECT", &c.Events.Subject)

	if v, ok := lookup(EnvPrefix + "DEBOUNCE"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sDEBOUNCE: %w", EnvPrefix, err)
		}
		c.Form.Debounce = Duration{d}
	}
	if v, ok := lookup(EnvPrefix + "REDIS_DB"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sREDIS_DB: %w", EnvPrefix, err)
		}
		c.Store.Redis.DB = n
	}
	if v, ok := lookup(EnvPrefix + "EVENTS_ENABLED"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sEVENTS_ENABLED: %w", EnvPrefix, err)
		}
		c.Events.Enabled = b
	}
	return nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

var structValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(Duration); ok {
			return int64(d.Duration)
		}
		return nil
	}, Duration{})
	return v
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := structValidator.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Kinds returns the configured form fields.
func (c *Config) Kinds() ([]validate.Kind, error) {
	kinds := make([]validate.Kind, 0, len(c.Form.Fields))
	for _, name := range c.Form.Fields {
		k, err := validate.ParseKind(name)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

// FieldDebounces returns per-field debounce overrides keyed by kind.
func (c *Config) FieldDebounces() (map[validate.Kind]time.Duration, error) {
	out := make(map[validate.Kind]time.Duration, len(c.Form.FieldDebounce))
	for name, d := range c.Form.FieldDebounce {
		k, err := validate.ParseKind(name)
		if err != nil {
			return nil, err
		}
		out[k] = d.Duration
	}
	return out, nil
}

// StoreOptions converts the store section for store.Open.
func (c *Config) StoreOptions() (store.Options, error) {
	opts := store.Options{
		Backend:       c.Store.Backend,
		RedisAddr:     c.Store.Redis.Addr,
		RedisPassword: c.Store.Redis.Password,
		RedisDB:       c.Store.Redis.DB,
		SQLDriver:     c.Store.SQL.Driver,
		SQLDSN:        c.Store.SQL.DSN,
		Seed:          make(map[validate.Kind][]string, len(c.Store.Taken)),
	}
	for name, values := range c.Store.Taken {
		k, err := validate.ParseKind(name)
		if err != nil {
			return store.Options{}, err
		}
		opts.Seed[k] = append([]string(nil), values...)
	}
	return opts, nil
}
