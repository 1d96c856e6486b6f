package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type HTTP struct {
	Addr           string        `yaml:"addr" env:"HTTP_ADDR"`
	PublicURL      string        `yaml:"publicURL" env:"PUBLIC_URL"` // https://meetings.example.org
	ReadTimeout    time.Duration `yaml:"readTimeout"`
	WriteTimeout   time.Duration `yaml:"writeTimeout"`
	IdleTimeout    time.Duration `yaml:"idleTimeout"`
	RequestTimeout time.Duration `yaml:"requestTimeout"`
	AllowedOrigins []string      `yaml:"allowedOrigins" env:"HTTP_ALLOWED_ORIGINS"`
}

type GRPC struct {
	Addr string `yaml:"addr" env:"GRPC_ADDR"`
}

type Logging struct {
	Env       string `yaml:"env" env:"APP_ENV"`         // dev|stage|prod
	Service   string `yaml:"service"`                   // meeting-service
	Version   string `yaml:"version" env:"APP_VERSION"` // v0.1.0
	Backend   string `yaml:"backend" env:"LOG_BACKEND"` // std|zap
	AddSource bool   `yaml:"addSource"`
	Debug     bool   `yaml:"debug" env:"LOG_DEBUG"`
}

type Store struct {
	Driver string `yaml:"driver" env:"STORE_DRIVER"` // postgres|badger|memory
}

type Postgres struct {
	DSN             string        `yaml:"dsn" env:"POSTGRES_DSN"`
	MaxConns        int32         `yaml:"maxConns"`
	MaxConnLifetime time.Duration `yaml:"maxConnLifetime"`
}

type Badger struct {
	Path string `yaml:"path" env:"BADGER_PATH"`
}

type GitHub struct {
	ClientID          string  `yaml:"clientID" env:"GITHUB_CLIENT_ID"`
	ClientSecret      string  `yaml:"clientSecret" env:"GITHUB_CLIENT_SECRET"`
	APIURL            string  `yaml:"apiURL" env:"GITHUB_API_URL"`
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`
	Burst             int     `yaml:"burst"`
}

type Session struct {
	Secret string        `yaml:"secret" env:"SESSION_SECRET"`
	TTL    time.Duration `yaml:"ttl"`
	Secure bool          `yaml:"secure" env:"SESSION_SECURE"`
}

type Meeting struct {
	AllowSelfYield      *bool         `yaml:"allowSelfYield" env:"MEETING_ALLOW_SELF_YIELD"`
	AllowAgendaReorder  *bool         `yaml:"allowAgendaReorder" env:"MEETING_ALLOW_AGENDA_REORDER"`
	HideQueueIdentities bool          `yaml:"hideQueueIdentities" env:"MEETING_HIDE_QUEUE_IDENTITIES"`
	PersistTimeout      time.Duration `yaml:"persistTimeout"`
}

type Tracing struct {
	Enabled bool `yaml:"enabled" env:"TRACING_ENABLED"`
}

type Config struct {
	HTTP     HTTP     `yaml:"http"`
	GRPC     GRPC     `yaml:"grpc"`
	Logging  Logging  `yaml:"logging"`
	Store    Store    `yaml:"store"`
	Postgres Postgres `yaml:"postgres"`
	Badger   Badger   `yaml:"badger"`
	GitHub   GitHub   `yaml:"github"`
	Session  Session  `yaml:"session"`
	Meeting  Meeting  `yaml:"meeting"`
	Tracing  Tracing  `yaml:"tracing"`
}

// LoadConfig reads CONFIG_PATH (default ./config/config.yaml) and applies environment overrides.
func LoadConfig() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "./config/config.yaml"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("env overrides: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("http.addr is required")
	}
	if c.Session.Secret == "" {
		return errors.New("session.secret is required")
	}

	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	switch c.Store.Driver {
	case "":
		c.Store.Driver = "memory"
	case "memory":
	case "postgres":
		if c.Postgres.DSN == "" {
			return errors.New("postgres.dsn is required for the postgres store")
		}
	case "badger":
		if c.Badger.Path == "" {
			c.Badger.Path = "./data/meetings"
		}
	default:
		return fmt.Errorf("store.driver %q: want postgres, badger or memory", c.Store.Driver)
	}

	// defaults
	if c.HTTP.ReadTimeout == 0 {
		c.HTTP.ReadTimeout = 15 * time.Second
	}
	if c.HTTP.WriteTimeout == 0 {
		c.HTTP.WriteTimeout = 30 * time.Second
	}
	if c.HTTP.IdleTimeout == 0 {
		c.HTTP.IdleTimeout = 60 * time.Second
	}
	if c.HTTP.RequestTimeout == 0 {
		c.HTTP.RequestTimeout = 20 * time.Second
	}
	if c.Logging.Service == "" {
		c.Logging.Service = "meeting-service"
	}
	if c.Logging.Env == "" {
		c.Logging.Env = "dev"
	}
	if c.Logging.Version == "" {
		c.Logging.Version = "v0.1.0"
	}
	if c.Logging.Backend == "" {
		c.Logging.Backend = "std"
	}
	if c.Session.TTL == 0 {
		c.Session.TTL = 7 * 24 * time.Hour
	}
	if c.Meeting.AllowSelfYield == nil {
		c.Meeting.AllowSelfYield = ptr(true)
	}
	if c.Meeting.AllowAgendaReorder == nil {
		c.Meeting.AllowAgendaReorder = ptr(true)
	}
	if c.Meeting.PersistTimeout == 0 {
		c.Meeting.PersistTimeout = 5 * time.Second
	}
	return nil
}

func ptr[T any](v T) *T { return &v }
