// Package config loads the server configuration from the environment and an
// optional config file.
//
// Every key has a default, an explicit environment variable and a dotted
// path usable in the config file (YAML, TOML or JSON, by extension):
//
//	server:
//	  port: 5001
//	llm:
//	  provider: anthropic
//
// Environment variables win over the file, the file wins over defaults.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sakif/techmind/internal/auth"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	// DefaultSessionSecret is only acceptable outside production.
	DefaultSessionSecret = "development-secret"

	callbackPath = "/api/auth/github/callback"
)

// Config is the whole server configuration.
type Config struct {
	Env           string         `mapstructure:"env"`
	ProductionURL string         `mapstructure:"production_url"`
	Server        ServerConfig   `mapstructure:"server"`
	LLM           LLMConfig      `mapstructure:"llm"`
	GitHub        GitHubConfig   `mapstructure:"github"`
	Session       SessionConfig  `mapstructure:"session"`
	Redis         RedisConfig    `mapstructure:"redis"`
	Database      DatabaseConfig `mapstructure:"database"`
	Log           LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	PortAttempts int    `mapstructure:"port_attempts"`
	StaticDir    string `mapstructure:"static_dir"`
}

// LLMConfig selects the vendor. Only the selected vendor's key is required.
type LLMConfig struct {
	Provider  string       `mapstructure:"provider"`
	Label     string       `mapstructure:"label"`
	OpenAI    VendorConfig `mapstructure:"openai"`
	Anthropic VendorConfig `mapstructure:"anthropic"`
}

type VendorConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type GitHubConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	CallbackURL  string `mapstructure:"callback_url"`
}

type SessionConfig struct {
	Secret string        `mapstructure:"secret"`
	Store  string        `mapstructure:"store"`
	TTL    time.Duration `mapstructure:"ttl"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
	URL    string `mapstructure:"url"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// keys maps every config path to its environment variable.
var keys = []struct {
	path, env string
	def       any
}{
	{"env", "APP_ENV", EnvDevelopment},
	{"production_url", "PRODUCTION_URL", ""},

	{"server.port", "PORT", 5001},
	{"server.port_attempts", "PORT_ATTEMPTS", 10},
	{"server.static_dir", "STATIC_DIR", "dist/public"},

	{"llm.provider", "LLM_PROVIDER", "openai"},
	{"llm.label", "PROVIDER_LABEL", "TechMind"},
	{"llm.openai.api_key", "OPENAI_API_KEY", ""},
	{"llm.openai.model", "OPENAI_MODEL", "gpt-3.5-turbo"},
	{"llm.openai.base_url", "OPENAI_BASE_URL", ""},
	{"llm.anthropic.api_key", "ANTHROPIC_API_KEY", ""},
	{"llm.anthropic.model", "ANTHROPIC_MODEL", "claude-3-5-haiku-latest"},
	{"llm.anthropic.base_url", "ANTHROPIC_BASE_URL", ""},

	{"github.client_id", "GITHUB_CLIENT_ID", ""},
	{"github.client_secret", "GITHUB_CLIENT_SECRET", ""},
	{"github.callback_url", "GITHUB_CALLBACK_URL", ""},

	{"session.secret", "SESSION_SECRET", DefaultSessionSecret},
	{"session.store", "SESSION_STORE", "memory"},
	{"session.ttl", "SESSION_TTL", "168h"},

	{"redis.addr", "REDIS_ADDR", ""},
	{"redis.password", "REDIS_PASSWORD", ""},
	{"redis.db", "REDIS_DB", 0},

	{"database.driver", "DB_DRIVER", "sqlite"},
	{"database.path", "DB_PATH", "data/techmind.db"},
	{"database.url", "DATABASE_URL", ""},

	{"log.level", "LOG_LEVEL", "info"},
	{"log.format", "LOG_FORMAT", "text"},
}

// Load reads the configuration. path names an optional config file; an
// empty path means environment and defaults only. A named file that does
// not exist is an error.
func Load(path string) (*Config, error) {
	vip := viper.New()

	for _, k := range keys {
		vip.SetDefault(k.path, k.def)
		if err := vip.BindEnv(k.path, k.env); err != nil {
			return nil, fmt.Errorf("config: binding %s: %w", k.env, err)
		}
	}

	if path != "" {
		vip.SetConfigFile(path)
		if err := vip.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
	}

	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decoding: %w", err)
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	c.Session.Store = strings.ToLower(strings.TrimSpace(c.Session.Store))
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))

	if c.GitHub.CallbackURL == "" {
		switch {
		case c.IsProduction() && c.ProductionURL != "":
			c.GitHub.CallbackURL = strings.TrimRight(c.ProductionURL, "/") + callbackPath
		case !c.IsProduction():
			c.GitHub.CallbackURL = fmt.Sprintf("http://localhost:%d%s", c.Server.Port, callbackPath)
		}
	}
}

// IsProduction reports whether APP_ENV is "production".
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// ActiveLLM returns the settings of the selected vendor.
func (c *Config) ActiveLLM() VendorConfig {
	if c.LLM.Provider == "anthropic" {
		return c.LLM.Anthropic
	}
	return c.LLM.OpenAI
}

// SlogLevel parses Log.Level; Validate has already rejected bad values.
func (c *Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// Validate reports every problem at once, joined.
func (c *Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("config: "+format, args...))
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		fail("PORT %d out of range", c.Server.Port)
	}
	if c.Server.PortAttempts < 1 {
		fail("PORT_ATTEMPTS must be at least 1")
	}

	switch c.LLM.Provider {
	case "openai", "anthropic":
		if c.ActiveLLM().APIKey == "" {
			fail("%s_API_KEY is required when LLM_PROVIDER=%s", strings.ToUpper(c.LLM.Provider), c.LLM.Provider)
		}
	default:
		fail("LLM_PROVIDER must be openai or anthropic, got %q", c.LLM.Provider)
	}

	if c.GitHub.ClientID == "" || c.GitHub.ClientSecret == "" {
		fail("GITHUB_CLIENT_ID and GITHUB_CLIENT_SECRET are required")
	}
	if c.GitHub.CallbackURL == "" {
		fail("PRODUCTION_URL or GITHUB_CALLBACK_URL is required in production")
	}

	if len(c.Session.Secret) < auth.MinSecretLength {
		fail("SESSION_SECRET must be at least %d characters", auth.MinSecretLength)
	}
	if c.IsProduction() && c.Session.Secret == DefaultSessionSecret {
		fail("SESSION_SECRET must be set in production")
	}
	if c.Session.TTL <= 0 {
		fail("SESSION_TTL must be positive")
	}

	switch c.Session.Store {
	case "memory":
	case "redis":
		if c.Redis.Addr == "" {
			fail("REDIS_ADDR is required when SESSION_STORE=redis")
		}
	default:
		fail("SESSION_STORE must be memory or redis, got %q", c.Session.Store)
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			fail("DB_PATH is required when DB_DRIVER=sqlite")
		}
	case "postgres":
		if c.Database.URL == "" {
			fail("DATABASE_URL is required when DB_DRIVER=postgres")
		}
	default:
		fail("DB_DRIVER must be sqlite or postgres, got %q", c.Database.Driver)
	}

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		fail("LOG_LEVEL %q is not a slog level", c.Log.Level)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		fail("LOG_FORMAT must be text or json, got %q", c.Log.Format)
	}

	return errors.Join(errs...)
}
