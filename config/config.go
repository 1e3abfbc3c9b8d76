package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorhill/cronexpr"
	"github.com/spf13/viper"
)

// Config holds all configuration for the service.
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	Server    ServerConfig    `mapstructure:"server"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Sources   SourcesConfig   `mapstructure:"sources"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Address string `mapstructure:"address"`
	// LenientDepth makes the HTTP layer replace an unknown depth with
	// "medium" instead of rejecting the request. The core never defaults.
	LenientDepth bool     `mapstructure:"lenient_depth"`
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// LLMConfig selects and configures the summarization model.
type LLMConfig struct {
	Provider string      `mapstructure:"provider"` // gemini, openai
	Gemini   LLMProvider `mapstructure:"gemini"`
	OpenAI   LLMProvider `mapstructure:"openai"`
}

// LLMProvider represents a single LLM provider configuration
type LLMProvider struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// Active returns the settings of the selected provider.
func (l LLMConfig) Active() LLMProvider {
	if strings.EqualFold(l.Provider, "openai") {
		return l.OpenAI
	}
	return l.Gemini
}

// Validate treats a missing model credential as fatal.
func (l LLMConfig) Validate() error {
	switch strings.ToLower(l.Provider) {
	case "gemini", "openai":
	default:
		return fmt.Errorf("llm.provider %q unsupported (gemini, openai)", l.Provider)
	}
	if strings.TrimSpace(l.Active().APIKey) == "" {
		return fmt.Errorf("llm.%s.api_key required", strings.ToLower(l.Provider))
	}
	return nil
}

// SourcesConfig contains search and fetch settings
type SourcesConfig struct {
	WebSearch WebSearchConfig `mapstructure:"web_search"`
	Fetch     FetchConfig     `mapstructure:"fetch"`
}

// WebSearchConfig contains web search settings
type WebSearchConfig struct {
	Provider     string        `mapstructure:"provider"` // tavily, brave, serper
	TavilyAPIKey string        `mapstructure:"tavily_api_key"`
	BraveAPIKey  string        `mapstructure:"brave_api_key"`
	SerperAPIKey string        `mapstructure:"serper_api_key"`
	BaseURL      string        `mapstructure:"base_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxAttempts  int           `mapstructure:"max_attempts"`
	Backoff      time.Duration `mapstructure:"backoff"`
}

// APIKey returns the credential of the selected provider.
func (w WebSearchConfig) APIKey() string {
	switch strings.ToLower(w.Provider) {
	case "brave":
		return w.BraveAPIKey
	case "serper":
		return w.SerperAPIKey
	default:
		return w.TavilyAPIKey
	}
}

func (w WebSearchConfig) Validate() error {
	switch strings.ToLower(w.Provider) {
	case "tavily", "brave", "serper":
	default:
		return fmt.Errorf("sources.web_search.provider %q unsupported (tavily, brave, serper)", w.Provider)
	}
	if w.MaxAttempts < 1 {
		return fmt.Errorf("sources.web_search.max_attempts must be >= 1")
	}
	if strings.TrimSpace(w.APIKey()) == "" {
		return fmt.Errorf("sources.web_search.%s_api_key is required", strings.ToLower(w.Provider))
	}
	return nil
}

// FetchConfig controls page retrieval and text extraction.
type FetchConfig struct {
	Renderer     string        `mapstructure:"renderer"`  // http, chromedp
	Extractor    string        `mapstructure:"extractor"` // dom, readability
	Timeout      time.Duration `mapstructure:"timeout"`
	UserAgent    string        `mapstructure:"user_agent"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
	Concurrency  int           `mapstructure:"concurrency"`
	PoliteDelay  time.Duration `mapstructure:"polite_delay"`
}

func (f FetchConfig) Validate() error {
	switch strings.ToLower(f.Renderer) {
	case "http", "chromedp":
	default:
		return fmt.Errorf("sources.fetch.renderer %q unsupported (http, chromedp)", f.Renderer)
	}
	switch strings.ToLower(f.Extractor) {
	case "dom", "readability":
	default:
		return fmt.Errorf("sources.fetch.extractor %q unsupported (dom, readability)", f.Extractor)
	}
	if f.Concurrency < 1 {
		return fmt.Errorf("sources.fetch.concurrency must be >= 1")
	}
	if f.PoliteDelay < 0 {
		return fmt.Errorf("sources.fetch.polite_delay cannot be negative")
	}
	return nil
}

// CacheConfig controls freshness, sweeping and per-key coordination.
type CacheConfig struct {
	Retention       time.Duration `mapstructure:"retention"`
	SweepCron       string        `mapstructure:"sweep_cron"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	LockTTL         time.Duration `mapstructure:"lock_ttl"`
	DistributedLock bool          `mapstructure:"distributed_lock"`
}

func (c CacheConfig) Validate() error {
	if c.Retention <= 0 {
		return fmt.Errorf("cache.retention must be > 0")
	}
	if strings.TrimSpace(c.SweepCron) != "" {
		if _, err := cronexpr.Parse(c.SweepCron); err != nil {
			return fmt.Errorf("cache.sweep_cron: %w", err)
		}
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("cache.request_timeout cannot be negative")
	}
	return nil
}

// TelemetryConfig contains metrics settings
type TelemetryConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// StorageConfig contains storage and persistence settings
type StorageConfig struct {
	Driver   string         `mapstructure:"driver"` // postgres, redis, memory
	Redis    RedisConfig    `mapstructure:"redis"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

func (s StorageConfig) Validate() error {
	switch strings.ToLower(s.Driver) {
	case "postgres":
		return s.Postgres.Validate()
	case "redis":
		return s.Redis.Validate()
	case "memory":
		return nil
	default:
		return fmt.Errorf("storage.driver %q unsupported (postgres, redis, memory)", s.Driver)
	}
}

// RedisConfig contains Redis connection settings
type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Addr returns host:port.
func (r RedisConfig) Addr() string { return fmt.Sprintf("%s:%s", r.Host, r.Port) }

func (r RedisConfig) Validate() error {
	if strings.TrimSpace(r.Host) == "" {
		return fmt.Errorf("storage.redis.host required")
	}
	if strings.TrimSpace(r.Port) == "" {
		return fmt.Errorf("storage.redis.port required")
	}
	return nil
}

// PostgresConfig contains Postgres connection settings
type PostgresConfig struct {
	URL      string        `mapstructure:"url"`
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	User     string        `mapstructure:"user"`
	Password string        `mapstructure:"password"`
	DBName   string        `mapstructure:"dbname"`
	SSLMode  string        `mapstructure:"sslmode"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

func (p PostgresConfig) Validate() error {
	if strings.TrimSpace(p.URL) != "" {
		return nil
	}
	if strings.TrimSpace(p.Host) == "" {
		return fmt.Errorf("storage.postgres.host required when url is not provided")
	}
	if strings.TrimSpace(p.DBName) == "" {
		return fmt.Errorf("storage.postgres.dbname required when url is not provided")
	}
	return nil
}

// DSN builds a connection string, preferring an explicit url.
func (p PostgresConfig) DSN() string {
	if p.URL != "" {
		return p.URL
	}
	port := p.Port
	if port == "" {
		port = "5432"
	}
	ssl := p.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", p.User, p.Password, p.Host, port, p.DBName, ssl)
}

// Validate runs every section check.
func (c *Config) Validate() error {
	return errors.Join(
		c.LLM.Validate(),
		c.Sources.WebSearch.Validate(),
		c.Sources.Fetch.Validate(),
		c.Cache.Validate(),
		c.Storage.Validate(),
	)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("general.log_level", "info")
	v.SetDefault("server.address", ":10001")
	v.SetDefault("server.lenient_depth", false)
	v.SetDefault("server.allow_origins", []string{"*"})
	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.gemini.model", "gemini-2.5-flash")
	v.SetDefault("llm.gemini.timeout", 60*time.Second)
	v.SetDefault("llm.openai.model", "gpt-4o-mini")
	v.SetDefault("llm.openai.temperature", 0.2)
	v.SetDefault("llm.openai.max_tokens", 4096)
	v.SetDefault("llm.openai.timeout", 60*time.Second)
	v.SetDefault("sources.web_search.provider", "tavily")
	v.SetDefault("sources.web_search.timeout", 20*time.Second)
	v.SetDefault("sources.web_search.max_attempts", 3)
	v.SetDefault("sources.web_search.backoff", 2*time.Second)
	v.SetDefault("sources.fetch.renderer", "http")
	v.SetDefault("sources.fetch.extractor", "dom")
	v.SetDefault("sources.fetch.timeout", 10*time.Second)
	v.SetDefault("sources.fetch.max_body_bytes", 2<<20)
	v.SetDefault("sources.fetch.concurrency", 4)
	v.SetDefault("sources.fetch.polite_delay", time.Second)
	v.SetDefault("cache.retention", 96*time.Hour)
	v.SetDefault("cache.sweep_cron", "@hourly")
	v.SetDefault("cache.request_timeout", 3*time.Minute)
	v.SetDefault("cache.lock_ttl", 2*time.Minute)
	v.SetDefault("storage.driver", "postgres")
	v.SetDefault("storage.redis.port", "6379")
	v.SetDefault("storage.redis.timeout", 5*time.Second)
	v.SetDefault("storage.postgres.timeout", 5*time.Second)
	v.SetDefault("telemetry.enabled", true)
}

// LoadConfig reads config.json (or path when given), applies SKIMMER_*
// environment overrides and validates the result.
func LoadConfig(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load is LoadConfig without validation, for commands that only touch
// some sections.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")
	setDefaults(v)

	if path == "" {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		if exe, err := os.Executable(); err == nil {
			exeDir := filepath.Dir(exe)
			v.AddConfigPath(exeDir)
			v.AddConfigPath(filepath.Join(exeDir, "..", "config"))
		}
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("SKIMMER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// vendor variable names take effect when the prefixed ones are unset
	_ = v.BindEnv("llm.gemini.api_key", "SKIMMER_LLM_GEMINI_API_KEY", "GOOGLE_API_KEY")
	_ = v.BindEnv("llm.openai.api_key", "SKIMMER_LLM_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("sources.web_search.tavily_api_key", "SKIMMER_SOURCES_WEB_SEARCH_TAVILY_API_KEY", "TAVILY_API_KEY")
	_ = v.BindEnv("storage.postgres.url", "SKIMMER_STORAGE_POSTGRES_URL", "DATABASE_URL")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}
