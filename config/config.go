package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port string `yaml:"port"`

	Database DatabaseConfig `yaml:"database"`
	LLM      LLMConfig      `yaml:"llm"`
	Cache    CacheConfig    `yaml:"cache"`
	Session  SessionConfig  `yaml:"session"`
	Limits   LimitsConfig   `yaml:"limits"`
	Log      LogConfig      `yaml:"log"`

	CORSOrigins []string `yaml:"cors_origins"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "sqlite" | "postgres"
	Path   string `yaml:"path"`   // sqlite file
	URL    string `yaml:"url"`    // postgres DSN
}

type LLMConfig struct {
	APIKey         string        `yaml:"api_key"`
	Model          string        `yaml:"model"`
	AssistantModel string        `yaml:"assistant_model"`
	Timeout        time.Duration `yaml:"timeout"`
	MaxRetries     int           `yaml:"max_retries"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff"`
}

type CacheConfig struct {
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	Size          int           `yaml:"size"`
	TTL           time.Duration `yaml:"ttl"`
}

type SessionConfig struct {
	Secret string        `yaml:"secret"`
	TTL    time.Duration `yaml:"ttl"`
}

type LimitsConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" | "console"
}

func DefaultConfig() *Config {
	return &Config{
		Port: "8000",
		Database: DatabaseConfig{
			Driver: "sqlite",
			Path:   "data/healthcare_data.db",
		},
		LLM: LLMConfig{
			Model:          "gemini-2.5-flash",
			AssistantModel: "gemini-2.0-flash",
			Timeout:        30 * time.Second,
			MaxRetries:     3,
			InitialBackoff: 500 * time.Millisecond,
			MaxBackoff:     8 * time.Second,
		},
		Cache:   CacheConfig{Size: 128, TTL: time.Hour},
		Session: SessionConfig{TTL: 72 * time.Hour},
		Limits:  LimitsConfig{RPS: 5, Burst: 10},
		Log:     LogConfig{Level: "info", Format: "json"},
		CORSOrigins: []string{
			"http://localhost:3000",
			"http://localhost:5173",
			"http://localhost:3001",
		},
	}
}

// Load layers defaults, the YAML file named by CONFIG_FILE, a .env file and
// the process environment, in that order.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// .env is optional; existing env vars win over it
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	c.Port = GetEnvAsString("PORT", c.Port)

	c.Database.Driver = GetEnvAsString("DB_DRIVER", c.Database.Driver)
	c.Database.Path = GetEnvAsString("DATABASE_PATH", c.Database.Path)
	c.Database.URL = GetEnvAsString("DATABASE_URL", c.Database.URL)

	// GEMINI_API_KEY takes priority over GOOGLE_API_KEY
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		c.LLM.APIKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.APIKey = key
	}
	if isPlaceholderKey(c.LLM.APIKey) {
		c.LLM.APIKey = ""
	}
	c.LLM.Model = GetEnvAsString("GEMINI_MODEL", c.LLM.Model)
	c.LLM.AssistantModel = GetEnvAsString("ASSISTANT_MODEL", c.LLM.AssistantModel)
	c.LLM.Timeout = GetEnvAsDuration("LLM_TIMEOUT", c.LLM.Timeout)
	c.LLM.MaxRetries = GetEnvAsInt("LLM_MAX_RETRIES", c.LLM.MaxRetries)
	c.LLM.InitialBackoff = GetEnvAsDuration("LLM_INITIAL_BACKOFF", c.LLM.InitialBackoff)
	c.LLM.MaxBackoff = GetEnvAsDuration("LLM_MAX_BACKOFF", c.LLM.MaxBackoff)

	c.Cache.RedisAddr = GetEnvAsString("REDIS_ADDR", c.Cache.RedisAddr)
	c.Cache.RedisPassword = GetEnvAsString("REDIS_PASSWORD", c.Cache.RedisPassword)
	c.Cache.Size = GetEnvAsInt("ANSWER_CACHE_SIZE", c.Cache.Size)
	c.Cache.TTL = GetEnvAsDuration("ANSWER_CACHE_TTL", c.Cache.TTL)

	c.Session.Secret = GetEnvAsString("JWT_SECRET", c.Session.Secret)
	c.Session.TTL = GetEnvAsDuration("SESSION_TTL", c.Session.TTL)

	c.Limits.RPS = GetEnvAsFloat("RATE_LIMIT_RPS", c.Limits.RPS)
	c.Limits.Burst = GetEnvAsInt("RATE_LIMIT_BURST", c.Limits.Burst)

	c.Log.Level = GetEnvAsString("LOG_LEVEL", c.Log.Level)
	c.Log.Format = GetEnvAsString("LOG_FORMAT", c.Log.Format)

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.CORSOrigins = origins
	}
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("DATABASE_PATH is required for the sqlite driver")
		}
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.LLM.MaxRetries < 0 {
		return fmt.Errorf("LLM_MAX_RETRIES must not be negative")
	}
	if c.Cache.Size <= 0 {
		return fmt.Errorf("ANSWER_CACHE_SIZE must be positive")
	}
	if len(c.CORSOrigins) == 0 {
		return fmt.Errorf("CORS_ORIGINS must list at least one origin")
	}
	return nil
}

// LLMEnabled reports whether a usable API key is configured.
func (c *Config) LLMEnabled() bool { return c.LLM.APIKey != "" }

var placeholderKeys = []string{
	"your_api_key_here",
	"your_gemini_api_key_here",
	"your_google_api_key_here",
	"your_actual_gemini_api_key_here",
	"your_actual_google_api_key_here",
	"your_gemini_api_key_placeholder",
	"your_google_api_key_placeholder",
}

// isPlaceholderKey matches the sample values shipped in .env templates,
// ignoring case.
func isPlaceholderKey(key string) bool {
	key = strings.TrimSpace(key)
	if key == "" {
		return true
	}
	for _, p := range placeholderKeys {
		if strings.EqualFold(key, p) {
			return true
		}
	}
	return false
}

func GetEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func GetEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func GetEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func GetEnvAsString(key string, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
