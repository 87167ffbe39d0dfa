package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Mageswarikaruppasamy/MultiAgent-Healthcare/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

var envKeys = []string{
	"CONFIG_FILE", "PORT", "DB_DRIVER", "DATABASE_PATH", "DATABASE_URL",
	"GEMINI_API_KEY", "GOOGLE_API_KEY", "GEMINI_MODEL", "ASSISTANT_MODEL",
	"LLM_TIMEOUT", "LLM_MAX_RETRIES", "LLM_INITIAL_BACKOFF", "LLM_MAX_BACKOFF",
	"REDIS_ADDR", "REDIS_PASSWORD", "ANSWER_CACHE_SIZE", "ANSWER_CACHE_TTL",
	"JWT_SECRET", "SESSION_TTL", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	"LOG_LEVEL", "LOG_FORMAT", "CORS_ORIGINS",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.False(t, cfg.LLMEnabled())
	assert.Equal(t, 3, cfg.LLM.MaxRetries)
	assert.Contains(t, cfg.CORSOrigins, "http://localhost:3000")
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("GOOGLE_API_KEY", "google-key")
	t.Setenv("GEMINI_API_KEY", "gemini-key")
	t.Setenv("LLM_TIMEOUT", "5s")
	t.Setenv("LLM_MAX_RETRIES", "1")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example ,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "gemini-key", cfg.LLM.APIKey)
	assert.Equal(t, 5*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 1, cfg.LLM.MaxRetries)
	assert.Equal(t, 2.5, cfg.Limits.RPS)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestLoadPlaceholderKeyDisablesLLM(t *testing.T) {
	tests := []struct {
		env, value string
	}{
		{"GEMINI_API_KEY", "your_gemini_api_key_here"},
		{"GEMINI_API_KEY", "YOUR_GEMINI_API_KEY_PLACEHOLDER"},
		{"GEMINI_API_KEY", "your_actual_gemini_api_key_here"},
		{"GOOGLE_API_KEY", "YOUR_GOOGLE_API_KEY_PLACEHOLDER"},
		{"GOOGLE_API_KEY", "YOUR_ACTUAL_GOOGLE_API_KEY_HERE"},
		{"GOOGLE_API_KEY", "  Your_Api_Key_Here "},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.env, tt.value)

			cfg, err := Load()
			require.NoError(t, err)
			assert.False(t, cfg.LLMEnabled(), "%s=%q must count as unset", tt.env, tt.value)
		})
	}

	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "AIzaSy-real-looking-key")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.LLMEnabled())
}

func TestLoadYAMLFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "7000"
database:
  driver: sqlite
  path: /tmp/health.db
llm:
  model: gemini-test
  timeout: 45s
cache:
  size: 16
`), 0o644))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "7001")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "7001", cfg.Port, "environment wins over the file")
	assert.Equal(t, "/tmp/health.db", cfg.Database.Path)
	assert.Equal(t, "gemini-test", cfg.LLM.Model)
	assert.Equal(t, 45*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 16, cfg.Cache.Size)
	assert.Equal(t, "gemini-2.0-flash", cfg.LLM.AssistantModel, "unset keys keep defaults")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }},
		{"sqlite without path", func(c *Config) { c.Database.Path = "" }},
		{"postgres without url", func(c *Config) { c.Database.Driver = "postgres" }},
		{"negative retries", func(c *Config) { c.LLM.MaxRetries = -1 }},
		{"empty cache", func(c *Config) { c.Cache.Size = 0 }},
		{"no cors origins", func(c *Config) { c.CORSOrigins = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
	assert.NoError(t, DefaultConfig().Validate())
}

func TestInitDBAndMigrate(t *testing.T) {
	db, err := InitDB(DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "nested", "app.db")}, nil)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	for _, table := range []string{"users", "mood_logs", "cgm_readings", "food_logs", "meal_plans", "alerts"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestInitDBLogsThroughZap(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	db, err := InitDB(DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "app.db")}, zap.New(core))
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	var n int64
	require.NoError(t, db.Table("users").Count(&n).Error)
	assert.Positive(t, logs.FilterFieldKey("sql").Len(), "debug logger receives SQL traces")

	before := logs.FilterLevelExact(zapcore.ErrorLevel).Len()
	err = db.Take(&models.User{}, 999).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Equal(t, before, logs.FilterLevelExact(zapcore.ErrorLevel).Len(), "missing rows are not logged as errors")
}

func TestInitDBQuietAtInfo(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	db, err := InitDB(DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "app.db")}, zap.New(core))
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	assert.Zero(t, logs.FilterFieldKey("sql").Len())
}
