package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Mageswarikaruppasamy/MultiAgent-Healthcare/models"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"moul.io/zapgorm2"
)

// InitDB opens the configured database. Call Migrate before serving.
// gorm logs through log; SQL traces appear when it is at debug level.
func InitDB(cfg DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.URL)
	default:
		if dir := filepath.Dir(cfg.Path); dir != "." && !isMemoryPath(cfg.Path) {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database dir: %w", err)
			}
		}
		dialector = sqlite.Open(cfg.Path)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
		Logger:  newGormLogger(log),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func newGormLogger(log *zap.Logger) gormlogger.Interface {
	if log == nil {
		log = zap.NewNop()
	}
	gl := zapgorm2.New(log.Named("gorm"))
	gl.IgnoreRecordNotFoundError = true
	gl.SlowThreshold = 200 * time.Millisecond
	gl.LogLevel = gormlogger.Warn
	if log.Core().Enabled(zapcore.DebugLevel) {
		gl.LogLevel = gormlogger.Info
	}
	return gl
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.MoodLog{},
		&models.CGMReading{},
		&models.FoodLog{},
		&models.MealPlan{},
		&models.Alert{},
	); err != nil {
		return fmt.Errorf("AutoMigrate failed: %w", err)
	}
	return nil
}

func isMemoryPath(p string) bool {
	return p == ":memory:" || strings.HasPrefix(p, "file:")
}
