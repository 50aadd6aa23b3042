package ioc

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/KNICEX/oi-screener/internal/repo"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB() *gorm.DB {
	type Config struct {
		DSN string `mapstructure:"dsn"`
	}

	cfg := Config{DSN: "./storage/signals.db"}
	if err := unmarshalKey("db", &cfg); err != nil {
		panic(err)
	}

	if !strings.Contains(cfg.DSN, ":memory:") {
		if err := os.MkdirAll(filepath.Dir(cfg.DSN), 0o755); err != nil {
			panic(err)
		}
	}

	db, err := gorm.Open(sqlite.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		panic(err)
	}
	if err = repo.InitTables(db); err != nil {
		panic(err)
	}
	return db
}
