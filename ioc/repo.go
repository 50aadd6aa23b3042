package ioc

import (
	"fmt"

	"github.com/KNICEX/oi-screener/internal/repo"
	"gorm.io/gorm"
)

type HistoryConfig struct {
	// Backend sql 或 redis
	Backend       string `mapstructure:"backend"`
	RetentionDays int    `mapstructure:"retention_days"`
}

func InitHistoryConfig() HistoryConfig {
	cfg := HistoryConfig{Backend: "sql", RetentionDays: 1}
	if err := unmarshalKey("history", &cfg); err != nil {
		panic(err)
	}
	return cfg
}

func InitHistoryRepo(db *gorm.DB, cfg HistoryConfig) repo.HistoryRepo {
	switch cfg.Backend {
	case "", "sql":
		return repo.NewHistoryRepo(db)
	case "redis":
		return repo.NewRedisHistoryRepo(InitRedis())
	default:
		panic(fmt.Sprintf("unknown history backend %q", cfg.Backend))
	}
}

func InitUserRepo(db *gorm.DB) repo.UserRepo {
	return repo.NewUserRepo(db)
}
