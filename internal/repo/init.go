package repo

import (
	"github.com/KNICEX/oi-screener/internal/entity"
	"gorm.io/gorm"
)

func InitTables(db *gorm.DB) error {
	return db.AutoMigrate(&entity.OpenInterestHistory{}, &entity.UserSettings{})
}
