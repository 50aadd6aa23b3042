package repo

import (
	"context"
	"errors"

	"github.com/KNICEX/oi-screener/internal/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrUserNotFound = errors.New("user settings not found")

type UserRepo interface {
	Find(ctx context.Context, userId int64) (entity.UserSettings, error)
	Save(ctx context.Context, settings entity.UserSettings) error
}

type userRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepo {
	return &userRepo{
		db: db,
	}
}

func (r *userRepo) Find(ctx context.Context, userId int64) (entity.UserSettings, error) {
	var settings entity.UserSettings
	err := r.db.WithContext(ctx).Where("user_id = ?", userId).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entity.UserSettings{}, ErrUserNotFound
	}
	if err != nil {
		return entity.UserSettings{}, err
	}
	return settings, nil
}

// Save 不存在则插入, 存在则覆盖设置
func (r *userRepo) Save(ctx context.Context, settings entity.UserSettings) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"period", "threshold", "active_exchanges", "time_zone", "updated_at"}),
	}).Create(&settings).Error
}
