package repo

import (
	"context"
	"time"

	"github.com/KNICEX/oi-screener/internal/entity"
	"gorm.io/gorm"
)

// HistoryWindow 历史查询窗口
const HistoryWindow = 24 * time.Hour

type HistoryRepo interface {
	Append(ctx context.Context, history entity.OpenInterestHistory) error
	// FindBefore 返回 [before-24h, before] 内的记录, 按时间升序
	FindBefore(ctx context.Context, symbol, exchange string, before int64) ([]entity.OpenInterestHistory, error)
	// Trim 删除早于 now - retentionDays 的记录
	Trim(ctx context.Context, now int64, retentionDays int) error
}

type historyRepo struct {
	db *gorm.DB
}

func NewHistoryRepo(db *gorm.DB) HistoryRepo {
	return &historyRepo{
		db: db,
	}
}

func (r *historyRepo) Append(ctx context.Context, history entity.OpenInterestHistory) error {
	history.Id = 0
	return r.db.WithContext(ctx).Create(&history).Error
}

func (r *historyRepo) FindBefore(ctx context.Context, symbol, exchange string, before int64) ([]entity.OpenInterestHistory, error) {
	var histories []entity.OpenInterestHistory
	since := before - HistoryWindow.Milliseconds()
	err := r.db.WithContext(ctx).
		Where("symbol = ? AND exchange = ? AND timestamp <= ? AND timestamp >= ?", symbol, exchange, before, since).
		Order("timestamp ASC").
		Find(&histories).Error
	if err != nil {
		return nil, err
	}
	return histories, nil
}

func (r *historyRepo) Trim(ctx context.Context, now int64, retentionDays int) error {
	threshold := now - int64(retentionDays)*HistoryWindow.Milliseconds()
	return r.db.WithContext(ctx).Where("timestamp < ?", threshold).Delete(&entity.OpenInterestHistory{}).Error
}
