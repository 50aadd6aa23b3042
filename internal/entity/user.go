package entity

import (
	"time"
)

// UserSettings 用户扫描设置
type UserSettings struct {
	UserId          int64    `gorm:"primaryKey;autoIncrement:false"`
	Period          int      // 分钟, 5-30
	Threshold       float64  // 比例, 0.05 = 5%
	ActiveExchanges []string `gorm:"serializer:json"`
	TimeZone        string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
