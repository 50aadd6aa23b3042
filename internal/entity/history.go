package entity

// OpenInterestHistory 持仓量历史, 每个扫描周期每个交易对最多追加一条
type OpenInterestHistory struct {
	Id           int64   `gorm:"primaryKey;autoIncrement"`
	Symbol       string  `gorm:"index:idx_symbol_exchange_time,priority:1"`
	Exchange     string  `gorm:"index:idx_symbol_exchange_time,priority:2"`
	Timestamp    int64   `gorm:"index;index:idx_symbol_exchange_time,priority:3"` // 毫秒
	OpenInterest float64
}

func (OpenInterestHistory) TableName() string {
	return "history_temp"
}
