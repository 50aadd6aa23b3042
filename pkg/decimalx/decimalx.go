package decimalx

import "github.com/shopspring/decimal"

// FormatPercent 比例转两位小数的百分比字符串, 0.0523 -> "5.23%"
func FormatPercent(ratio float64) string {
	return decimal.NewFromFloat(ratio).Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
}
