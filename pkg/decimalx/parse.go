package decimalx

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ParseFloat 交易所返回的数值多为字符串, 先按 decimal 解析再转 float64
func ParseFloat(s string) (float64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse decimal %q: %w", s, err)
	}
	return d.InexactFloat64(), nil
}

// ParseFloats 任一解析失败即返回错误
func ParseFloats(ss ...string) ([]float64, error) {
	res := make([]float64, len(ss))
	for i, s := range ss {
		f, err := ParseFloat(s)
		if err != nil {
			return nil, err
		}
		res[i] = f
	}
	return res, nil
}
