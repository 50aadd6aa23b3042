package exchange

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Interval string

func (i Interval) ToString() string {
	return string(i)
}

const (
	Interval5m  Interval = "5m"
	Interval15m Interval = "15m"
	Interval30m Interval = "30m"
)

// ParseInterval 支持 "5", "5m", "5min"
func ParseInterval(s string) (Interval, error) {
	s = strings.TrimSuffix(strings.TrimSuffix(strings.TrimSpace(s), "min"), "m")
	switch s {
	case "5":
		return Interval5m, nil
	case "15":
		return Interval15m, nil
	case "30":
		return Interval30m, nil
	}
	return "", fmt.Errorf("unsupported interval %q", s)
}

// Minutes 周期对应的分钟数, 未知周期返回 0
func (i Interval) Minutes() int {
	n, err := strconv.Atoi(strings.TrimSuffix(string(i), "m"))
	if err != nil {
		return 0
	}
	return n
}

func (i Interval) Duration() time.Duration {
	return time.Duration(i.Minutes()) * time.Minute
}
