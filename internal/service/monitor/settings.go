package monitor

import (
	"slices"
	"strings"
	"time"
	// 容器内可能没有系统时区库
	_ "time/tzdata"

	"github.com/KNICEX/oi-screener/internal/entity"
	"github.com/KNICEX/oi-screener/internal/service/exchange"
	"github.com/KNICEX/oi-screener/internal/service/signal"
	"github.com/samber/lo"
)

// Settings 扫描会话的配置快照
type Settings struct {
	Period    int
	Threshold float64
	Exchanges []string
	TimeZone  string
}

func SettingsFromEntity(u entity.UserSettings) Settings {
	return Settings{
		Period:    u.Period,
		Threshold: u.Threshold,
		Exchanges: slices.Clone(u.ActiveExchanges),
		TimeZone:  u.TimeZone,
	}
}

func (s Settings) normalizedExchanges() []string {
	names := lo.Uniq(lo.Map(s.Exchanges, func(item string, _ int) string {
		return strings.ToLower(strings.TrimSpace(item))
	}))
	slices.Sort(names)
	return names
}

// Equal 交易所顺序和大小写不影响比较
func (s Settings) Equal(o Settings) bool {
	return s.Period == o.Period &&
		s.Threshold == o.Threshold &&
		s.TimeZone == o.TimeZone &&
		slices.Equal(s.normalizedExchanges(), o.normalizedExchanges())
}

func (s Settings) Params(interval exchange.Interval) signal.Params {
	return signal.Params{
		Threshold: s.Threshold,
		Period:    s.Period,
		Interval:  interval,
	}
}

// Location 无效时区回退到 UTC
func (s Settings) Location() *time.Location {
	if s.TimeZone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}
