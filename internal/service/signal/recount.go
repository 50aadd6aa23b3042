package signal

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/KNICEX/oi-screener/internal/entity"
	"github.com/KNICEX/oi-screener/internal/repo"
	"github.com/samber/lo"
)

// Recounter 根据历史持仓量重算过去 24h 内的触发次数
type Recounter struct {
	history repo.HistoryRepo
}

func NewRecounter(history repo.HistoryRepo) *Recounter {
	return &Recounter{
		history: history,
	}
}

// Recount 统计 before 之前 24h 内满足阈值的窗口数
// 同一起点最多计一次, 采样间隔不连续的点对跳过
// 最早的 limit-1 个点凑不满一个完整窗口, 不作为起点
func (r *Recounter) Recount(ctx context.Context, symbol, exchangeName string, before int64, params Params) (int, error) {
	step := params.Interval.Duration().Milliseconds()
	if step <= 0 {
		return 0, fmt.Errorf("invalid interval %q", params.Interval)
	}

	rows, err := r.history.FindBefore(ctx, symbol, exchangeName, before)
	if err != nil {
		return 0, fmt.Errorf("find history %s %s: %w", exchangeName, symbol, err)
	}

	// 多个会话可能写入同一时间点
	rows = lo.UniqBy(rows, func(item entity.OpenInterestHistory) int64 {
		return item.Timestamp
	})
	slices.SortStableFunc(rows, func(a, b entity.OpenInterestHistory) int {
		return cmp.Compare(b.Timestamp, a.Timestamp)
	})

	limit := params.Limit()
	count := 0
	for j := 0; j < len(rows)-(limit-1); j++ {
		for k := 1; k < limit; k++ {
			if rows[j].Timestamp-rows[j+k].Timestamp != int64(k)*step {
				continue
			}
			delta, ok := Delta(rows[j].OpenInterest, rows[j+k].OpenInterest)
			if !ok {
				break
			}
			if delta > params.Threshold {
				count++
				break
			}
		}
	}
	return count, nil
}
