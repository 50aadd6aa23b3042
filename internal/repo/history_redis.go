package repo

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/KNICEX/oi-screener/internal/entity"
	"github.com/go-redis/redis/v8"
)

const (
	redisHistoryPrefix = "oi:history:"
	redisHistoryKeys   = "oi:history:keys"
)

// redisHistoryRepo 使用 ZSET 保存历史, score 为毫秒时间戳
type redisHistoryRepo struct {
	client *redis.Client
}

func NewRedisHistoryRepo(client *redis.Client) HistoryRepo {
	return &redisHistoryRepo{
		client: client,
	}
}

func historyKey(exchange, symbol string) string {
	return redisHistoryPrefix + exchange + ":" + symbol
}

func (r *redisHistoryRepo) Append(ctx context.Context, history entity.OpenInterestHistory) error {
	key := historyKey(history.Exchange, history.Symbol)
	member := fmt.Sprintf("%d:%s", history.Timestamp, strconv.FormatFloat(history.OpenInterest, 'f', -1, 64))

	pipe := r.client.TxPipeline()
	pipe.ZAdd(ctx, key, &redis.Z{
		Score:  float64(history.Timestamp),
		Member: member,
	})
	pipe.SAdd(ctx, redisHistoryKeys, key)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *redisHistoryRepo) FindBefore(ctx context.Context, symbol, exchange string, before int64) ([]entity.OpenInterestHistory, error) {
	since := before - HistoryWindow.Milliseconds()
	members, err := r.client.ZRangeByScore(ctx, historyKey(exchange, symbol), &redis.ZRangeBy{
		Min: strconv.FormatInt(since, 10),
		Max: strconv.FormatInt(before, 10),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("query redis history: %w", err)
	}

	histories := make([]entity.OpenInterestHistory, 0, len(members))
	for _, member := range members {
		ts, oi, err := parseHistoryMember(member)
		if err != nil {
			return nil, err
		}
		histories = append(histories, entity.OpenInterestHistory{
			Symbol:       symbol,
			Exchange:     exchange,
			Timestamp:    ts,
			OpenInterest: oi,
		})
	}
	return histories, nil
}

func (r *redisHistoryRepo) Trim(ctx context.Context, now int64, retentionDays int) error {
	threshold := now - int64(retentionDays)*HistoryWindow.Milliseconds()
	keys, err := r.client.SMembers(ctx, redisHistoryKeys).Result()
	if err != nil {
		return fmt.Errorf("list redis history keys: %w", err)
	}

	pipe := r.client.Pipeline()
	for _, key := range keys {
		// 开区间, 与 sql 的 timestamp < ? 保持一致
		pipe.ZRemRangeByScore(ctx, key, "-inf", "("+strconv.FormatInt(threshold, 10))
	}
	_, err = pipe.Exec(ctx)
	return err
}

func parseHistoryMember(member string) (int64, float64, error) {
	tsPart, oiPart, ok := strings.Cut(member, ":")
	if !ok {
		return 0, 0, fmt.Errorf("malformed history member %q", member)
	}
	ts, err := strconv.ParseInt(tsPart, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed history timestamp %q: %w", member, err)
	}
	oi, err := strconv.ParseFloat(oiPart, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed history value %q: %w", member, err)
	}
	return ts, oi, nil
}
