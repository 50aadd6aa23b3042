package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/KNICEX/oi-screener/internal/repo"
	"github.com/KNICEX/oi-screener/internal/schedule"
	"github.com/KNICEX/oi-screener/internal/service/exchange"
	"github.com/KNICEX/oi-screener/internal/service/notification"
	"github.com/KNICEX/oi-screener/internal/service/signal"
)

var _ schedule.Task = (*Scanner)(nil)

const (
	DefaultTick          = 300 * time.Second
	DefaultRetentionDays = 1
)

// SignalScanner 对一个交易所的一批交易对做检测
type SignalScanner interface {
	Scan(ctx context.Context, src exchange.DataSource, symbols []string, params signal.Params) []signal.Signal
}

// Scanner 单个用户的扫描循环
type Scanner struct {
	userId   int64
	settings Settings
	params   signal.Params
	location *time.Location

	sources  []exchange.DataSource
	detector SignalScanner
	history  repo.HistoryRepo
	notifier notification.Notifier

	tick          time.Duration
	retentionDays int
	now           func() time.Time

	// 以下状态只在 Run 所在的 goroutine 内访问
	symbols     map[string][]string
	lastRefresh string
}

type ScannerOption func(s *Scanner)

func WithTick(tick time.Duration) ScannerOption {
	return func(s *Scanner) {
		if tick > 0 {
			s.tick = tick
		}
	}
}

func WithRetentionDays(days int) ScannerOption {
	return func(s *Scanner) {
		if days > 0 {
			s.retentionDays = days
		}
	}
}

func WithClock(now func() time.Time) ScannerOption {
	return func(s *Scanner) {
		if now != nil {
			s.now = now
		}
	}
}

func NewScanner(userId int64, settings Settings, interval exchange.Interval, sources []exchange.DataSource,
	detector SignalScanner, history repo.HistoryRepo, notifier notification.Notifier, opts ...ScannerOption) *Scanner {
	s := &Scanner{
		userId:        userId,
		settings:      settings,
		params:        settings.Params(interval),
		location:      settings.Location(),
		sources:       sources,
		detector:      detector,
		history:       history,
		notifier:      notifier,
		tick:          DefaultTick,
		retentionDays: DefaultRetentionDays,
		now:           time.Now,
		symbols:       make(map[string][]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scanner) Name() string {
	return fmt.Sprintf("oi scanner for user %d", s.userId)
}

// Run 循环扫描直到 ctx 取消
func (s *Scanner) Run(ctx context.Context) error {
	slog.Info("scanner started", "user", s.userId, "period", s.settings.Period,
		"threshold", s.settings.Threshold, "exchanges", s.settings.Exchanges)
	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Info("scanner stopped", "user", s.userId)
			return ctx.Err()
		case <-timer.C:
		}
		s.Tick(ctx)
		timer.Reset(s.tick)
	}
}

// Tick 执行一轮: 必要时刷新交易对, 然后扫描所有交易所
func (s *Scanner) Tick(ctx context.Context) {
	s.refresh(ctx)
	for _, src := range s.sources {
		if ctx.Err() != nil {
			return
		}
		s.scanExchange(ctx, src)
	}
}

func (s *Scanner) refresh(ctx context.Context) {
	now := s.now()
	day := now.UTC().Format(time.DateOnly)
	if day != s.lastRefresh {
		clear(s.symbols)
		if err := s.history.Trim(ctx, now.UnixMilli(), s.retentionDays); err != nil {
			slog.Error("failed to trim oi history", "user", s.userId, "error", err)
		}
		s.lastRefresh = day
	}

	for _, src := range s.sources {
		if len(s.symbols[src.Name()]) > 0 {
			continue
		}
		symbols, err := src.GetUSDTSymbols(ctx)
		if err != nil {
			slog.Error("failed to get symbols", "exchange", src.Name(), "user", s.userId, "error", err)
			continue
		}
		s.symbols[src.Name()] = symbols
		slog.Info("symbols refreshed", "exchange", src.Name(), "user", s.userId, "count", len(symbols))
	}
}

func (s *Scanner) scanExchange(ctx context.Context, src exchange.DataSource) {
	symbols := s.symbols[src.Name()]
	if len(symbols) == 0 {
		return
	}
	signals := s.detector.Scan(ctx, src, symbols, s.params)
	if len(signals) == 0 {
		slog.Debug("no signal", "exchange", src.Name(), "user", s.userId)
		return
	}
	for _, sig := range signals {
		if err := s.notifier.Notify(ctx, s.userId, FormatSignal(sig, s.location)); err != nil {
			slog.Error("failed to notify signal", "user", s.userId, "exchange", sig.Exchange, "symbol", sig.Symbol, "error", err)
		}
	}
}
