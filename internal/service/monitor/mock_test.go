package monitor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/KNICEX/oi-screener/internal/entity"
	"github.com/KNICEX/oi-screener/internal/service/exchange"
	"github.com/KNICEX/oi-screener/internal/service/notification"
	"github.com/KNICEX/oi-screener/internal/service/signal"
)

var errBoom = errors.New("boom")

type sent struct {
	userId int64
	msg    notification.Message
}

type recordNotifier struct {
	mu   sync.Mutex
	msgs []sent
	err  error
}

func (r *recordNotifier) Notify(ctx context.Context, userId int64, msg notification.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, sent{userId: userId, msg: msg})
	return r.err
}

func (r *recordNotifier) sent() []sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]sent(nil), r.msgs...)
}

type trimHistory struct {
	mu    sync.Mutex
	trims []int64
	err   error
}

func (h *trimHistory) Append(ctx context.Context, history entity.OpenInterestHistory) error {
	return nil
}

func (h *trimHistory) FindBefore(ctx context.Context, symbol, exchangeName string, before int64) ([]entity.OpenInterestHistory, error) {
	return nil, nil
}

func (h *trimHistory) Trim(ctx context.Context, now int64, retentionDays int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.trims = append(h.trims, now)
	return h.err
}

type stubSource struct {
	name        string
	symbols     []string
	symbolErrs  int
	symbolCalls int
}

func (s *stubSource) Name() string {
	return s.name
}

func (s *stubSource) GetUSDTSymbols(ctx context.Context) ([]string, error) {
	s.symbolCalls++
	if s.symbolErrs > 0 {
		s.symbolErrs--
		return nil, errBoom
	}
	return s.symbols, nil
}

func (s *stubSource) GetOpenInterest(ctx context.Context, symbol string, interval exchange.Interval, limit int) ([]exchange.OpenInterest, error) {
	return nil, nil
}

func (s *stubSource) GetOhlcv(ctx context.Context, symbol string, interval exchange.Interval, start, end time.Time) ([]exchange.Ohlcv, error) {
	return nil, nil
}

type scanCall struct {
	exchange string
	symbols  []string
	params   signal.Params
}

type stubDetector struct {
	mu      sync.Mutex
	calls   []scanCall
	signals map[string][]signal.Signal
	scanned chan string
}

func (d *stubDetector) Scan(ctx context.Context, src exchange.DataSource, symbols []string, params signal.Params) []signal.Signal {
	d.mu.Lock()
	d.calls = append(d.calls, scanCall{exchange: src.Name(), symbols: symbols, params: params})
	d.mu.Unlock()
	if d.scanned != nil {
		select {
		case d.scanned <- src.Name():
		default:
		}
	}
	return d.signals[src.Name()]
}

// blockingTask 阻塞直到 ctx 取消
type blockingTask struct {
	started chan struct{}
	exited  atomic.Bool
}

func newBlockingTask() *blockingTask {
	return &blockingTask{started: make(chan struct{})}
}

func (t *blockingTask) Run(ctx context.Context) error {
	close(t.started)
	<-ctx.Done()
	t.exited.Store(true)
	return ctx.Err()
}

func (t *blockingTask) Name() string {
	return "blocking task"
}

// stubbornTask 忽略取消
type stubbornTask struct {
	release chan struct{}
}

func (t *stubbornTask) Run(ctx context.Context) error {
	<-t.release
	return nil
}

func (t *stubbornTask) Name() string {
	return "stubborn task"
}

type stopRecorder struct {
	mu      sync.Mutex
	stopped []int64
	status  StopStatus
	err     error
}

func (s *stopRecorder) Stop(ctx context.Context, userId int64) (StopStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = append(s.stopped, userId)
	if s.err != nil {
		return "", s.err
	}
	if s.status == "" {
		return StatusStopped, nil
	}
	return s.status, nil
}
