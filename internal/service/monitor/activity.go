package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/KNICEX/oi-screener/internal/schedule"
	"github.com/KNICEX/oi-screener/internal/service/notification"
)

var _ schedule.Task = (*ActivityMonitor)(nil)

const (
	DefaultInactivityDays = 3
	DefaultWaitingDays    = 1
	DefaultCheckEvery     = 24 * time.Hour

	ConfirmPrefix = "confirm:"
)

// Stopper 由 Manager 实现
type Stopper interface {
	Stop(ctx context.Context, userId int64) (StopStatus, error)
}

// ActivityMonitor 长期不活跃的用户先确认, 超时未确认则停止扫描
type ActivityMonitor struct {
	mu         sync.Mutex
	lastActive map[int64]time.Time
	pending    map[int64]time.Time

	stopper  Stopper
	notifier notification.Notifier

	inactivity time.Duration
	waiting    time.Duration
	checkEvery time.Duration
	now        func() time.Time
}

type ActivityOption func(a *ActivityMonitor)

func WithInactivityDays(days int) ActivityOption {
	return func(a *ActivityMonitor) {
		if days > 0 {
			a.inactivity = time.Duration(days) * 24 * time.Hour
		}
	}
}

func WithWaitingDays(days int) ActivityOption {
	return func(a *ActivityMonitor) {
		if days > 0 {
			a.waiting = time.Duration(days) * 24 * time.Hour
		}
	}
}

func WithCheckEvery(d time.Duration) ActivityOption {
	return func(a *ActivityMonitor) {
		if d > 0 {
			a.checkEvery = d
		}
	}
}

func WithActivityClock(now func() time.Time) ActivityOption {
	return func(a *ActivityMonitor) {
		if now != nil {
			a.now = now
		}
	}
}

func NewActivityMonitor(stopper Stopper, notifier notification.Notifier, opts ...ActivityOption) *ActivityMonitor {
	a := &ActivityMonitor{
		lastActive: make(map[int64]time.Time),
		pending:    make(map[int64]time.Time),
		stopper:    stopper,
		notifier:   notifier,
		inactivity: DefaultInactivityDays * 24 * time.Hour,
		waiting:    DefaultWaitingDays * 24 * time.Hour,
		checkEvery: DefaultCheckEvery,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *ActivityMonitor) Name() string {
	return "user activity monitor"
}

// MarkActive 刷新最后活跃时间并取消待确认状态
func (a *ActivityMonitor) MarkActive(userId int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastActive[userId] = a.now()
	delete(a.pending, userId)
}

func (a *ActivityMonitor) Pending(userId int64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.pending[userId]
	return ok
}

func (a *ActivityMonitor) Tracked(userId int64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.lastActive[userId]
	return ok
}

type activityAction int

const (
	actionConfirm activityAction = iota + 1
	actionStop
)

func (a *ActivityMonitor) decide(now time.Time) map[int64]activityAction {
	a.mu.Lock()
	defer a.mu.Unlock()
	actions := make(map[int64]activityAction)
	for userId, last := range a.lastActive {
		if sentAt, ok := a.pending[userId]; ok {
			if now.Sub(sentAt) >= a.waiting {
				actions[userId] = actionStop
			}
			continue
		}
		if now.Sub(last) >= a.inactivity {
			actions[userId] = actionConfirm
			a.pending[userId] = now
		}
	}
	return actions
}

// forget 停止成功后不再跟踪, 期间用户确认过则保留
func (a *ActivityMonitor) forget(userId int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.pending[userId]; !ok {
		return
	}
	delete(a.pending, userId)
	delete(a.lastActive, userId)
}

// Check 执行一次检查
func (a *ActivityMonitor) Check(ctx context.Context, now time.Time) {
	for userId, action := range a.decide(now) {
		switch action {
		case actionConfirm:
			err := a.notifier.Notify(ctx, userId, notification.Message{
				Text: "❗️ It looks like you haven't used the scanner for a few days.\n" +
					"If you still need it, press the button below, otherwise it will be stopped.",
				Buttons: [][]notification.Button{{
					{Text: "❓ Confirm", Data: fmt.Sprintf("%s%d", ConfirmPrefix, userId)},
				}},
			})
			if err != nil {
				slog.Error("failed to send activity confirmation", "user", userId, "error", err)
			}
		case actionStop:
			status, err := a.stopper.Stop(ctx, userId)
			if err != nil {
				// 保留待确认状态, 下次检查重试
				slog.Error("failed to stop inactive user scanner", "user", userId, "error", err)
				continue
			}
			a.forget(userId)
			if status != StatusStopped {
				continue
			}
			if err = a.notifier.Notify(ctx, userId, notification.Message{Text: "❌ Scanner stopped."}); err != nil {
				slog.Error("failed to notify scanner stopped", "user", userId, "error", err)
			}
			slog.Info("scanner stopped for inactive user", "user", userId)
		}
	}
}

func (a *ActivityMonitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(a.checkEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			a.Check(ctx, a.now())
		}
	}
}
