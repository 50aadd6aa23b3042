package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityMonitor_Check(t *testing.T) {
	ctx := context.Background()
	day := 24 * time.Hour
	now := time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC)

	stopper := &stopRecorder{}
	notifier := &recordNotifier{}
	a := NewActivityMonitor(stopper, notifier,
		WithInactivityDays(3),
		WithWaitingDays(1),
		WithActivityClock(func() time.Time { return now }),
	)

	a.MarkActive(1)
	a.MarkActive(2)

	// 两天后都还活跃
	a.Check(ctx, now.Add(2*day))
	assert.Empty(t, notifier.sent())

	// 用户 2 在第二天有操作
	now = now.Add(2 * day)
	a.MarkActive(2)

	// 第三天: 用户 1 收到确认
	a.Check(ctx, now.Add(day))
	msgs := notifier.sent()
	require.Len(t, msgs, 1)
	assert.Equal(t, int64(1), msgs[0].userId)
	require.Len(t, msgs[0].msg.Buttons, 1)
	assert.Equal(t, "confirm:1", msgs[0].msg.Buttons[0][0].Data)
	assert.True(t, a.Pending(1))
	assert.False(t, a.Pending(2))

	// 等待期内不重复发送
	a.Check(ctx, now.Add(day+time.Hour))
	assert.Len(t, notifier.sent(), 1)

	// 超过等待期: 停止用户 1
	a.Check(ctx, now.Add(2*day))
	assert.Equal(t, []int64{1}, stopper.stopped)
	msgs = notifier.sent()
	require.Len(t, msgs, 2)
	assert.Equal(t, "❌ Scanner stopped.", msgs[1].msg.Text)
	assert.False(t, a.Tracked(1))
	assert.False(t, a.Pending(1))
	assert.True(t, a.Tracked(2))
}

func TestActivityMonitor_Confirm(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC)
	stopper := &stopRecorder{}
	notifier := &recordNotifier{}
	a := NewActivityMonitor(stopper, notifier, WithActivityClock(func() time.Time { return now }))

	a.MarkActive(5)
	now = now.Add(3 * 24 * time.Hour)
	a.Check(ctx, now)
	require.True(t, a.Pending(5))

	// 用户点击确认
	a.MarkActive(5)
	assert.False(t, a.Pending(5))

	a.Check(ctx, now.Add(24*time.Hour))
	assert.Empty(t, stopper.stopped)
	assert.Len(t, notifier.sent(), 1)
}

func TestActivityMonitor_NotRunning(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC)
	stopper := &stopRecorder{status: StatusNotRunning}
	notifier := &recordNotifier{}
	a := NewActivityMonitor(stopper, notifier, WithActivityClock(func() time.Time { return now }))

	a.MarkActive(5)
	a.Check(ctx, now.Add(3*24*time.Hour))
	a.Check(ctx, now.Add(4*24*time.Hour))

	assert.Equal(t, []int64{5}, stopper.stopped)
	// 只有确认消息, 没有停止通知
	assert.Len(t, notifier.sent(), 1)
	assert.False(t, a.Tracked(5))
}

func TestActivityMonitor_StopFailure(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC)
	stopper := &stopRecorder{err: errors.New("stop timeout")}
	notifier := &recordNotifier{}
	a := NewActivityMonitor(stopper, notifier, WithActivityClock(func() time.Time { return now }))

	a.MarkActive(7)
	a.Check(ctx, now.Add(3*24*time.Hour))
	a.Check(ctx, now.Add(4*24*time.Hour))
	assert.Equal(t, []int64{7}, stopper.stopped)
	assert.True(t, a.Tracked(7))
	assert.True(t, a.Pending(7))

	// 下次检查重新尝试停止
	stopper.err = nil
	a.Check(ctx, now.Add(5*24*time.Hour))
	assert.Equal(t, []int64{7, 7}, stopper.stopped)
	assert.False(t, a.Tracked(7))
	assert.False(t, a.Pending(7))
	msgs := notifier.sent()
	require.Len(t, msgs, 2)
	assert.Equal(t, "❌ Scanner stopped.", msgs[1].msg.Text)
}

func TestActivityMonitor_Run(t *testing.T) {
	stopper := &stopRecorder{}
	notifier := &recordNotifier{}
	start := time.Now()
	a := NewActivityMonitor(stopper, notifier,
		WithCheckEvery(10*time.Millisecond),
		WithActivityClock(func() time.Time { return start.Add(-4 * 24 * time.Hour) }),
	)
	a.MarkActive(3)
	// 之后的检查使用真实时间
	a.now = time.Now

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Run(ctx)
	}()

	require.Eventually(t, func() bool {
		return len(notifier.sent()) > 0
	}, 5*time.Second, 10*time.Millisecond)
	cancel()
	assert.True(t, errors.Is(<-errCh, context.Canceled))
	assert.Equal(t, "user activity monitor", a.Name())
}
