package monitor

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/KNICEX/oi-screener/internal/schedule"
	"github.com/google/uuid"
)

type StartStatus string

const (
	StatusStarted        StartStatus = "started"
	StatusAlreadyRunning StartStatus = "already_running"
)

type StopStatus string

const (
	StatusStopped    StopStatus = "stopped"
	StatusNotRunning StopStatus = "not_running"
)

// TaskFactory 按用户配置构造扫描任务, 数据源在此时绑定
type TaskFactory func(userId int64, settings Settings) (schedule.Task, error)

type Session struct {
	Id        string
	UserId    int64
	Settings  Settings
	StartedAt time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

func (s *Session) running() bool {
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

// wait 等待任务退出
func (s *Session) wait(ctx context.Context) error {
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait session %s exit: %w", s.Id, ctx.Err())
	}
}

// Manager 管理所有用户的扫描会话, 每个用户最多一个
type Manager struct {
	// ops 串行化启动/停止
	ops sync.Mutex
	mu  sync.RWMutex

	base     context.Context
	factory  TaskFactory
	sessions map[int64]*Session
	now      func() time.Time
}

// NewManager base 为所有会话的父 context, 通常是进程的根 context
func NewManager(base context.Context, factory TaskFactory) *Manager {
	return &Manager{
		base:     base,
		factory:  factory,
		sessions: make(map[int64]*Session),
		now:      time.Now,
	}
}

func (m *Manager) get(userId int64) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[userId]
	return s, ok
}

// StartOrRestart 配置未变且仍在运行时不做处理, 否则先停止旧会话再启动
func (m *Manager) StartOrRestart(ctx context.Context, userId int64, settings Settings) (StartStatus, error) {
	m.ops.Lock()
	defer m.ops.Unlock()

	if old, ok := m.get(userId); ok {
		if old.running() && old.Settings.Equal(settings) {
			return StatusAlreadyRunning, nil
		}
		if err := m.stop(ctx, old); err != nil {
			return "", err
		}
	}

	task, err := m.factory(userId, settings)
	if err != nil {
		return "", fmt.Errorf("create scanner for user %d: %w", userId, err)
	}

	taskCtx, cancel := context.WithCancel(m.base)
	sess := &Session{
		Id:        uuid.NewString(),
		UserId:    userId,
		Settings:  settings,
		StartedAt: m.now(),
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	go func() {
		defer close(sess.done)
		if err := task.Run(taskCtx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("scanner session exited", "user", userId, "session", sess.Id, "task", task.Name(), "error", err)
		}
	}()

	m.mu.Lock()
	m.sessions[userId] = sess
	m.mu.Unlock()
	slog.Info("scanner session started", "user", userId, "session", sess.Id)
	return StatusStarted, nil
}

// Stop 幂等, 没有会话时返回 StatusNotRunning
func (m *Manager) Stop(ctx context.Context, userId int64) (StopStatus, error) {
	m.ops.Lock()
	defer m.ops.Unlock()

	sess, ok := m.get(userId)
	if !ok {
		return StatusNotRunning, nil
	}
	if err := m.stop(ctx, sess); err != nil {
		return "", err
	}
	return StatusStopped, nil
}

// stop 取消并等待会话退出, 调用方持有 ops
func (m *Manager) stop(ctx context.Context, sess *Session) error {
	sess.cancel()
	if err := sess.wait(ctx); err != nil {
		slog.Error("failed to stop scanner session", "user", sess.UserId, "session", sess.Id, "error", err)
		return err
	}
	m.mu.Lock()
	delete(m.sessions, sess.UserId)
	m.mu.Unlock()
	slog.Info("scanner session stopped", "user", sess.UserId, "session", sess.Id)
	return nil
}

func (m *Manager) IsRunning(userId int64) bool {
	sess, ok := m.get(userId)
	return ok && sess.running()
}

// Sessions 按用户 id 排序的快照
func (m *Manager) Sessions() []Session {
	m.mu.RLock()
	res := make([]Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		res = append(res, Session{
			Id:        sess.Id,
			UserId:    sess.UserId,
			Settings:  sess.Settings,
			StartedAt: sess.StartedAt,
		})
	}
	m.mu.RUnlock()
	slices.SortFunc(res, func(a, b Session) int {
		return cmp.Compare(a.UserId, b.UserId)
	})
	return res
}

// Shutdown 停止所有会话
func (m *Manager) Shutdown(ctx context.Context) error {
	m.ops.Lock()
	defer m.ops.Unlock()

	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		sessions = append(sessions, sess)
	}
	m.mu.RUnlock()

	var errs []error
	for _, sess := range sessions {
		if err := m.stop(ctx, sess); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
