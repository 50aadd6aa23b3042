package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/KNICEX/oi-screener/internal/schedule"
	"github.com/KNICEX/oi-screener/internal/service/monitor"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

var _ schedule.Task = (*Server)(nil)

const shutdownTimeout = 5 * time.Second

type SessionLister interface {
	Sessions() []monitor.Session
}

type sessionVO struct {
	UserId    int64     `json:"user_id"`
	SessionId string    `json:"session_id"`
	Period    int       `json:"period"`
	Threshold float64   `json:"threshold"`
	Exchanges []string  `json:"exchanges"`
	TimeZone  string    `json:"time_zone"`
	StartedAt time.Time `json:"started_at"`
}

// Server 只读的状态接口
type Server struct {
	addr     string
	engine   *gin.Engine
	sessions SessionLister
}

func NewServer(addr string, sessions SessionLister) *Server {
	engine := gin.New()
	engine.Use(gin.Recovery())
	s := &Server{
		addr:     addr,
		engine:   engine,
		sessions: sessions,
	}
	engine.GET("/healthz", s.healthz)
	engine.GET("/sessions", s.listSessions)
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Name() string {
	return "status api"
}

func (s *Server) healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) listSessions(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"sessions": lo.Map(s.sessions.Sessions(), func(item monitor.Session, _ int) sessionVO {
			return sessionVO{
				UserId:    item.UserId,
				SessionId: item.Id,
				Period:    item.Settings.Period,
				Threshold: item.Settings.Threshold,
				Exchanges: item.Settings.Exchanges,
				TimeZone:  item.Settings.TimeZone,
				StartedAt: item.StartedAt,
			}
		}),
	})
}

// Run 监听直到 ctx 取消后优雅关闭
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("status api listening", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
