package ioc

import (
	"github.com/KNICEX/oi-screener/internal/service/monitor"
	"github.com/KNICEX/oi-screener/internal/web"
	"github.com/gin-gonic/gin"
)

func InitWebServer(manager *monitor.Manager) *web.Server {
	type Config struct {
		Addr string `mapstructure:"addr"`
		Mode string `mapstructure:"mode"`
	}

	cfg := Config{Addr: ":8080", Mode: gin.ReleaseMode}
	if err := unmarshalKey("web", &cfg); err != nil {
		panic(err)
	}
	gin.SetMode(cfg.Mode)
	return web.NewServer(cfg.Addr, manager)
}
