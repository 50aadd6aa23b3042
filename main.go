package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	ossignal "os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/KNICEX/oi-screener/internal/schedule"
	"github.com/KNICEX/oi-screener/ioc"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

func initViper() {
	// --config=./config/xxx.yaml
	file := pflag.String("config", "./config/config.dev.yaml", "specify config file")
	envFile := pflag.String("env", ".env", "specify env file")
	pflag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		panic(fmt.Errorf("load env file: %w", err))
	}

	ioc.InitViper(*file)
}

func main() {
	initViper()
	ioc.InitLogger()

	ctx, stop := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db := ioc.InitDB()
	historyCfg := ioc.InitHistoryConfig()
	history := ioc.InitHistoryRepo(db, historyCfg)
	users := ioc.InitUserRepo(db)

	scannerCfg := ioc.InitScannerConfig()
	registry := ioc.InitRegistry(scannerCfg)
	detector := ioc.InitDetector(history, scannerCfg)

	tgCfg := ioc.InitTelegramConfig()
	tgCli := ioc.InitTelegramCli(tgCfg)
	notifier := ioc.InitNotifier(tgCli, tgCfg)

	manager := ioc.InitManager(ctx, registry, detector, history, notifier, scannerCfg, historyCfg)
	activity := ioc.InitActivityMonitor(manager, notifier)
	tgBot := ioc.InitBot(tgCli, notifier, users, manager, activity, ioc.InitDefaults(), registry, tgCfg)
	server := ioc.InitWebServer(manager)

	slog.Info("oi screener started", "exchanges", registry.Names())
	var wg sync.WaitGroup
	for _, task := range []schedule.Task{tgBot, activity, server} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := task.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("task exited", "task", task.Name(), "error", err)
				stop()
			}
		}()
	}

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := manager.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to stop scanner sessions", "error", err)
	}
	wg.Wait()
}
