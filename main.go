package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/KNICEX/pressure-radar/internal/schedule"
	"github.com/KNICEX/pressure-radar/ioc"
)

func main() {
	if err := ioc.InitConfig(os.Args[1:]); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := ioc.InitLogger()
	loc := ioc.InitLocation()

	registry := ioc.InitRegistry()
	adapters, err := ioc.InitAdapters(registry, ioc.InitHTTPClient(), loc, logger)
	if err != nil {
		logger.Error("failed to init exchanges", "error", err)
		os.Exit(1)
	}
	sender, err := ioc.InitSender()
	if err != nil {
		logger.Error("failed to init notifier", "error", err)
		os.Exit(1)
	}

	rule := ioc.InitRuleConfig()
	sc := ioc.InitScanner(adapters, logger)
	analyzer := ioc.InitAnalyzer(rule, logger)
	task, err := ioc.InitMonitorTask(sc, analyzer, sender, rule, loc, logger)
	if err != nil {
		logger.Error("failed to init monitor", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := schedule.Run(ctx, task); err != nil && !errors.Is(err, context.Canceled) {
		stop()
		os.Exit(1)
	}
}
