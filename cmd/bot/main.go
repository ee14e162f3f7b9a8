package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"hort_notification_bot/internal/app"
	"hort_notification_bot/internal/infra/config"
	"hort_notification_bot/internal/infra/hortpro"
	"hort_notification_bot/internal/infra/logger"
	"hort_notification_bot/internal/infra/schedule"
	"hort_notification_bot/internal/infra/scheduler"
	"hort_notification_bot/internal/infra/signalcli"
	"hort_notification_bot/internal/infra/storage"

	"github.com/alecthomas/kong"
)

var CLI struct {
	EnvFile string `short:"e" help:"Path to env file with configuration" default:".env"`
	Verbose bool   `short:"v" help:"Force debug logging"`
}

func main() {
	kong.Parse(&CLI, kong.Description("HortPro daycare check-in/check-out notifier"))

	fmt.Println("HortPro Signal Notifier starting...")
	mainLogger := log.New(os.Stdout, "MAIN: ", log.LstdFlags|log.Lshortfile)

	cfg, err := config.Load(CLI.EnvFile)
	if err != nil {
		mainLogger.Fatalf("FATAL: Could not load application configuration: %v", err)
	}
	if CLI.Verbose {
		cfg.LogLevel = "debug"
	}

	logger.Init(cfg)
	logg := logger.Get()

	if err := signalcli.Verify(cfg.SignalCLIPath); err != nil {
		logg.Fatalf("signal-cli is not usable: %v", err)
	}

	sched, err := schedule.Load(cfg.SchedulePath)
	if err != nil {
		// An unusable schedule means "never in-window"; the monitor falls
		// back to a long sleep instead of exiting.
		logg.WithError(err).Error("Could not load polling schedule, continuing with an empty one")
	} else {
		logg.WithField("path", cfg.SchedulePath).Info("Polling schedule loaded")
	}

	deliveryClient := signalcli.NewClient(cfg.SignalCLIPath, cfg.SignalNumber, logg.WithField("component", "signalcli"))
	portal, err := hortpro.NewClient(cfg.HortproBaseURL, cfg.HortproEmail, cfg.HortproPassword, cfg.CookiePath, logg.WithField("component", "hortpro"))
	if err != nil {
		logg.Fatalf("Could not create portal client: %v", err)
	}

	stateRepo := storage.NewJSONStateRepository(cfg.StatePath)
	recipientRepo := storage.NewJSONRecipientRepository(cfg.RecipientsPath)

	notificationService := app.NewNotificationService(stateRepo, deliveryClient, logg.WithField("component", "notifications"))
	selfTestService := app.NewSelfTestService(deliveryClient, cfg.SelfTestPause, logg.WithField("component", "selftest"))
	monitor := app.NewMonitorService(
		portal,
		notificationService,
		selfTestService,
		recipientRepo,
		sched,
		cfg.CheckInterval,
		cfg.SelfTestPath,
		logg.WithField("component", "monitor"),
	)

	keepAlive := scheduler.NewKeepAliveScheduler(deliveryClient, cfg.KeepAliveInterval, logg.WithField("component", "keepalive"))
	if err := keepAlive.Start(); err != nil {
		logg.Fatalf("Could not start keep-alive scheduler: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go monitor.Run(ctx)

	logg.Info("Application setup complete. Monitor loop and keep-alive scheduler are running.")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logg.Info("Shutting down application...")
	cancel()
	keepAlive.Stop()
	logg.Info("Application shut down gracefully.")
}
