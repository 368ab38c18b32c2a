package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tgbot "github.com/go-telegram/bot"
	"github.com/spf13/cobra"

	"github.com/rumdood/Moneo-sub002/internal/api"
	"github.com/rumdood/Moneo-sub002/internal/bot"
	"github.com/rumdood/Moneo-sub002/internal/bot/handlers"
	"github.com/rumdood/Moneo-sub002/internal/bot/tasks"
	"github.com/rumdood/Moneo-sub002/internal/chat"
	"github.com/rumdood/Moneo-sub002/internal/config"
	"github.com/rumdood/Moneo-sub002/internal/database"
	"github.com/rumdood/Moneo-sub002/internal/logger"
	"github.com/rumdood/Moneo-sub002/internal/resilience"
	"github.com/rumdood/Moneo-sub002/internal/telegram"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the chat adapter HTTP surface and Telegram update worker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), *configPath)
		},
	}
}

// serve initializes every component (config, logger, journal, Telegram client,
// HTTP routes, scheduler) and blocks until ctx is cancelled or a component fails.
func serve(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", configPath, "error", err)
		return err
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to open journal database", "path", cfg.Database.Path, "error", err)
		return err
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	var adapter *telegram.Adapter
	hDeps := handlers.HandlerDeps{
		Logger:  log,
		Config:  cfg,
		Journal: store,
		Sink:    handlers.LogSink{Logger: log},
		Replier: handlers.ReplierFunc(func(ctx context.Context, msg chat.Outbound) error {
			return adapter.Send(ctx, msg)
		}),
	}

	tg, err := telegram.NewTelegramBot(cfg.BotToken, cfg.CallbackToken, log,
		tgbot.WithMiddlewares(logger.TelegramMiddleware(log), handlers.IgnoreBots(hDeps)),
		tgbot.WithDefaultHandler(handlers.NewInboundHandler(hDeps)),
	)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return err
	}

	adapter = telegram.NewAdapter(tg, store, telegram.AdapterConfig{
		WebhookURL:           cfg.Webhook.URL,
		CallbackToken:        cfg.CallbackToken,
		DropPendingUpdates:   cfg.Webhook.DropPendingUpdates,
		MasterConversationID: cfg.MasterConversationID,
		Retry: resilience.RetryConfig{
			MaxAttempts:     cfg.Delivery.MaxAttempts,
			InitialInterval: cfg.Delivery.InitialInterval,
			MaxInterval:     cfg.Delivery.MaxInterval,
			MaxJitter:       cfg.Delivery.InitialInterval / 10,
		},
		Breaker: resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Name:        "telegram",
			MaxFailures: cfg.Delivery.BreakerFailures,
			OpenTimeout: cfg.Delivery.BreakerTimeout,
			IsFailure:   func(err error) bool { return !telegram.IsPermanent(err) },
			Logger:      log,
		}),
	}, log)

	if err := handlers.RegisterHandlers(tg, log, handlers.RegisterAllCommands(hDeps)); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return err
	}

	router := api.NewRouter(api.Deps{
		Logger:   log,
		Config:   cfg,
		Webhook:  tg.WebhookHandler(),
		Sender:   adapter,
		Receiver: adapter,
		Health:   store,
	})

	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tasks.TaskDeps{
		Logger: log,
		Store:  store,
		Config: cfg,
	}))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return err
	}

	log.Info("Starting Moneo chat adapter", "config", fmt.Sprintf("%+v", cfg.Redacted()))
	runErr := bot.NewBot(log, cfg, store, tg, router, sched).Run(ctx)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Adapter stopped due to error", "error", runErr)
		return runErr
	}

	log.Info("Adapter stopped gracefully")
	return nil
}
