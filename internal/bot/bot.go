// Package bot wires the adapter's components together and manages their lifecycle.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/rumdood/Moneo-sub002/internal/config"
	"github.com/rumdood/Moneo-sub002/internal/database"
)

// UpdateWorker processes the updates that arrive through the webhook handler.
// *bot.Bot from go-telegram/bot satisfies it.
type UpdateWorker interface {
	StartWebhook(ctx context.Context)
}

// Bot represents the running adapter: the HTTP surface, the Telegram update
// worker, and the maintenance scheduler.
type Bot struct {
	logger    *slog.Logger
	cfg       *config.Config
	store     database.Store
	worker    UpdateWorker
	handler   http.Handler
	scheduler *Scheduler

	// listener overrides the configured address when set.
	listener net.Listener
}

// NewBot creates a Bot. handler serves the adapter routes.
func NewBot(
	logger *slog.Logger,
	cfg *config.Config,
	store database.Store,
	worker UpdateWorker,
	handler http.Handler,
	scheduler *Scheduler,
) *Bot {
	return &Bot{
		logger:    logger.With("component", "bot_orchestrator"),
		cfg:       cfg,
		store:     store,
		worker:    worker,
		handler:   handler,
		scheduler: scheduler,
	}
}

// Run starts every component and blocks until ctx is cancelled or one of them fails.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("Starting bot orchestrator")

	if err := b.store.Ping(ctx); err != nil {
		return fmt.Errorf("journal database is not reachable: %w", err)
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b.logger.Info("Starting Telegram update worker")
		b.worker.StartWebhook(gCtx)
		b.logger.Info("Telegram update worker stopped")
		if gCtx.Err() == nil {
			return errors.New("telegram update worker stopped unexpectedly")
		}
		return nil
	})

	g.Go(func() error {
		return b.serveHTTP(gCtx)
	})

	g.Go(func() error {
		if b.scheduler == nil {
			return nil
		}
		if err := b.scheduler.Start(gCtx); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		<-gCtx.Done()
		if err := b.scheduler.Stop(); err != nil {
			b.logger.Error("Error stopping scheduler", "error", err)
		}
		return nil
	})

	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Bot orchestrator stopped due to error", "error", err)
		return err
	}

	b.logger.Info("Bot orchestrator stopped gracefully")
	return nil
}

func (b *Bot) serveHTTP(ctx context.Context) error {
	srv := &http.Server{
		Addr:              b.cfg.HTTP.Address,
		Handler:           b.handler,
		ReadHeaderTimeout: b.cfg.HTTP.ReadTimeout,
		ReadTimeout:       b.cfg.HTTP.ReadTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		var err error
		if b.listener != nil {
			b.logger.Info("HTTP server listening", "address", b.listener.Addr().String())
			err = srv.Serve(b.listener)
		} else {
			b.logger.Info("HTTP server listening", "address", srv.Addr)
			err = srv.ListenAndServe()
		}
		errCh <- err
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	timeout := b.cfg.HTTP.ShutdownTimeout
	if timeout <= 0 {
		timeout = config.DefaultHTTPShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	b.logger.Info("Shutting down HTTP server", "timeout", timeout.String())
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	return nil
}
