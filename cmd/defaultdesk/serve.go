package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/opensource-finance/defaultdesk/internal/api"
	"github.com/opensource-finance/defaultdesk/internal/bus"
	"github.com/opensource-finance/defaultdesk/internal/cache"
	"github.com/opensource-finance/defaultdesk/internal/domain"
	"github.com/opensource-finance/defaultdesk/internal/notify"
	"github.com/opensource-finance/defaultdesk/internal/portfolio"
	"github.com/opensource-finance/defaultdesk/internal/repository"
	"github.com/opensource-finance/defaultdesk/internal/riskconfig"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace/noop"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), cfg)
		},
	}

	cmd.Flags().Int("port", 8080, "listen port")
	_ = viper.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	return cmd
}

// openStore builds the layered settings store. It returns nil when both
// the repository and the cache are disabled.
func openStore(cfg *domain.Config) (domain.Store, error) {
	repo, err := repository.New(cfg.Repository, cfg.Namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize repository: %w", err)
	}

	cacheImpl, err := cache.New(cfg.Cache, cfg.Namespace)
	if err != nil {
		if repo != nil {
			repo.Close()
		}
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	var durable domain.Store
	if repo != nil {
		durable = repo
	}
	store := riskconfig.NewSettingsStore(durable, cacheImpl, cfg.Cache.LocalTTL)
	if store == nil {
		return nil, nil
	}

	slog.Info("settings store initialized",
		"repository", cfg.Repository.Driver,
		"cache", cfg.Cache.Type,
	)
	return store, nil
}

func serve(ctx context.Context, cfg *domain.Config) error {
	slog.Info("starting defaultdesk",
		"version", Version,
		"commit", Commit,
		"build_date", BuildDate,
		"namespace", cfg.Namespace,
	)

	if !cfg.Tracing.Enabled {
		otel.SetTracerProvider(noop.NewTracerProvider())
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	busImpl, err := bus.New(cfg.EventBus)
	if err != nil {
		return fmt.Errorf("failed to initialize event bus: %w", err)
	}
	defer busImpl.Close()
	slog.Info("event bus initialized", "type", cfg.EventBus.Type)

	feed := notify.NewFeed(busImpl, cfg.Namespace, notify.DefaultFeedSize)
	if err := feed.Start(); err != nil {
		return fmt.Errorf("failed to start notification feed: %w", err)
	}
	defer feed.Stop()

	publisher := notify.NewPublisher(busImpl, cfg.Namespace)

	editor, err := riskconfig.NewEditor(store, publisher)
	if err != nil {
		return fmt.Errorf("failed to initialize risk rule editor: %w", err)
	}

	view := portfolio.NewView(portfolio.Seed())
	slog.Info("defaulter list loaded", "records", len(view.Records()))

	srv := api.NewServer(cfg.Server, api.Deps{
		View:     view,
		Editor:   editor,
		Notifier: publisher,
		Feed:     feed,
		Store:    store,
		Bus:      busImpl,
		Version:  Version,
	})

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	slog.Info("defaultdesk is ready",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	slog.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	slog.Info("defaultdesk shutdown complete")
	return nil
}
