package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/desertthunder/flowdj/internal/repositories"
	"github.com/desertthunder/flowdj/internal/server"
	"github.com/desertthunder/flowdj/internal/shared"
	"github.com/desertthunder/flowdj/internal/web"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// Serve starts the webhook listener and HTMX admin UI.
//
// Startup populates the flow registry from the marketing service; a failed
// population aborts startup since the webhook gate cannot work against an
// empty registry. The sqlite track cache is attached best-effort.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if r.marketing == nil {
		return fmt.Errorf("%w: Klaviyo credentials must be set in config.toml", shared.ErrMissingCredentials)
	}
	if r.completion == nil {
		return fmt.Errorf("%w: OpenAI credentials must be set in config.toml", shared.ErrMissingCredentials)
	}
	if r.catalog == nil {
		return fmt.Errorf("%w: Spotify credentials must be set in config.toml", shared.ErrMissingCredentials)
	}

	if err := r.authenticateCatalog(ctx, cmd.String("config")); err != nil {
		return err
	}

	r.logger.Info("populating flow registry")
	if err := r.registry.Populate(ctx, r.marketing); err != nil {
		return fmt.Errorf("failed to populate flow registry: %w", err)
	}
	r.logger.Info("flow registry populated", "flows", r.registry.Len())

	if !cmd.Bool("no-cache") {
		if err := r.attachTrackCache(); err != nil {
			r.logger.Warn("track cache unavailable, continuing without it", "error", err)
		}
	}

	webhookHandler := server.NewWebhookHandler(r.engine, r.logger)
	adminHandler, err := web.NewAdminHandler(r.registry, r.engine, r.logger)
	if err != nil {
		return fmt.Errorf("failed to create admin handler: %w", err)
	}

	router := server.NewBasicRouter()
	router.Use(server.LoggingMiddleware(r.logger))
	router.Handle(http.MethodPost, "/webhook/klaviyo", webhookHandler)
	router.Handler(adminHandler)

	addr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-runCtx.Done():
		r.logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}

	// Let detached pipeline runs finish before exiting.
	webhookHandler.Wait()

	return nil
}

// authenticateCatalog applies stored OAuth tokens to the catalog service and
// wires token refreshes back into the config file.
func (r *Runner) authenticateCatalog(ctx context.Context, configPath string) error {
	if r.config.Credentials.Spotify.AccessToken == "" {
		return fmt.Errorf("%w: run 'flowdj spotify auth' first", shared.ErrNotAuthenticated)
	}

	if configPath == "" {
		configPath = r.configPath
	}
	if configPath != "" {
		r.catalog.SetTokenRefreshCallback(func(token *oauth2.Token) {
			if err := r.config.Credentials.Spotify.Update(token); err != nil {
				r.logger.Warn("refreshed token rejected", "error", err)
				return
			}
			if err := shared.SaveConfig(configPath, r.config); err != nil {
				r.logger.Warn("failed to persist refreshed token", "error", err)
			}
		})
	}

	if err := r.catalog.OAuthenticate(ctx, r.config.Credentials.Spotify.Token()); err != nil {
		return fmt.Errorf("failed to authenticate with Spotify: %w", err)
	}

	return nil
}

// attachTrackCache opens the sqlite database, runs migrations, and rebuilds
// the engine with the cache attached.
func (r *Runner) attachTrackCache() error {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	r.cache = repositories.NewTrackCacheRepository(db)
	r.buildEngine()
	r.logger.Info("track cache attached", "path", r.config.Database.Path)

	return nil
}
