package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/flowdj/internal/services"
	"github.com/desertthunder/flowdj/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	configPath := "config.toml"
	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		}
	}

	var catalog services.OAuthService
	if config.Credentials.Spotify.ClientID != "" && config.Credentials.Spotify.ClientSecret != "" {
		if svc, err := services.NewSpotifyService(config.Credentials.Spotify.Map()); err == nil {
			catalog = svc
		}
	}

	var completion services.CompletionService
	if config.Credentials.OpenAI.APIKey != "" {
		if svc, err := services.NewOpenAIService(
			config.Credentials.OpenAI.APIKey,
			config.Credentials.OpenAI.BaseURL,
			config.Credentials.OpenAI.MoodModel,
			config.Credentials.OpenAI.PlaylistModel,
		); err == nil {
			completion = svc
		}
	}

	var marketing services.MarketingService
	if config.Credentials.Klaviyo.APIKey != "" {
		if svc, err := services.NewKlaviyoService(
			config.Credentials.Klaviyo.APIKey,
			config.Credentials.Klaviyo.CompanyID,
			config.Credentials.Klaviyo.BaseURL,
			nil,
		); err == nil {
			marketing = svc
		}
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Catalog:    catalog,
		Completion: completion,
		Marketing:  marketing,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "flowdj",
		Usage:    "Generate Spotify playlists from Klaviyo webhook events",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
