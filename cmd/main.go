package main

import (
	"context"
	"os"

	"github.com/venndale/showprep/internal/catalog"
	"github.com/venndale/showprep/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

func main() {
	logger := shared.NewLogger(nil)

	configPath := "config.toml"
	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warnf("failed to load %s: %v", configPath, err)
		}
	}

	var catalogService catalog.Service

	if config.Credentials.Spotify.ClientID != "" && config.Credentials.Spotify.ClientSecret != "" {
		if svc, err := catalog.NewSpotifyService(config.Credentials.Spotify.Map()); err == nil {
			if config.Credentials.Spotify.AccessToken != "" {
				if err := svc.AuthenticateToken(context.Background(), config.Credentials.Spotify.Token()); err != nil {
					logger.Warnf("stored tokens rejected, run 'showprep auth': %v", err)
				}
			}
			catalogService = svc
		} else {
			logger.Warnf("failed to create Spotify service: %v", err)
		}
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Catalog:    catalogService,
		Logger:     logger,
	})

	if svc, ok := catalogService.(*catalog.SpotifyService); ok {
		svc.SetTokenRefreshCallback(func(token *oauth2.Token) {
			if err := runner.saveTokens(token); err != nil {
				logger.Warnf("failed to persist refreshed tokens: %v", err)
			}
		})
	}

	app := &cli.Command{
		Name:     "showprep",
		Usage:    "Build Spotify prep playlists of unheard songs before a concert",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
