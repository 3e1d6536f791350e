package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/venndale/showprep/internal/catalog"
	"github.com/venndale/showprep/internal/server"
	"github.com/venndale/showprep/internal/setlist"
	"github.com/venndale/showprep/internal/shared"
	"github.com/venndale/showprep/internal/web"
)

// Serve starts the browser interface for building prep playlists.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config := r.config
	if config.Credentials.Spotify.ClientID == "" || config.Credentials.Spotify.ClientSecret == "" {
		return fmt.Errorf("%w: Spotify client_id and client_secret must be set in config.toml", shared.ErrMissingCredentials)
	}

	cache, closeLibrary, err := r.openLibrary()
	if err != nil {
		return err
	}
	defer closeLibrary()

	factory := func() (catalog.OAuthService, error) {
		return catalog.NewSpotifyService(config.Credentials.Spotify.Map())
	}

	resolverOpts := setlist.Options{
		StrictDetails: config.Resolver.StrictDetails,
		RateLimit:     config.Resolver.RateLimit,
		Logger:        r.logger,
	}

	var app *web.App
	if cache != nil {
		app = web.NewApp(factory, cache, resolverOpts, r.logger)
	} else {
		app = web.NewApp(factory, nil, resolverOpts, r.logger)
	}

	router := server.NewBasicRouter()
	router.Use(server.Logging(r.logger))
	router.Handler(app)

	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
	r.logger.Info("serving web interface", "addr", addr)
	r.writePlain("Serving showprep at http://%s\n", addr)
	r.writePlain("Make sure your Spotify app's redirect URI points to http://%s/redirect\n", addr)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}
