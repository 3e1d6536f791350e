package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"
	"github.com/venndale/showprep/internal/shared"
)

// SetlistFind resolves the most followed setlist playlist without creating anything.
func (r *Runner) SetlistFind(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireCatalog(); err != nil {
		return err
	}

	artistName := cmd.String("artist")
	concertName := cmd.String("concert")
	year := cmd.String("year")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	r.logger.Info("resolving setlist", "artist", artistName, "concert", concertName, "year", year)

	artist, err := r.catalog.SearchArtist(ctx, artistName)
	if err != nil {
		if retry, authErr := r.handleAuthError(ctx, err); retry {
			artist, err = r.catalog.SearchArtist(ctx, artistName)
		} else if authErr != nil {
			err = authErr
		}
		if err != nil {
			return fmt.Errorf("looking up artist %q: %w", artistName, err)
		}
	}

	resolved, err := r.newResolver().Resolve(ctx, artist.Name, concertName, year)
	if err != nil {
		return fmt.Errorf("resolving setlist: %w", err)
	}

	if resolved == nil {
		if useJSON {
			return r.writeJSON(map[string]any{"artist": artist.Name, "found": false}, pretty)
		}
		r.writePlain("No setlist playlist found for %s.\n", artist.Name)
		return nil
	}

	if useJSON {
		return r.writeJSON(resolved, pretty)
	}

	r.writePlain("Setlist: %s\n", resolved.TourTitle)
	r.writePlain("Tracks: %d\n\n", len(resolved.Tracks))
	for i, track := range resolved.Tracks {
		names := make([]string, 0, len(track.Artists))
		for _, a := range track.Artists {
			names = append(names, a.Name)
		}
		r.writePlain("%d. %s - %s\n", i+1, strings.Join(names, ", "), track.Name)
	}

	return nil
}

// ArtistTop shows an artist's most popular tracks.
func (r *Runner) ArtistTop(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireCatalog(); err != nil {
		return err
	}

	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: artist name", shared.ErrMissingArgument)
	}
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	artist, err := r.catalog.SearchArtist(ctx, name)
	if err != nil {
		if retry, authErr := r.handleAuthError(ctx, err); retry {
			artist, err = r.catalog.SearchArtist(ctx, name)
		} else if authErr != nil {
			err = authErr
		}
		if err != nil {
			return fmt.Errorf("looking up artist %q: %w", name, err)
		}
	}

	tracks, err := r.catalog.ArtistTopTracks(ctx, artist.ID)
	if err != nil {
		return fmt.Errorf("fetching top tracks for %s: %w", artist.Name, err)
	}

	if useJSON {
		return r.writeJSON(tracks, pretty)
	}

	r.writePlain("Top tracks for %s:\n\n", artist.Name)
	for i, track := range tracks {
		r.writePlain("%d. %s\n", i+1, track.Name)
	}

	return nil
}

// LibraryShow prints the cached liked-library snapshot.
func (r *Runner) LibraryShow(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireCatalog(); err != nil {
		return err
	}

	limit := cmd.Int("limit")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	repo, closeLibrary, err := r.openLibrary()
	if err != nil {
		return err
	}
	defer closeLibrary()
	if repo == nil {
		return fmt.Errorf("%w: no database found, run 'showprep setup database' first", shared.ErrMissingConfig)
	}

	user, err := r.catalog.Profile(ctx)
	if err != nil {
		return fmt.Errorf("fetching profile: %w", err)
	}

	tracks, cachedAt, err := repo.GetForUser(user.ID)
	if err != nil {
		return err
	}

	if len(tracks) == 0 {
		r.writePlain("No snapshot cached for %s. Run 'showprep library sync' or 'showprep prep run'.\n", user.DisplayName)
		return nil
	}

	if useJSON {
		return r.writeJSON(tracks, pretty)
	}

	r.writePlain("Liked-library snapshot for %s\n", user.DisplayName)
	r.writePlain("Cached: %s\n", cachedAt.Format("2006-01-02 15:04"))
	r.writePlain("Tracks: %d\n\n", len(tracks))

	shown := tracks
	if limit > 0 && limit < len(shown) {
		shown = shown[:limit]
	}
	for i, track := range shown {
		names := make([]string, 0, len(track.Artists))
		for _, a := range track.Artists {
			names = append(names, a.Name)
		}
		r.writePlain("%d. %s - %s\n", i+1, strings.Join(names, ", "), track.Name)
	}
	if len(shown) < len(tracks) {
		r.writePlain("... and %d more\n", len(tracks)-len(shown))
	}

	return nil
}

// LibrarySync refreshes the snapshot from the user's Spotify liked tracks.
func (r *Runner) LibrarySync(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireCatalog(); err != nil {
		return err
	}

	repo, closeLibrary, err := r.openLibrary()
	if err != nil {
		return err
	}
	defer closeLibrary()
	if repo == nil {
		return fmt.Errorf("%w: no database found, run 'showprep setup database' first", shared.ErrMissingConfig)
	}

	user, err := r.catalog.Profile(ctx)
	if err != nil {
		if retry, authErr := r.handleAuthError(ctx, err); retry {
			user, err = r.catalog.Profile(ctx)
		} else if authErr != nil {
			err = authErr
		}
		if err != nil {
			return fmt.Errorf("fetching profile: %w", err)
		}
	}

	r.writePlain("Fetching liked tracks for %s...\n", user.DisplayName)
	tracks, err := r.catalog.LikedTracks(ctx)
	if err != nil {
		return fmt.Errorf("fetching liked tracks: %w", err)
	}

	if err := repo.Replace(user.ID, tracks); err != nil {
		return err
	}

	r.writePlain("✓ Snapshot refreshed: %d tracks\n", len(tracks))
	return nil
}
