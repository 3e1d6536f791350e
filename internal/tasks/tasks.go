// package tasks implements the concert-prep pipeline.
//
// The core abstraction is PrepEngine, which sequences catalog calls through
// setlist resolution and unheard-track reconciliation, then creates and fills
// the prep playlist. Operations emit progress updates via channels for
// non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/venndale/showprep/internal/catalog"
	"github.com/venndale/showprep/internal/match"
	"github.com/venndale/showprep/internal/setlist"
	"github.com/venndale/showprep/internal/shared"
)

// batchSize is the catalog's per-request cap on playlist track insertion.
const batchSize = 100

// PrepRequest carries one run's parameters. Only ArtistName is required.
//
// The request travels explicitly through the call chain; nothing about a run
// is stored in ambient state.
type PrepRequest struct {
	ArtistName  string
	ConcertName string
	Year        string
	SkipSetlist bool
}

// PrepResult is the outcome of a prep run.
//
// ArtistName and TourTitle always come from catalog lookups, never from the
// raw request text, so generated playlist metadata cannot carry user input.
type PrepResult struct {
	ArtistName        string          // catalog's display name for the artist
	TourTitle         string          // winning setlist playlist name, empty when none resolved
	SetlistFound      bool            //
	LikedCount        int             // size of the liked library
	UserTopCount      int             // user's personal top tracks
	ArtistTopCount    int             // artist's popular tracks considered
	SetlistTrackCount int             //
	UnheardTracks     []catalog.Track // ordered, de-duplicated unheard tracks
	PlaylistTitle     string          //
	PlaylistURL       string          //
	AddedCount        int             // tracks submitted to the new playlist
	NothingToAdd      bool            // terminal success variant: no playlist created
	Message           string          // user-facing outcome text
}

// SetlistResolver abstracts setlist resolution for testing.
type SetlistResolver interface {
	Resolve(ctx context.Context, artistName, concertName, year string) (*setlist.Resolved, error)
}

// LibraryCache stores liked-library snapshots. Optional; a nil cache disables
// snapshotting.
type LibraryCache interface {
	Replace(userID string, tracks []catalog.Track) error
}

// PrepEngine runs the prep pipeline against a catalog service.
type PrepEngine struct {
	svc      catalog.Service
	resolver SetlistResolver
	cache    LibraryCache
	logger   *log.Logger
}

// NewPrepEngine creates a PrepEngine. resolver may be nil only if every run
// sets SkipSetlist; cache and logger are optional.
func NewPrepEngine(svc catalog.Service, resolver SetlistResolver, cache LibraryCache, logger *log.Logger) *PrepEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &PrepEngine{svc: svc, resolver: resolver, cache: cache, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *PrepEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Run executes one prep run: gather listening history, look up the artist,
// resolve a setlist, reconcile unheard tracks, and create the prep playlist.
//
// Every catalog failure halts the run; there is no retry and no unwinding of
// remote state already created. On batch-insertion failure the partial result
// is returned alongside the error.
func (e *PrepEngine) Run(ctx context.Context, progress chan<- ProgressUpdate, req PrepRequest) (*PrepResult, error) {
	if e.svc == nil {
		return nil, fmt.Errorf("%w: catalog service not initialized", shared.ErrNotAuthenticated)
	}
	if strings.TrimSpace(req.ArtistName) == "" {
		return nil, fmt.Errorf("%w: artist name", shared.ErrMissingArgument)
	}

	user, err := e.svc.Profile(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: profile lookup: %v", shared.ErrAuthFailed, err)
	}

	e.sendProgress(progress, fetchLibraryUpdate())
	liked, err := e.svc.LikedTracks(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching liked tracks: %w", err)
	}

	if e.cache != nil {
		if err := e.cache.Replace(user.ID, liked); err != nil {
			e.logger.Warn("failed to snapshot liked library", "error", err)
		}
	}

	e.sendProgress(progress, fetchUserTopUpdate(len(liked)))
	userTop, err := e.svc.TopTracks(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching your top tracks: %w", err)
	}

	e.sendProgress(progress, lookupArtistUpdate(req.ArtistName))
	artist, err := e.svc.SearchArtist(ctx, req.ArtistName)
	if err != nil {
		return nil, fmt.Errorf("looking up artist %q: %w", req.ArtistName, err)
	}

	e.sendProgress(progress, fetchArtistTopUpdate(artist.Name))
	artistTop, err := e.svc.ArtistTopTracks(ctx, artist.ID)
	if err != nil {
		return nil, fmt.Errorf("fetching top tracks for %s: %w", artist.Name, err)
	}

	result := &PrepResult{
		ArtistName:     artist.Name,
		LikedCount:     len(liked),
		UserTopCount:   len(userTop),
		ArtistTopCount: len(artistTop),
	}

	var setlistTracks []catalog.Track
	if !req.SkipSetlist && e.resolver != nil {
		e.sendProgress(progress, resolveSetlistUpdate(artist.Name))
		resolved, err := e.resolver.Resolve(ctx, artist.Name, req.ConcertName, req.Year)
		if err != nil {
			return nil, fmt.Errorf("resolving setlist: %w", err)
		}
		if resolved != nil {
			result.SetlistFound = true
			result.TourTitle = resolved.TourTitle
			result.SetlistTrackCount = len(resolved.Tracks)
			setlistTracks = resolved.Tracks
			e.sendProgress(progress, setlistResolvedUpdate(resolved.TourTitle, len(resolved.Tracks)))
		} else {
			e.logger.Info("no setlist playlist resolved", "artist", artist.Name)
		}
	}

	known := knownTracks(liked, userTop)
	e.sendProgress(progress, reconcileUpdate(len(known), len(artistTop)+len(setlistTracks)))

	unheard := computeUnheard(known, artistTop, setlistTracks)
	result.UnheardTracks = unheard

	if len(unheard) == 0 {
		result.NothingToAdd = true
		result.Message = fmt.Sprintf(
			"No new songs to add! You already know all the songs from %s's setlist and top tracks.",
			artist.Name,
		)
		return result, nil
	}

	title, description := playlistMetadata(artist.Name, result.TourTitle)
	result.PlaylistTitle = title

	e.sendProgress(progress, createPlaylistUpdate(title))
	created, err := e.svc.CreatePlaylist(ctx, title, description, false)
	if err != nil {
		return result, fmt.Errorf("creating playlist: %w", err)
	}
	result.PlaylistURL = created.URL

	uris := make([]string, len(unheard))
	for i, track := range unheard {
		uris[i] = track.URI
	}

	totalBatches := (len(uris) + batchSize - 1) / batchSize
	for i := 0; i < len(uris); i += batchSize {
		end := i + batchSize
		if end > len(uris) {
			end = len(uris)
		}
		batch := uris[i:end]

		e.sendProgress(progress, addTracksUpdate(i/batchSize+1, totalBatches, len(batch)))
		if err := e.svc.AddTracks(ctx, created.ID, batch); err != nil {
			// Earlier batches stay in the created playlist; nothing is rolled back.
			return result, fmt.Errorf("adding tracks (batch %d of %d): %w", i/batchSize+1, totalBatches, err)
		}
		result.AddedCount += len(batch)
	}

	result.Message = fmt.Sprintf(
		"Successfully created playlist with %d songs! Here's the link: %s",
		result.AddedCount, created.URL,
	)
	e.logger.Info("prep playlist created", "title", title, "tracks", result.AddedCount, "url", created.URL)
	return result, nil
}

// knownTracks unions the liked library with the user's top tracks, liked
// order first, de-duplicated by song identity.
func knownTracks(liked, userTop []catalog.Track) []catalog.Track {
	known := make([]catalog.Track, 0, len(liked)+len(userTop))
	known = append(known, liked...)
	for _, track := range userTop {
		if !match.TrackInList(track, known) {
			known = append(known, track)
		}
	}
	return known
}

// computeUnheard builds the ordered unheard-track list: the artist's popular
// tracks first, then setlist tracks, skipping anything the user already
// knows and de-duplicating by catalog identifier (first occurrence wins).
func computeUnheard(known, artistTop, setlistTracks []catalog.Track) []catalog.Track {
	seen := make(map[string]struct{})
	var unheard []catalog.Track

	add := func(track catalog.Track) {
		if track.URI == "" {
			return
		}
		if _, dup := seen[track.URI]; dup {
			return
		}
		if match.TrackInList(track, known) {
			return
		}
		seen[track.URI] = struct{}{}
		unheard = append(unheard, track)
	}

	for _, track := range artistTop {
		add(track)
	}
	for _, track := range setlistTracks {
		add(track)
	}
	return unheard
}

var setlistMarker = regexp.MustCompile(`(?i)\bsetlist\b\s*-?\s*`)

// playlistMetadata derives the generated playlist's title and description.
//
// With a resolved tour title the "Setlist" marker and any leading/trailing
// artist name are stripped before appending " Prep"; without one the title
// falls back to "{artist} Concert Prep" and the description stays empty.
func playlistMetadata(artistName, tourTitle string) (title, description string) {
	if tourTitle == "" {
		return fmt.Sprintf("%s Concert Prep", artistName), ""
	}

	clean := setlistMarker.ReplaceAllString(tourTitle, "")

	quoted := regexp.QuoteMeta(artistName)
	clean = regexp.MustCompile(`(?i)^\s*`+quoted+`\s*-?\s*`).ReplaceAllString(clean, "")
	clean = regexp.MustCompile(`(?i)\s*-?\s*`+quoted+`\s*$`).ReplaceAllString(clean, "")
	clean = strings.Trim(clean, " -")

	if clean == "" {
		title = fmt.Sprintf("%s Concert Prep", artistName)
	} else {
		title = clean + " Prep"
	}
	description = fmt.Sprintf("Songs from %s you haven't heard yet. Perfect for learning before the show!", artistName)
	return title, description
}
