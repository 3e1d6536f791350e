// package setlist finds the most authoritative public setlist playlist for an
// artist, optional concert/tour name, and optional year.
//
// Resolution is a search → filter → score → rank-by-followers pipeline over
// the catalog's playlist search results. Fans publish many near-identical
// setlist playlists; follower count is the authority signal that breaks the
// tie between candidates whose names match equally well.
package setlist

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/venndale/showprep/internal/catalog"
	"github.com/venndale/showprep/internal/shared"
	"golang.org/x/time/rate"
)

// Keywords a candidate playlist name must carry to qualify as a setlist.
var setlistKeywords = []string{"setlist", "concert", "tour"}

// scoreWindow keeps candidates whose score is within this many points of the
// best score when ranking by followers.
const scoreWindow = 5

// Resolved is the winning setlist playlist.
type Resolved struct {
	TourTitle string
	Tracks    []catalog.Track
}

// Options tunes resolution behavior.
type Options struct {
	// StrictDetails surfaces playlist detail-fetch failures instead of
	// treating the candidate as having zero followers.
	StrictDetails bool
	// RateLimit caps detail fetches per second. Zero means 5/s.
	RateLimit float64
	Logger    *log.Logger
}

// Resolver resolves setlist playlists against a catalog service.
type Resolver struct {
	svc           catalog.Service
	limiter       *rate.Limiter
	strictDetails bool
	logger        *log.Logger
}

// NewResolver creates a Resolver over the given catalog service.
func NewResolver(svc catalog.Service, opts Options) *Resolver {
	limit := opts.RateLimit
	if limit <= 0 {
		limit = 5.0
	}
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Resolver{
		svc:           svc,
		limiter:       rate.NewLimiter(rate.Limit(limit), 1),
		strictDetails: opts.StrictDetails,
		logger:        logger,
	}
}

// candidate is a qualifying playlist with its name-match score.
type candidate struct {
	summary catalog.PlaylistSummary
	score   int
}

// Resolve returns the best-matching public setlist playlist, or (nil, nil)
// when no playlist qualifies. concertName and year may be empty.
func (r *Resolver) Resolve(ctx context.Context, artistName, concertName, year string) (*Resolved, error) {
	query := buildQuery(artistName, concertName, year)
	r.logger.Debug("searching playlists", "query", query)

	summaries, err := r.svc.SearchPlaylists(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(summaries) == 0 {
		return nil, nil
	}

	candidates := filterAndScore(summaries, artistName, concertName, year)
	if len(candidates) == 0 {
		return nil, nil
	}

	winner, err := r.mostFollowed(ctx, retained(candidates))
	if err != nil {
		return nil, err
	}
	if winner == nil {
		return nil, nil
	}

	r.logger.Info("resolved setlist", "playlist", winner.Name, "followers", winner.Followers, "url", winner.URL)

	entries, err := r.svc.PlaylistTracks(ctx, winner.ID)
	if err != nil {
		return nil, err
	}

	tracks := make([]catalog.Track, 0, len(entries))
	for _, entry := range entries {
		tracks = append(tracks, entry.Track)
	}

	return &Resolved{TourTitle: winner.Name, Tracks: tracks}, nil
}

// buildQuery joins the search tokens: artist, concert (if any), the literal
// "Setlist", and year (if any).
func buildQuery(artistName, concertName, year string) string {
	parts := []string{artistName}
	if concertName != "" {
		parts = append(parts, concertName)
	}
	parts = append(parts, "Setlist")
	if year != "" {
		parts = append(parts, year)
	}
	return strings.Join(parts, " ")
}

// qualifies reports whether a playlist name contains at least one token of
// the artist name and one of the setlist keywords. Unnamed playlists never
// qualify.
func qualifies(name string, artistTokens []string) bool {
	if name == "" {
		return false
	}
	lower := strings.ToLower(name)

	hasArtist := false
	for _, token := range artistTokens {
		if strings.Contains(lower, token) {
			hasArtist = true
			break
		}
	}
	if !hasArtist {
		return false
	}

	for _, keyword := range setlistKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// scoreName awards +10 per concert-name token present (case-insensitive) and
// +5 when the year appears verbatim. Empty inputs contribute nothing.
func scoreName(name, concertName, year string) int {
	lower := strings.ToLower(name)
	score := 0
	for _, token := range strings.Fields(strings.ToLower(concertName)) {
		if strings.Contains(lower, token) {
			score += 10
		}
	}
	// Years are numeric, so the match is case-sensitive by construction.
	if year != "" && strings.Contains(name, year) {
		score += 5
	}
	return score
}

func filterAndScore(summaries []catalog.PlaylistSummary, artistName, concertName, year string) []candidate {
	artistTokens := strings.Fields(strings.ToLower(artistName))

	var candidates []candidate
	for _, summary := range summaries {
		if !qualifies(summary.Name, artistTokens) {
			continue
		}
		candidates = append(candidates, candidate{
			summary: summary,
			score:   scoreName(summary.Name, concertName, year),
		})
	}
	return candidates
}

// retained keeps candidates scoring within scoreWindow of the best, in input
// order.
func retained(candidates []candidate) []candidate {
	top := 0
	for _, c := range candidates {
		if c.score > top {
			top = c.score
		}
	}
	floor := top - scoreWindow
	if floor < 0 {
		floor = 0
	}

	kept := make([]candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.score >= floor {
			kept = append(kept, c)
		}
	}
	return kept
}

// mostFollowed fetches details for each retained candidate and picks the one
// with the strictly greatest follower count; ties keep the first encountered.
//
// A failed detail fetch skips the candidate unless strict details are
// enabled, so a single flaky playlist lookup cannot fail the whole run.
func (r *Resolver) mostFollowed(ctx context.Context, candidates []candidate) (*catalog.PlaylistDetails, error) {
	var best *catalog.PlaylistDetails
	maxFollowers := 0

	for _, c := range candidates {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		details, err := r.svc.PlaylistDetails(ctx, c.summary.ID)
		if err != nil {
			if r.strictDetails {
				return nil, fmt.Errorf("playlist %s: %w", c.summary.ID, err)
			}
			r.logger.Warn("skipping candidate, detail fetch failed", "playlist", c.summary.ID, "error", err)
			continue
		}

		if details.Followers > maxFollowers {
			maxFollowers = details.Followers
			best = details
		}
		if best == nil {
			best = details
		}
	}

	return best, nil
}
