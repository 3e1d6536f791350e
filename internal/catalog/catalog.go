// package catalog defines interface Service for the external music catalog.
//
// One implementation exists: Spotify. Everything the prep pipeline needs from
// the catalog goes through this interface so the resolver and engine can be
// tested against fakes.
package catalog

import (
	"context"

	"golang.org/x/oauth2"
)

// Service defines the typed read/write surface of the music catalog consumed
// by the prep pipeline.
type Service interface {
	// Authenticate performs OAuth authentication with the catalog.
	// Accepts either an "access_token" or an "auth_code" credential.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// Profile retrieves the authenticated user's profile.
	Profile(ctx context.Context) (*User, error)

	// LikedTracks retrieves the user's entire liked library, following the
	// catalog's next-page pointer until it is absent.
	LikedTracks(ctx context.Context) ([]Track, error)

	// TopTracks retrieves the user's personal top tracks (medium term, up to 50).
	TopTracks(ctx context.Context) ([]Track, error)

	// SearchArtist resolves an artist name to the catalog's authoritative
	// artist record: the first case-insensitive exact name match, or the
	// first search result when no exact match exists.
	SearchArtist(ctx context.Context, name string) (*Artist, error)

	// ArtistTopTracks retrieves an artist's popular tracks (US market).
	ArtistTopTracks(ctx context.Context, artistID string) ([]Track, error)

	// SearchPlaylists searches public playlists by free text (up to 50 results).
	SearchPlaylists(ctx context.Context, query string) ([]PlaylistSummary, error)

	// PlaylistDetails retrieves a playlist's name, follower count, and URL.
	PlaylistDetails(ctx context.Context, playlistID string) (*PlaylistDetails, error)

	// PlaylistTracks retrieves the ordered entries of a playlist.
	PlaylistTracks(ctx context.Context, playlistID string) ([]PlaylistEntry, error)

	// CreatePlaylist creates a playlist owned by the authenticated user.
	CreatePlaylist(ctx context.Context, name, description string, public bool) (*CreatedPlaylist, error)

	// AddTracks appends up to 100 track URIs to a playlist. Callers batch.
	AddTracks(ctx context.Context, playlistID string, uris []string) error

	// Name returns the name of the catalog service (e.g., "Spotify")
	Name() string
}

// OAuthService is implemented by catalogs that authenticate via OAuth2
// authorization code flow.
type OAuthService interface {
	Service
	GetAuthURL(state string) string
	GetOAuthConfig() *oauth2.Config
}

// User is the authenticated catalog account.
type User struct {
	ID          string
	DisplayName string
}

// Artist is a catalog artist record.
type Artist struct {
	ID   string
	Name string
}

// Track is a catalog track. ID and URI are opaque catalog identifiers; the
// same recording may carry different identifiers across releases, so track
// identity for matching purposes lives in the match package, not here.
type Track struct {
	ID      string
	URI     string
	Name    string
	Artists []Artist
}

// PlaylistSummary is a playlist as returned by search, before details are fetched.
type PlaylistSummary struct {
	ID   string
	Name string
}

// PlaylistDetails carries the fields needed to rank setlist candidates.
type PlaylistDetails struct {
	ID        string
	Name      string
	Followers int
	URL       string
}

// PlaylistEntry is a track in playlist context.
type PlaylistEntry struct {
	Track Track
}

// CreatedPlaylist is the terminal artifact of a prep run.
type CreatedPlaylist struct {
	ID  string
	URL string
}
