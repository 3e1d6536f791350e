// Spotify API implementation of [Service]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/venndale/showprep/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

// Scopes cover library reads, listening history, and private playlist writes.
var spotifyScopes = []string{
	"user-library-read",
	"user-read-private",
	"user-top-read",
	"playlist-modify-private",
	"playlist-modify-public",
}

type followers struct {
	Total int `json:"total"`
}

type externalURLs struct {
	Spotify string `json:"spotify"`
}

// spotifyUser represents a Spotify user profile.
type spotifyUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// spotifyArtist represents a Spotify artist.
type spotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// spotifyTrack represents a Spotify track.
type spotifyTrack struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Artists []spotifyArtist `json:"artists"`
	URI     string          `json:"uri"`
}

// spotifySavedTrack represents a track saved in the user's library.
type spotifySavedTrack struct {
	AddedAt string        `json:"added_at"`
	Track   *spotifyTrack `json:"track"`
}

// spotifyPaginatedTracks represents a paginated response of saved tracks.
type spotifyPaginatedTracks struct {
	Items []spotifySavedTrack `json:"items"`
	Total int                 `json:"total"`
	Next  *string             `json:"next"`
}

// spotifySimplePlaylist represents a simplified playlist object (used in search results).
type spotifySimplePlaylist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// spotifyPlaylist represents a full playlist object.
type spotifyPlaylist struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Followers    followers    `json:"followers"`
	ExternalURLs externalURLs `json:"external_urls"`
}

// spotifyPlaylistTrack represents a track within a playlist context.
type spotifyPlaylistTrack struct {
	AddedAt string        `json:"added_at"`
	Track   *spotifyTrack `json:"track"`
}

// SpotifyService implements the Service interface for Spotify API interactions.
// Uses [oauth2] for authentication.
type SpotifyService struct {
	config         *oauth2.Config
	token          *oauth2.Token
	httpClient     *http.Client
	baseURL        string
	onTokenRefresh func(*oauth2.Token)
}

// NewSpotifyService creates a new Spotify service with the given OAuth2 credentials.
func NewSpotifyService(credentials map[string]string) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = "http://localhost:8080/callback"
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes:       spotifyScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyService{
		config:     config,
		httpClient: http.DefaultClient,
		baseURL:    spotifyBaseURL,
	}, nil
}

// Authenticate performs OAuth2 authentication with Spotify. Expects either an "access_token" or "auth_code" in credentials.
func (s *SpotifyService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if accessToken, ok := credentials["access_token"]; ok && accessToken != "" {
		s.token = &oauth2.Token{
			AccessToken:  accessToken,
			RefreshToken: credentials["refresh_token"],
		}
		s.useToken(ctx, s.token)
		return nil
	}

	if authCode, ok := credentials["auth_code"]; ok && authCode != "" {
		token, err := s.config.Exchange(ctx, authCode)
		if err != nil {
			return fmt.Errorf("%w: code exchange: %v", shared.ErrAuthFailed, err)
		}
		s.token = token
		s.useToken(ctx, token)
		return nil
	}

	return fmt.Errorf("%w: missing access_token or auth_code", shared.ErrMissingCredentials)
}

// AuthenticateToken authenticates with a previously persisted [oauth2.Token].
func (s *SpotifyService) AuthenticateToken(ctx context.Context, token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: empty token", shared.ErrMissingCredentials)
	}
	s.token = token
	s.useToken(ctx, token)
	return nil
}

// useToken installs an HTTP client backed by a refresh-capable token source.
func (s *SpotifyService) useToken(ctx context.Context, token *oauth2.Token) {
	source := &refreshableTokenSource{
		source:   s.config.TokenSource(ctx, token),
		callback: s.onTokenRefresh,
	}
	s.httpClient = oauth2.NewClient(ctx, source)
}

// SetTokenRefreshCallback registers a function invoked whenever the token
// source produces a new token, so callers can persist refreshed credentials.
func (s *SpotifyService) SetTokenRefreshCallback(fn func(*oauth2.Token)) {
	s.onTokenRefresh = fn
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// GetOAuthConfig exposes the underlying OAuth2 config for the callback server.
func (s *SpotifyService) GetOAuthConfig() *oauth2.Config {
	return s.config
}

// refreshableTokenSource wraps an [oauth2.TokenSource] and reports new tokens
// through a callback exactly once per change.
type refreshableTokenSource struct {
	source   oauth2.TokenSource
	callback func(*oauth2.Token)
	last     string
}

func (r *refreshableTokenSource) Token() (*oauth2.Token, error) {
	token, err := r.source.Token()
	if err != nil {
		return nil, err
	}
	if r.callback != nil && token.AccessToken != r.last {
		func() {
			defer func() { _ = recover() }()
			r.callback(token)
		}()
	}
	r.last = token.AccessToken
	return token, nil
}

// doRequest performs an authenticated HTTP request against the Spotify API.
//
// endpoint may be a path relative to the API base or an absolute URL (the
// shape of the pagination next pointer). A non-2xx response becomes a typed
// upstream error carrying status and body; 401 maps to [shared.ErrTokenExpired].
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	if s.token == nil {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	apiURL := endpoint
	if !strings.HasPrefix(endpoint, "http") {
		apiURL = s.baseURL + endpoint
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		if resp.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("%w: status %d: %s", shared.ErrTokenExpired, resp.StatusCode, strings.TrimSpace(string(snippet)))
		}
		return fmt.Errorf("%w: status %d: %s", shared.ErrUpstream, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// Profile retrieves the current authenticated user's profile.
func (s *SpotifyService) Profile(ctx context.Context) (*User, error) {
	var user spotifyUser
	if err := s.doRequest(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &User{ID: user.ID, DisplayName: user.DisplayName}, nil
}

// LikedTracks retrieves the user's entire liked library.
//
// Follows the next-page pointer until the catalog reports no further page.
func (s *SpotifyService) LikedTracks(ctx context.Context) ([]Track, error) {
	var all []Track
	endpoint := "/me/tracks?limit=50"

	for endpoint != "" {
		var page spotifyPaginatedTracks
		if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			if item.Track == nil {
				continue
			}
			all = append(all, toTrack(*item.Track))
		}

		if page.Next == nil {
			break
		}
		endpoint = *page.Next
	}

	return all, nil
}

// TopTracks retrieves the user's personal top tracks from the past six months.
func (s *SpotifyService) TopTracks(ctx context.Context) ([]Track, error) {
	var response struct {
		Items []spotifyTrack `json:"items"`
	}
	endpoint := "/me/top/tracks?time_range=medium_term&limit=50"
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}
	return toTracks(response.Items), nil
}

// SearchArtist resolves an artist name to the catalog's authoritative record.
//
// Prefers the first case-insensitive exact name match; falls back to the
// first search result.
func (s *SpotifyService) SearchArtist(ctx context.Context, name string) (*Artist, error) {
	endpoint := fmt.Sprintf("/search?q=%s&type=artist&limit=50", url.QueryEscape(name))

	var response struct {
		Artists struct {
			Items []spotifyArtist `json:"items"`
		} `json:"artists"`
	}
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	items := response.Artists.Items
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: %q", shared.ErrArtistNotFound, name)
	}

	want := strings.ToLower(strings.TrimSpace(name))
	for _, artist := range items {
		if strings.ToLower(strings.TrimSpace(artist.Name)) == want {
			return &Artist{ID: artist.ID, Name: artist.Name}, nil
		}
	}

	return &Artist{ID: items[0].ID, Name: items[0].Name}, nil
}

// ArtistTopTracks retrieves an artist's popular tracks in the US market.
func (s *SpotifyService) ArtistTopTracks(ctx context.Context, artistID string) ([]Track, error) {
	var response struct {
		Tracks []spotifyTrack `json:"tracks"`
	}
	endpoint := fmt.Sprintf("/artists/%s/top-tracks?market=US", artistID)
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}
	return toTracks(response.Tracks), nil
}

// SearchPlaylists searches public playlists by free text.
//
// Spotify pads search results with null entries; those and unnamed playlists
// are dropped here so callers see only usable candidates.
func (s *SpotifyService) SearchPlaylists(ctx context.Context, query string) ([]PlaylistSummary, error) {
	endpoint := fmt.Sprintf("/search?q=%s&type=playlist&limit=50", url.QueryEscape(query))

	var response struct {
		Playlists struct {
			Items []*spotifySimplePlaylist `json:"items"`
		} `json:"playlists"`
	}
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	summaries := make([]PlaylistSummary, 0, len(response.Playlists.Items))
	for _, item := range response.Playlists.Items {
		if item == nil || item.ID == "" {
			continue
		}
		summaries = append(summaries, PlaylistSummary{ID: item.ID, Name: item.Name})
	}
	return summaries, nil
}

// PlaylistDetails retrieves a playlist's name, follower count, and public URL.
func (s *SpotifyService) PlaylistDetails(ctx context.Context, playlistID string) (*PlaylistDetails, error) {
	var playlist spotifyPlaylist
	endpoint := fmt.Sprintf("/playlists/%s", playlistID)
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &playlist); err != nil {
		return nil, err
	}
	return &PlaylistDetails{
		ID:        playlist.ID,
		Name:      playlist.Name,
		Followers: playlist.Followers.Total,
		URL:       playlist.ExternalURLs.Spotify,
	}, nil
}

// PlaylistTracks retrieves the ordered entries of a playlist.
func (s *SpotifyService) PlaylistTracks(ctx context.Context, playlistID string) ([]PlaylistEntry, error) {
	var response struct {
		Items []spotifyPlaylistTrack `json:"items"`
	}
	endpoint := fmt.Sprintf("/playlists/%s/tracks", playlistID)
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	entries := make([]PlaylistEntry, 0, len(response.Items))
	for _, item := range response.Items {
		if item.Track == nil {
			continue
		}
		entries = append(entries, PlaylistEntry{Track: toTrack(*item.Track)})
	}
	return entries, nil
}

// CreatePlaylist creates a playlist owned by the authenticated user.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, name, description string, public bool) (*CreatedPlaylist, error) {
	body := map[string]any{
		"name":        name,
		"description": description,
		"public":      public,
	}

	var response struct {
		ID           string       `json:"id"`
		ExternalURLs externalURLs `json:"external_urls"`
	}
	if err := s.doRequest(ctx, http.MethodPost, "/me/playlists", body, &response); err != nil {
		return nil, err
	}
	return &CreatedPlaylist{ID: response.ID, URL: response.ExternalURLs.Spotify}, nil
}

// AddTracks appends up to 100 track URIs to a playlist.
func (s *SpotifyService) AddTracks(ctx context.Context, playlistID string, uris []string) error {
	if len(uris) == 0 {
		return nil
	}
	if len(uris) > 100 {
		return fmt.Errorf("%w: at most 100 tracks per request, got %d", shared.ErrInvalidArgument, len(uris))
	}

	body := map[string]any{"uris": uris}
	endpoint := fmt.Sprintf("/playlists/%s/tracks", playlistID)
	return s.doRequest(ctx, http.MethodPost, endpoint, body, nil)
}

func toTrack(t spotifyTrack) Track {
	artists := make([]Artist, 0, len(t.Artists))
	for _, a := range t.Artists {
		artists = append(artists, Artist{ID: a.ID, Name: a.Name})
	}
	return Track{ID: t.ID, URI: t.URI, Name: t.Name, Artists: artists}
}

func toTracks(items []spotifyTrack) []Track {
	tracks := make([]Track, 0, len(items))
	for _, item := range items {
		tracks = append(tracks, toTrack(item))
	}
	return tracks
}
