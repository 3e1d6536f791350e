package setlist

import (
	"context"
	"errors"
	"testing"

	"github.com/venndale/showprep/internal/catalog"
)

// mockService implements catalog.Service for resolver tests. Only the search
// and playlist endpoints are exercised.
type mockService struct {
	searchPlaylistsFunc func(ctx context.Context, query string) ([]catalog.PlaylistSummary, error)
	playlistDetailsFunc func(ctx context.Context, playlistID string) (*catalog.PlaylistDetails, error)
	playlistTracksFunc  func(ctx context.Context, playlistID string) ([]catalog.PlaylistEntry, error)
}

func (m *mockService) Authenticate(ctx context.Context, credentials map[string]string) error {
	return nil
}
func (m *mockService) Profile(ctx context.Context) (*catalog.User, error)      { return nil, nil }
func (m *mockService) LikedTracks(ctx context.Context) ([]catalog.Track, error) { return nil, nil }
func (m *mockService) TopTracks(ctx context.Context) ([]catalog.Track, error)   { return nil, nil }
func (m *mockService) SearchArtist(ctx context.Context, name string) (*catalog.Artist, error) {
	return nil, nil
}
func (m *mockService) ArtistTopTracks(ctx context.Context, artistID string) ([]catalog.Track, error) {
	return nil, nil
}

func (m *mockService) SearchPlaylists(ctx context.Context, query string) ([]catalog.PlaylistSummary, error) {
	if m.searchPlaylistsFunc != nil {
		return m.searchPlaylistsFunc(ctx, query)
	}
	return nil, nil
}

func (m *mockService) PlaylistDetails(ctx context.Context, playlistID string) (*catalog.PlaylistDetails, error) {
	if m.playlistDetailsFunc != nil {
		return m.playlistDetailsFunc(ctx, playlistID)
	}
	return &catalog.PlaylistDetails{ID: playlistID}, nil
}

func (m *mockService) PlaylistTracks(ctx context.Context, playlistID string) ([]catalog.PlaylistEntry, error) {
	if m.playlistTracksFunc != nil {
		return m.playlistTracksFunc(ctx, playlistID)
	}
	return nil, nil
}

func (m *mockService) CreatePlaylist(ctx context.Context, name, description string, public bool) (*catalog.CreatedPlaylist, error) {
	return nil, errors.New("not implemented")
}
func (m *mockService) AddTracks(ctx context.Context, playlistID string, uris []string) error {
	return errors.New("not implemented")
}
func (m *mockService) Name() string { return "Mock" }

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name                      string
		artist, concert, year, want string
	}{
		{"artist only", "Muse", "", "", "Muse Setlist"},
		{"with concert", "Muse", "Will of the People", "", "Muse Will of the People Setlist"},
		{"with year", "Muse", "", "2023", "Muse Setlist 2023"},
		{"all parts", "Muse", "Will of the People", "2023", "Muse Will of the People Setlist 2023"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildQuery(tt.artist, tt.concert, tt.year); got != tt.want {
				t.Errorf("buildQuery = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestQualifies(t *testing.T) {
	tokens := []string{"artist", "x"}
	tests := []struct {
		name string
		want bool
	}{
		{"Artist X Tour 2024", true},
		{"ARTIST X SETLIST", true},
		{"artist x concert favorites", true},
		{"Artist X Live Album", false}, // no setlist keyword
		{"Greatest Tour Hits", false},  // no artist token
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := qualifies(tt.name, tokens); got != tt.want {
				t.Errorf("qualifies(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestScoreName(t *testing.T) {
	t.Run("concert tokens score ten each", func(t *testing.T) {
		got := scoreName("Muse Will of the People Tour", "Will of the People", "")
		if got != 40 {
			t.Errorf("score = %d, want 40", got)
		}
	})

	t.Run("year scores five", func(t *testing.T) {
		if got := scoreName("Muse Setlist 2023", "", "2023"); got != 5 {
			t.Errorf("score = %d, want 5", got)
		}
	})

	t.Run("empty inputs score zero", func(t *testing.T) {
		if got := scoreName("Muse Setlist", "", ""); got != 0 {
			t.Errorf("score = %d, want 0", got)
		}
	})
}

func TestRetained(t *testing.T) {
	candidates := []candidate{
		{summary: catalog.PlaylistSummary{ID: "a"}, score: 15},
		{summary: catalog.PlaylistSummary{ID: "b"}, score: 10},
		{summary: catalog.PlaylistSummary{ID: "c"}, score: 9},
		{summary: catalog.PlaylistSummary{ID: "d"}, score: 2},
	}

	kept := retained(candidates)
	if len(kept) != 2 {
		t.Fatalf("kept %d candidates, want 2", len(kept))
	}
	if kept[0].summary.ID != "a" || kept[1].summary.ID != "b" {
		t.Errorf("wrong candidates kept: %s, %s", kept[0].summary.ID, kept[1].summary.ID)
	}
}

func TestResolve(t *testing.T) {
	ctx := context.Background()

	summaries := []catalog.PlaylistSummary{
		{ID: "p1", Name: "Muse Setlist - Will of the People Tour"},
		{ID: "p2", Name: "Muse Tour Essentials"},
		{ID: "p3", Name: "Random Mix"}, // does not qualify
	}

	t.Run("picks the most followed candidate", func(t *testing.T) {
		svc := &mockService{
			searchPlaylistsFunc: func(ctx context.Context, query string) ([]catalog.PlaylistSummary, error) {
				return summaries, nil
			},
			playlistDetailsFunc: func(ctx context.Context, playlistID string) (*catalog.PlaylistDetails, error) {
				followers := map[string]int{"p1": 120, "p2": 4500}
				return &catalog.PlaylistDetails{ID: playlistID, Name: "Muse Tour Essentials", Followers: followers[playlistID]}, nil
			},
			playlistTracksFunc: func(ctx context.Context, playlistID string) ([]catalog.PlaylistEntry, error) {
				return []catalog.PlaylistEntry{{Track: catalog.Track{ID: "t1", Name: "Uprising"}}}, nil
			},
		}
		resolver := NewResolver(svc, Options{RateLimit: 1000})

		resolved, err := resolver.Resolve(ctx, "Muse", "", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resolved == nil {
			t.Fatal("expected a resolved setlist")
		}
		if len(resolved.Tracks) != 1 || resolved.Tracks[0].Name != "Uprising" {
			t.Errorf("unexpected tracks: %+v", resolved.Tracks)
		}
	})

	t.Run("follower ties keep the first candidate", func(t *testing.T) {
		var fetched []string
		svc := &mockService{
			searchPlaylistsFunc: func(ctx context.Context, query string) ([]catalog.PlaylistSummary, error) {
				return summaries[:2], nil
			},
			playlistDetailsFunc: func(ctx context.Context, playlistID string) (*catalog.PlaylistDetails, error) {
				fetched = append(fetched, playlistID)
				return &catalog.PlaylistDetails{ID: playlistID, Name: playlistID, Followers: 0}, nil
			},
		}
		resolver := NewResolver(svc, Options{RateLimit: 1000})

		resolved, err := resolver.Resolve(ctx, "Muse", "", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resolved == nil || resolved.TourTitle != "p1" {
			t.Errorf("expected first candidate to win the tie, got %+v", resolved)
		}
		if len(fetched) != 2 {
			t.Errorf("expected details for both candidates, fetched %v", fetched)
		}
	})

	t.Run("no qualifying playlist resolves to nil", func(t *testing.T) {
		svc := &mockService{
			searchPlaylistsFunc: func(ctx context.Context, query string) ([]catalog.PlaylistSummary, error) {
				return []catalog.PlaylistSummary{{ID: "p3", Name: "Random Mix"}}, nil
			},
		}
		resolver := NewResolver(svc, Options{RateLimit: 1000})

		resolved, err := resolver.Resolve(ctx, "Muse", "", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resolved != nil {
			t.Errorf("expected nil resolution, got %+v", resolved)
		}
	})

	t.Run("detail failures skip the candidate by default", func(t *testing.T) {
		svc := &mockService{
			searchPlaylistsFunc: func(ctx context.Context, query string) ([]catalog.PlaylistSummary, error) {
				return summaries[:2], nil
			},
			playlistDetailsFunc: func(ctx context.Context, playlistID string) (*catalog.PlaylistDetails, error) {
				if playlistID == "p1" {
					return nil, errors.New("rate limited")
				}
				return &catalog.PlaylistDetails{ID: playlistID, Name: "Muse Tour Essentials", Followers: 3}, nil
			},
		}
		resolver := NewResolver(svc, Options{RateLimit: 1000})

		resolved, err := resolver.Resolve(ctx, "Muse", "", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resolved == nil || resolved.TourTitle != "Muse Tour Essentials" {
			t.Errorf("expected surviving candidate to win, got %+v", resolved)
		}
	})

	t.Run("strict details surfaces the failure", func(t *testing.T) {
		svc := &mockService{
			searchPlaylistsFunc: func(ctx context.Context, query string) ([]catalog.PlaylistSummary, error) {
				return summaries[:1], nil
			},
			playlistDetailsFunc: func(ctx context.Context, playlistID string) (*catalog.PlaylistDetails, error) {
				return nil, errors.New("rate limited")
			},
		}
		resolver := NewResolver(svc, Options{StrictDetails: true, RateLimit: 1000})

		if _, err := resolver.Resolve(ctx, "Muse", "", ""); err == nil {
			t.Fatal("expected detail-fetch error to surface")
		}
	})
}
