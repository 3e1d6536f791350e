package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/venndale/showprep/internal/catalog"
	"github.com/venndale/showprep/internal/setlist"
)

// mockService implements catalog.Service with overridable function fields.
type mockService struct {
	profileFunc         func(ctx context.Context) (*catalog.User, error)
	likedTracksFunc     func(ctx context.Context) ([]catalog.Track, error)
	topTracksFunc       func(ctx context.Context) ([]catalog.Track, error)
	searchArtistFunc    func(ctx context.Context, name string) (*catalog.Artist, error)
	artistTopTracksFunc func(ctx context.Context, artistID string) ([]catalog.Track, error)
	createPlaylistFunc  func(ctx context.Context, name, description string, public bool) (*catalog.CreatedPlaylist, error)
	addTracksFunc       func(ctx context.Context, playlistID string, uris []string) error

	createdTitles []string
	addedBatches  [][]string
}

func (m *mockService) Authenticate(ctx context.Context, credentials map[string]string) error {
	return nil
}

func (m *mockService) Profile(ctx context.Context) (*catalog.User, error) {
	if m.profileFunc != nil {
		return m.profileFunc(ctx)
	}
	return &catalog.User{ID: "user1", DisplayName: "Test User"}, nil
}

func (m *mockService) LikedTracks(ctx context.Context) ([]catalog.Track, error) {
	if m.likedTracksFunc != nil {
		return m.likedTracksFunc(ctx)
	}
	return nil, nil
}

func (m *mockService) TopTracks(ctx context.Context) ([]catalog.Track, error) {
	if m.topTracksFunc != nil {
		return m.topTracksFunc(ctx)
	}
	return nil, nil
}

func (m *mockService) SearchArtist(ctx context.Context, name string) (*catalog.Artist, error) {
	if m.searchArtistFunc != nil {
		return m.searchArtistFunc(ctx, name)
	}
	return &catalog.Artist{ID: "artist1", Name: name}, nil
}

func (m *mockService) ArtistTopTracks(ctx context.Context, artistID string) ([]catalog.Track, error) {
	if m.artistTopTracksFunc != nil {
		return m.artistTopTracksFunc(ctx, artistID)
	}
	return nil, nil
}

func (m *mockService) SearchPlaylists(ctx context.Context, query string) ([]catalog.PlaylistSummary, error) {
	return nil, nil
}

func (m *mockService) PlaylistDetails(ctx context.Context, playlistID string) (*catalog.PlaylistDetails, error) {
	return nil, errors.New("not implemented")
}

func (m *mockService) PlaylistTracks(ctx context.Context, playlistID string) ([]catalog.PlaylistEntry, error) {
	return nil, nil
}

func (m *mockService) CreatePlaylist(ctx context.Context, name, description string, public bool) (*catalog.CreatedPlaylist, error) {
	m.createdTitles = append(m.createdTitles, name)
	if m.createPlaylistFunc != nil {
		return m.createPlaylistFunc(ctx, name, description, public)
	}
	return &catalog.CreatedPlaylist{ID: "pl1", URL: "https://open.spotify.com/playlist/pl1"}, nil
}

func (m *mockService) AddTracks(ctx context.Context, playlistID string, uris []string) error {
	m.addedBatches = append(m.addedBatches, uris)
	if m.addTracksFunc != nil {
		return m.addTracksFunc(ctx, playlistID, uris)
	}
	return nil
}

func (m *mockService) Name() string { return "Mock" }

// mockResolver implements SetlistResolver.
type mockResolver struct {
	resolved *setlist.Resolved
	err      error
}

func (m *mockResolver) Resolve(ctx context.Context, artistName, concertName, year string) (*setlist.Resolved, error) {
	return m.resolved, m.err
}

func track(id, name string, artists ...string) catalog.Track {
	t := catalog.Track{ID: id, URI: "spotify:track:" + id, Name: name}
	for _, a := range artists {
		t.Artists = append(t.Artists, catalog.Artist{ID: "a-" + a, Name: a})
	}
	return t
}

func TestComputeUnheard(t *testing.T) {
	t.Run("artist top tracks precede setlist tracks", func(t *testing.T) {
		known := []catalog.Track{track("k1", "Known Song", "Artist")}
		artistTop := []catalog.Track{
			track("t1", "Hit One", "Artist"),
			track("t2", "Known Song", "Artist"), // same song, different ID
		}
		setlistTracks := []catalog.Track{
			track("s1", "Deep Cut", "Artist"),
			track("t1", "Hit One", "Artist"), // duplicate URI
		}

		unheard := computeUnheard(known, artistTop, setlistTracks)
		if len(unheard) != 2 {
			t.Fatalf("expected 2 unheard tracks, got %d", len(unheard))
		}
		if unheard[0].ID != "t1" || unheard[1].ID != "s1" {
			t.Errorf("wrong order: got %s, %s", unheard[0].ID, unheard[1].ID)
		}
	})

	t.Run("known by name and artists despite different identifiers", func(t *testing.T) {
		known := []catalog.Track{track("liked-9", "Anti-Hero", "Taylor Swift")}
		artistTop := []catalog.Track{track("remaster-4", "Anti-Hero", "Taylor Swift")}

		unheard := computeUnheard(known, artistTop, nil)
		if len(unheard) != 0 {
			t.Errorf("expected no unheard tracks, got %d", len(unheard))
		}
	})

	t.Run("tracks without a URI are dropped", func(t *testing.T) {
		bare := catalog.Track{ID: "x", Name: "No URI", Artists: []catalog.Artist{{Name: "Artist"}}}
		unheard := computeUnheard(nil, []catalog.Track{bare}, nil)
		if len(unheard) != 0 {
			t.Errorf("expected no unheard tracks, got %d", len(unheard))
		}
	})
}

func TestKnownTracks(t *testing.T) {
	liked := []catalog.Track{track("l1", "Song A", "Artist")}
	userTop := []catalog.Track{
		track("l1-alt", "Song A", "Artist"), // duplicate of liked
		track("u1", "Song B", "Artist"),
	}

	known := knownTracks(liked, userTop)
	if len(known) != 2 {
		t.Fatalf("expected 2 known tracks, got %d", len(known))
	}
	if known[0].ID != "l1" || known[1].ID != "u1" {
		t.Errorf("wrong contents: got %s, %s", known[0].ID, known[1].ID)
	}
}

func TestPlaylistMetadata(t *testing.T) {
	tests := []struct {
		name      string
		artist    string
		tourTitle string
		wantTitle string
		wantDesc  bool
	}{
		{
			name:      "setlist marker and leading artist stripped",
			artist:    "Taylor Swift",
			tourTitle: "Taylor Swift Setlist - The Eras Tour",
			wantTitle: "The Eras Tour Prep",
			wantDesc:  true,
		},
		{
			name:      "trailing artist stripped",
			artist:    "Taylor Swift",
			tourTitle: "The Eras Tour Setlist - Taylor Swift",
			wantTitle: "The Eras Tour Prep",
			wantDesc:  true,
		},
		{
			name:      "no setlist resolved",
			artist:    "Phoebe Bridgers",
			tourTitle: "",
			wantTitle: "Phoebe Bridgers Concert Prep",
			wantDesc:  false,
		},
		{
			name:      "title reduces to nothing",
			artist:    "Muse",
			tourTitle: "Muse Setlist",
			wantTitle: "Muse Concert Prep",
			wantDesc:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, desc := playlistMetadata(tt.artist, tt.tourTitle)
			if title != tt.wantTitle {
				t.Errorf("title = %q, want %q", title, tt.wantTitle)
			}
			if tt.wantDesc && desc == "" {
				t.Error("expected a description")
			}
			if !tt.wantDesc && desc != "" {
				t.Errorf("expected empty description, got %q", desc)
			}
		})
	}
}

func TestPrepEngineRun(t *testing.T) {
	ctx := context.Background()

	t.Run("requires an artist name", func(t *testing.T) {
		engine := NewPrepEngine(&mockService{}, nil, nil, nil)
		if _, err := engine.Run(ctx, nil, PrepRequest{}); err == nil {
			t.Fatal("expected error for empty artist name")
		}
	})

	t.Run("nothing to add skips playlist creation", func(t *testing.T) {
		svc := &mockService{
			likedTracksFunc: func(ctx context.Context) ([]catalog.Track, error) {
				return []catalog.Track{track("l1", "Hit One", "Muse")}, nil
			},
			artistTopTracksFunc: func(ctx context.Context, artistID string) ([]catalog.Track, error) {
				return []catalog.Track{track("t1", "Hit One", "Muse")}, nil
			},
		}
		engine := NewPrepEngine(svc, nil, nil, nil)

		result, err := engine.Run(ctx, nil, PrepRequest{ArtistName: "Muse", SkipSetlist: true})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.NothingToAdd {
			t.Error("expected NothingToAdd")
		}
		if len(svc.createdTitles) != 0 {
			t.Errorf("expected no playlist creation, got %v", svc.createdTitles)
		}
		if !strings.Contains(result.Message, "No new songs to add") {
			t.Errorf("unexpected message: %q", result.Message)
		}
	})

	t.Run("splits additions into batches of at most 100", func(t *testing.T) {
		tracks := make([]catalog.Track, 250)
		for i := range tracks {
			tracks[i] = track(fmt.Sprintf("t%03d", i), fmt.Sprintf("Song %03d", i), "Muse")
		}
		svc := &mockService{
			artistTopTracksFunc: func(ctx context.Context, artistID string) ([]catalog.Track, error) {
				return tracks, nil
			},
		}
		engine := NewPrepEngine(svc, nil, nil, nil)

		result, err := engine.Run(ctx, nil, PrepRequest{ArtistName: "Muse", SkipSetlist: true})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.AddedCount != 250 {
			t.Errorf("AddedCount = %d, want 250", result.AddedCount)
		}
		want := []int{100, 100, 50}
		if len(svc.addedBatches) != len(want) {
			t.Fatalf("got %d batches, want %d", len(svc.addedBatches), len(want))
		}
		for i, size := range want {
			if len(svc.addedBatches[i]) != size {
				t.Errorf("batch %d size = %d, want %d", i, len(svc.addedBatches[i]), size)
			}
		}
		if svc.addedBatches[0][0] != "spotify:track:t000" {
			t.Errorf("first URI = %q, want the first artist top track", svc.addedBatches[0][0])
		}
	})

	t.Run("batch failure aborts remaining batches", func(t *testing.T) {
		tracks := make([]catalog.Track, 250)
		for i := range tracks {
			tracks[i] = track(fmt.Sprintf("t%03d", i), fmt.Sprintf("Song %03d", i), "Muse")
		}
		calls := 0
		svc := &mockService{
			artistTopTracksFunc: func(ctx context.Context, artistID string) ([]catalog.Track, error) {
				return tracks, nil
			},
			addTracksFunc: func(ctx context.Context, playlistID string, uris []string) error {
				calls++
				if calls == 2 {
					return errors.New("upstream says no")
				}
				return nil
			},
		}
		engine := NewPrepEngine(svc, nil, nil, nil)

		result, err := engine.Run(ctx, nil, PrepRequest{ArtistName: "Muse", SkipSetlist: true})
		if err == nil {
			t.Fatal("expected error from failed batch")
		}
		if calls != 2 {
			t.Errorf("expected 2 add calls, got %d", calls)
		}
		if result == nil || result.AddedCount != 100 {
			t.Errorf("expected partial result with 100 added tracks, got %+v", result)
		}
	})

	t.Run("setlist tour title shapes the playlist name", func(t *testing.T) {
		svc := &mockService{
			artistTopTracksFunc: func(ctx context.Context, artistID string) ([]catalog.Track, error) {
				return []catalog.Track{track("t1", "Hit One", "Muse")}, nil
			},
		}
		resolver := &mockResolver{resolved: &setlist.Resolved{
			TourTitle: "Muse Setlist - Will of the People Tour",
			Tracks:    []catalog.Track{track("s1", "Deep Cut", "Muse")},
		}}
		engine := NewPrepEngine(svc, resolver, nil, nil)

		result, err := engine.Run(ctx, nil, PrepRequest{ArtistName: "Muse"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.PlaylistTitle != "Will of the People Tour Prep" {
			t.Errorf("PlaylistTitle = %q", result.PlaylistTitle)
		}
		if !result.SetlistFound || result.SetlistTrackCount != 1 {
			t.Errorf("setlist fields wrong: %+v", result)
		}
		if result.AddedCount != 2 {
			t.Errorf("AddedCount = %d, want 2", result.AddedCount)
		}
	})

	t.Run("progress updates never block", func(t *testing.T) {
		svc := &mockService{
			artistTopTracksFunc: func(ctx context.Context, artistID string) ([]catalog.Track, error) {
				return []catalog.Track{track("t1", "Hit One", "Muse")}, nil
			},
		}
		engine := NewPrepEngine(svc, nil, nil, nil)

		// Unbuffered channel with no reader: sends must be dropped, not block.
		progress := make(chan ProgressUpdate)
		done := make(chan struct{})
		go func() {
			defer close(done)
			if _, err := engine.Run(ctx, progress, PrepRequest{ArtistName: "Muse", SkipSetlist: true}); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
		<-done
	})
}
