package tasks

import "fmt"

// ProgressUpdate represents a progress event during a prep run.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchLibrary Phase = iota
	FetchUserTop
	LookupArtist
	FetchArtistTop
	ResolveSetlist
	Reconcile
	CreatePlaylist
	AddTracks
)

func (p Phase) String() string {
	switch p {
	case FetchLibrary:
		return "fetch_library"
	case FetchUserTop:
		return "fetch_user_top"
	case LookupArtist:
		return "lookup_artist"
	case FetchArtistTop:
		return "fetch_artist_top"
	case ResolveSetlist:
		return "resolve_setlist"
	case Reconcile:
		return "reconcile"
	case CreatePlaylist:
		return "create_playlist"
	case AddTracks:
		return "add_tracks"
	default:
		return ""
	}
}

func fetchLibraryUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchLibrary,
		Step:    1,
		Total:   1,
		Message: "Fetching liked tracks...",
	}
}

func fetchUserTopUpdate(likedCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchUserTop,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d liked tracks, fetching your top tracks...", likedCount),
	}
}

func lookupArtistUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LookupArtist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Looking up %s...", name),
	}
}

func fetchArtistTopUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchArtistTop,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching top tracks for %s...", name),
	}
}

func resolveSetlistUpdate(query string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveSetlist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Searching for a setlist (%s)...", query),
	}
}

func setlistResolvedUpdate(title string, trackCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveSetlist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found setlist: %s (%d tracks)", title, trackCount),
	}
}

func reconcileUpdate(known, candidates int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Reconcile,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Comparing %d candidate tracks against %d known tracks...", candidates, known),
	}
}

func createPlaylistUpdate(title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Creating playlist: %s", title),
	}
}

func addTracksUpdate(batch, totalBatches, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AddTracks,
		Step:    batch,
		Total:   totalBatches,
		Message: fmt.Sprintf("[%d/%d] Adding %d tracks...", batch, totalBatches, count),
	}
}
