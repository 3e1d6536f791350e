// package match decides whether two catalog tracks are "the same song".
//
// Catalog identifiers are not reliable identity keys: the same recording is
// issued distinct IDs across albums, singles, and remasters. Identity here is
// the pair (normalized name, set of normalized artist names). Two distinct
// songs that share a name and artist set (covers, live cuts with identical
// metadata) will conflate; the catalog exposes no stronger signal on the
// endpoints this tool reads, so that residual ambiguity is accepted.
package match

import (
	"strings"

	"github.com/venndale/showprep/internal/catalog"
)

// normalize lower-cases and trims a name for comparison.
func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// artistSet collects a track's normalized artist names. Artists with empty
// names are ignored.
func artistSet(t catalog.Track) map[string]struct{} {
	set := make(map[string]struct{}, len(t.Artists))
	for _, artist := range t.Artists {
		if name := normalize(artist.Name); name != "" {
			set[name] = struct{}{}
		}
	}
	return set
}

// SameTrack reports whether a and b represent the same song: equal normalized
// names and equal normalized artist-name sets. Missing names or artist lists
// are treated as non-matching inputs, never an error.
func SameTrack(a, b catalog.Track) bool {
	nameA := normalize(a.Name)
	if nameA == "" || nameA != normalize(b.Name) {
		return false
	}

	setA, setB := artistSet(a), artistSet(b)
	if len(setA) == 0 || len(setA) != len(setB) {
		return false
	}
	for name := range setA {
		if _, ok := setB[name]; !ok {
			return false
		}
	}
	return true
}

// TrackInList reports whether track matches any element of list by [SameTrack].
// Returns false for an empty list or a malformed track.
func TrackInList(track catalog.Track, list []catalog.Track) bool {
	for _, other := range list {
		if SameTrack(track, other) {
			return true
		}
	}
	return false
}
