package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTokenExpired     = fmt.Errorf("access token expired")
	ErrTimeout          = fmt.Errorf("operation timed out")

	// Catalog errors
	ErrUpstream         = fmt.Errorf("catalog request failed")
	ErrArtistNotFound   = fmt.Errorf("artist not found")
	ErrSetlistNotFound  = fmt.Errorf("setlist not found")
	ErrPlaylistNotFound = fmt.Errorf("playlist not found")

	// ErrNothingToAdd is a terminal success variant: the user already knows
	// every track a prep run would have added.
	ErrNothingToAdd = fmt.Errorf("nothing to add")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
