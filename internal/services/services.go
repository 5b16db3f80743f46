// package services defines interface Client for interacting with the Spotify Web API
package services

import (
	"context"

	"github.com/desertthunder/spotx/internal/models"
)

// Role identifies which account a client is authenticated as.
type Role string

const (
	RoleSource Role = "source"
	RoleDest   Role = "dest"
)

// Valid reports whether the role is one of the two known account roles.
func (r Role) Valid() bool {
	return r == RoleSource || r == RoleDest
}

// Client defines the operations the transfer engine needs from an
// authenticated account.
//
// The read calls are paginated with a limit/offset pair and return the
// service's own continuation flag in [models.Page.Next]. The bulk write
// calls are capped per request (50 ids for SaveTracks, 100 for
// AddPlaylistItems); callers batch accordingly.
type Client interface {
	// Me retrieves the authenticated account's identity.
	Me(ctx context.Context) (*models.User, error)

	// SavedTracks lists a window of the account's liked songs.
	SavedTracks(ctx context.Context, limit, offset int) (*models.Page[models.SavedTrack], error)

	// Playlists lists a window of the account's playlists.
	Playlists(ctx context.Context, limit, offset int) (*models.Page[models.Playlist], error)

	// PlaylistItems lists a window of a playlist's tracks.
	PlaylistItems(ctx context.Context, playlistID string, limit, offset int) (*models.Page[models.SavedTrack], error)

	// SaveTracks adds tracks to the account's liked songs.
	SaveTracks(ctx context.Context, ids []string) error

	// CreatePlaylist creates a playlist owned by the given user.
	CreatePlaylist(ctx context.Context, userID, name string, public bool, description string) (*models.Playlist, error)

	// AddPlaylistItems appends tracks to an existing playlist.
	AddPlaylistItems(ctx context.Context, playlistID string, ids []string) error

	// Name returns a human-readable name for the client (e.g. "Spotify (source)")
	Name() string
}
