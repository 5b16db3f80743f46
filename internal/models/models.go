package models

// Track represents a single track in either account's library.
type Track struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Artist string `json:"artist,omitempty"`
	Album  string `json:"album,omitempty"`
	URI    string `json:"uri,omitempty"`
	Local  bool   `json:"local,omitempty"`
}

// Transferable reports whether the track can be written to another account.
//
// Local-only tracks carry no catalog identifier and are permanently
// ineligible for transfer.
func (t Track) Transferable() bool {
	return t.ID != "" && !t.Local
}

// SavedTrack is a track in the context of a library or playlist listing.
type SavedTrack struct {
	AddedAt string `json:"added_at,omitempty"`
	Track   Track  `json:"track"`
}

// Playlist represents a playlist owned or followed by a user.
type Playlist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Public      bool   `json:"public"`
	TrackCount  int    `json:"track_count,omitempty"`
	OwnerID     string `json:"owner_id,omitempty"`
}

// User identifies an authenticated account.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name,omitempty"`
	Email       string `json:"email,omitempty"`
	Product     string `json:"product,omitempty"`
}

// Page is one window of a paginated listing.
//
// Next reports the service's own continuation flag. A short page with Next
// set must still be followed; the flag is authoritative, not the item count.
type Page[T any] struct {
	Items  []T
	Total  int
	Limit  int
	Offset int
	Next   bool
}

// TransferSelection describes what the caller wants moved between accounts.
type TransferSelection struct {
	Liked       bool     `json:"liked"`
	PlaylistIDs []string `json:"playlist_ids"`
}

// Empty reports whether the selection would transfer nothing at all.
func (s TransferSelection) Empty() bool {
	return !s.Liked && len(s.PlaylistIDs) == 0
}
