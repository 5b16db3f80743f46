// Package models defines provider-neutral domain types for the account transfer service.
//
// The package contains two categories of types:
//
// 1. Library entities mapped from Spotify API responses:
//   - [Track] : Song metadata with transfer eligibility ([Track.Transferable])
//   - [SavedTrack] : A track as it appears in a library or playlist listing
//   - [Playlist] : Playlist metadata mirrored onto the destination account
//   - [User] : Account identity (destination playlists are created under User.ID)
//
// 2. Transfer plumbing:
//   - [Page] : One window of a paginated listing with the service's continuation flag
//   - [TransferSelection] : What the caller wants moved (liked songs and/or playlist IDs)
//
// Nothing here is persisted across runs; persistence types live in internal/repositories.
package models
