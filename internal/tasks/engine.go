// package tasks implements the library transfer pipeline between two accounts.
//
// The core abstraction is TransferEngine, which drains the source account's
// listings through a Pager, batches track identifiers to the destination's
// per-call write caps, and emits an ordered stream of ProgressUpdate events.
package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/spotx/internal/models"
	"github.com/desertthunder/spotx/internal/services"
	"github.com/desertthunder/spotx/internal/shared"
)

// DefaultPlaylistDescription substitutes for playlists whose source
// description is empty or absent.
const DefaultPlaylistDescription = "Transferred from Source Account"

// milestoneInterval controls how often a fetch progress event is emitted
// while draining the liked songs listing.
const milestoneInterval = 100

// EngineOpts contains paging and batching limits for a TransferEngine.
//
// The batch sizes default to the Spotify per-call write caps
// ([services.MaxSaveTracksBatch], [services.MaxAddPlaylistItemsBatch]).
type EngineOpts struct {
	PageLimit         int // page size for the saved tracks and playlist listings
	PlaylistPageLimit int // page size for playlist item listings
	LikedBatchSize    int // ids per bulk save call
	PlaylistBatchSize int // ids per bulk playlist add call
}

// OptsFromConfig builds EngineOpts from the transfer configuration section.
// Zero values fall back to the defaults.
func OptsFromConfig(cfg shared.TransferConfig) EngineOpts {
	return EngineOpts{
		PageLimit:         cfg.PageLimit,
		PlaylistPageLimit: cfg.PlaylistPageLimit,
		LikedBatchSize:    cfg.LikedBatchSize,
		PlaylistBatchSize: cfg.PlaylistBatchSize,
	}
}

func (o EngineOpts) withDefaults() EngineOpts {
	if o.PageLimit <= 0 {
		o.PageLimit = 50
	}
	if o.PlaylistPageLimit <= 0 {
		o.PlaylistPageLimit = services.MaxAddPlaylistItemsBatch
	}
	if o.LikedBatchSize <= 0 || o.LikedBatchSize > services.MaxSaveTracksBatch {
		o.LikedBatchSize = services.MaxSaveTracksBatch
	}
	if o.PlaylistBatchSize <= 0 || o.PlaylistBatchSize > services.MaxAddPlaylistItemsBatch {
		o.PlaylistBatchSize = services.MaxAddPlaylistItemsBatch
	}
	return o
}

// LikedResult summarizes the liked songs sub-transfer.
type LikedResult struct {
	Found  int // eligible tracks listed from the source
	Added  int // tracks written to the destination
	Errors int // failed fetch or batch write calls
}

// PlaylistsResult summarizes the playlists sub-transfer.
type PlaylistsResult struct {
	Processed   int // playlists attempted
	Created     int // destination playlists created
	TracksAdded int // tracks written across all playlists
	Skipped     int // playlists skipped as empty or local-only
	Errors      int // failed fetch, create, or batch write calls
}

// RunResult contains all data from one transfer invocation.
type RunResult struct {
	RunID      string                   // unique id for this invocation
	Selection  models.TransferSelection // what the caller asked for
	DestUser   *models.User             // destination identity, nil if the lookup failed
	Liked      LikedResult
	Playlists  PlaylistsResult
	StartedAt  time.Time
	FinishedAt time.Time
}

// ErrorCount returns the number of failure events across both sub-transfers.
func (r *RunResult) ErrorCount() int {
	return r.Liked.Errors + r.Playlists.Errors
}

// TransferEngine orchestrates a library transfer between two accounts.
//
// The engine is sequential: the destination account is a serialization
// point for writes, so playlists are processed one at a time and never
// concurrently with the liked songs sub-transfer.
type TransferEngine struct {
	source services.Client
	dest   services.Client
	opts   EngineOpts
}

// NewTransferEngine creates a TransferEngine over a source and destination account.
func NewTransferEngine(source, dest services.Client, opts EngineOpts) *TransferEngine {
	return &TransferEngine{source: source, dest: dest, opts: opts.withDefaults()}
}

// emit delivers an update in order, blocking until the consumer accepts it.
//
// Returns false when ctx is done; callers treat that as a cancellation
// signal and stop issuing remote calls. A nil channel discards events
// but still honors cancellation.
func (e *TransferEngine) emit(ctx context.Context, events chan<- ProgressUpdate, update ProgressUpdate) bool {
	if events == nil {
		return ctx.Err() == nil
	}
	select {
	case events <- update:
		return true
	case <-ctx.Done():
		return false
	}
}

// SourcePlaylists lists every playlist on the source account.
func (e *TransferEngine) SourcePlaylists(ctx context.Context) ([]models.Playlist, error) {
	if e.source == nil {
		return nil, fmt.Errorf("%w: source client not initialized", shared.ErrServiceUnavailable)
	}
	pager := NewPager(e.opts.PageLimit, e.source.Playlists)
	return pager.All(ctx)
}

// Run performs a full transfer for the given selection.
//
// Event order is: one init event, the liked songs sub-transfer (or its skip
// notice), the playlists sub-transfer (or its skip notice), then the
// terminal DONE marker. The terminal marker is emitted even when the run
// fails, so consumers always see a closed narrative.
func (e *TransferEngine) Run(ctx context.Context, selection models.TransferSelection, events chan<- ProgressUpdate) (*RunResult, error) {
	if e.source == nil || e.dest == nil {
		return nil, fmt.Errorf("%w: transfer engine requires both clients", shared.ErrServiceUnavailable)
	}

	result := &RunResult{
		RunID:     shared.GenerateID(),
		Selection: selection,
		StartedAt: time.Now().UTC(),
	}
	defer func() { result.FinishedAt = time.Now().UTC() }()

	if !e.emit(ctx, events, initUpdate()) {
		return result, ctx.Err()
	}

	destUser, err := e.dest.Me(ctx)
	if err != nil {
		e.emit(ctx, events, initErrorUpdate(err))
		e.emit(ctx, events, doneUpdate())
		return result, fmt.Errorf("failed to fetch destination user: %w", err)
	}
	result.DestUser = destUser

	if selection.Liked {
		result.Liked = e.TransferLikedSongs(ctx, events)
	} else if !e.emit(ctx, events, likedSkippedUpdate()) {
		return result, ctx.Err()
	}

	if len(selection.PlaylistIDs) == 0 {
		if !e.emit(ctx, events, playlistsSkippedUpdate()) {
			return result, ctx.Err()
		}
	} else {
		result.Playlists = e.TransferPlaylists(ctx, destUser.ID, selection.PlaylistIDs, events)
	}

	e.emit(ctx, events, doneUpdate())
	return result, ctx.Err()
}

// TransferLikedSongs copies the source account's liked songs to the destination.
//
// A failure of the listing call is fatal to this sub-transfer; a failure of
// one bulk save call loses only that batch's writes, the remaining batches
// are still attempted.
func (e *TransferEngine) TransferLikedSongs(ctx context.Context, events chan<- ProgressUpdate) LikedResult {
	result := LikedResult{}

	if !e.emit(ctx, events, likedStartUpdate()) || !e.emit(ctx, events, likedFetchUpdate()) {
		return result
	}

	var ids []string
	pager := NewPager(e.opts.PageLimit, e.source.SavedTracks)
	err := pager.Each(ctx, func(item models.SavedTrack) error {
		if item.Track.ID == "" {
			return nil
		}
		ids = append(ids, item.Track.ID)
		if len(ids)%milestoneInterval == 0 {
			if !e.emit(ctx, events, likedMilestoneUpdate(len(ids))) {
				return ctx.Err()
			}
		}
		return nil
	})
	if err != nil {
		result.Errors++
		e.emit(ctx, events, likedFetchErrorUpdate(err))
		return result
	}

	result.Found = len(ids)
	if !e.emit(ctx, events, likedTotalUpdate(len(ids))) {
		return result
	}

	if len(ids) == 0 {
		e.emit(ctx, events, likedEmptyUpdate())
		return result
	}

	if !e.emit(ctx, events, likedAddStartUpdate()) {
		return result
	}

	batches, err := Chunk(ids, e.opts.LikedBatchSize)
	if err != nil {
		result.Errors++
		e.emit(ctx, events, likedBatchErrorUpdate(0, err))
		return result
	}

	for i, batch := range batches {
		if ctx.Err() != nil {
			return result
		}

		if err := e.dest.SaveTracks(ctx, batch); err != nil {
			result.Errors++
			if !e.emit(ctx, events, likedBatchErrorUpdate(i+1, err)) {
				return result
			}
			continue
		}

		result.Added += len(batch)
		if !e.emit(ctx, events, likedAddedUpdate(result.Added, len(ids))) {
			return result
		}
	}

	e.emit(ctx, events, likedDoneUpdate())
	return result
}

// TransferPlaylists mirrors the selected source playlists onto the destination.
//
// A nil selected slice mirrors every playlist; the command and web layers
// always pass an explicit selection. Failure to list, create, or populate
// one playlist never prevents the remaining playlists from being attempted.
func (e *TransferEngine) TransferPlaylists(ctx context.Context, destUserID string, selected []string, events chan<- ProgressUpdate) PlaylistsResult {
	result := PlaylistsResult{}

	if !e.emit(ctx, events, playlistsStartUpdate()) || !e.emit(ctx, events, playlistsFetchUpdate()) {
		return result
	}

	var wanted map[string]bool
	if selected != nil {
		wanted = make(map[string]bool, len(selected))
		for _, id := range selected {
			wanted[id] = true
		}
	}

	var playlists []models.Playlist
	pager := NewPager(e.opts.PageLimit, e.source.Playlists)
	err := pager.Each(ctx, func(pl models.Playlist) error {
		if wanted != nil && !wanted[pl.ID] {
			return nil
		}
		playlists = append(playlists, pl)
		return nil
	})
	if err != nil {
		result.Errors++
		e.emit(ctx, events, playlistsFetchErrorUpdate(err))
		return result
	}

	total := len(playlists)
	if !e.emit(ctx, events, playlistsFoundUpdate(total)) {
		return result
	}

	for i, pl := range playlists {
		if ctx.Err() != nil {
			return result
		}

		step := i + 1
		result.Processed++
		if !e.emit(ctx, events, playlistProcessingUpdate(step, total, pl.Name)) {
			return result
		}

		itemPager := NewPager(e.opts.PlaylistPageLimit, func(ctx context.Context, limit, offset int) (*models.Page[models.SavedTrack], error) {
			return e.source.PlaylistItems(ctx, pl.ID, limit, offset)
		})

		var ids []string
		err := itemPager.Each(ctx, func(item models.SavedTrack) error {
			if item.Track.Transferable() {
				ids = append(ids, item.Track.ID)
			}
			return nil
		})
		if err != nil {
			result.Errors++
			if !e.emit(ctx, events, playlistTracksErrorUpdate(step, total, err)) {
				return result
			}
			continue
		}

		if len(ids) == 0 {
			result.Skipped++
			if !e.emit(ctx, events, playlistEmptyUpdate(step, total)) {
				return result
			}
			continue
		}

		description := pl.Description
		if description == "" {
			description = DefaultPlaylistDescription
		}

		created, err := e.dest.CreatePlaylist(ctx, destUserID, pl.Name, pl.Public, description)
		if err != nil {
			result.Errors++
			if !e.emit(ctx, events, playlistCreateErrorUpdate(step, total, err)) {
				return result
			}
			continue
		}
		result.Created++

		batches, err := Chunk(ids, e.opts.PlaylistBatchSize)
		if err != nil {
			result.Errors++
			if !e.emit(ctx, events, playlistBatchErrorUpdate(step, total, 0, err)) {
				return result
			}
			continue
		}

		added := 0
		for b, batch := range batches {
			if ctx.Err() != nil {
				return result
			}

			if err := e.dest.AddPlaylistItems(ctx, created.ID, batch); err != nil {
				result.Errors++
				if !e.emit(ctx, events, playlistBatchErrorUpdate(step, total, b+1, err)) {
					return result
				}
				continue
			}

			added += len(batch)
			result.TracksAdded += len(batch)
			if !e.emit(ctx, events, playlistAddedUpdate(step, total, added, len(ids))) {
				return result
			}
		}

		if !e.emit(ctx, events, playlistFinishedUpdate(step, total, pl.Name)) {
			return result
		}
	}

	e.emit(ctx, events, playlistsDoneUpdate())
	return result
}
