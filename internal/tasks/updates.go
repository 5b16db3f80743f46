package tasks

import "fmt"

// ProgressUpdate represents one progress event during a transfer.
//
// Events are produced in a strict order and delivered losslessly; the
// consumer (CLI, TUI, or SSE stream) sees them exactly as emitted.
// Err marks events describing a localized failure; the Message carries
// the same "Error" text either way so plain-text consumers need no
// special handling.
type ProgressUpdate struct {
	Phase   Phase  // Transfer phase
	Step    int    // Current unit number within the phase (1-based, 0 when not applicable)
	Total   int    // Total units in this phase
	Message string // Human-readable status line
	Err     bool   // Whether this event reports a failure
}

// Transfer phase enumeration
type Phase int

const (
	PhaseInit Phase = iota
	PhaseLiked
	PhasePlaylists
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "init"
	case PhaseLiked:
		return "liked"
	case PhasePlaylists:
		return "playlists"
	case PhaseDone:
		return "done"
	default:
		return ""
	}
}

// TerminalMessage is the final event of every run, success or not.
const TerminalMessage = "DONE"

func initUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: PhaseInit, Message: "Initializing transfer..."}
}

func initErrorUpdate(err error) ProgressUpdate {
	return ProgressUpdate{Phase: PhaseInit, Err: true, Message: fmt.Sprintf("Error fetching destination user info: %v", err)}
}

func doneUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: PhaseDone, Message: TerminalMessage}
}

func likedStartUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: PhaseLiked, Message: "Starting Transfer: Liked Songs..."}
}

func likedFetchUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: PhaseLiked, Message: "Fetching liked songs from Source..."}
}

func likedMilestoneUpdate(count int) ProgressUpdate {
	return ProgressUpdate{Phase: PhaseLiked, Step: count, Message: fmt.Sprintf("  Fetched %d songs...", count)}
}

func likedFetchErrorUpdate(err error) ProgressUpdate {
	return ProgressUpdate{Phase: PhaseLiked, Err: true, Message: fmt.Sprintf("Error fetching songs: %v", err)}
}

func likedTotalUpdate(total int) ProgressUpdate {
	return ProgressUpdate{Phase: PhaseLiked, Total: total, Message: fmt.Sprintf("Total liked songs found: %d", total)}
}

func likedEmptyUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: PhaseLiked, Message: "No liked songs to transfer."}
}

func likedAddStartUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: PhaseLiked, Message: "Adding songs to Destination..."}
}

func likedAddedUpdate(added, total int) ProgressUpdate {
	return ProgressUpdate{Phase: PhaseLiked, Step: added, Total: total, Message: fmt.Sprintf("  Added %d/%d songs...", added, total)}
}

func likedBatchErrorUpdate(batch int, err error) ProgressUpdate {
	return ProgressUpdate{Phase: PhaseLiked, Step: batch, Err: true, Message: fmt.Sprintf("  Error adding batch %d: %v", batch, err)}
}

func likedDoneUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: PhaseLiked, Message: "Liked Songs transfer complete."}
}

func likedSkippedUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: PhaseLiked, Message: "Skipping Liked Songs transfer."}
}

func playlistsStartUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: PhasePlaylists, Message: "Starting Transfer: Playlists..."}
}

func playlistsFetchUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: PhasePlaylists, Message: "Fetching playlists from Source..."}
}

func playlistsFetchErrorUpdate(err error) ProgressUpdate {
	return ProgressUpdate{Phase: PhasePlaylists, Err: true, Message: fmt.Sprintf("Error fetching playlists: %v", err)}
}

func playlistsFoundUpdate(count int) ProgressUpdate {
	return ProgressUpdate{Phase: PhasePlaylists, Total: count, Message: fmt.Sprintf("Found %d playlists to transfer.", count)}
}

func playlistProcessingUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{Phase: PhasePlaylists, Step: step, Total: total, Message: fmt.Sprintf("Processing Playlist %d/%d: '%s'", step, total, name)}
}

func playlistTracksErrorUpdate(step, total int, err error) ProgressUpdate {
	return ProgressUpdate{Phase: PhasePlaylists, Step: step, Total: total, Err: true, Message: fmt.Sprintf("  Error fetching tracks: %v", err)}
}

func playlistEmptyUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{Phase: PhasePlaylists, Step: step, Total: total, Message: "  Playlist is empty or local-only. Skipping."}
}

func playlistCreateErrorUpdate(step, total int, err error) ProgressUpdate {
	return ProgressUpdate{Phase: PhasePlaylists, Step: step, Total: total, Err: true, Message: fmt.Sprintf("  Error creating playlist: %v", err)}
}

func playlistAddedUpdate(step, total, added, tracks int) ProgressUpdate {
	return ProgressUpdate{Phase: PhasePlaylists, Step: step, Total: total, Message: fmt.Sprintf("  Added %d/%d tracks...", added, tracks)}
}

func playlistBatchErrorUpdate(step, total, batch int, err error) ProgressUpdate {
	return ProgressUpdate{Phase: PhasePlaylists, Step: step, Total: total, Err: true, Message: fmt.Sprintf("  Error adding tracks (batch %d): %v", batch, err)}
}

func playlistFinishedUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{Phase: PhasePlaylists, Step: step, Total: total, Message: fmt.Sprintf("  Finished playlist '%s'", name)}
}

func playlistsDoneUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: PhasePlaylists, Message: "All playlists processed."}
}

func playlistsSkippedUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: PhasePlaylists, Message: "No playlists selected for transfer."}
}
