package main

import (
	"context"
	"time"

	"github.com/urfave/cli/v3"
)

// History shows recorded transfer runs, most recent first.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	limit := cmd.Int("limit")
	useJSON := cmd.Bool("json")

	if err := r.openDB(); err != nil {
		return err
	}

	runs, err := r.runs.List(int(limit))
	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(runs, true)
	}

	if len(runs) == 0 {
		return r.writePlain("No transfer runs recorded yet.\n")
	}

	for _, run := range runs {
		r.writePlain("%s  %s\n", run.StartedAt.Format(time.RFC3339), run.ID)
		r.writePlain("   liked: %v, playlists requested: %d\n", run.LikedRequested, run.PlaylistsRequested)
		r.writePlain("   saved %d tracks, created %d playlists (%d tracks), %d errors\n\n",
			run.TracksSaved, run.PlaylistsCreated, run.PlaylistTracksAdded, run.ErrorCount)
	}

	return nil
}
