package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/spotx/internal/tasks"
)

// TransferRun is one recorded transfer invocation.
type TransferRun struct {
	ID                  string
	StartedAt           time.Time
	FinishedAt          time.Time
	LikedRequested      bool
	PlaylistsRequested  int
	TracksSaved         int
	PlaylistsCreated    int
	PlaylistTracksAdded int
	ErrorCount          int
}

// RunRepository records the history of transfer invocations.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new [RunRepository] with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Record inserts a finished engine run into the history table.
func (r *RunRepository) Record(result *tasks.RunResult) error {
	if result == nil || result.RunID == "" {
		return fmt.Errorf("cannot record a run without an id")
	}

	query := `
		INSERT INTO transfer_runs (
			id, started_at, finished_at,
			liked_requested, playlists_requested,
			tracks_saved, playlists_created, playlist_tracks_added, error_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	liked := 0
	if result.Selection.Liked {
		liked = 1
	}

	_, err := r.db.Exec(query,
		result.RunID, result.StartedAt, result.FinishedAt,
		liked, len(result.Selection.PlaylistIDs),
		result.Liked.Added, result.Playlists.Created, result.Playlists.TracksAdded,
		result.ErrorCount(),
	)
	if err != nil {
		return fmt.Errorf("failed to record transfer run: %w", err)
	}

	return nil
}

// Get retrieves one recorded run by id.
func (r *RunRepository) Get(id string) (*TransferRun, error) {
	query := `
		SELECT id, started_at, finished_at,
			liked_requested, playlists_requested,
			tracks_saved, playlists_created, playlist_tracks_added, error_count
		FROM transfer_runs
		WHERE id = ?
	`

	run, err := scanRun(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transfer run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query transfer run: %w", err)
	}

	return run, nil
}

// List retrieves recorded runs, most recent first.
func (r *RunRepository) List(limit int) ([]*TransferRun, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, started_at, finished_at,
			liked_requested, playlists_requested,
			tracks_saved, playlists_created, playlist_tracks_added, error_count
		FROM transfer_runs
		ORDER BY started_at DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transfer runs: %w", err)
	}
	defer rows.Close()

	var runs []*TransferRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transfer run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*TransferRun, error) {
	var (
		run        TransferRun
		finishedAt sql.NullTime
		liked      int
	)

	err := row.Scan(
		&run.ID, &run.StartedAt, &finishedAt,
		&liked, &run.PlaylistsRequested,
		&run.TracksSaved, &run.PlaylistsCreated, &run.PlaylistTracksAdded, &run.ErrorCount,
	)
	if err != nil {
		return nil, err
	}

	run.LikedRequested = liked != 0
	if finishedAt.Valid {
		run.FinishedAt = finishedAt.Time
	}
	return &run, nil
}
