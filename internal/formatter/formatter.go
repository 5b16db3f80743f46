// package formatter renders transfer run reports to various formats (JSON, plain text)
package formatter

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/desertthunder/spotx/internal/shared"
	"github.com/desertthunder/spotx/internal/tasks"
)

// Report is the serializable summary of one transfer run.
type Report struct {
	RunID               string    `json:"run_id"`
	StartedAt           time.Time `json:"started_at"`
	FinishedAt          time.Time `json:"finished_at"`
	Duration            string    `json:"duration"`
	LikedRequested      bool      `json:"liked_requested"`
	PlaylistsRequested  int       `json:"playlists_requested"`
	LikedFound          int       `json:"liked_found"`
	LikedAdded          int       `json:"liked_added"`
	PlaylistsProcessed  int       `json:"playlists_processed"`
	PlaylistsCreated    int       `json:"playlists_created"`
	PlaylistsSkipped    int       `json:"playlists_skipped"`
	PlaylistTracksAdded int       `json:"playlist_tracks_added"`
	ErrorCount          int       `json:"error_count"`
}

// NewReport builds a Report from an engine run result.
func NewReport(result *tasks.RunResult) *Report {
	return &Report{
		RunID:               result.RunID,
		StartedAt:           result.StartedAt,
		FinishedAt:          result.FinishedAt,
		Duration:            result.FinishedAt.Sub(result.StartedAt).Round(time.Millisecond).String(),
		LikedRequested:      result.Selection.Liked,
		PlaylistsRequested:  len(result.Selection.PlaylistIDs),
		LikedFound:          result.Liked.Found,
		LikedAdded:          result.Liked.Added,
		PlaylistsProcessed:  result.Playlists.Processed,
		PlaylistsCreated:    result.Playlists.Created,
		PlaylistsSkipped:    result.Playlists.Skipped,
		PlaylistTracksAdded: result.Playlists.TracksAdded,
		ErrorCount:          result.ErrorCount(),
	}
}

// ReportToJSON converts a run result to an indented JSON report.
func ReportToJSON(result *tasks.RunResult) ([]byte, error) {
	return shared.MarshalJSON(NewReport(result), true)
}

// ReportToText converts a run result to a plain text report.
func ReportToText(result *tasks.RunResult) ([]byte, error) {
	report := NewReport(result)
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Transfer Run: %s\n", report.RunID))
	buf.WriteString(fmt.Sprintf("Started:  %s\n", report.StartedAt.Format(time.RFC3339)))
	buf.WriteString(fmt.Sprintf("Finished: %s (%s)\n\n", report.FinishedAt.Format(time.RFC3339), report.Duration))

	if report.LikedRequested {
		buf.WriteString(fmt.Sprintf("Liked Songs: %d found, %d added\n", report.LikedFound, report.LikedAdded))
	} else {
		buf.WriteString("Liked Songs: not requested\n")
	}

	buf.WriteString(fmt.Sprintf("Playlists: %d requested, %d processed, %d created, %d skipped\n",
		report.PlaylistsRequested, report.PlaylistsProcessed, report.PlaylistsCreated, report.PlaylistsSkipped))
	buf.WriteString(fmt.Sprintf("Playlist tracks added: %d\n", report.PlaylistTracksAdded))
	buf.WriteString(fmt.Sprintf("Errors: %d\n", report.ErrorCount))

	return buf.Bytes(), nil
}

// WriteReport writes a run report to the given path.
//
// The extension picks the format: .json produces JSON, anything else plain
// text. An empty path defaults to transfer_{run id}.json.
func WriteReport(result *tasks.RunResult, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("transfer_%s.json", result.RunID)
	}

	var (
		data []byte
		err  error
	)
	if filepath.Ext(path) == ".json" {
		data, err = ReportToJSON(result)
	} else {
		data, err = ReportToText(result)
	}
	if err != nil {
		return "", fmt.Errorf("failed to generate report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}

	return path, nil
}
