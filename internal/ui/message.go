package ui

import (
	"github.com/desertthunder/spotx/internal/models"
	"github.com/desertthunder/spotx/internal/tasks"
)

// playlistsFetchedMsg delivers the source playlist listing to the select view.
type playlistsFetchedMsg struct {
	playlists []models.Playlist
	err       error
}

// progressUpdateMsg delivers one engine event to the transfer view.
type progressUpdateMsg tasks.ProgressUpdate

// transferCompleteMsg signals that the engine run finished.
type transferCompleteMsg struct{}
