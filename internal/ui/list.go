package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/spotx/internal/models"
)

// likedSongsID marks the pseudo-entry for the liked songs library.
const likedSongsID = "__liked__"

var _ list.Item = selectItem{}

// selectItem is one toggleable row: the liked songs library or a playlist.
type selectItem struct {
	id       string
	name     string
	detail   string
	selected bool
}

func likedItem() selectItem {
	return selectItem{id: likedSongsID, name: "Liked Songs", detail: "your saved tracks"}
}

func playlistItem(pl models.Playlist) selectItem {
	detail := fmt.Sprintf("%d tracks", pl.TrackCount)
	if pl.Description != "" {
		detail = fmt.Sprintf("%s • %s", detail, pl.Description)
	}
	return selectItem{id: pl.ID, name: pl.Name, detail: detail}
}

func (i selectItem) FilterValue() string { return i.name }

func (i selectItem) Title() string {
	mark := "[ ]"
	if i.selected {
		mark = "[x]"
	}
	return fmt.Sprintf("%s %s", mark, i.name)
}

func (i selectItem) Description() string { return i.detail }
