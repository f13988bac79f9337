package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/rxtnnn/harmony/internal/models"
)

var _ list.Item = trackItem{}

// trackItem wraps [models.Track] to implement [list.Item].
type trackItem struct {
	track models.Track
}

func (i trackItem) FilterValue() string { return i.track.Title }
func (i trackItem) Title() string {
	title := i.track.Title
	if i.track.Liked {
		title = "♥ " + title
	}
	return title
}
func (i trackItem) Description() string {
	desc := i.track.Artist
	if i.track.Album != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.track.Album)
	}
	if i.track.IsLocal {
		desc = fmt.Sprintf("%s • local", desc)
	}
	return desc
}
