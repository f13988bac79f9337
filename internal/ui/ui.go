package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rxtnnn/harmony/internal/audio"
	"github.com/rxtnnn/harmony/internal/models"
	"github.com/rxtnnn/harmony/internal/queue"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LibraryView ViewState = iota
	NowPlayingView
)

// playerUpdateMsg carries a controller snapshot into the Elm loop.
type playerUpdateMsg audio.Update

// Model represents the player TUI state.
type Model struct {
	view       ViewState
	controller *audio.Controller
	manager    *queue.Manager
	updates    <-chan audio.Update

	width  int
	height int

	tracks    []models.Track
	trackList list.Model
	bar       progress.Model
	snapshot  audio.Update

	err  error
	help help.Model
	keys keyMap
}

// NewModel creates the player TUI over the given track list. The list is
// what enter queues; playback state arrives via the controller subscription.
func NewModel(controller *audio.Controller, manager *queue.Manager, title string, tracks []models.Track) *Model {
	items := make([]list.Item, len(tracks))
	for i, t := range tracks {
		items[i] = trackItem{track: t}
	}
	trackList := list.New(items, list.NewDefaultDelegate(), 0, 0)
	trackList.Title = title

	return &Model{
		view:       LibraryView,
		controller: controller,
		manager:    manager,
		updates:    controller.Subscribe(),
		tracks:     tracks,
		trackList:  trackList,
		bar:        progress.New(progress.WithDefaultGradient()),
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

// Init arms the subscription pump.
func (m *Model) Init() tea.Cmd {
	return m.waitForUpdate()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.trackList.SetSize(msg.Width-4, msg.Height-8)
		m.bar.Width = msg.Width - 8
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case LibraryView:
			return m.handleLibraryKeys(msg)
		case NowPlayingView:
			return m.handleNowPlayingKeys(msg)
		}

	case playerUpdateMsg:
		m.snapshot = audio.Update(msg)
		if m.snapshot.Track != nil {
			m.syncLikedFlag(*m.snapshot.Track)
		}
		return m, m.waitForUpdate()
	}

	var cmd tea.Cmd
	m.trackList, cmd = m.trackList.Update(msg)
	return m, cmd
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case LibraryView:
		return m.renderLibrary()
	case NowPlayingView:
		return m.renderNowPlaying()
	default:
		return ""
	}
}

func (m *Model) handleLibraryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.controller.Cleanup()
		return m, tea.Quit
	case "enter":
		if err := m.manager.SetQueue(m.tracks, m.trackList.Index()); err != nil {
			m.err = err
			return m, nil
		}
		m.view = NowPlayingView
		return m, nil
	}

	var cmd tea.Cmd
	m.trackList, cmd = m.trackList.Update(msg)
	return m, cmd
}

func (m *Model) handleNowPlayingKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.controller.Cleanup()
		return m, tea.Quit
	case "esc":
		m.view = LibraryView
		return m, nil
	case " ":
		if err := m.controller.TogglePlay(); err != nil {
			m.err = err
		}
		return m, nil
	case "n":
		if err := m.manager.Next(); err != nil {
			m.err = err
		}
		return m, nil
	case "p":
		if err := m.manager.Previous(); err != nil {
			m.err = err
		}
		return m, nil
	case "left":
		m.seekBy(-seekStep)
		return m, nil
	case "right":
		m.seekBy(seekStep)
		return m, nil
	case "l":
		if t, ok := m.controller.Current(); ok {
			if err := m.controller.ToggleLike(&t); err != nil {
				m.err = err
			}
		}
		return m, nil
	}
	return m, nil
}

// seekStep is how far one arrow press moves within the track.
const seekStep = 5 * time.Second

// seekBy nudges playback relative to the last published position, clamped
// to the track bounds.
func (m *Model) seekBy(delta time.Duration) {
	pos := m.snapshot.Position + delta
	if pos < 0 {
		pos = 0
	}
	if d := m.snapshot.Duration; d > 0 && pos > d {
		pos = d
	}
	if err := m.controller.Seek(pos); err != nil {
		m.err = err
	}
}

// waitForUpdate blocks on the subscription and re-arms after delivery.
func (m *Model) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		update, ok := <-m.updates
		if !ok {
			return nil
		}
		return playerUpdateMsg(update)
	}
}

// syncLikedFlag mirrors the playing track's liked state into the library list.
func (m *Model) syncLikedFlag(track models.Track) {
	for i := range m.tracks {
		if m.tracks[i].ID == track.ID && m.tracks[i].Liked != track.Liked {
			m.tracks[i].Liked = track.Liked
			m.trackList.SetItem(i, trackItem{track: m.tracks[i]})
		}
	}
}

func (m *Model) renderLibrary() string {
	helpView := m.help.ShortHelpView(m.keys.ShortHelp())
	return fmt.Sprintf("%s\n\n%s", m.trackList.View(), helpView)
}

func (m *Model) renderNowPlaying() string {
	track := m.snapshot.Track
	if track == nil {
		return styles.help.Render("Nothing playing\n\nPress esc to go back")
	}

	title := styles.title.Render(track.Title)
	line := track.Artist
	if track.Album != "" {
		line = fmt.Sprintf("%s • %s", line, track.Album)
	}
	if track.Liked {
		line = fmt.Sprintf("%s  %s", line, styles.ok.Render("♥"))
	}

	var state string
	switch m.snapshot.State {
	case audio.Playing:
		state = styles.ok.Render("▶ playing")
	case audio.Paused:
		state = styles.warn.Render("⏸ paused")
	case audio.Loading:
		state = styles.warn.Render("… loading")
	default:
		state = styles.help.Render("stopped")
	}

	var bar string
	if m.snapshot.Duration > 0 {
		percent := float64(m.snapshot.Position) / float64(m.snapshot.Duration)
		bar = m.bar.ViewAs(percent)
	}
	clock := fmt.Sprintf("%s / %s", fmtDuration(m.snapshot.Position), fmtDuration(m.snapshot.Duration))

	pos := fmt.Sprintf("%d/%d", m.manager.Index()+1, m.manager.Len())
	helpView := m.help.ShortHelpView(m.keys.ShortHelp())

	return fmt.Sprintf("%s\n%s\n\n%s  %s\n%s\n\nQueue: %s\n\n%s", title, line, state, clock, bar, pos, helpView)
}

func fmtDuration(d time.Duration) string {
	d = d.Round(time.Second)
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", m, s)
}
