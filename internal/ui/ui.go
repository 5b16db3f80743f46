package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spotx/internal/models"
	"github.com/desertthunder/spotx/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SelectView ViewState = iota
	ConfirmView
	TransferView
	ResultView
)

// maxLogLines bounds the transfer view's scrollback.
const maxLogLines = 18

// Model represents the TUI application state.
type Model struct {
	ctx    context.Context
	view   ViewState
	engine *tasks.TransferEngine
	width  int
	height int

	selectList list.Model
	selected   map[string]bool

	events chan tasks.ProgressUpdate
	log    []string
	result *tasks.RunResult
	runErr error
	err    error

	help help.Model
	keys keyMap
}

// NewModel creates a new TUI model over a configured transfer engine.
func NewModel(ctx context.Context, engine *tasks.TransferEngine) *Model {
	return &Model{
		ctx:      ctx,
		view:     SelectView,
		engine:   engine,
		selected: map[string]bool{},
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Init initializes the TUI by fetching the source account's playlists.
func (m *Model) Init() tea.Cmd {
	return m.fetchPlaylists()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.selectList.Width() == 0 {
			m.selectList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case SelectView:
			return m.handleSelectKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case playlistsFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		items := make([]list.Item, 0, len(msg.playlists)+1)
		items = append(items, likedItem())
		for _, pl := range msg.playlists {
			items = append(items, playlistItem(pl))
		}
		m.selectList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.selectList.Title = "Select what to transfer"
		m.selectList.SetSize(m.width-4, m.height-8)
		return m, nil

	case progressUpdateMsg:
		m.log = append(m.log, msg.Message)
		if len(m.log) > maxLogLines {
			m.log = m.log[len(m.log)-maxLogLines:]
		}
		return m, m.waitForProgress()

	case transferCompleteMsg:
		m.view = ResultView
		return m, nil
	}

	if m.view == SelectView {
		var cmd tea.Cmd
		m.selectList, cmd = m.selectList.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case SelectView:
		return m.renderSelect()
	case ConfirmView:
		return m.renderConfirm()
	case TransferView:
		return m.renderTransfer()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

// Selection converts the toggled items into a transfer selection.
func (m *Model) Selection() models.TransferSelection {
	selection := models.TransferSelection{Liked: m.selected[likedSongsID]}
	for _, item := range m.selectList.Items() {
		entry, ok := item.(selectItem)
		if !ok || entry.id == likedSongsID {
			continue
		}
		if m.selected[entry.id] {
			selection.PlaylistIDs = append(selection.PlaylistIDs, entry.id)
		}
	}
	return selection
}

func (m *Model) handleSelectKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggle):
		index := m.selectList.Index()
		if entry, ok := m.selectList.SelectedItem().(selectItem); ok {
			entry.selected = !entry.selected
			m.selected[entry.id] = entry.selected
			m.selectList.SetItem(index, entry)
		}
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if m.Selection().Empty() {
			return m, nil
		}
		m.view = ConfirmView
		return m, nil
	}

	var cmd tea.Cmd
	m.selectList, cmd = m.selectList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "n", "esc":
		m.view = SelectView
		return m, nil
	case "y":
		m.view = TransferView
		return m, m.startTransfer()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.view = SelectView
		m.selected = map[string]bool{}
		m.log = nil
		m.result = nil
		m.runErr = nil
		m.err = nil
		return m, m.fetchPlaylists()
	}
	return m, nil
}

func (m *Model) fetchPlaylists() tea.Cmd {
	return func() tea.Msg {
		playlists, err := m.engine.SourcePlaylists(m.ctx)
		return playlistsFetchedMsg{playlists: playlists, err: err}
	}
}

func (m *Model) startTransfer() tea.Cmd {
	selection := m.Selection()
	m.events = make(chan tasks.ProgressUpdate)

	go func() {
		defer close(m.events)
		m.result, m.runErr = m.engine.Run(m.ctx, selection, m.events)
	}()

	return m.waitForProgress()
}

// waitForProgress reads one event per Update cycle, keeping emission order.
func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		update, ok := <-m.events
		if !ok {
			return transferCompleteMsg{}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderSelect() string {
	helpView := m.help.ShortHelpView(m.keys.ShortHelp())
	return fmt.Sprintf("%s\n\n%s", m.selectList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	selection := m.Selection()

	var parts []string
	if selection.Liked {
		parts = append(parts, "Liked Songs")
	}
	if n := len(selection.PlaylistIDs); n > 0 {
		parts = append(parts, fmt.Sprintf("%d playlists", n))
	}

	title := styles.title.Render("Start transfer to the destination account?")
	info := fmt.Sprintf("\nSelected: %s\n", strings.Join(parts, " and "))

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderTransfer() string {
	title := styles.title.Render("Transferring")
	return fmt.Sprintf("%s\n\n%s", title, strings.Join(m.log, "\n"))
}

func (m *Model) renderResult() string {
	if m.runErr != nil {
		return styles.err.Render(fmt.Sprintf("Transfer failed: %v\n\nPress r to retry, q to quit", m.runErr))
	}
	if m.result == nil {
		return styles.err.Render("No result available\n\nPress r to retry, q to quit")
	}

	title := styles.ok.Render("✓ Transfer Complete")
	info := fmt.Sprintf(
		"\nLiked songs added: %d/%d\nPlaylists created: %d (%d tracks)\nSkipped: %d",
		m.result.Liked.Added,
		m.result.Liked.Found,
		m.result.Playlists.Created,
		m.result.Playlists.TracksAdded,
		m.result.Playlists.Skipped,
	)

	var failures string
	if errs := m.result.ErrorCount(); errs > 0 {
		failures = fmt.Sprintf("\n\n%s", styles.warn.Render(fmt.Sprintf("%d batches or playlists failed; see the log above.", errs)))
	}

	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, failures, helpView)
}
