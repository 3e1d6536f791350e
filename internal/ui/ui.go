package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/venndale/showprep/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	FormView ViewState = iota
	ConfirmView
	RunView
	ResultView
)

// Field indices into Model.inputs.
const (
	fieldArtist = iota
	fieldConcert
	fieldYear
	fieldCount
)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	engine       *tasks.PrepEngine
	width        int
	height       int
	inputs       []textinput.Model
	focused      int
	skipSetlist  bool
	formErr      string
	spin         spinner.Model
	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	result       *tasks.PrepResult
	err          error
	help         help.Model
	keys         keyMap
}

type progressUpdateMsg tasks.ProgressUpdate

type runCompleteMsg struct {
	result *tasks.PrepResult
	err    error
}

// NewModel creates a new TUI model bound to a prep engine.
func NewModel(ctx context.Context, engine *tasks.PrepEngine) *Model {
	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		inputs[i] = textinput.New()
		inputs[i].CharLimit = 120
	}
	inputs[fieldArtist].Placeholder = "Taylor Swift"
	inputs[fieldArtist].Prompt = "Artist: "
	inputs[fieldArtist].Focus()
	inputs[fieldConcert].Placeholder = "The Eras Tour (optional)"
	inputs[fieldConcert].Prompt = "Concert: "
	inputs[fieldYear].Placeholder = "2026 (optional)"
	inputs[fieldYear].Prompt = "Year: "

	return &Model{
		ctx:    ctx,
		view:   FormView,
		engine: engine,
		inputs: inputs,
		spin:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

// Init starts the input cursor blinking.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if m.view != RunView {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch m.view {
		case FormView:
			return m.handleFormKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case RunView:
			return m.handleRunKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case runCompleteMsg:
		m.result = msg.result
		m.err = msg.err
		m.view = ResultView
		m.progressChan = nil
		return m, nil
	}

	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case FormView:
		return m.renderForm()
	case ConfirmView:
		return m.renderConfirm()
	case RunView:
		return m.renderRun()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case key.Matches(msg, m.keys.toggle):
		m.skipSetlist = !m.skipSetlist
		return m, nil
	case key.Matches(msg, m.keys.next):
		m.focusField((m.focused + 1) % fieldCount)
		return m, nil
	case key.Matches(msg, m.keys.prev):
		m.focusField((m.focused + fieldCount - 1) % fieldCount)
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if m.focused < fieldCount-1 {
			m.focusField(m.focused + 1)
			return m, nil
		}
		if strings.TrimSpace(m.inputs[fieldArtist].Value()) == "" {
			m.formErr = "Artist name is required"
			m.focusField(fieldArtist)
			return m, nil
		}
		m.formErr = ""
		m.view = ConfirmView
		return m, nil
	}

	if msg.String() == "esc" {
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
	return m, cmd
}

func (m *Model) focusField(index int) {
	m.inputs[m.focused].Blur()
	m.focused = index
	m.inputs[m.focused].Focus()
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "n", "esc":
		m.view = FormView
		return m, nil
	case "y", "enter":
		m.view = RunView
		return m, tea.Batch(m.startRun(), m.spin.Tick)
	}
	return m, nil
}

func (m *Model) handleRunKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "enter":
		return m, tea.Quit
	case "r":
		m.result = nil
		m.err = nil
		m.progress = tasks.ProgressUpdate{}
		m.view = FormView
		m.focusField(fieldArtist)
		return m, textinput.Blink
	}
	return m, nil
}

// request builds the prep request from the form fields.
func (m *Model) request() tasks.PrepRequest {
	return tasks.PrepRequest{
		ArtistName:  strings.TrimSpace(m.inputs[fieldArtist].Value()),
		ConcertName: strings.TrimSpace(m.inputs[fieldConcert].Value()),
		Year:        strings.TrimSpace(m.inputs[fieldYear].Value()),
		SkipSetlist: m.skipSetlist,
	}
}

func (m *Model) startRun() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	progressChan := m.progressChan
	req := m.request()

	go func() {
		result, err := m.engine.Run(m.ctx, progressChan, req)
		m.result = result
		m.err = err
		close(progressChan)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progressChan := m.progressChan
	return func() tea.Msg {
		if progressChan == nil {
			return runCompleteMsg{result: m.result, err: m.err}
		}

		update, ok := <-progressChan
		if !ok {
			return runCompleteMsg{result: m.result, err: m.err}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderForm() string {
	title := styles.title.Render("Concert Prep")

	var fields strings.Builder
	for i := range m.inputs {
		fields.WriteString(m.inputs[i].View())
		fields.WriteString("\n")
	}

	setlist := "Setlist lookup: on"
	if m.skipSetlist {
		setlist = "Setlist lookup: off"
	}
	fields.WriteString(styles.help.Render(setlist))

	var errLine string
	if m.formErr != "" {
		errLine = "\n" + styles.err.Render(m.formErr)
	}

	helpKeys := []key.Binding{m.keys.next, m.keys.enter, m.keys.toggle, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n\n%s%s\n\n%s", title, fields.String(), errLine, helpView)
}

func (m *Model) renderConfirm() string {
	req := m.request()
	title := styles.title.Render(fmt.Sprintf("Build a prep playlist for %s?", req.ArtistName))

	var details strings.Builder
	if req.ConcertName != "" {
		details.WriteString(fmt.Sprintf("Concert: %s\n", req.ConcertName))
	}
	if req.Year != "" {
		details.WriteString(fmt.Sprintf("Year: %s\n", req.Year))
	}
	if req.SkipSetlist {
		details.WriteString("Setlist lookup is off; only top tracks will be considered.\n")
	}

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, details.String(), helpView)
}

func (m *Model) renderRun() string {
	title := styles.title.Render("Building Prep Playlist")

	var phase string
	switch m.progress.Phase {
	case tasks.FetchLibrary:
		phase = "Fetching your liked tracks..."
	case tasks.FetchUserTop:
		phase = "Fetching your top tracks..."
	case tasks.LookupArtist:
		phase = "Looking up the artist..."
	case tasks.FetchArtistTop:
		phase = "Fetching the artist's top tracks..."
	case tasks.ResolveSetlist:
		phase = "Searching for a setlist playlist..."
	case tasks.Reconcile:
		phase = "Working out what you haven't heard..."
	case tasks.CreatePlaylist:
		phase = "Creating the playlist..."
	case tasks.AddTracks:
		phase = fmt.Sprintf("Adding tracks (batch %d/%d)...", m.progress.Step, m.progress.Total)
	default:
		phase = "Working..."
	}

	return fmt.Sprintf("%s\n\n%s %s\n%s", title, m.spin.View(), phase, m.progress.Message)
}

func (m *Model) renderResult() string {
	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	if m.err != nil {
		body := styles.err.Render(fmt.Sprintf("Prep run failed: %v", m.err))
		return fmt.Sprintf("%s\n\n%s", body, helpView)
	}

	if m.result == nil {
		return fmt.Sprintf("%s\n\n%s", styles.err.Render("No result available"), helpView)
	}

	var title string
	if m.result.NothingToAdd {
		title = styles.ok.Render("✓ All caught up!")
	} else {
		title = styles.ok.Render("✓ Playlist ready!")
	}

	var info strings.Builder
	info.WriteString("\n" + m.result.Message + "\n")
	if m.result.SetlistFound {
		info.WriteString(fmt.Sprintf("\nSetlist: %s (%d tracks)", m.result.TourTitle, m.result.SetlistTrackCount))
	}
	info.WriteString(fmt.Sprintf("\nLiked tracks: %d", m.result.LikedCount))
	info.WriteString(fmt.Sprintf("\nNew to you: %d", len(m.result.UnheardTracks)))
	if m.result.PlaylistURL != "" {
		info.WriteString(fmt.Sprintf("\n\n%s", m.result.PlaylistURL))
	}

	return fmt.Sprintf("%s%s\n\n%s", title, info.String(), helpView)
}
