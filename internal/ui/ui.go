package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/flowdj/internal/models"
	"github.com/desertthunder/flowdj/internal/registry"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	FlowListView ViewState = iota
	FlowDetailView
	PreviewView
)

// Synthesizer runs mood and proposal synthesis for flow previews.
// Satisfied by [tasks.PlaylistEngine].
type Synthesizer interface {
	SynthesizeMood(ctx context.Context, keywords []string) (string, error)
	SynthesizeProposal(ctx context.Context, description string) (*models.PlaylistProposal, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx        context.Context
	view       ViewState
	registry   *registry.FlowRegistry
	engine     Synthesizer
	width      int
	height     int
	flowList   list.Model
	selected   models.Flow
	previewing bool
	proposal   *models.PlaylistProposal
	err        error
	help       help.Model
	keys       keyMap
}

type previewDoneMsg struct {
	proposal *models.PlaylistProposal
	err      error
}

type flowsRefreshedMsg struct{}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, reg *registry.FlowRegistry, engine Synthesizer) *Model {
	m := &Model{
		ctx:      ctx,
		view:     FlowListView,
		registry: reg,
		engine:   engine,
		help:     help.New(),
		keys:     newKeyMap(),
	}
	m.rebuildList()
	return m
}

// rebuildList refreshes the flow list from the registry.
func (m *Model) rebuildList() {
	flows := m.registry.List()
	items := make([]list.Item, len(flows))
	for i, f := range flows {
		items[i] = flowItem{flow: f}
	}
	m.flowList = list.New(items, list.NewDefaultDelegate(), 0, 0)
	m.flowList.Title = "Marketing Flows"
	if m.width > 0 {
		m.flowList.SetSize(m.width-4, m.height-8)
	}
}

// Init satisfies tea.Model; the flow list is built from the registry up front.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.flowList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case FlowListView:
			return m.handleFlowListKeys(msg)
		case FlowDetailView:
			return m.handleFlowDetailKeys(msg)
		case PreviewView:
			return m.handlePreviewKeys(msg)
		}

	case previewDoneMsg:
		m.previewing = false
		m.proposal = msg.proposal
		m.err = msg.err
		return m, nil

	case flowsRefreshedMsg:
		m.rebuildList()
		m.view = FlowListView
		return m, nil
	}

	var cmd tea.Cmd
	m.flowList, cmd = m.flowList.Update(msg)
	return m, cmd
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case FlowListView:
		return m.renderFlowList()
	case FlowDetailView:
		return m.renderFlowDetail()
	case PreviewView:
		return m.renderPreview()
	default:
		return ""
	}
}

func (m *Model) handleFlowListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		if selected := m.flowList.SelectedItem(); selected != nil {
			if item, ok := selected.(flowItem); ok {
				m.selected = item.flow
				m.view = FlowDetailView
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.flowList, cmd = m.flowList.Update(msg)
	return m, cmd
}

func (m *Model) handleFlowDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = FlowListView
		return m, nil
	case "d":
		if _, err := m.registry.Deactivate(m.selected.ID); err != nil {
			m.err = err
			return m, nil
		}
		return m, func() tea.Msg { return flowsRefreshedMsg{} }
	case "p":
		if !m.selected.Runnable() {
			m.err = fmt.Errorf("flow has no keywords to preview")
			return m, nil
		}
		m.view = PreviewView
		m.previewing = true
		m.proposal = nil
		m.err = nil
		return m, m.startPreview()
	}
	return m, nil
}

func (m *Model) handlePreviewKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = FlowDetailView
		return m, nil
	}
	return m, nil
}

// startPreview runs mood and proposal synthesis off-thread.
func (m *Model) startPreview() tea.Cmd {
	keywords := m.selected.Keywords
	return func() tea.Msg {
		mood, err := m.engine.SynthesizeMood(m.ctx, keywords)
		if err != nil {
			return previewDoneMsg{err: err}
		}
		proposal, err := m.engine.SynthesizeProposal(m.ctx, mood)
		return previewDoneMsg{proposal: proposal, err: err}
	}
}

func (m *Model) renderFlowList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.flowList.View(), helpView)
}

func (m *Model) renderFlowDetail() string {
	title := styles.title.Render(m.selected.Name)

	status := styles.warn.Render("inactive")
	if m.selected.Active {
		status = styles.ok.Render("active")
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("\nID: %s\nStatus: %s\n", m.selected.ID, status))
	if len(m.selected.Keywords) > 0 {
		b.WriteString(fmt.Sprintf("Keywords: %s\n", strings.Join(m.selected.Keywords, ", ")))
	}
	if m.selected.SamplePlaylistURL != "" {
		b.WriteString(fmt.Sprintf("Sample: %s\n", m.selected.SamplePlaylistURL))
	}

	if m.err != nil {
		b.WriteString(fmt.Sprintf("\n%s\n", styles.err.Render(m.err.Error())))
	}

	helpKeys := []key.Binding{m.keys.preview, m.keys.deactivate, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s%s\n%s", title, b.String(), helpView)
}

func (m *Model) renderPreview() string {
	title := styles.title.Render(fmt.Sprintf("Preview: %s", m.selected.Name))

	if m.previewing {
		return fmt.Sprintf("%s\n\nSynthesizing a playlist from: %s...", title, strings.Join(m.selected.Keywords, ", "))
	}

	if m.err != nil {
		return fmt.Sprintf("%s\n\n%s\n\n%s", title,
			styles.err.Render(fmt.Sprintf("Preview failed: %v", m.err)),
			m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit}))
	}

	var b strings.Builder
	b.WriteString(styles.ok.Render(m.proposal.Title))
	b.WriteString(fmt.Sprintf("\n%s\n\n", m.proposal.Description))
	for i, track := range m.proposal.Tracks {
		b.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, track.Artist, track.Song))
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s\n%s", title, b.String(), helpView)
}

// Run starts the TUI program.
func Run(ctx context.Context, reg *registry.FlowRegistry, engine Synthesizer) error {
	program := tea.NewProgram(NewModel(ctx, reg, engine), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
