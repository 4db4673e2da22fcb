package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ctforge/ctforge/internal/provisioning"
)

// maxLogLines bounds the scrollback kept in the model.
const maxLogLines = 8

// Phase is one pipeline phase for display.
type Phase struct {
	Name   string
	Key    string
	Done   bool
	Active bool
	Err    error
}

// Model is the Bubble Tea model for the provisioning dashboard.
type Model struct {
	// Container info
	Hostname string
	CTID     int

	// Pipeline phases
	Phases []Phase

	// Recent pipeline output
	Logs []logLine

	// Animation
	SpinnerFrame int

	// UI state
	Width     int
	Height    int
	StartTime time.Time
	Err       error
	Done      bool
}

type logLine struct {
	warning bool
	text    string
}

// NewCreateModel creates a model tracking the creation pipeline for
// one container.
func NewCreateModel(hostname string, ctid int) Model {
	names := map[string]string{
		provisioning.PhaseCreate: "Create Container",
		provisioning.PhaseStart:  "Start Container",
		provisioning.PhaseMounts: "Attach Storage",
	}
	var phases []Phase
	for _, key := range provisioning.PhaseKeys() {
		phases = append(phases, Phase{Name: names[key], Key: key})
	}
	return Model{
		Hostname:  hostname,
		CTID:      ctid,
		StartTime: time.Now(),
		Phases:    phases,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case PhaseMsg:
		m.updatePhase(msg)
		if msg.Err != nil {
			m.Err = msg.Err
			return m, tea.Quit
		}

	case LogMsg:
		m.Logs = append(m.Logs, logLine{warning: msg.Warning, text: msg.Text})
		if len(m.Logs) > maxLogLines {
			m.Logs = m.Logs[len(m.Logs)-maxLogLines:]
		}

	case TickMsg:
		m.SpinnerFrame++
		return m, tickCmd()

	case ErrMsg:
		m.Err = msg.Err
		return m, tea.Quit

	case DoneMsg:
		m.Done = true
		return m, tea.Quit
	}

	return m, nil
}

func (m *Model) updatePhase(msg PhaseMsg) {
	idx := -1
	for i, phase := range m.Phases {
		if phase.Key == msg.Phase {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}

	// Phases run strictly in order; everything before is done.
	for i := 0; i < idx; i++ {
		m.Phases[i].Done = true
		m.Phases[i].Active = false
	}

	if msg.Done {
		m.Phases[idx].Done = true
		m.Phases[idx].Active = false
	} else {
		m.Phases[idx].Active = true
	}

	if msg.Err != nil {
		m.Phases[idx].Err = msg.Err
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View implements tea.Model.
func (m Model) View() string {
	return renderView(m)
}
