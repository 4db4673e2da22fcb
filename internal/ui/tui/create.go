package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ctforge/ctforge/internal/provisioning"
)

// programObserver bridges pipeline progress into Bubble Tea messages.
type programObserver struct {
	p *tea.Program
}

func (o programObserver) Printf(format string, v ...interface{}) {
	o.p.Send(LogMsg{Text: fmt.Sprintf(format, v...)})
}

func (o programObserver) Warnf(format string, v ...interface{}) {
	o.p.Send(LogMsg{Warning: true, Text: fmt.Sprintf(format, v...)})
}

func (o programObserver) Phase(key string, done bool, err error) {
	o.p.Send(PhaseMsg{Phase: key, Done: done, Err: err})
}

// RunCreateTUI wraps the creation pipeline with a Bubble Tea dashboard.
// runFn executes the pipeline, reporting progress through the observer
// it is handed; its error surfaces as the TUI's terminal error.
func RunCreateTUI(hostname string, ctid int, runFn func(obs provisioning.Observer) error) error {
	m := NewCreateModel(hostname, ctid)

	p := tea.NewProgram(m)

	go func() {
		if err := runFn(programObserver{p: p}); err != nil {
			p.Send(ErrMsg{Err: err})
			return
		}
		p.Send(DoneMsg{})
	}()

	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	fm := finalModel.(Model)
	if fm.Err != nil {
		return fm.Err
	}
	return nil
}
