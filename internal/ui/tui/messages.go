// Package tui provides the Bubble Tea terminal UI for container
// provisioning.
package tui

// PhaseMsg reports progress of one pipeline phase.
type PhaseMsg struct {
	Phase string
	Done  bool
	Err   error
}

// LogMsg carries a line of progress output from the pipeline.
type LogMsg struct {
	Warning bool
	Text    string
}

// TickMsg is sent periodically to animate the display.
type TickMsg struct{}

// ErrMsg carries a terminal error.
type ErrMsg struct{ Err error }

// DoneMsg signals that the run is complete.
type DoneMsg struct{}
