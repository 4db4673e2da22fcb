package wizard

import (
	"context"

	"github.com/charmbracelet/huh"
)

// Option is one selectable choice.
type Option struct {
	Label string
	Value string
}

// Prompter abstracts the interactive terminal so the wizard loops can
// be tested with a scripted implementation. Every prompt carries a
// pre-filled editable default.
type Prompter interface {
	// Input asks for a free-form value with an editable default.
	Input(ctx context.Context, title, description, def string) (string, error)

	// Confirm asks a yes/no question.
	Confirm(ctx context.Context, title, description string, def bool) (bool, error)

	// Select asks the operator to pick one option.
	Select(ctx context.Context, title, description string, options []Option) (string, error)
}

// huhPrompter implements Prompter with huh forms.
type huhPrompter struct{}

// NewPrompter returns the terminal-backed prompter.
func NewPrompter() Prompter {
	return huhPrompter{}
}

// Input implements Prompter.
func (huhPrompter) Input(ctx context.Context, title, description, def string) (string, error) {
	value := def
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				Description(description).
				Value(&value),
		),
	).RunWithContext(ctx)
	return value, err
}

// Confirm implements Prompter.
func (huhPrompter) Confirm(ctx context.Context, title, description string, def bool) (bool, error) {
	value := def
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Value(&value),
		),
	).RunWithContext(ctx)
	return value, err
}

// Select implements Prompter.
func (huhPrompter) Select(ctx context.Context, title, description string, options []Option) (string, error) {
	huhOptions := make([]huh.Option[string], len(options))
	for i, o := range options {
		huhOptions[i] = huh.NewOption(o.Label, o.Value)
	}

	var value string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(title).
				Description(description).
				Options(huhOptions...).
				Value(&value),
		),
	).RunWithContext(ctx)
	return value, err
}
