package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// Prompter asks for project fields with huh inputs.
type Prompter struct {
	theme *huh.Theme
}

// NewPrompter creates a Prompter.
func NewPrompter() *Prompter {
	return &Prompter{theme: NewHuhTheme()}
}

// Prompt asks for label with def as the placeholder. A blank answer keeps def.
func (p *Prompter) Prompt(ctx context.Context, label, def string) (string, error) {
	value := ""
	input := huh.NewInput().
		Title(label).
		Value(&value)
	if def != "" {
		input = input.Placeholder(def).Description(fmt.Sprintf("Press enter to keep %q", def))
	}

	form := huh.NewForm(huh.NewGroup(input)).
		WithTheme(p.theme).
		WithShowHelp(false)
	if err := form.RunWithContext(ctx); err != nil {
		return "", err
	}

	if strings.TrimSpace(value) == "" {
		return def, nil
	}
	return strings.TrimSpace(value), nil
}

// Confirmer guards destructive commands with huh forms and a bubbletea
// countdown.
type Confirmer struct {
	theme *huh.Theme
}

// NewConfirmer creates a Confirmer.
func NewConfirmer() *Confirmer {
	return &Confirmer{theme: NewHuhTheme()}
}

// Confirm asks a yes/no question defaulting to no.
func (c *Confirmer) Confirm(ctx context.Context, question string) (bool, error) {
	ok := false
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(question).
			Description("This action is irreversible.").
			Affirmative("Yes").
			Negative("No").
			Value(&ok),
	)).WithTheme(c.theme)

	if err := form.RunWithContext(ctx); err != nil {
		return false, err
	}
	return ok, nil
}

// ConfirmCode asks the user to type code back.
func (c *Confirmer) ConfirmCode(ctx context.Context, code string) (bool, error) {
	answer := ""
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title(fmt.Sprintf("To confirm, please type the number %s", code)).
			Description("This permanently deletes ALL projects.").
			CharLimit(len(code)).
			Value(&answer),
	)).WithTheme(c.theme)

	if err := form.RunWithContext(ctx); err != nil {
		return false, err
	}
	return strings.TrimSpace(answer) == code, nil
}

// Countdown runs an abortable countdown.
func (c *Confirmer) Countdown(ctx context.Context, d time.Duration, label string) error {
	if d <= 0 {
		return nil
	}

	final, err := tea.NewProgram(NewCountdown(label, d), tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}
	if m, ok := final.(CountdownModel); ok && m.IsAborted() {
		return fmt.Errorf("countdown aborted")
	}
	return nil
}
