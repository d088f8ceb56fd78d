// Package ui implements operator interaction: secret entry and confirmations.
// The orchestrator depends only on the Prompter interface so the workflow can
// run headlessly in tests with a scripted implementation.
package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"
)

// Prompter collects input from the operator.
type Prompter interface {
	// Secret prompts for a value that must not be echoed or logged.
	Secret(ctx context.Context, title, description string) (string, error)

	// Confirm asks a yes/no question.
	Confirm(ctx context.Context, message string) (bool, error)
}

// FormPrompter prompts on the terminal using interactive forms.
type FormPrompter struct{}

// NewFormPrompter returns a terminal-backed Prompter.
func NewFormPrompter() *FormPrompter {
	return &FormPrompter{}
}

// Secret implements Prompter.
func (p *FormPrompter) Secret(ctx context.Context, title, description string) (string, error) {
	var value string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				Description(description).
				EchoMode(huh.EchoModePassword).
				Validate(notEmpty).
				Value(&value),
		),
	)
	if err := form.RunWithContext(ctx); err != nil {
		return "", fmt.Errorf("prompt cancelled: %w", err)
	}
	return value, nil
}

// Confirm implements Prompter.
func (p *FormPrompter) Confirm(ctx context.Context, message string) (bool, error) {
	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(message).
				Value(&ok),
		),
	)
	if err := form.RunWithContext(ctx); err != nil {
		return false, fmt.Errorf("prompt cancelled: %w", err)
	}
	return ok, nil
}

func notEmpty(value string) error {
	if value == "" {
		return fmt.Errorf("a value is required")
	}
	return nil
}
