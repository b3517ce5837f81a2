// Package prompt wraps interactive terminal input for rule creation.
package prompt

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/peterh/liner"
)

// Prompter wraps basic prompting so interactive flows are testable.
type Prompter interface {
	Prompt(string) (string, error)
	Close() error
}

// LinerPrompter wraps liner.State to implement Prompter.
type LinerPrompter struct {
	*liner.State
}

// NewLinerPrompter creates a liner-based prompter with Ctrl+C cancellation.
func NewLinerPrompter() Prompter {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	return &LinerPrompter{State: line}
}

// TextInput asks for one line of input with a colored prompt.
func TextInput(prompter Prompter, prompt string) (string, error) {
	result, err := prompter.Prompt(color.CyanString(prompt + " "))
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			return "", errors.New("cancelled by user")
		}
		return "", fmt.Errorf("text input failed: %w", err)
	}
	return result, nil
}
