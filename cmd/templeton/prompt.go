package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// ErrAborted is returned when the user interrupts a prompt.
var ErrAborted = errors.New("prompt aborted")

// Prompter asks the user for a single value. It lets the interactive mode be
// tested without a terminal.
type Prompter interface {
	Input(ctx context.Context, message, help string) (string, error)
}

type surveyPrompter struct{}

func (surveyPrompter) Input(ctx context.Context, message, help string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	prompt := &survey.Input{
		Message: message,
		Help:    help,
	}
	if err := survey.AskOne(prompt, &out); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return "", ErrAborted
		}
		return "", err
	}
	return out, nil
}

// promptMissing asks for every key the template reads that data does not
// provide, and stores the answers in data.
func promptMissing(ctx context.Context, p Prompter, keys []string, data map[string]any) error {
	for _, key := range keys {
		if _, ok := data[key]; ok {
			continue
		}
		answer, err := p.Input(ctx, key+":", fmt.Sprintf("value for {{%s}}", key))
		if err != nil {
			return fmt.Errorf("prompt for %q: %w", key, err)
		}
		data[key] = answer
	}
	return nil
}
