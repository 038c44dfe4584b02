// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package add

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/matt-FFFFFF/commands-wrapper/internal/commands"
	"github.com/matt-FFFFFF/commands-wrapper/internal/console"
	"github.com/peterh/liner"
)

// ErrCancelled is returned when the user leaves the wizard early.
var ErrCancelled = errors.New("add cancelled")

// Prompter reads one line of input after showing prompt.
type Prompter interface {
	Prompt(prompt string) (string, error)
}

var stepActions = []commands.StepKind{
	commands.StepCommand,
	commands.StepSend,
	commands.StepPressKey,
	commands.StepExpect,
}

// newPrompter opens the terminal line editor. The returned function restores the terminal.
var newPrompter = func() (Prompter, func() error) {
	l := liner.NewLiner()
	l.SetCtrlCAborts(true)
	l.SetCompleter(completeAction)

	return l, l.Close
}

// runWizard asks for the fields of a new command. Invalid answers are
// reported and asked again.
func runWizard(p Prompter, con *console.Console) (commands.Record, error) {
	var rec commands.Record

	name, err := ask(p, "Name: ", func(s string) error {
		return commands.ValidateName(s)
	}, con)
	if err != nil {
		return rec, err
	}

	if name == "" {
		return rec, ErrCancelled
	}

	rec.Name = strings.TrimSpace(name)

	if rec.Description, err = p.Prompt("Description: "); err != nil {
		return rec, cancelled(err)
	}

	rec.Description = strings.TrimSpace(rec.Description)

	timeout, err := ask(p, "Timeout in seconds (empty for none): ", func(s string) error {
		_, err := commands.ParseTimeout(s)
		return err
	}, con)
	if err != nil {
		return rec, err
	}

	rec.Timeout, _ = commands.ParseTimeout(timeout)

	con.Info("Enter one step per line as '<action> <value>', with action one of " +
		"command, send, press_key or expect. A line without an action is a command. " +
		"An empty line finishes.")

	for {
		line, err := ask(p, fmt.Sprintf("Step %d: ", len(rec.Steps)+1), func(s string) error {
			if s == "" {
				return nil
			}

			step := parseStep(s)
			if len(rec.Steps) == 0 && step.Kind != commands.StepCommand {
				return commands.ErrFirstStepNotCommand
			}

			return step.Validate()
		}, con)
		if err != nil {
			return rec, err
		}

		if line == "" {
			break
		}

		rec.Steps = append(rec.Steps, parseStep(line))
	}

	if len(rec.Steps) == 0 {
		return rec, ErrCancelled
	}

	return rec, rec.Validate()
}

// ask prompts until check accepts the answer. An empty answer is always accepted.
func ask(p Prompter, prompt string, check func(string) error, con *console.Console) (string, error) {
	for {
		answer, err := p.Prompt(prompt)
		if err != nil {
			return "", cancelled(err)
		}

		answer = strings.TrimSpace(answer)
		if answer == "" {
			return "", nil
		}

		if err := check(answer); err != nil {
			con.Error(err.Error())
			continue
		}

		return answer, nil
	}
}

func cancelled(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
		return ErrCancelled
	}

	return err
}

// parseStep reads '<action> <value>'; anything else is a command line.
func parseStep(line string) commands.Step {
	line = strings.TrimSpace(line)

	action, value, found := strings.Cut(line, " ")
	if found {
		for _, kind := range stepActions {
			if strings.EqualFold(action, string(kind)) {
				return commands.Step{Kind: kind, Value: strings.TrimSpace(value)}
			}
		}
	}

	return commands.Step{Kind: commands.StepCommand, Value: line}
}

func completeAction(line string) []string {
	if strings.Contains(line, " ") {
		return nil
	}

	var out []string

	for _, kind := range stepActions {
		if strings.HasPrefix(string(kind), strings.ToLower(line)) {
			out = append(out, string(kind)+" ")
		}
	}

	return out
}
