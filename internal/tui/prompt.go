// Package tui holds the interactive terminal prompts of the gsms CLI.
package tui

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
)

// ErrNotInteractive is returned when a prompt is needed but stdin is not a
// terminal or a CI environment is detected.
var ErrNotInteractive = errors.New("input required but prompting is disabled")

// PromptCredentials asks for whichever of username and password is empty.
// The password is never echoed.
func PromptCredentials(username, password string) (string, string, error) {
	if username != "" && password != "" {
		return username, password, nil
	}
	if !ShouldPrompt() {
		return "", "", fmt.Errorf("%w: pass --username and --password", ErrNotInteractive)
	}

	var fields []huh.Field
	if username == "" {
		fields = append(fields, huh.NewInput().
			Title("Username").
			Value(&username).
			Validate(required("username")))
	}
	if password == "" {
		fields = append(fields, huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&password).
			Validate(required("password")))
	}

	form := huh.NewForm(huh.NewGroup(fields...))
	if err := form.Run(); err != nil {
		return "", "", fmt.Errorf("prompt failed: %w", err)
	}
	return username, password, nil
}

func required(name string) func(string) error {
	return func(s string) error {
		if s == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

// PromptForConfirmation displays a yes/no confirmation prompt
func PromptForConfirmation(message string, defaultValue bool) (bool, error) {
	if !ShouldPrompt() {
		return false, fmt.Errorf("%w: pass --force to skip confirmation", ErrNotInteractive)
	}

	confirmed := defaultValue
	confirm := huh.NewConfirm().
		Title(message).
		Value(&confirmed)

	form := huh.NewForm(huh.NewGroup(confirm))

	if err := form.Run(); err != nil {
		return false, fmt.Errorf("prompt failed: %w", err)
	}

	return confirmed, nil
}

// IsInteractive reports whether stdin is a terminal.
func IsInteractive() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// noPromptEnv disables prompting when set to any value. CI systems are
// detected by their own variables.
var noPromptEnv = []string{"GSMS_NO_PROMPT", "CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL"}

// ShouldPrompt reports whether prompts may be shown: stdin is a terminal
// and no CI or GSMS_NO_PROMPT variable is set.
func ShouldPrompt() bool {
	for _, name := range noPromptEnv {
		if os.Getenv(name) != "" {
			return false
		}
	}
	return IsInteractive()
}
