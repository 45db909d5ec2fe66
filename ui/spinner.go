package ui

import (
	"fmt"

	"github.com/charmbracelet/huh/spinner"
)

// SpinnerAction runs an action with a spinner, returning any error from the action
type SpinnerAction func() error

// RunWithSpinner shows a spinner while action runs.
// If not TTY, just prints the title and runs the action.
func RunWithSpinner(title string, action SpinnerAction) error {
	if !IsTTY() {
		fmt.Fprintln(out, title)
		return action()
	}

	var actionErr error
	spinErr := spinner.New().
		Title(title).
		Action(func() {
			actionErr = action()
		}).
		Run()

	if spinErr != nil && actionErr == nil {
		return spinErr
	}
	return actionErr
}
