package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/yildizm/nexus/internal/controller"
)

// stateUpdateMsg carries one controller update into the program
type stateUpdateMsg struct {
	update controller.Update
}

// subscriptionClosedMsg is sent once the update channel closes
type subscriptionClosedMsg struct{}

// runFinishedMsg reports the outcome of Run
type runFinishedMsg struct {
	err error
}

// fileAttachedMsg reports the outcome of loading a file from disk
type fileAttachedMsg struct {
	name string
	err  error
}

// waitForUpdate blocks until the controller publishes the next update
func waitForUpdate(updates <-chan controller.Update) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-updates
		if !ok {
			return subscriptionClosedMsg{}
		}
		return stateUpdateMsg{update: u}
	}
}

// startRun runs one analysis off the UI goroutine
func startRun(ctx context.Context, ctrl *controller.Controller) tea.Cmd {
	return func() tea.Msg {
		return runFinishedMsg{err: ctrl.Run(ctx)}
	}
}
