package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"scrobvault/internal/canceltoken"
	"scrobvault/internal/downloader"
	"scrobvault/internal/ui"
)

type runOutcome struct {
	result *downloader.Result
	err    error
}

// runDownloadWithUI drives the downloader behind a Bubble Tea progress
// display. The UI owns the terminal; progress flows through the event
// channel and the model closes down when the run does.
func runDownloadWithUI(cmd *cobra.Command, d *downloader.Downloader, username string, token canceltoken.Token) (*downloader.Result, error) {
	events := make(chan downloader.Event, 256)
	outcomeCh := make(chan runOutcome, 1)

	go func() {
		d.Progress = downloader.ChannelSink{Ch: events}
		res, err := d.Run(cmd.Context(), username, token.Observer())
		outcomeCh <- runOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel("archiving "+username, events, token)
	program := tea.NewProgram(model, tea.WithOutput(cmd.OutOrStdout()))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
