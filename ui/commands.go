package ui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/philtim/cityclock/geonames"
)

// tickMsg is sent every second to update the clocks
type tickMsg time.Time

// spinnerTickMsg is sent to update the spinner animation
type spinnerTickMsg time.Time

// geonamesReadyMsg is sent when GeoNames database is ready
type geonamesReadyMsg struct{}

// geonamesErrorMsg is sent when GeoNames fails to load
type geonamesErrorMsg struct{ err error }

// spinnerFrames are the characters used for the loading animation
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// tickCmd returns a command that sends a tick message every second
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// spinnerTickCmd returns a command that sends a spinner tick message
func spinnerTickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return spinnerTickMsg(t)
	})
}

// checkGeoNamesCmd polls the database until it is ready or failed. It gives
// up quietly when ctx is cancelled.
func checkGeoNamesCmd(ctx context.Context, db *geonames.Database) tea.Cmd {
	return func() tea.Msg {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		timeout := time.After(5 * time.Minute)

		for {
			if db.IsReady() {
				return geonamesReadyMsg{}
			}
			if err := db.GetError(); err != nil {
				return geonamesErrorMsg{err: err}
			}
			select {
			case <-ctx.Done():
				return nil
			case <-timeout:
				return geonamesErrorMsg{err: fmt.Errorf("timeout waiting for GeoNames database")}
			case <-ticker.C:
			}
		}
	}
}
