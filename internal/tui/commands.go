package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/popcorn/internal/browse"
)

// Command factories for async operations

// fetchTimeout bounds one catalog request, including rate-limit waits.
const fetchTimeout = 30 * time.Second

// statusTimeout is how long footer status messages stay visible.
const statusTimeout = 4 * time.Second

// FetchCmd runs an accepted request off the event loop.
func FetchCmd(coord *browse.Coordinator, req *browse.Request, cancel context.CancelFunc) tea.Cmd {
	return func() tea.Msg {
		defer cancel()
		return FetchDoneMsg{Result: coord.Run(req)}
	}
}

// OpenCmd opens url with open off the event loop.
func OpenCmd(open func(url string) error, url string) tea.Cmd {
	return func() tea.Msg {
		if err := open(url); err != nil {
			return ErrMsg{Err: err, Context: "open"}
		}
		return OpenedMsg{URL: url}
	}
}

// ClearStatusCmd schedules a status reset.
func ClearStatusCmd(id int) tea.Cmd {
	return tea.Tick(statusTimeout, func(time.Time) tea.Msg {
		return ClearStatusMsg{ID: id}
	})
}
