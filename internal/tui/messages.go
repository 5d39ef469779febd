package tui

import (
	"github.com/mmcdole/popcorn/internal/browse"
)

// Message types for the TUI

// ErrMsg represents an error outside the fetch path.
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface.
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// FetchDoneMsg carries a finished catalog request back to the event loop.
type FetchDoneMsg struct {
	Result browse.Result
}

// OpenedMsg reports that a movie page was handed to the browser.
type OpenedMsg struct {
	URL string
}

// ClearStatusMsg clears the footer status after a delay.
type ClearStatusMsg struct {
	ID int
}
