package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/popcorn/internal/tui/styles"
)

// SearchSubmittedMsg is sent when the user confirms a query.
type SearchSubmittedMsg struct {
	Query string
}

// SearchCancelledMsg is sent when the user leaves the search box.
type SearchCancelledMsg struct{}

// Suggester returns history suggestions for the typed text.
type Suggester func(prefix string) []string

// SearchBox is the query prompt with history suggestions.
type SearchBox struct {
	input       textinput.Model
	suggest     Suggester
	suggestions []string
	selected    int // -1 when no suggestion is highlighted
	width       int
}

// NewSearchBox creates a new search box.
func NewSearchBox(suggest Suggester) SearchBox {
	ti := textinput.New()
	ti.Placeholder = "search movies..."
	ti.Prompt = "Search: "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.FilterStyle
	ti.CharLimit = 120

	return SearchBox{
		input:    ti,
		suggest:  suggest,
		selected: -1,
	}
}

// Open focuses the box, prefilled with query.
func (s *SearchBox) Open(query string) tea.Cmd {
	s.input.SetValue(query)
	s.input.CursorEnd()
	s.refresh()
	return s.input.Focus()
}

// Close blurs the box.
func (s *SearchBox) Close() {
	s.input.Blur()
	s.suggestions = nil
	s.selected = -1
}

// IsOpen returns true while the box has focus.
func (s SearchBox) IsOpen() bool {
	return s.input.Focused()
}

// Suggestions returns the current suggestions.
func (s SearchBox) Suggestions() []string {
	return s.suggestions
}

// SetWidth updates the rendering width.
func (s *SearchBox) SetWidth(width int) {
	s.width = width
	s.input.Width = width - len(s.input.Prompt) - 2
}

func (s *SearchBox) refresh() {
	s.selected = -1
	if s.suggest == nil {
		s.suggestions = nil
		return
	}
	s.suggestions = s.suggest(s.input.Value())
}

// Update handles keys while the box is open.
func (s SearchBox) Update(msg tea.Msg) (SearchBox, tea.Cmd) {
	if !s.IsOpen() {
		return s, nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			s.Close()
			return s, func() tea.Msg { return SearchCancelledMsg{} }
		case "enter":
			query := strings.TrimSpace(s.input.Value())
			if s.selected >= 0 && s.selected < len(s.suggestions) {
				query = s.suggestions[s.selected]
			}
			s.Close()
			return s, func() tea.Msg { return SearchSubmittedMsg{Query: query} }
		case "down", "tab":
			if len(s.suggestions) > 0 {
				s.selected = (s.selected + 1) % len(s.suggestions)
			}
			return s, nil
		case "up", "shift+tab":
			if len(s.suggestions) > 0 {
				s.selected--
				if s.selected < 0 {
					s.selected = len(s.suggestions) - 1
				}
			}
			return s, nil
		}
	}

	before := s.input.Value()
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	if s.input.Value() != before {
		s.refresh()
	}
	return s, cmd
}

// View renders the input and its suggestions.
func (s SearchBox) View() string {
	lines := []string{s.input.View()}
	for i, sug := range s.suggestions {
		style := styles.SuggestionStyle
		if i == s.selected {
			style = styles.SuggestionSelectedStyle
		}
		lines = append(lines, style.Render("↺ "+styles.Truncate(sug, s.width-6)))
	}
	return strings.Join(lines, "\n")
}
