package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/popcorn/internal/browse"
	"github.com/mmcdole/popcorn/internal/domain"
	"github.com/mmcdole/popcorn/internal/search"
	"github.com/mmcdole/popcorn/internal/tui/styles"
)

// Layout constants for grid cards
const (
	// Border adds 1 cell on each side.
	CardBorder = 2

	// Padding(0,1) inside the border.
	CardPadding = 2

	// Title, release date, rating, artwork.
	CardContentLines = 4

	CardHeight = CardContentLines + CardBorder

	MinCardWidth = 16
)

// Grid renders movies as a scrollable grid of cards and reports how much of
// the sentinel card is on screen.
type Grid struct {
	movies  []domain.MovieSummary
	columns int

	// Selection (cursor indexes the displayed list)
	cursor    int
	rowOffset int

	// Dimensions
	width  int
	height int

	// Sentinel
	sentinelPage  int
	sentinelIndex int // index into movies
	hasSentinel   bool

	// Filter state
	filterActive bool
	filterInput  textinput.Model
	filtered     []search.FilterResult
}

// NewGrid creates a new grid component.
func NewGrid(columns int) Grid {
	if columns < 1 {
		columns = 1
	}
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.FilterStyle

	return Grid{
		columns:     columns,
		filterInput: ti,
	}
}

// SetMovies replaces the content, keeping the cursor where it was.
// Appending a page therefore never moves the selection.
func (g *Grid) SetMovies(movies []domain.MovieSummary) {
	g.movies = movies
	if g.filterActive {
		g.applyFilter(false)
	}
	g.clampCursor()
}

// Reset clears content, selection and filter.
func (g *Grid) Reset() {
	g.movies = nil
	g.cursor = 0
	g.rowOffset = 0
	g.hasSentinel = false
	g.clearFilter()
}

// SetSentinel marks the movie at index (into the full list) as the sentinel
// of page. ok false removes the sentinel.
func (g *Grid) SetSentinel(page, index int, ok bool) {
	g.sentinelPage = page
	g.sentinelIndex = index
	g.hasSentinel = ok
}

// SetSize updates the component dimensions.
func (g *Grid) SetSize(width, height int) {
	g.width = width
	g.height = height
	g.ensureVisible()
}

// Len returns the number of displayed cards.
func (g Grid) Len() int {
	if g.filterActive && g.filterInput.Value() != "" {
		return len(g.filtered)
	}
	return len(g.movies)
}

// Cursor returns the current cursor position.
func (g Grid) Cursor() int {
	return g.cursor
}

// Selected returns the movie under the cursor.
func (g Grid) Selected() (domain.MovieSummary, bool) {
	if g.Len() == 0 {
		return domain.MovieSummary{}, false
	}
	return g.movies[g.mapIndex(g.cursor)], true
}

// mapIndex converts a displayed position to an index into movies.
func (g Grid) mapIndex(pos int) int {
	if g.filterActive && g.filterInput.Value() != "" {
		return g.filtered[pos].Index
	}
	return pos
}

// displayPos converts an index into movies to a displayed position.
func (g Grid) displayPos(index int) (int, bool) {
	if !(g.filterActive && g.filterInput.Value() != "") {
		return index, index < len(g.movies)
	}
	for pos, r := range g.filtered {
		if r.Index == index {
			return pos, true
		}
	}
	return 0, false
}

// gridHeight is the number of lines available for cards.
func (g Grid) gridHeight() int {
	h := g.height
	if g.filterActive {
		h--
	}
	if h < 0 {
		h = 0
	}
	return h
}

// fullRows is the number of card rows that fit entirely.
func (g Grid) fullRows() int {
	rows := g.gridHeight() / CardHeight
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (g Grid) cardWidth() int {
	w := g.width / g.columns
	if w < MinCardWidth {
		w = MinCardWidth
	}
	return w
}

// SentinelVisibility reports the visible fraction of the sentinel card.
// ok is false when there is no sentinel to watch.
func (g Grid) SentinelVisibility() (browse.Visibility, bool) {
	if !g.hasSentinel {
		return browse.Visibility{}, false
	}
	vis := browse.Visibility{Page: g.sentinelPage}

	pos, shown := g.displayPos(g.sentinelIndex)
	if !shown || g.gridHeight() == 0 {
		return vis, true
	}

	row := pos / g.columns
	if row < g.rowOffset {
		return vis, true
	}
	top := (row - g.rowOffset) * CardHeight
	visible := g.gridHeight() - top
	if visible <= 0 {
		return vis, true
	}
	if visible > CardHeight {
		visible = CardHeight
	}
	vis.Fraction = float64(visible) / float64(CardHeight)
	return vis, true
}

// Navigation

func (g *Grid) MoveUp()    { g.setCursor(g.cursor - g.columns) }
func (g *Grid) MoveDown()  { g.setCursor(g.cursor + g.columns) }
func (g *Grid) MoveLeft()  { g.setCursor(g.cursor - 1) }
func (g *Grid) MoveRight() { g.setCursor(g.cursor + 1) }
func (g *Grid) Home()      { g.setCursor(0) }
func (g *Grid) End()       { g.setCursor(g.Len() - 1) }

// PageDown moves the cursor one screen of rows down.
func (g *Grid) PageDown() {
	g.setCursor(g.cursor + g.fullRows()*g.columns)
}

// PageUp moves the cursor one screen of rows up.
func (g *Grid) PageUp() {
	g.setCursor(g.cursor - g.fullRows()*g.columns)
}

// Scroll moves the cursor by whole rows (mouse wheel).
func (g *Grid) Scroll(rows int) {
	g.setCursor(g.cursor + rows*g.columns)
}

func (g *Grid) setCursor(pos int) {
	last := g.Len() - 1
	if last < 0 {
		g.cursor = 0
		g.rowOffset = 0
		return
	}
	if pos < 0 {
		pos = 0
	}
	if pos > last {
		// moving down past a short last row lands on the last card
		pos = last
	}
	g.cursor = pos
	g.ensureVisible()
}

func (g *Grid) clampCursor() {
	g.setCursor(g.cursor)
}

// ensureVisible keeps the cursor row fully on screen.
func (g *Grid) ensureVisible() {
	row := g.cursor / g.columns
	if row < g.rowOffset {
		g.rowOffset = row
	}
	if row >= g.rowOffset+g.fullRows() {
		g.rowOffset = row - g.fullRows() + 1
	}
}

// Filter

// ToggleFilter activates the filter input.
func (g *Grid) ToggleFilter() {
	g.filterActive = true
	g.filterInput.Focus()
	g.ensureVisible()
}

// IsFiltering returns true if filter mode is active.
func (g Grid) IsFiltering() bool {
	return g.filterActive
}

// IsFilterTyping returns true if the filter input has focus.
func (g Grid) IsFilterTyping() bool {
	return g.filterActive && g.filterInput.Focused()
}

// FilterQuery returns the current filter text.
func (g Grid) FilterQuery() string {
	return g.filterInput.Value()
}

// ClearFilter deactivates the filter and shows all items.
func (g *Grid) ClearFilter() {
	g.clearFilter()
	g.clampCursor()
}

func (g *Grid) clearFilter() {
	g.filterActive = false
	g.filtered = nil
	g.filterInput.SetValue("")
	g.filterInput.Blur()
}

// applyFilter refreshes matches; reset moves the cursor to the best match.
func (g *Grid) applyFilter(reset bool) {
	g.filtered = search.FilterMovies(g.filterInput.Value(), g.movies)
	if reset {
		g.cursor = 0
		g.rowOffset = 0
	}
}

// Update handles keys while the filter input has focus.
func (g Grid) Update(msg tea.Msg) (Grid, tea.Cmd) {
	if !g.IsFilterTyping() {
		return g, nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			g.ClearFilter()
			return g, nil
		case "enter":
			// Keep the filter, return keys to navigation
			g.filterInput.Blur()
			if g.filterInput.Value() == "" {
				g.ClearFilter()
			}
			return g, nil
		}
	}

	before := g.filterInput.Value()
	var cmd tea.Cmd
	g.filterInput, cmd = g.filterInput.Update(msg)
	if g.filterInput.Value() != before {
		g.applyFilter(true)
	}
	return g, cmd
}

// View renders the component.
func (g Grid) View() string {
	var lines []string
	if g.filterActive {
		lines = append(lines, g.filterInput.View())
	}

	cardWidth := g.cardWidth()
	count := g.Len()
	height := g.gridHeight()

	var cardLines []string
	for row := g.rowOffset; row*g.columns < count && len(cardLines) < height; row++ {
		var cards []string
		for col := 0; col < g.columns; col++ {
			pos := row*g.columns + col
			if pos >= count {
				break
			}
			cards = append(cards, g.renderCard(pos, cardWidth))
		}
		rowView := lipgloss.JoinHorizontal(lipgloss.Top, cards...)
		cardLines = append(cardLines, strings.Split(rowView, "\n")...)
	}
	if len(cardLines) > height {
		// partially visible last row
		cardLines = cardLines[:height]
	}

	lines = append(lines, cardLines...)
	return strings.Join(lines, "\n")
}

func (g Grid) renderCard(pos, width int) string {
	idx := g.mapIndex(pos)
	m := g.movies[idx]
	inner := width - CardBorder - CardPadding
	if inner < 1 {
		inner = 1
	}

	title := styles.Truncate(m.Title, inner)
	if g.filterActive && g.filterInput.Value() != "" && title == m.Title {
		title = styles.HighlightMatches(title, g.filtered[pos].MatchedIndexes)
	}

	artwork := styles.NoPosterStyle.Render("no poster")
	switch {
	case m.PosterPath != "":
		artwork = styles.DimStyle.Render("▣ poster")
	case m.BackdropPath != "":
		artwork = styles.DimStyle.Render("▭ backdrop")
	}

	content := strings.Join([]string{
		styles.TitleStyle.Render(title),
		styles.SubtitleStyle.Render(m.ReleaseDateLabel()),
		styles.RatingStyle.Render(m.RatingLabel()),
		artwork,
	}, "\n")

	style := styles.CardStyle
	if pos == g.cursor {
		style = styles.CardSelectedStyle
	}
	return style.Width(width - CardBorder).Height(CardContentLines).Render(content)
}
