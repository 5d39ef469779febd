package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/popcorn/internal/domain"
	"github.com/mmcdole/popcorn/internal/tui/styles"
)

// ImageSize is the artwork size requested for inspector links.
const ImageSize = "w500"

// Inspector displays details for the selected movie.
type Inspector struct {
	movie        *domain.MovieSummary
	imageBaseURL string
	width        int
	height       int
	offset       int // scroll offset into the overview
}

// NewInspector creates a new inspector component.
func NewInspector(imageBaseURL string) Inspector {
	return Inspector{imageBaseURL: imageBaseURL}
}

// SetMovie sets the movie to display.
func (i *Inspector) SetMovie(m domain.MovieSummary) {
	i.movie = &m
	i.offset = 0
}

// Close hides the inspector.
func (i *Inspector) Close() {
	i.movie = nil
}

// IsOpen returns true when a movie is shown.
func (i Inspector) IsOpen() bool {
	return i.movie != nil
}

// Movie returns the shown movie.
func (i Inspector) Movie() (domain.MovieSummary, bool) {
	if i.movie == nil {
		return domain.MovieSummary{}, false
	}
	return *i.movie, true
}

// SetSize updates the component dimensions.
func (i *Inspector) SetSize(width, height int) {
	i.width = width
	i.height = height
}

// ScrollDown scrolls the overview.
func (i *Inspector) ScrollDown() { i.offset++ }

// ScrollUp scrolls the overview back.
func (i *Inspector) ScrollUp() {
	if i.offset > 0 {
		i.offset--
	}
}

// View renders the component.
func (i Inspector) View() string {
	if i.movie == nil {
		return ""
	}
	m := *i.movie

	// Border takes 2 cells, padding 2 more
	contentWidth := i.width - 4
	if contentWidth < 10 {
		contentWidth = 10
	}

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render(styles.Truncate(m.Title, contentWidth)))
	b.WriteString("\n\n")

	row := func(label, value string) {
		b.WriteString(styles.DimStyle.Render(fmt.Sprintf("%-10s", label)))
		b.WriteString(styles.Truncate(value, contentWidth-10))
		b.WriteString("\n")
	}
	row("Released", m.ReleaseDateLabel())
	row("Rating", styles.RatingStyle.Render(m.RatingLabel())+styles.DimStyle.Render(fmt.Sprintf(" (%d votes)", m.VoteCount)))
	if m.Language != "" {
		row("Language", m.Language)
	}
	row("Popular", fmt.Sprintf("%.1f", m.Popularity))
	if url := m.ImageURL(i.imageBaseURL, ImageSize); url != "" {
		row("Artwork", url)
	} else {
		row("Artwork", styles.NoPosterStyle.Render("no poster"))
	}
	b.WriteString("\n")

	overview := m.Overview
	if overview == "" {
		overview = "No overview available."
	}
	wrapped := strings.Split(lipgloss.NewStyle().Width(contentWidth).Render(overview), "\n")

	// header takes 8 lines, footer 2, border 2
	bodyLines := i.height - 12
	if bodyLines < 1 {
		bodyLines = 1
	}
	offset := i.offset
	if maxOffset := len(wrapped) - bodyLines; offset > maxOffset {
		offset = maxOffset
	}
	if offset < 0 {
		offset = 0
	}
	end := offset + bodyLines
	if end > len(wrapped) {
		end = len(wrapped)
	}
	b.WriteString(styles.SubtitleStyle.Render(strings.Join(wrapped[offset:end], "\n")))
	b.WriteString("\n\n")
	b.WriteString(styles.RenderHelp([2]string{"esc", "close"}, [2]string{"j/k", "scroll"}))

	return styles.ActiveBorder.
		Padding(0, 1).
		Width(i.width - 2).
		Render(b.String())
}
