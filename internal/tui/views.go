package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/popcorn/internal/browse"
	"github.com/mmcdole/popcorn/internal/catalog"
	"github.com/mmcdole/popcorn/internal/domain"
	"github.com/mmcdole/popcorn/internal/tui/styles"
)

// View renders the whole screen.
func (m Model) View() string {
	if m.width == 0 {
		return ""
	}

	sections := []string{m.renderHeader()}
	if m.searchBox.IsOpen() {
		sections = append(sections, m.searchBox.View())
	}

	view := browse.ResolveView(m.state, m.location)
	if view == browse.ViewList && m.featured != nil {
		sections = append(sections, m.renderFeatured())
	}
	sections = append(sections, m.renderBody(view), m.renderFooter())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderHeader draws the category tabs and the results line.
func (m Model) renderHeader() string {
	var tabs []string
	for i, c := range catalog.Categories {
		style := styles.TabStyle
		if m.location == domain.LocationCategory && i == m.categoryIdx {
			style = styles.ActiveTabStyle
		}
		tabs = append(tabs, style.Render(c.Name))
	}
	searchTab := styles.TabStyle
	if m.location == domain.LocationSearch {
		searchTab = styles.ActiveTabStyle
	}
	tabs = append(tabs, searchTab.Render("Search"))

	title := styles.AccentStyle.Bold(true).Render("🍿 popcorn ")
	tabLine := lipgloss.NewStyle().MaxWidth(m.width).Render(title + strings.Join(tabs, ""))

	return lipgloss.JoinVertical(lipgloss.Left, tabLine, m.renderResultsLine())
}

// renderResultsLine shows the result count and scroll progress.
func (m Model) renderResultsLine() string {
	resp := m.state.LastResponse
	if resp == nil {
		return styles.DimStyle.Render(" ")
	}

	line := domain.ResultsLabel(resp.TotalResults)
	if m.location == domain.LocationSearch && m.query != "" {
		line += fmt.Sprintf(" for %q", m.query)
	}
	progress := fmt.Sprintf("  page %d/%d", len(m.state.Pages), resp.TotalPages)
	if m.grid.IsFiltering() && m.grid.FilterQuery() != "" {
		progress += fmt.Sprintf("  %d shown", m.grid.Len())
	}
	return styles.SubtitleStyle.Render(line) + styles.DimStyle.Render(progress)
}

// renderFeatured draws the recommended movie banner.
func (m Model) renderFeatured() string {
	f := m.featured
	text := styles.AccentStyle.Render("Tonight's pick: ") +
		styles.TitleStyle.Render(styles.Truncate(f.Title, m.width-40)) + " " +
		styles.DimStyle.Render(f.ReleaseDateLabel()) + " " +
		styles.RatingStyle.Render(f.RatingLabel())
	return styles.FeaturedStyle.Width(m.width).Render(text)
}

// renderBody draws the grid or the placeholder for view.
func (m Model) renderBody(view browse.View) string {
	var body string
	switch view {
	case browse.ViewError:
		hint := "press r to retry"
		body = styles.ErrorStyle.Render("Something went wrong: "+m.state.Error) + "\n\n" +
			styles.DimStyle.Render(hint)
	case browse.ViewEmpty:
		msg := "No movies found."
		if m.location == domain.LocationSearch && m.query != "" {
			msg = fmt.Sprintf("No movies found for %q.", m.query)
		}
		body = msg + "\n\n" + styles.DimStyle.Render("try another search or category")
	case browse.ViewLoading:
		body = m.spinner.View() + " Loading movies..."
	case browse.ViewSearchPrompt:
		body = "Search for a movie by title.\n\n" +
			styles.DimStyle.Render("press s to type a query")
	case browse.ViewIdle:
		body = styles.DimStyle.Render("Pick a category with tab.")
	case browse.ViewList:
		grid := m.grid.View()
		if m.inspector.IsOpen() {
			return lipgloss.JoinHorizontal(lipgloss.Top, grid, m.inspector.View())
		}
		return grid
	}
	return styles.PlaceholderStyle.Render(body)
}

// renderFooter draws loading state, status and key help.
func (m Model) renderFooter() string {
	var left string
	switch {
	case m.state.IsLoading && len(m.state.Pages) > 0:
		left = m.spinner.View() + styles.DimStyle.Render(fmt.Sprintf(" loading page %d ", len(m.state.Pages)+1))
	case m.status != "":
		style := styles.SubtitleStyle
		if m.statusIsErr {
			style = styles.ErrorStyle
		}
		left = style.Render(m.status) + " "
	}

	var pairs [][2]string
	for _, b := range m.keys.ShortHelp() {
		pairs = append(pairs, helpPair(b))
	}
	help := styles.RenderHelp(pairs...)

	line := left + help
	if lipgloss.Width(line) > m.width {
		line = left + renderShortHelp(m.keys)
	}
	return line
}

// renderShortHelp is the footer for narrow terminals.
func renderShortHelp(k KeyMap) string {
	return styles.RenderHelp(
		helpPair(k.Search),
		helpPair(k.Quit),
	)
}

func helpPair(b key.Binding) [2]string {
	return [2]string{b.Help().Key, b.Help().Desc}
}
