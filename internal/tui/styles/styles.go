package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Color palette
var (
	PopcornYellow = lipgloss.Color("#F5C518")
	SlateDark     = lipgloss.Color("#1F2937")
	SlateLight    = lipgloss.Color("#374151")
	DimGray       = lipgloss.Color("#6B7280")
	LightGray     = lipgloss.Color("#9CA3AF")
	White         = lipgloss.Color("#F9FAFB")
	Green         = lipgloss.Color("#10B981")
	Red           = lipgloss.Color("#EF4444")
	Pink          = lipgloss.Color("#EC4899")
)

// Borders
var (
	ActiveBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(PopcornYellow)
)

// Text styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(LightGray)

	DimStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	AccentStyle = lipgloss.NewStyle().
			Foreground(PopcornYellow)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red)

	RatingStyle = lipgloss.NewStyle().
			Foreground(Pink)
)

// Header tabs
var (
	TabStyle = lipgloss.NewStyle().
			Foreground(LightGray).
			Padding(0, 1)

	ActiveTabStyle = lipgloss.NewStyle().
			Foreground(SlateDark).
			Background(PopcornYellow).
			Bold(true).
			Padding(0, 1)
)

// Card styles. Width excludes the border.
var (
	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(DimGray).
			Padding(0, 1)

	CardSelectedStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(PopcornYellow).
				Padding(0, 1)

	NoPosterStyle = lipgloss.NewStyle().
			Foreground(DimGray).
			Italic(true)
)

// Featured banner
var FeaturedStyle = lipgloss.NewStyle().
	Border(lipgloss.NormalBorder(), false, false, true, false).
	BorderForeground(SlateLight).
	Padding(0, 1)

// Placeholder shown instead of the grid (loading, empty, error, prompt)
var PlaceholderStyle = lipgloss.NewStyle().
	Foreground(LightGray).
	Padding(2, 4)

// Help styles
var (
	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(PopcornYellow)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(DimGray)
)

// Spinner style
var SpinnerStyle = lipgloss.NewStyle().
	Foreground(PopcornYellow)

// Filter and search input styles
var (
	FilterStyle = lipgloss.NewStyle().
			Foreground(PopcornYellow)

	FilterPromptStyle = lipgloss.NewStyle().
				Foreground(PopcornYellow).
				Bold(true)

	SuggestionStyle = lipgloss.NewStyle().
			Foreground(LightGray).
			PaddingLeft(2)

	SuggestionSelectedStyle = lipgloss.NewStyle().
				Foreground(PopcornYellow).
				PaddingLeft(2)
)

// Match highlight style for filtered titles
var MatchHighlightStyle = lipgloss.NewStyle().
	Foreground(PopcornYellow).
	Bold(true)

// Truncate shortens s to width display cells, ending with an ellipsis.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}

// HighlightMatches renders the runes of s starting at the given byte
// offsets in the match style.
func HighlightMatches(s string, positions []int) string {
	if len(positions) == 0 {
		return s
	}
	marked := make(map[int]bool, len(positions))
	for _, p := range positions {
		marked[p] = true
	}

	var b strings.Builder
	for i, r := range s {
		if marked[i] {
			b.WriteString(MatchHighlightStyle.Render(string(r)))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// RenderHelp renders "key desc" pairs separated by dots.
func RenderHelp(pairs ...[2]string) string {
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = HelpKeyStyle.Render(p[0]) + " " + HelpDescStyle.Render(p[1])
	}
	return strings.Join(parts, HelpDescStyle.Render(" • "))
}
