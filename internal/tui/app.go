package tui

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/popcorn/internal/browse"
	"github.com/mmcdole/popcorn/internal/catalog"
	"github.com/mmcdole/popcorn/internal/domain"
	"github.com/mmcdole/popcorn/internal/search"
	"github.com/mmcdole/popcorn/internal/tui/components"
	"github.com/mmcdole/popcorn/internal/tui/styles"
)

// Layout constants
const (
	HeaderHeight     = 2 // category tabs + results line
	FeaturedHeight   = 2 // pick line + bottom border
	FooterHeight     = 1
	InspectorPercent = 40
	MinGridWidth     = 20
)

// Options configures the UI.
type Options struct {
	ImageBaseURL    string
	WebURL          string
	Columns         int
	DefaultCategory string

	// Open launches a URL in the browser; nil disables the open key.
	Open func(url string) error
}

// startMsg opens the default listing once the program runs.
type startMsg struct{}

// Model is the main Bubble Tea model for the application.
type Model struct {
	// Services
	coord     *browse.Coordinator
	trigger   *browse.ScrollTrigger
	searchSvc *search.Service
	logger    *slog.Logger
	ctx       context.Context
	rng       *rand.Rand
	keys      KeyMap
	opts      Options

	// Browsing context
	location    domain.Location
	categoryIdx int
	query       string

	// Snapshot of the coordinator, refreshed after every transition
	state    domain.FetchState
	featured *domain.MovieSummary

	// UI Components
	grid      components.Grid
	searchBox components.SearchBox
	inspector components.Inspector
	spinner   spinner.Model

	// Dimensions
	width  int
	height int

	// Footer status
	status      string
	statusIsErr bool
	statusID    int
}

// NewModel creates the application model.
func NewModel(
	ctx context.Context,
	coord *browse.Coordinator,
	trigger *browse.ScrollTrigger,
	searchSvc *search.Service,
	opts Options,
	logger *slog.Logger,
) Model {
	if logger == nil {
		logger = slog.Default()
	}
	if searchSvc == nil {
		searchSvc = search.NewService(nil, logger)
	}

	categoryIdx := 0
	for i, c := range catalog.Categories {
		if strings.EqualFold(c.ID, opts.DefaultCategory) {
			categoryIdx = i
		}
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.SpinnerStyle

	return Model{
		coord:       coord,
		trigger:     trigger,
		searchSvc:   searchSvc,
		logger:      logger,
		ctx:         ctx,
		rng:         rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
		keys:        DefaultKeyMap(),
		opts:        opts,
		location:    domain.LocationCategory,
		categoryIdx: categoryIdx,
		grid:        components.NewGrid(opts.Columns),
		searchBox:   components.NewSearchBox(searchSvc.Suggest),
		inspector:   components.NewInspector(opts.ImageBaseURL),
		spinner:     sp,
	}
}

// Init starts the spinner and opens the default category.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, func() tea.Msg { return startMsg{} })
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, m.checkSentinel()

	case startMsg:
		return m, m.openCategory(m.categoryIdx)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case FetchDoneMsg:
		return m, m.handleFetchDone(msg)

	case components.SearchSubmittedMsg:
		return m, m.submitSearch(msg.Query)

	case components.SearchCancelledMsg:
		m.layout()
		return m, nil

	case ErrMsg:
		m.logger.Warn("ui error", "error", msg.Error())
		return m, m.setStatus(msg.Error(), true)

	case OpenedMsg:
		return m, m.setStatus("opened "+msg.URL, false)

	case ClearStatusMsg:
		if msg.ID == m.statusID {
			m.status = ""
			m.statusIsErr = false
		}
		return m, nil

	case tea.MouseMsg:
		if m.inspector.IsOpen() || m.searchBox.IsOpen() {
			return m, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.grid.Scroll(-1)
		case tea.MouseButtonWheelDown:
			m.grid.Scroll(1)
		default:
			return m, nil
		}
		return m, m.checkSentinel()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// handleKey routes a key press to whichever component owns the keyboard.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searchBox.IsOpen() {
		var cmd tea.Cmd
		m.searchBox, cmd = m.searchBox.Update(msg)
		m.layout()
		return m, cmd
	}

	if m.grid.IsFilterTyping() {
		var cmd tea.Cmd
		m.grid, cmd = m.grid.Update(msg)
		return m, tea.Batch(cmd, m.checkSentinel())
	}

	if m.inspector.IsOpen() {
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Enter):
			m.inspector.Close()
			m.layout()
		case key.Matches(msg, m.keys.Open):
			if movie, ok := m.inspector.Movie(); ok {
				return m, m.openMovie(movie)
			}
		case key.Matches(msg, m.keys.Down):
			m.inspector.ScrollDown()
		case key.Matches(msg, m.keys.Up):
			m.inspector.ScrollUp()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		m.grid.MoveUp()
	case key.Matches(msg, m.keys.Down):
		m.grid.MoveDown()
	case key.Matches(msg, m.keys.Left):
		m.grid.MoveLeft()
	case key.Matches(msg, m.keys.Right):
		m.grid.MoveRight()
	case key.Matches(msg, m.keys.PageUp):
		m.grid.PageUp()
	case key.Matches(msg, m.keys.PageDown):
		m.grid.PageDown()
	case key.Matches(msg, m.keys.Home):
		m.grid.Home()
	case key.Matches(msg, m.keys.End):
		m.grid.End()

	case key.Matches(msg, m.keys.Enter):
		if movie, ok := m.grid.Selected(); ok {
			m.inspector.SetMovie(movie)
			m.layout()
		}
		return m, nil

	case key.Matches(msg, m.keys.Open):
		if movie, ok := m.grid.Selected(); ok {
			return m, m.openMovie(movie)
		}
		return m, nil

	case key.Matches(msg, m.keys.NextCategory):
		return m, m.openCategory((m.categoryIdx + 1) % len(catalog.Categories))
	case key.Matches(msg, m.keys.PrevCategory):
		return m, m.openCategory((m.categoryIdx + len(catalog.Categories) - 1) % len(catalog.Categories))

	case key.Matches(msg, m.keys.Search):
		return m, m.openSearch()

	case key.Matches(msg, m.keys.Filter):
		if len(m.state.Pages) > 0 {
			m.grid.ToggleFilter()
		}
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m, m.reload()

	case key.Matches(msg, m.keys.Shuffle):
		m.pickFeatured()
		m.layout()
		return m, nil

	case key.Matches(msg, m.keys.Escape):
		if m.grid.IsFiltering() {
			m.grid.ClearFilter()
		}
	}

	return m, m.checkSentinel()
}

// openCategory starts a fresh listing for category idx.
func (m *Model) openCategory(idx int) tea.Cmd {
	m.categoryIdx = idx
	m.location = domain.LocationCategory
	m.query = ""
	return m.startListing(catalog.Categories[idx].Endpoint)
}

// openSearch switches to the search context and focuses the query box.
// The previous listing is dropped so the search prompt shows until a query runs.
func (m *Model) openSearch() tea.Cmd {
	if m.location != domain.LocationSearch {
		m.location = domain.LocationSearch
		m.query = ""
		m.resetListing()
	}
	cmd := m.searchBox.Open(m.query)
	m.layout()
	return cmd
}

// submitSearch runs query as a new listing.
func (m *Model) submitSearch(query string) tea.Cmd {
	query = strings.TrimSpace(query)
	m.location = domain.LocationSearch
	m.query = query
	if query == "" {
		m.resetListing()
		return nil
	}
	m.searchSvc.Record(query)
	return m.startListing(catalog.SearchEndpoint(query))
}

// reload retries a failed page, or restarts the current listing.
func (m *Model) reload() tea.Cmd {
	if m.state.Error != "" && len(m.state.Pages) > 0 {
		return m.dispatch(browse.NextPage(len(m.state.Pages) + 1))
	}
	switch {
	case m.location == domain.LocationCategory:
		return m.openCategory(m.categoryIdx)
	case m.query != "":
		return m.startListing(catalog.SearchEndpoint(m.query))
	}
	return nil
}

// resetListing clears the coordinator and everything derived from it.
func (m *Model) resetListing() {
	m.coord.Clear()
	m.trigger.Reset()
	m.grid.Reset()
	m.inspector.Close()
	m.featured = nil
	m.syncState()
}

// startListing clears the current listing and requests page 1 of endpoint.
func (m *Model) startListing(endpoint string) tea.Cmd {
	m.resetListing()
	return m.dispatch(browse.FirstPage(endpoint))
}

// dispatch hands an intent to the coordinator and, if accepted, runs the
// request off the event loop.
func (m *Model) dispatch(intent browse.Intent) tea.Cmd {
	ctx, cancel := context.WithTimeout(m.ctx, fetchTimeout)
	req, err := m.coord.Begin(ctx, intent)
	if err != nil {
		cancel()
		if errors.Is(err, browse.ErrBusy) {
			return nil
		}
		return func() tea.Msg { return ErrMsg{Err: err, Context: "fetch"} }
	}
	m.syncState()
	return FetchCmd(m.coord, req, cancel)
}

// handleFetchDone folds a finished request into state and checks whether
// the new sentinel is already on screen.
func (m *Model) handleFetchDone(msg FetchDoneMsg) tea.Cmd {
	outcome := m.coord.Complete(msg.Result)
	if outcome == browse.OutcomeStale {
		return nil
	}
	m.syncState()

	if outcome == browse.OutcomeApplied && m.featured == nil {
		m.pickFeatured()
		m.layout()
	}
	return m.checkSentinel()
}

// syncState refreshes the snapshot and everything drawn from it.
func (m *Model) syncState() {
	m.state = m.coord.State()
	m.grid.SetMovies(m.state.Movies())
	page, idx, ok := m.trigger.Sentinel(m.state)
	m.grid.SetSentinel(page, idx, ok)
}

// checkSentinel feeds the sentinel's visibility to the trigger.
func (m *Model) checkSentinel() tea.Cmd {
	if browse.ResolveView(m.state, m.location) != browse.ViewList {
		return nil
	}
	vis, ok := m.grid.SentinelVisibility()
	if !ok {
		return nil
	}
	intent, fire := m.trigger.Observe(vis, m.state)
	if !fire {
		return nil
	}
	return m.dispatch(intent)
}

// openMovie opens the movie's web page.
func (m *Model) openMovie(movie domain.MovieSummary) tea.Cmd {
	if m.opts.Open == nil || m.opts.WebURL == "" {
		return nil
	}
	return OpenCmd(m.opts.Open, movie.PageURL(m.opts.WebURL))
}

func (m *Model) pickFeatured() {
	if movie, ok := browse.Recommend(m.state.Movies(), m.rng); ok {
		m.featured = &movie
	}
}

func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	m.statusID++
	m.status = text
	m.statusIsErr = isErr
	return ClearStatusCmd(m.statusID)
}

// layout distributes the window between header, grid, inspector and footer.
func (m *Model) layout() {
	gridHeight := m.height - HeaderHeight - FooterHeight
	if m.featured != nil {
		gridHeight -= FeaturedHeight
	}
	if m.searchBox.IsOpen() {
		gridHeight -= 1 + len(m.searchBox.Suggestions())
	}
	if gridHeight < 0 {
		gridHeight = 0
	}

	gridWidth := m.width
	if m.inspector.IsOpen() {
		inspectorWidth := m.width * InspectorPercent / 100
		gridWidth = m.width - inspectorWidth
		if gridWidth < MinGridWidth {
			gridWidth = MinGridWidth
		}
		m.inspector.SetSize(inspectorWidth, gridHeight)
	}

	m.grid.SetSize(gridWidth, gridHeight)
	m.searchBox.SetWidth(m.width)
}

// State returns the current fetch snapshot.
func (m Model) State() domain.FetchState {
	return m.state
}

// Location returns the current browsing context.
func (m Model) Location() domain.Location {
	return m.location
}
