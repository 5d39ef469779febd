package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/popcorn/internal/browse"
	"github.com/mmcdole/popcorn/internal/catalog"
	"github.com/mmcdole/popcorn/internal/domain"
)

// scriptedCatalog serves pageSize movies per page for any endpoint.
type scriptedCatalog struct {
	mu         sync.Mutex
	targets    []string
	totalPages int
	pageSize   int
	err        error
}

func (c *scriptedCatalog) FetchListing(ctx context.Context, target string) (*domain.CatalogResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.targets = append(c.targets, target)
	if c.err != nil {
		return nil, c.err
	}
	n := len(c.targets)
	movies := make([]domain.MovieSummary, c.pageSize)
	for i := range movies {
		movies[i] = domain.MovieSummary{
			ID:           int64(n*100 + i),
			Title:        fmt.Sprintf("Movie %d-%d", n, i),
			BackdropPath: "/b.jpg",
			ReleaseDate:  "2020-01-02",
		}
	}
	return &domain.CatalogResponse{
		TotalPages:   c.totalPages,
		TotalResults: c.totalPages * c.pageSize,
		Results:      movies,
	}, nil
}

func (c *scriptedCatalog) lastTarget() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.targets) == 0 {
		return ""
	}
	return c.targets[len(c.targets)-1]
}

// slowCatalog answers after delay and gives up when its context ends.
type slowCatalog struct {
	calls atomic.Int32
	delay time.Duration
}

func (c *slowCatalog) FetchListing(ctx context.Context, target string) (*domain.CatalogResponse, error) {
	c.calls.Add(1)
	select {
	case <-time.After(c.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	movies := make([]domain.MovieSummary, 20)
	for i := range movies {
		movies[i] = domain.MovieSummary{ID: int64(i + 1), Title: fmt.Sprintf("Movie %d", i)}
	}
	return &domain.CatalogResponse{TotalPages: 1, TotalResults: 20, Results: movies}, nil
}

func newTestModel(repo domain.CatalogRepository) Model {
	coord := browse.NewCoordinator(repo, "k", nil)
	trigger := browse.NewScrollTrigger(browse.DefaultSentinelIndex, browse.DefaultVisibilityThreshold)
	m := NewModel(context.Background(), coord, trigger, nil, Options{
		Columns:         4,
		DefaultCategory: "discover",
		ImageBaseURL:    "https://img.test",
	}, nil)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 60})
	return updated.(Model)
}

// step applies msg and returns the model with the command it produced.
func step(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

// runFetch executes a fetch command and feeds its result back.
func runFetch(t *testing.T, m Model, cmd tea.Cmd) (Model, tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd, "expected a fetch command")
	msg := cmd()
	done, ok := msg.(FetchDoneMsg)
	require.True(t, ok, "expected FetchDoneMsg, got %T", msg)
	return step(t, m, done)
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_InfiniteScroll(t *testing.T) {
	repo := &scriptedCatalog{totalPages: 3, pageSize: 20}
	m := newTestModel(repo)

	m, cmd := step(t, m, startMsg{})
	assert.True(t, m.State().IsLoading)
	assert.Equal(t, browse.ViewLoading, browse.ResolveView(m.State(), m.Location()))

	// First page fits on screen, so its sentinel is visible straight away
	m, cmd = runFetch(t, m, cmd)
	assert.Equal(t, "/discover/movie?&page=1&api_key=k", repo.targets[0])
	require.Len(t, m.State().Pages, 1)
	require.NotNil(t, m.featured)

	m, cmd = runFetch(t, m, cmd)
	assert.Equal(t, "/discover/movie?&page=2&api_key=k", repo.lastTarget())
	require.Len(t, m.State().Pages, 2)
	assert.Equal(t, 2, m.State().Pages[1].Number)

	// Page 2's sentinel is below the fold
	assert.Nil(t, cmd)

	m, cmd = step(t, m, keyPress("G"))
	m, cmd = runFetch(t, m, cmd)
	assert.Equal(t, "/discover/movie?&page=3&api_key=k", repo.lastTarget())
	require.Len(t, m.State().Pages, 3)

	// Last page: nothing more to fetch
	m, cmd = step(t, m, keyPress("G"))
	assert.Nil(t, cmd)
	assert.Len(t, repo.targets, 3)

	view := m.View()
	assert.Contains(t, view, "We have found 60 movies")
	assert.Contains(t, view, "page 3/3")
}

func TestModel_SearchFlow(t *testing.T) {
	repo := &scriptedCatalog{totalPages: 1, pageSize: 3}
	m := newTestModel(repo)

	m, _ = step(t, m, keyPress("s"))
	assert.Equal(t, domain.LocationSearch, m.Location())
	assert.Equal(t, browse.ViewSearchPrompt, browse.ResolveView(m.State(), m.Location()))
	assert.Contains(t, m.View(), "Search for a movie by title")

	for _, r := range "star wars" {
		m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	m, cmd := step(t, m, keyPress("enter"))
	require.NotNil(t, cmd)

	m, cmd = step(t, m, cmd())
	m, _ = runFetch(t, m, cmd)

	assert.Equal(t, "/search/movie?query=star+wars&page=1&api_key=k", repo.lastTarget())
	assert.Equal(t, browse.ViewList, browse.ResolveView(m.State(), m.Location()))
	assert.Contains(t, m.View(), `for "star wars"`)
}

func TestModel_EmptyResult(t *testing.T) {
	repo := &scriptedCatalog{totalPages: 0, pageSize: 0}
	m := newTestModel(repo)

	m, cmd := step(t, m, startMsg{})
	m, _ = runFetch(t, m, cmd)

	assert.Equal(t, browse.ViewEmpty, browse.ResolveView(m.State(), m.Location()))
	assert.Contains(t, m.View(), "No movies found.")
}

func TestModel_ErrorAndRetry(t *testing.T) {
	repo := &scriptedCatalog{totalPages: 2, pageSize: 20, err: domain.ErrServerOffline}
	m := newTestModel(repo)

	m, cmd := step(t, m, startMsg{})
	m, _ = runFetch(t, m, cmd)
	assert.Equal(t, browse.ViewError, browse.ResolveView(m.State(), m.Location()))
	assert.Contains(t, m.View(), "catalog server is unreachable")

	repo.mu.Lock()
	repo.err = nil
	repo.mu.Unlock()

	m, cmd = step(t, m, keyPress("r"))
	m, _ = runFetch(t, m, cmd)
	assert.Empty(t, m.State().Error)
	assert.Len(t, m.State().Pages, 1)
}

func TestModel_CategorySwitchDropsStaleResult(t *testing.T) {
	repo := &scriptedCatalog{totalPages: 5, pageSize: 20}
	m := newTestModel(repo)

	m, first := step(t, m, startMsg{})
	staleMsg := first()

	m, second := step(t, m, keyPress("tab"))
	assert.Equal(t, "/movie/popular?", m.coord.Endpoint())
	assert.True(t, m.State().IsLoading)

	m, cmd := step(t, m, staleMsg)
	assert.Nil(t, cmd)
	assert.Empty(t, m.State().Pages)
	assert.True(t, m.State().IsLoading)

	m, _ = runFetch(t, m, second)
	assert.Equal(t, "/movie/popular?&page=1&api_key=k", repo.lastTarget())
	require.Len(t, m.State().Pages, 1)
	assert.True(t, strings.HasPrefix(m.State().Pages[0].Movies[0].Title, "Movie 2-"))
}

func TestModel_ReloadDuringInitialLoad(t *testing.T) {
	repo := &slowCatalog{delay: 100 * time.Millisecond}
	m := newTestModel(catalog.NewService(repo, nil, 0, nil))

	m, first := step(t, m, startMsg{})
	require.NotNil(t, first)
	staleMsg := make(chan tea.Msg, 1)
	go func() { staleMsg <- first() }()
	require.Eventually(t, func() bool { return repo.calls.Load() == 1 }, time.Second, time.Millisecond)

	// Same endpoint again while page 1 is still in flight
	m, second := step(t, m, keyPress("r"))
	assert.True(t, m.State().IsLoading)

	m, _ = runFetch(t, m, second)
	assert.Equal(t, browse.ViewList, browse.ResolveView(m.State(), m.Location()))
	assert.Empty(t, m.State().Error)
	require.Len(t, m.State().Pages, 1)

	m, cmd := step(t, m, <-staleMsg)
	assert.Nil(t, cmd)
	assert.Empty(t, m.State().Error)
	assert.Len(t, m.State().Pages, 1)
	assert.Equal(t, int32(1), repo.calls.Load())
}

func TestModel_InspectorAndFilter(t *testing.T) {
	repo := &scriptedCatalog{totalPages: 1, pageSize: 5}
	m := newTestModel(repo)

	m, cmd := step(t, m, startMsg{})
	m, _ = runFetch(t, m, cmd)

	m, _ = step(t, m, keyPress("l"))
	m, _ = step(t, m, keyPress("enter"))
	movie, ok := m.inspector.Movie()
	require.True(t, ok)
	assert.Equal(t, "Movie 1-1", movie.Title)
	assert.Contains(t, m.View(), "https://img.test/w500/b.jpg")

	m, _ = step(t, m, keyPress("esc"))
	assert.False(t, m.inspector.IsOpen())

	m, _ = step(t, m, keyPress("/"))
	require.True(t, m.grid.IsFilterTyping())
	for _, r := range "1-4" {
		m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	assert.Equal(t, 1, m.grid.Len())
	selected, ok := m.grid.Selected()
	require.True(t, ok)
	assert.Equal(t, "Movie 1-4", selected.Title)

	// Filtering never touches the fetched pages
	assert.Len(t, m.State().Pages[0].Movies, 5)

	m, _ = step(t, m, keyPress("esc"))
	assert.False(t, m.grid.IsFiltering())
	assert.Equal(t, 5, m.grid.Len())
}

func TestModel_OpenMovie(t *testing.T) {
	repo := &scriptedCatalog{totalPages: 1, pageSize: 3}
	var opened []string
	coord := browse.NewCoordinator(repo, "k", nil)
	trigger := browse.NewScrollTrigger(browse.DefaultSentinelIndex, browse.DefaultVisibilityThreshold)
	m := NewModel(context.Background(), coord, trigger, nil, Options{
		Columns: 4,
		WebURL:  "https://www.themoviedb.org",
		Open: func(url string) error {
			opened = append(opened, url)
			return nil
		},
	}, nil)
	m, _ = step(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

	m, cmd := step(t, m, startMsg{})
	m, _ = runFetch(t, m, cmd)

	m, _ = step(t, m, keyPress("l"))
	m, cmd = step(t, m, keyPress("o"))
	require.NotNil(t, cmd)
	msg := cmd()
	assert.Equal(t, OpenedMsg{URL: "https://www.themoviedb.org/movie/101"}, msg)
	assert.Equal(t, []string{"https://www.themoviedb.org/movie/101"}, opened)

	m, _ = step(t, m, msg)
	assert.Contains(t, m.View(), "opened https://www.themoviedb.org/movie/101")
}
