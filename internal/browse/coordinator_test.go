package browse

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/popcorn/internal/domain"
)

// fakeCatalog records request targets and answers from a queue.
type fakeCatalog struct {
	mu      sync.Mutex
	targets []string
	replies []reply
}

type reply struct {
	resp *domain.CatalogResponse
	err  error
}

func (f *fakeCatalog) FetchListing(ctx context.Context, target string) (*domain.CatalogResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.targets = append(f.targets, target)
	if len(f.replies) == 0 {
		return nil, errors.New("no reply queued")
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	return r.resp, r.err
}

func (f *fakeCatalog) queue(resp *domain.CatalogResponse, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, reply{resp: resp, err: err})
}

func (f *fakeCatalog) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.targets)
}

func movies(prefix string, n int) []domain.MovieSummary {
	out := make([]domain.MovieSummary, n)
	for i := range out {
		out[i] = domain.MovieSummary{ID: int64(i + 1), Title: fmt.Sprintf("%s %d", prefix, i+1)}
	}
	return out
}

func response(page, totalPages, n int) *domain.CatalogResponse {
	return &domain.CatalogResponse{
		Page:         page,
		TotalPages:   totalPages,
		TotalResults: totalPages * 20,
		Results:      movies(fmt.Sprintf("p%d", page), n),
	}
}

func TestCoordinator_DiscoverScenario(t *testing.T) {
	repo := &fakeCatalog{}
	repo.queue(&domain.CatalogResponse{Page: 1, TotalPages: 5, TotalResults: 100, Results: movies("a", 20)}, nil)
	repo.queue(&domain.CatalogResponse{Page: 2, TotalPages: 5, TotalResults: 100, Results: movies("b", 20)}, nil)

	c := NewCoordinator(repo, "KEY", nil)
	ctx := context.Background()

	outcome, err := c.Fetch(ctx, Intent{Endpoint: "/discover/movie?", PageFragment: "&page=1&"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, outcome)

	state := c.State()
	require.Len(t, state.Pages, 1)
	assert.Equal(t, 1, state.Pages[0].Number)
	assert.Len(t, state.Pages[0].Movies, 20)
	assert.False(t, state.IsLoading)

	_, err = c.Fetch(ctx, Intent{PageFragment: "&page=2&"})
	require.NoError(t, err)

	state = c.State()
	require.Len(t, state.Pages, 2)
	assert.Equal(t, 1, state.Pages[0].Number)
	assert.Equal(t, 2, state.Pages[1].Number)
	assert.Equal(t, "b 1", state.Pages[1].Movies[0].Title)
	assert.Equal(t, []string{
		"/discover/movie?&page=1&api_key=KEY",
		"/discover/movie?&page=2&api_key=KEY",
	}, repo.targets)
}

func TestCoordinator_PageNumbersAreSequential(t *testing.T) {
	tests := []struct {
		name string
		n    int
	}{
		{name: "single page", n: 1},
		{name: "three pages", n: 3},
		{name: "ten pages", n: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeCatalog{}
			for i := 0; i < tt.n; i++ {
				// server page numbers deliberately disagree with local numbering
				repo.queue(response(100+i, 1000, 3), nil)
			}
			c := NewCoordinator(repo, "k", nil)

			_, err := c.Fetch(context.Background(), FirstPage("/movie/popular?"))
			require.NoError(t, err)
			for i := 2; i <= tt.n; i++ {
				_, err := c.Fetch(context.Background(), NextPage(i))
				require.NoError(t, err)
			}

			state := c.State()
			require.Len(t, state.Pages, tt.n)
			for i, p := range state.Pages {
				assert.Equal(t, i+1, p.Number)
			}
		})
	}
}

func TestCoordinator_DropsIntentWhileLoading(t *testing.T) {
	repo := &fakeCatalog{}
	repo.queue(response(1, 5, 20), nil)
	c := NewCoordinator(repo, "k", nil)

	req, err := c.Begin(context.Background(), FirstPage("/movie/popular?"))
	require.NoError(t, err)

	before := c.State()
	assert.True(t, before.IsLoading)

	_, err = c.Begin(context.Background(), Intent{Endpoint: "/movie/upcoming?", PageFragment: PageFragment(2)})
	assert.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, before, c.State())
	assert.Equal(t, "/movie/popular?", c.Endpoint())
	assert.Equal(t, 0, repo.requestCount())

	assert.Equal(t, OutcomeApplied, c.Complete(c.Run(req)))
	assert.Equal(t, 1, repo.requestCount())
	assert.False(t, c.State().IsLoading)
}

func TestCoordinator_NoEndpoint(t *testing.T) {
	c := NewCoordinator(&fakeCatalog{}, "k", nil)

	_, err := c.Begin(context.Background(), NextPage(2))
	assert.ErrorIs(t, err, ErrNoEndpoint)
	assert.False(t, c.State().IsLoading)
}

func TestCoordinator_FailureThenSuccess(t *testing.T) {
	repo := &fakeCatalog{}
	repo.queue(response(1, 5, 20), nil)
	repo.queue(nil, domain.ErrServerOffline)
	repo.queue(response(2, 5, 20), nil)
	c := NewCoordinator(repo, "k", nil)
	ctx := context.Background()

	_, err := c.Fetch(ctx, FirstPage("/movie/popular?"))
	require.NoError(t, err)
	before := c.State().Pages

	outcome, err := c.Fetch(ctx, NextPage(2))
	assert.ErrorIs(t, err, domain.ErrServerOffline)
	assert.Equal(t, OutcomeFailed, outcome)

	state := c.State()
	assert.Equal(t, before, state.Pages)
	assert.Equal(t, domain.ErrServerOffline.Error(), state.Error)
	assert.False(t, state.IsLoading)

	// no automatic retry
	assert.Equal(t, 2, repo.requestCount())

	_, err = c.Fetch(ctx, NextPage(2))
	require.NoError(t, err)

	state = c.State()
	assert.Empty(t, state.Error)
	require.Len(t, state.Pages, 2)
	assert.Equal(t, 2, state.Pages[1].Number)
}

func TestCoordinator_Clear(t *testing.T) {
	repo := &fakeCatalog{}
	repo.queue(response(1, 5, 20), nil)
	repo.queue(response(2, 5, 20), nil)
	c := NewCoordinator(repo, "k", nil)

	_, err := c.Fetch(context.Background(), FirstPage("/movie/popular?"))
	require.NoError(t, err)
	_, err = c.Fetch(context.Background(), NextPage(2))
	require.NoError(t, err)

	c.Clear()
	for i := 0; i < 3; i++ {
		state := c.State()
		assert.Empty(t, state.Pages)
		assert.Nil(t, state.LastResponse)
	}

	// idempotent
	c.Clear()
	assert.Empty(t, c.State().Pages)
}

func TestCoordinator_StaleResultAfterClear(t *testing.T) {
	repo := &fakeCatalog{}
	repo.queue(response(1, 5, 20), nil)
	repo.queue(response(1, 2, 4), nil)
	c := NewCoordinator(repo, "k", nil)

	stale, err := c.Begin(context.Background(), FirstPage("/movie/popular?"))
	require.NoError(t, err)
	staleResult := c.Run(stale)

	c.Clear()
	assert.False(t, c.State().IsLoading)

	fresh, err := c.Begin(context.Background(), FirstPage("/search/movie?query=alien"))
	require.NoError(t, err)

	assert.Equal(t, OutcomeStale, c.Complete(staleResult))
	state := c.State()
	assert.Empty(t, state.Pages)
	assert.True(t, state.IsLoading)

	assert.Equal(t, OutcomeApplied, c.Complete(c.Run(fresh)))
	state = c.State()
	require.Len(t, state.Pages, 1)
	assert.Len(t, state.Pages[0].Movies, 4)
	assert.Equal(t, 2, state.LastResponse.TotalPages)
}

func TestCoordinator_ClearCancelsInFlight(t *testing.T) {
	c := NewCoordinator(&fakeCatalog{}, "k", nil)

	req, err := c.Begin(context.Background(), FirstPage("/movie/popular?"))
	require.NoError(t, err)
	require.NoError(t, req.ctx.Err())

	c.Clear()
	assert.ErrorIs(t, req.ctx.Err(), context.Canceled)
}

func TestCoordinator_NewEndpointReplacesRemembered(t *testing.T) {
	repo := &fakeCatalog{}
	repo.queue(response(1, 5, 1), nil)
	repo.queue(response(1, 5, 1), nil)
	repo.queue(response(2, 5, 1), nil)
	c := NewCoordinator(repo, "k", nil)
	ctx := context.Background()

	_, err := c.Fetch(ctx, FirstPage("/movie/popular?"))
	require.NoError(t, err)
	c.Clear()
	_, err = c.Fetch(ctx, FirstPage("/movie/top_rated?"))
	require.NoError(t, err)
	_, err = c.Fetch(ctx, NextPage(2))
	require.NoError(t, err)

	assert.Equal(t, "/movie/top_rated?&page=2&api_key=k", repo.targets[2])
}

func TestCoordinator_CredentialIsEscaped(t *testing.T) {
	repo := &fakeCatalog{}
	repo.queue(response(1, 1, 1), nil)
	c := NewCoordinator(repo, "a b&c", nil)

	_, err := c.Fetch(context.Background(), FirstPage("/movie/popular?"))
	require.NoError(t, err)
	assert.Equal(t, "/movie/popular?&page=1&api_key=a+b%26c", repo.targets[0])
}

func TestPageStore(t *testing.T) {
	s := NewPageStore()
	s.Append(movies("x", 2))
	s.Append(nil)
	s.ReplaceLastResponse(&domain.CatalogResponse{TotalPages: 9})

	pages := s.Pages()
	require.Len(t, pages, 2)
	assert.Equal(t, 2, pages[1].Number)
	assert.Empty(t, pages[1].Movies)
	assert.Equal(t, 9, s.LastResponse().TotalPages)

	s.Clear()
	assert.Nil(t, s.Pages())
	assert.Nil(t, s.LastResponse())
	assert.Equal(t, 0, s.PageCount())
}
