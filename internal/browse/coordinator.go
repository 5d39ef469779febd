package browse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"github.com/mmcdole/popcorn/internal/domain"
	"github.com/mmcdole/popcorn/internal/metrics"
)

var (
	// ErrBusy is returned when an intent arrives while a fetch is in flight.
	// The intent is dropped, not queued.
	ErrBusy = errors.New("fetch already in progress")

	// ErrNoEndpoint is returned when an intent carries no endpoint and none
	// has been remembered yet.
	ErrNoEndpoint = errors.New("no endpoint to fetch from")
)

// Intent asks the coordinator to fetch one page.
type Intent struct {
	// Endpoint replaces the remembered base endpoint when non-empty
	// (e.g. "/discover/movie?"). Empty reuses the remembered one.
	Endpoint string

	// PageFragment selects the page, e.g. "&page=2&".
	PageFragment string
}

// PageFragment builds the page selector for page n.
func PageFragment(n int) string {
	return fmt.Sprintf("&page=%d&", n)
}

// FirstPage returns the intent that opens a new listing at endpoint.
func FirstPage(endpoint string) Intent {
	return Intent{Endpoint: endpoint, PageFragment: PageFragment(1)}
}

// NextPage returns the intent for page n of the remembered endpoint.
func NextPage(n int) Intent {
	return Intent{PageFragment: PageFragment(n)}
}

// Request is an accepted intent, ready to be sent.
type Request struct {
	Target     string // full request path including the credential suffix
	Generation uint64
	ctx        context.Context
}

// Result is the outcome of running a Request.
type Result struct {
	Generation uint64
	Response   *domain.CatalogResponse
	Err        error
}

// Outcome describes what Complete did with a Result.
type Outcome int

const (
	OutcomeApplied Outcome = iota // pages appended
	OutcomeFailed                 // error recorded, pages unchanged
	OutcomeStale                  // result belonged to a cleared session and was dropped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeFailed:
		return "failed"
	case OutcomeStale:
		return "stale"
	default:
		return "unknown"
	}
}

// Coordinator serializes catalog fetches and folds their outcomes into the
// page store. At most one request is in flight at a time.
//
// The fetch is split into Begin, Run and Complete so the network call can run
// outside the UI event loop; Fetch runs all three in sequence.
type Coordinator struct {
	repo   domain.CatalogRepository
	apiKey string
	logger *slog.Logger

	mu         sync.Mutex
	store      *PageStore
	endpoint   string // last non-empty endpoint supplied by an accepted intent
	loading    bool
	err        string
	generation uint64
	cancel     context.CancelFunc
}

// NewCoordinator creates a coordinator with an empty page store.
func NewCoordinator(repo domain.CatalogRepository, apiKey string, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		repo:   repo,
		apiKey: apiKey,
		logger: logger,
		store:  NewPageStore(),
	}
}

// Begin accepts an intent and moves to Loading.
// Returns ErrBusy if a fetch is already in flight and ErrNoEndpoint if there
// is nothing to fetch; in both cases state is untouched.
func (c *Coordinator) Begin(ctx context.Context, intent Intent) (*Request, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loading {
		metrics.FetchIntents.WithLabelValues("busy").Inc()
		c.logger.Debug("fetch intent dropped", "reason", "busy", "page", intent.PageFragment)
		return nil, ErrBusy
	}

	endpoint := intent.Endpoint
	if endpoint == "" {
		endpoint = c.endpoint
	}
	if endpoint == "" {
		metrics.FetchIntents.WithLabelValues("no_endpoint").Inc()
		return nil, ErrNoEndpoint
	}

	c.endpoint = endpoint
	c.loading = true

	reqCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	metrics.FetchIntents.WithLabelValues("accepted").Inc()
	c.logger.Debug("fetch started", "endpoint", endpoint, "page", intent.PageFragment, "generation", c.generation)

	return &Request{
		Target:     endpoint + intent.PageFragment + c.credential(),
		Generation: c.generation,
		ctx:        reqCtx,
	}, nil
}

// Run performs the network call for req. It does not touch coordinator state
// and is safe to call from any goroutine.
func (c *Coordinator) Run(req *Request) Result {
	resp, err := c.repo.FetchListing(req.ctx, req.Target)
	return Result{Generation: req.Generation, Response: resp, Err: err}
}

// Complete folds a Result into state and leaves Loading.
// Results from before the last Clear are dropped.
func (c *Coordinator) Complete(res Result) Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	if res.Generation != c.generation {
		metrics.FetchIntents.WithLabelValues("stale").Inc()
		c.logger.Debug("stale fetch result dropped", "generation", res.Generation, "current", c.generation)
		return OutcomeStale
	}

	c.loading = false
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}

	if res.Err == nil && res.Response == nil {
		res.Err = errors.New("empty response from catalog")
	}
	if res.Err != nil {
		c.err = res.Err.Error()
		metrics.FetchIntents.WithLabelValues("failed").Inc()
		c.logger.Warn("fetch failed", "endpoint", c.endpoint, "error", res.Err)
		return OutcomeFailed
	}

	c.store.Append(res.Response.Results)
	c.store.ReplaceLastResponse(res.Response)
	c.err = ""
	metrics.FetchIntents.WithLabelValues("applied").Inc()
	c.logger.Debug("fetch applied",
		"pages", c.store.PageCount(),
		"total_pages", res.Response.TotalPages,
		"results", len(res.Response.Results))
	return OutcomeApplied
}

// Fetch runs an intent to completion on the calling goroutine.
// Begin errors are returned as-is; a failed fetch returns its error after it
// has been recorded in state.
func (c *Coordinator) Fetch(ctx context.Context, intent Intent) (Outcome, error) {
	req, err := c.Begin(ctx, intent)
	if err != nil {
		return OutcomeFailed, err
	}
	res := c.Run(req)
	return c.Complete(res), res.Err
}

// Clear starts a new browsing session: pages, last response and error are
// reset, and any in-flight request is cancelled and its result ignored.
func (c *Coordinator) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.loading = false
	c.err = ""
	c.store.Clear()
}

// State returns a snapshot of the fetch state.
func (c *Coordinator) State() domain.FetchState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return domain.FetchState{
		Pages:        c.store.Pages(),
		LastResponse: c.store.LastResponse(),
		IsLoading:    c.loading,
		Error:        c.err,
	}
}

// Endpoint returns the remembered base endpoint.
func (c *Coordinator) Endpoint() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.endpoint
}

func (c *Coordinator) credential() string {
	return "api_key=" + url.QueryEscape(c.apiKey)
}
