package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/mmcdole/popcorn/internal/domain"
	"github.com/mmcdole/popcorn/internal/metrics"
)

const (
	DefaultBaseURL      = "https://api.themoviedb.org/3"
	DefaultImageBaseURL = "https://image.tmdb.org/t/p"

	defaultTimeout = 15 * time.Second
	userAgent      = "Popcorn/1.0"
)

var apiKeyPattern = regexp.MustCompile(`api_key=[^&]*`)

// RedactTarget hides the credential in a request target for logging.
func RedactTarget(target string) string {
	return apiKeyPattern.ReplaceAllString(target, "api_key=REDACTED")
}

// Options tunes the client. Zero values use defaults.
type Options struct {
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 disables limiting
	Burst     int
}

// Client implements domain.CatalogRepository for TMDB-compatible APIs.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a new catalog API client.
func NewClient(baseURL string, opts Options, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: limiter,
		logger:  logger,
	}
}

// FetchListing fetches one listing page. target is the path relative to the
// API root, query and credential included.
func (c *Client) FetchListing(ctx context.Context, target string) (*domain.CatalogResponse, error) {
	body, err := c.doRequest(ctx, target)
	if err != nil {
		return nil, err
	}

	var list ListResponse
	if err := json.Unmarshal(body, &list); err != nil {
		c.logger.Error("JSON parse error", "error", err, "bodyLen", len(body))
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return mapListResponse(&list), nil
}

// doRequest performs a GET against the catalog API.
func (c *Client) doRequest(ctx context.Context, target string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	reqURL := c.baseURL + target
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug("catalog request", "url", RedactTarget(reqURL))

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveRequest("error", started)
		if ctx.Err() == context.Canceled {
			return nil, ctx.Err()
		}
		if ctx.Err() != nil {
			c.logger.Error("catalog request timed out", "url", RedactTarget(reqURL))
			return nil, fmt.Errorf("%w: %v", domain.ErrServerOffline, ctx.Err())
		}
		c.logger.Error("catalog request failed", "error", RedactTarget(err.Error()))
		return nil, domain.ErrServerOffline
	}
	defer resp.Body.Close()
	metrics.ObserveRequest(strconv.Itoa(resp.StatusCode), started)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusUnauthorized:
		return nil, domain.ErrAuthFailed
	case http.StatusNotFound:
		return nil, domain.ErrNotFound
	case http.StatusTooManyRequests:
		return nil, domain.ErrRateLimited
	}

	c.logger.Error("catalog request error", "status", resp.StatusCode, "body", string(body))
	statusErr := &domain.StatusError{StatusCode: resp.StatusCode}
	var apiErr ErrorResponse
	if json.Unmarshal(body, &apiErr) == nil {
		statusErr.Message = apiErr.StatusMessage
	}
	return nil, statusErr
}
