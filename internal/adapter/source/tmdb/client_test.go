package tmdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/popcorn/internal/domain"
)

func TestClient_FetchListing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/discover/movie", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "KEY", r.URL.Query().Get("api_key"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"page": 2,
			"total_pages": 5,
			"total_results": 100,
			"results": [
				{"id": 11, "title": "Star Wars", "poster_path": "/p.jpg", "backdrop_path": null,
				 "release_date": "1977-05-25", "vote_average": 8.2, "vote_count": 20000},
				{"id": 12, "title": "", "original_title": "Nemo", "poster_path": null,
				 "backdrop_path": "/b.jpg", "release_date": ""}
			]
		}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, Options{}, nil)
	resp, err := c.FetchListing(context.Background(), "/discover/movie?&page=2&api_key=KEY")
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Page)
	assert.Equal(t, 5, resp.TotalPages)
	assert.Equal(t, 100, resp.TotalResults)
	require.Len(t, resp.Results, 2)

	first := resp.Results[0]
	assert.Equal(t, int64(11), first.ID)
	assert.Equal(t, "/p.jpg", first.PosterPath)
	assert.Empty(t, first.BackdropPath)
	assert.Equal(t, "1977/05/25", first.ReleaseDateLabel())

	second := resp.Results[1]
	assert.Equal(t, "Nemo", second.Title)
	assert.Equal(t, "/b.jpg", second.ImagePath())
	assert.Equal(t, "??", second.ReleaseDateLabel())
}

func TestClient_StatusErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		wantMsg string
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"status_code":7,"status_message":"Invalid API key"}`, wantErr: domain.ErrAuthFailed},
		{name: "not found", status: http.StatusNotFound, body: `{}`, wantErr: domain.ErrNotFound},
		{name: "rate limited", status: http.StatusTooManyRequests, body: `{}`, wantErr: domain.ErrRateLimited},
		{name: "server error with message", status: http.StatusInternalServerError, body: `{"status_code":11,"status_message":"Internal error"}`, wantMsg: "unexpected status code 500: Internal error"},
		{name: "server error without body", status: http.StatusBadGateway, body: ``, wantMsg: "unexpected status code 502"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := NewClient(server.URL, Options{}, nil)
			_, err := c.FetchListing(context.Background(), "/movie/popular?&page=1&api_key=k")
			require.Error(t, err)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			var statusErr *domain.StatusError
			require.ErrorAs(t, err, &statusErr)
			assert.Equal(t, tt.status, statusErr.StatusCode)
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}

func TestClient_BadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results": [`))
	}))
	defer server.Close()

	c := NewClient(server.URL, Options{}, nil)
	_, err := c.FetchListing(context.Background(), "/movie/popular?&page=1&api_key=k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse response")
}

func TestClient_ServerOffline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c := NewClient(url, Options{Timeout: time.Second}, nil)
	_, err := c.FetchListing(context.Background(), "/movie/popular?&page=1&api_key=k")
	assert.ErrorIs(t, err, domain.ErrServerOffline)
}

func TestClient_CancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(server.URL, Options{RateLimit: 10, Burst: 1}, nil)
	_, err := c.FetchListing(ctx, "/movie/popular?&page=1&api_key=k")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_DeadlineIsOffline(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	c := NewClient(server.URL, Options{Timeout: 5 * time.Second}, nil)
	_, err := c.FetchListing(ctx, "/movie/popular?&page=1&api_key=k")
	assert.ErrorIs(t, err, domain.ErrServerOffline)
	assert.ErrorContains(t, err, "deadline exceeded")
}

func TestRedactTarget(t *testing.T) {
	assert.Equal(t,
		"/movie/popular?&page=2&api_key=REDACTED",
		RedactTarget("/movie/popular?&page=2&api_key=secret"))
	assert.Equal(t,
		"https://x/search/movie?query=a&api_key=REDACTED&page=1",
		RedactTarget("https://x/search/movie?query=a&api_key=secret&page=1"))
	assert.Equal(t, "/movie/popular?", RedactTarget("/movie/popular?"))
}
