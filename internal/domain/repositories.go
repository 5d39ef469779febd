package domain

import (
	"context"
	"time"
)

// CatalogRepository fetches one listing page.
// target is the request path relative to the API root, e.g.
// "/discover/movie?&page=2&api_key=...". Implemented by catalog clients.
type CatalogRepository interface {
	FetchListing(ctx context.Context, target string) (*CatalogResponse, error)
}

// ResponseStore persists catalog responses and search history.
type ResponseStore interface {
	// GetResponse returns a cached response and the time it was stored
	GetResponse(key string) (*CatalogResponse, time.Time, bool)
	SaveResponse(key string, resp *CatalogResponse) error

	// RecordQuery adds a search query to history (most recent first)
	RecordQuery(query string) error
	RecentQueries() []string

	InvalidateAll()
	Close() error
}
