package source

import (
	"fmt"
	"log/slog"
	"net/url"

	"github.com/mmcdole/popcorn/internal/adapter"
	"github.com/mmcdole/popcorn/internal/adapter/source/tmdb"
	"github.com/mmcdole/popcorn/internal/domain"
)

// NewCatalog creates the catalog repository described by the config.
// The returned repository talks to the network directly; wrap it with
// catalog.Service for caching.
func NewCatalog(cfg *adapter.CatalogConfig, logger *slog.Logger) (domain.CatalogRepository, error) {
	if cfg == nil {
		return nil, fmt.Errorf("catalog config is nil")
	}

	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("catalog base URL is required")
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid catalog base URL: %s", cfg.BaseURL)
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("catalog API key is required")
	}

	return tmdb.NewClient(cfg.BaseURL, tmdb.Options{
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
		Burst:     cfg.Burst,
	}, logger), nil
}
