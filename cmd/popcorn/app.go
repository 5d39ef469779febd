package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mmcdole/popcorn/internal/adapter"
	"github.com/mmcdole/popcorn/internal/adapter/source"
	"github.com/mmcdole/popcorn/internal/browse"
	"github.com/mmcdole/popcorn/internal/catalog"
	"github.com/mmcdole/popcorn/internal/store"
)

var errNotConfigured = errors.New("no API key configured; run `popcorn setup` or set POPCORN_CATALOG_API_KEY")

// app holds the pieces shared by every command.
type app struct {
	cfg     *adapter.Config
	logger  *slog.Logger
	store   *store.CatalogStore
	catalog *catalog.Service
	closers []io.Closer
}

// loadApp reads the configuration and sets up logging.
func loadApp(configPath string) (*app, error) {
	cfg, err := adapter.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	a := &app{cfg: cfg}

	logger, closer, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = adapter.NullLogger()
	} else {
		a.closers = append(a.closers, closer)
	}
	slog.SetDefault(logger)
	a.logger = logger

	return a, nil
}

// openStore opens the response cache. A cache that cannot be opened is
// replaced by a memory-only one.
func (a *app) openStore() error {
	if a.store != nil {
		return nil
	}
	st, err := store.NewCatalogStore(a.cfg.CachePath(), a.cfg.Catalog.BaseURL)
	if err != nil {
		a.logger.Warn("response cache unavailable, continuing in memory", "error", err)
		st, err = store.NewCatalogStore("", a.cfg.Catalog.BaseURL)
		if err != nil {
			return fmt.Errorf("failed to create response cache: %w", err)
		}
	}
	a.store = st
	a.closers = append(a.closers, st)
	return nil
}

// connect builds the cached catalog service.
func (a *app) connect() error {
	if !a.cfg.IsConfigured() {
		return errNotConfigured
	}
	if err := a.openStore(); err != nil {
		return err
	}

	repo, err := source.NewCatalog(&a.cfg.Catalog, a.logger)
	if err != nil {
		return fmt.Errorf("failed to create catalog client: %w", err)
	}
	a.catalog = catalog.NewService(repo, a.store, a.cfg.Cache.TTL, a.logger)
	return nil
}

// newCoordinator returns a coordinator on the cached catalog.
func (a *app) newCoordinator() *browse.Coordinator {
	return browse.NewCoordinator(a.catalog, a.cfg.Catalog.APIKey, a.logger)
}

// resolveEndpoint picks the listing for a category ID or a search query.
// An empty category means the configured default.
func (a *app) resolveEndpoint(category, query string) (string, error) {
	if query != "" {
		return catalog.SearchEndpoint(query), nil
	}
	if category == "" {
		category = a.cfg.Browse.DefaultCategory
	}
	c, err := catalog.CategoryByID(category)
	if err != nil {
		return "", err
	}
	return c.Endpoint, nil
}

// Close releases the cache and the log file.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.logger.Warn("close failed", "error", err)
		}
	}
	a.closers = nil
}
