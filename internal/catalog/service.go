package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/mmcdole/popcorn/internal/domain"
	"github.com/mmcdole/popcorn/internal/metrics"
	"github.com/mmcdole/popcorn/internal/store"
)

// Service is a caching domain.CatalogRepository. Identical concurrent
// requests share one network call, fresh responses come from the store,
// and an expired response is served when the catalog is unreachable.
type Service struct {
	repo   domain.CatalogRepository
	store  domain.ResponseStore // nil disables caching
	ttl    time.Duration        // 0 means cached responses never expire
	logger *slog.Logger
	now    func() time.Time

	group singleflight.Group
}

// NewService wraps repo with the response cache.
func NewService(repo domain.CatalogRepository, responses domain.ResponseStore, ttl time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:   repo,
		store:  responses,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// FetchListing returns the response for target, from cache when fresh.
func (s *Service) FetchListing(ctx context.Context, target string) (*domain.CatalogResponse, error) {
	key := store.HashKey(target)

	var stale *domain.CatalogResponse
	if s.store != nil {
		if resp, storedAt, ok := s.store.GetResponse(key); ok {
			if s.fresh(storedAt) {
				metrics.CacheLookups.WithLabelValues("hit").Inc()
				return resp, nil
			}
			metrics.CacheLookups.WithLabelValues("expired").Inc()
			stale = resp
		} else {
			metrics.CacheLookups.WithLabelValues("miss").Inc()
		}
	}

	// The shared call ignores cancellation of the caller that started it,
	// so a caller that gives up does not fail the others joining the same key.
	ch := s.group.DoChan(key, func() (interface{}, error) {
		callCtx := context.WithoutCancel(ctx)
		if deadline, ok := ctx.Deadline(); ok {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithDeadline(callCtx, deadline)
			defer cancel()
		}
		resp, err := s.repo.FetchListing(callCtx, target)
		if err != nil {
			return nil, err
		}
		if s.store != nil {
			if err := s.store.SaveResponse(key, resp); err != nil {
				s.logger.Warn("failed to cache response", "error", err)
			}
		}
		return resp, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		res.Err = ctx.Err()
	}
	// A timed-out request is treated like an unreachable catalog
	if errors.Is(res.Err, context.DeadlineExceeded) && !errors.Is(res.Err, domain.ErrServerOffline) {
		res.Err = fmt.Errorf("%w: %v", domain.ErrServerOffline, res.Err)
	}
	if res.Shared {
		metrics.CacheLookups.WithLabelValues("shared").Inc()
	}

	if res.Err != nil {
		if stale != nil && errors.Is(res.Err, domain.ErrServerOffline) {
			s.logger.Warn("catalog offline, serving expired response", "key", key)
			return stale, nil
		}
		return nil, res.Err
	}
	return res.Val.(*domain.CatalogResponse), nil
}

func (s *Service) fresh(storedAt time.Time) bool {
	if s.ttl <= 0 {
		return true
	}
	return s.now().Sub(storedAt) < s.ttl
}
