package catalog

import (
	"context"

	"github.com/mmcdole/popcorn/internal/browse"
	"github.com/mmcdole/popcorn/internal/domain"
)

// Collect walks a listing page by page through the coordinator, the same way
// scrolling would, until maxPages pages are loaded or the listing ends.
// maxPages <= 0 walks every page. The coordinator is cleared first.
func Collect(
	ctx context.Context,
	c *browse.Coordinator,
	endpoint string,
	maxPages int,
	onProgress domain.ProgressFunc,
) (domain.FetchState, error) {
	c.Clear()

	intent := browse.FirstPage(endpoint)
	for {
		select {
		case <-ctx.Done():
			return c.State(), ctx.Err()
		default:
		}

		if _, err := c.Fetch(ctx, intent); err != nil {
			return c.State(), err
		}

		state := c.State()
		loaded := len(state.Pages)
		target := state.TotalPages()
		if maxPages > 0 && maxPages < target {
			target = maxPages
		}

		if onProgress != nil {
			onProgress(loaded, target)
		}

		if loaded >= target {
			return state, nil
		}
		intent = browse.NextPage(loaded + 1)
	}
}
