package browse

import "github.com/mmcdole/popcorn/internal/domain"

const (
	DefaultSentinelIndex       = 19 // 20th item of a page
	DefaultVisibilityThreshold = 0.5
)

// Visibility is a report from the display about the sentinel cell.
type Visibility struct {
	Page     int     // number of the page the sentinel belongs to
	Fraction float64 // visible fraction of the sentinel, 0..1
}

// ScrollTrigger turns sentinel visibility reports into next-page intents.
// It emits once per transition into "visible" and forgets that transition
// when the sentinel moves to a newer page. It does not check Loading; the
// Coordinator drops intents that arrive mid-fetch.
type ScrollTrigger struct {
	sentinelIndex int
	threshold     float64

	page    int  // page the current sentinel belongs to
	visible bool // sentinel was at or above threshold on the last report
}

// NewScrollTrigger creates a trigger. Out-of-range values fall back to defaults.
func NewScrollTrigger(sentinelIndex int, threshold float64) *ScrollTrigger {
	if sentinelIndex < 0 {
		sentinelIndex = DefaultSentinelIndex
	}
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultVisibilityThreshold
	}
	return &ScrollTrigger{sentinelIndex: sentinelIndex, threshold: threshold}
}

// Threshold returns the visible fraction needed to fire.
func (t *ScrollTrigger) Threshold() float64 {
	return t.threshold
}

// SentinelIndex returns the index within a page of pageLen items that
// carries the sentinel. Pages shorter than the configured index put it on
// their last item; an empty page has none.
func (t *ScrollTrigger) SentinelIndex(pageLen int) (int, bool) {
	if pageLen <= 0 {
		return 0, false
	}
	if t.sentinelIndex < pageLen {
		return t.sentinelIndex, true
	}
	return pageLen - 1, true
}

// Sentinel locates the sentinel in the flattened movie list of state.
// It belongs to the most recently fetched page. When that page came back
// empty the sentinel falls on the last movie of the listing, so a server
// that over-reports its page count does not stall scrolling.
func (t *ScrollTrigger) Sentinel(state domain.FetchState) (page, index int, ok bool) {
	if len(state.Pages) == 0 {
		return 0, 0, false
	}
	last := state.Pages[len(state.Pages)-1]
	offset := 0
	for _, p := range state.Pages[:len(state.Pages)-1] {
		offset += len(p.Movies)
	}

	idx, ok := t.SentinelIndex(len(last.Movies))
	if !ok {
		if offset == 0 {
			return 0, 0, false
		}
		return last.Number, offset - 1, true
	}
	return last.Number, offset + idx, true
}

// Observe handles a visibility report and returns the intent to send, if any.
func (t *ScrollTrigger) Observe(v Visibility, state domain.FetchState) (Intent, bool) {
	page, _, ok := t.Sentinel(state)
	if !ok || v.Page != page {
		return Intent{}, false
	}

	if t.page != page {
		t.page = page
		t.visible = false
	}

	nowVisible := v.Fraction > 0 && v.Fraction >= t.threshold
	if !nowVisible {
		t.visible = false
		return Intent{}, false
	}
	if t.visible {
		return Intent{}, false
	}
	t.visible = true

	next := len(state.Pages) + 1
	if state.LastResponse == nil || next > state.LastResponse.TotalPages {
		return Intent{}, false
	}
	return NextPage(next), true
}

// Reset forgets the current sentinel, e.g. after the listing is cleared.
func (t *ScrollTrigger) Reset() {
	t.page = 0
	t.visible = false
}
