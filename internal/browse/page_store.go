package browse

import "github.com/mmcdole/popcorn/internal/domain"

// PageStore holds the pages fetched in the current browsing session and the
// most recent raw catalog response. Page numbers are owned by the store and
// always run 1..n without gaps, whatever page number the server reported.
//
// PageStore is not safe for concurrent use; the Coordinator serializes access.
type PageStore struct {
	pages        []domain.Page
	lastResponse *domain.CatalogResponse
}

// NewPageStore returns an empty store.
func NewPageStore() *PageStore {
	return &PageStore{}
}

// Append adds movies as the next page.
func (s *PageStore) Append(movies []domain.MovieSummary) {
	s.pages = append(s.pages, domain.Page{
		Movies: movies,
		Number: len(s.pages) + 1,
	})
}

// Clear drops every page and the last response together.
func (s *PageStore) Clear() {
	s.pages = nil
	s.lastResponse = nil
}

// ReplaceLastResponse stores the latest raw response for metadata display.
func (s *PageStore) ReplaceLastResponse(resp *domain.CatalogResponse) {
	s.lastResponse = resp
}

// Pages returns a copy of the page list.
func (s *PageStore) Pages() []domain.Page {
	if len(s.pages) == 0 {
		return nil
	}
	out := make([]domain.Page, len(s.pages))
	copy(out, s.pages)
	return out
}

// PageCount returns the number of pages fetched so far.
func (s *PageStore) PageCount() int {
	return len(s.pages)
}

// LastResponse returns the latest raw response, or nil.
func (s *PageStore) LastResponse() *domain.CatalogResponse {
	return s.lastResponse
}
