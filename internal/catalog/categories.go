package catalog

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/mmcdole/popcorn/internal/domain"
)

// Categories lists the browsable listings in display order.
var Categories = []domain.Category{
	{ID: "popular", Name: "Popular", Endpoint: "/movie/popular?"},
	{ID: "top_rated", Name: "Top Rated", Endpoint: "/movie/top_rated?"},
	{ID: "upcoming", Name: "Upcoming", Endpoint: "/movie/upcoming?"},
	{ID: "now_playing", Name: "Now Playing", Endpoint: "/movie/now_playing?"},
	{ID: "discover", Name: "Discover", Endpoint: "/discover/movie?"},
}

// CategoryByID looks up a category, case-insensitively.
func CategoryByID(id string) (domain.Category, error) {
	for _, c := range Categories {
		if strings.EqualFold(c.ID, id) {
			return c, nil
		}
	}
	return domain.Category{}, fmt.Errorf("unknown category: %s", id)
}

// CategoryIDs returns the IDs of all categories.
func CategoryIDs() []string {
	ids := make([]string, len(Categories))
	for i, c := range Categories {
		ids[i] = c.ID
	}
	return ids
}

// SearchEndpoint returns the base endpoint for a title search.
func SearchEndpoint(query string) string {
	return "/search/movie?query=" + url.QueryEscape(strings.TrimSpace(query))
}
