package domain

// Location is the browsing context the listing was opened from.
// Display code uses it to choose the right placeholder.
type Location string

const (
	LocationCategory Location = "category"
	LocationSearch   Location = "search"
)

// ProgressFunc reports progress of multi-page operations.
type ProgressFunc func(loaded, total int)

// Category is a named listing backed by a base endpoint.
type Category struct {
	ID       string // Stable identifier used in config and flags ("popular")
	Name     string // Display name
	Endpoint string // Base endpoint, e.g. "/movie/popular?"
}
