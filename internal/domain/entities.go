package domain

import (
	"fmt"
	"strings"
)

// MovieSummary is a single movie as listed by the catalog. Immutable once received.
type MovieSummary struct {
	ID           int64   // Catalog identifier
	Title        string  // Display title
	Overview     string  // Plot synopsis
	PosterPath   string  // Poster image reference (e.g. "/abc.jpg")
	BackdropPath string  // Backdrop image reference
	ReleaseDate  string  // ISO date ("2024-05-01"), empty when unknown
	VoteAverage  float64 // Average rating (0-10 scale)
	VoteCount    int     // Number of votes behind VoteAverage
	Popularity   float64
	Language     string // Original language code
	GenreIDs     []int
}

// ImagePath returns the poster reference, falling back to the backdrop.
// Empty means the movie has no artwork at all.
func (m MovieSummary) ImagePath() string {
	if m.PosterPath != "" {
		return m.PosterPath
	}
	return m.BackdropPath
}

// ImageURL returns the full artwork URL at the given size (e.g. "w500").
func (m MovieSummary) ImageURL(imageBaseURL, size string) string {
	path := m.ImagePath()
	if path == "" {
		return ""
	}
	base := strings.TrimRight(imageBaseURL, "/")
	return base + "/" + size + "/" + strings.TrimLeft(path, "/")
}

// HasArtwork reports whether a poster or backdrop is available.
func (m MovieSummary) HasArtwork() bool {
	return m.ImagePath() != ""
}

// ReleaseDateLabel formats the release date for cards ("2024/05/01"), or "??".
func (m MovieSummary) ReleaseDateLabel() string {
	if m.ReleaseDate == "" {
		return "??"
	}
	return strings.ReplaceAll(m.ReleaseDate, "-", "/")
}

// Year returns the release year, or 0 when the date is missing or malformed.
func (m MovieSummary) Year() int {
	if len(m.ReleaseDate) < 4 {
		return 0
	}
	var year int
	if _, err := fmt.Sscanf(m.ReleaseDate[:4], "%d", &year); err != nil {
		return 0
	}
	return year
}

// PageURL returns the movie's page on the catalog website.
func (m MovieSummary) PageURL(webURL string) string {
	return fmt.Sprintf("%s/movie/%d", strings.TrimRight(webURL, "/"), m.ID)
}

// RatingLabel returns the average rating prefixed with a heart.
func (m MovieSummary) RatingLabel() string {
	return fmt.Sprintf("♥ %.1f", m.VoteAverage)
}

// CatalogResponse is the raw payload of one catalog listing request.
// It is replaced wholesale on every successful fetch.
type CatalogResponse struct {
	Page         int // Page number as reported by the server
	TotalPages   int
	TotalResults int
	Results      []MovieSummary
}

// Page is one fetched page as numbered by the page store.
// Number is assigned locally (1, 2, 3, ...) and never taken from the server.
type Page struct {
	Movies []MovieSummary
	Number int
}

// FetchState is the snapshot of incremental list fetching read by display code.
type FetchState struct {
	Pages        []Page
	LastResponse *CatalogResponse // nil until the first successful fetch
	IsLoading    bool
	Error        string // empty when no failure is pending
}

// MovieCount returns the number of movies across all pages.
func (s FetchState) MovieCount() int {
	n := 0
	for _, p := range s.Pages {
		n += len(p.Movies)
	}
	return n
}

// Movies flattens all pages into display order.
func (s FetchState) Movies() []MovieSummary {
	movies := make([]MovieSummary, 0, s.MovieCount())
	for _, p := range s.Pages {
		movies = append(movies, p.Movies...)
	}
	return movies
}

// TotalPages returns the server-reported page count, or 0 before the first fetch.
func (s FetchState) TotalPages() int {
	if s.LastResponse == nil {
		return 0
	}
	return s.LastResponse.TotalPages
}

// maxDisplayedResults caps the result count shown in the header.
const maxDisplayedResults = 10000

// ResultsLabel renders the listing header ("We have found 42 movies").
func ResultsLabel(totalResults int) string {
	count := fmt.Sprintf("%d", totalResults)
	if totalResults > maxDisplayedResults {
		count = fmt.Sprintf("%d+", maxDisplayedResults)
	}
	noun := "movies"
	if totalResults <= 1 {
		noun = "movie"
	}
	return fmt.Sprintf("We have found %s %s", count, noun)
}
