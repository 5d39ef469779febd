package tmdb

import "github.com/mmcdole/popcorn/internal/domain"

// mapListResponse converts a listing body to the domain response.
func mapListResponse(r *ListResponse) *domain.CatalogResponse {
	results := make([]domain.MovieSummary, 0, len(r.Results))
	for _, m := range r.Results {
		results = append(results, mapMovie(m))
	}
	return &domain.CatalogResponse{
		Page:         r.Page,
		TotalPages:   r.TotalPages,
		TotalResults: r.TotalResults,
		Results:      results,
	}
}

// mapMovie converts a movie DTO to a domain MovieSummary.
func mapMovie(m MovieDTO) domain.MovieSummary {
	title := m.Title
	if title == "" {
		title = m.OriginalTitle
	}
	return domain.MovieSummary{
		ID:           m.ID,
		Title:        title,
		Overview:     m.Overview,
		PosterPath:   deref(m.PosterPath),
		BackdropPath: deref(m.BackdropPath),
		ReleaseDate:  m.ReleaseDate,
		VoteAverage:  m.VoteAverage,
		VoteCount:    m.VoteCount,
		Popularity:   m.Popularity,
		Language:     m.OriginalLanguage,
		GenreIDs:     m.GenreIDs,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
