package search

import (
	"log/slog"
	"sort"
	"strings"

	lfuzzy "github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/sahilm/fuzzy"

	"github.com/mmcdole/popcorn/internal/domain"
)

// MaxSuggestions bounds the suggestions shown under the search prompt.
const MaxSuggestions = 5

// History is where submitted queries are remembered.
type History interface {
	RecordQuery(query string) error
	RecentQueries() []string
}

// FilterResult is a loaded movie matching a local title filter.
type FilterResult struct {
	Movie          domain.MovieSummary
	Index          int   // position in the unfiltered list
	MatchedIndexes []int // matched title characters, for highlighting
	Score          int
}

// Service handles search history and local title filtering.
type Service struct {
	history History
	logger  *slog.Logger
}

// NewService creates a new search service. history may be nil.
func NewService(history History, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		history: history,
		logger:  logger,
	}
}

// Record remembers a submitted query.
func (s *Service) Record(query string) {
	if s.history == nil || strings.TrimSpace(query) == "" {
		return
	}
	if err := s.history.RecordQuery(query); err != nil {
		s.logger.Warn("failed to record search query", "error", err)
	}
}

// Suggest returns remembered queries resembling prefix, best first.
// An empty prefix returns the most recent queries.
func (s *Service) Suggest(prefix string) []string {
	if s.history == nil {
		return nil
	}
	recent := s.history.RecentQueries()

	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		if len(recent) > MaxSuggestions {
			recent = recent[:MaxSuggestions]
		}
		return recent
	}

	ranks := lfuzzy.RankFindNormalizedFold(prefix, recent)
	// Ties keep recency order
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].Distance != ranks[j].Distance {
			return ranks[i].Distance < ranks[j].Distance
		}
		return ranks[i].OriginalIndex < ranks[j].OriginalIndex
	})

	var out []string
	for _, r := range ranks {
		if strings.EqualFold(r.Target, prefix) {
			continue
		}
		out = append(out, r.Target)
		if len(out) == MaxSuggestions {
			break
		}
	}
	return out
}

// FilterMovies fuzzy-matches query against movie titles, best match first.
func FilterMovies(query string, movies []domain.MovieSummary) []FilterResult {
	query = strings.TrimSpace(query)
	if query == "" || len(movies) == 0 {
		return nil
	}

	titles := make([]string, len(movies))
	for i, m := range movies {
		titles[i] = m.Title
	}

	matches := fuzzy.Find(query, titles)
	results := make([]FilterResult, len(matches))
	for i, match := range matches {
		results[i] = FilterResult{
			Movie:          movies[match.Index],
			Index:          match.Index,
			MatchedIndexes: match.MatchedIndexes,
			Score:          match.Score,
		}
	}
	return results
}
