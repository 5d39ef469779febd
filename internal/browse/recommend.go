package browse

import (
	"math/rand/v2"

	"github.com/mmcdole/popcorn/internal/domain"
)

// Recommend picks a random movie to feature above the grid, preferring
// movies with a backdrop. rng may be nil.
func Recommend(movies []domain.MovieSummary, rng *rand.Rand) (domain.MovieSummary, bool) {
	if len(movies) == 0 {
		return domain.MovieSummary{}, false
	}

	intN := rand.IntN
	if rng != nil {
		intN = rng.IntN
	}

	var withBackdrop []int
	for i, m := range movies {
		if m.BackdropPath != "" {
			withBackdrop = append(withBackdrop, i)
		}
	}
	if len(withBackdrop) > 0 {
		return movies[withBackdrop[intN(len(withBackdrop))]], true
	}
	return movies[intN(len(movies))], true
}
