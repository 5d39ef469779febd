package filter

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/mmcdole/popcorn/internal/domain"
)

// Filter is a compiled boolean expression over movie fields, e.g.
//
//	rating >= 7.5 && year > 2000 && contains(title, "star")
type Filter struct {
	program *vm.Program
	expr    string
}

// helpers are available to every expression.
var helpers = map[string]interface{}{
	"contains": func(str, substr string) bool {
		return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
	},
	"startsWith": func(str, prefix string) bool {
		return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
	},
	"lower": strings.ToLower,
	"upper": strings.ToUpper,
}

// Compile compiles expression. An empty expression matches every movie.
func Compile(expression string) (*Filter, error) {
	if strings.TrimSpace(expression) == "" {
		return &Filter{}, nil
	}

	program, err := expr.Compile(expression,
		expr.Env(env(domain.MovieSummary{})),
		expr.AllowUndefinedVariables(),
		expr.AsBool(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compile filter expression: %w", err)
	}

	return &Filter{program: program, expr: expression}, nil
}

// Match reports whether movie satisfies the filter.
func (f *Filter) Match(movie domain.MovieSummary) (bool, error) {
	if f.program == nil {
		return true, nil
	}

	out, err := expr.Run(f.program, env(movie))
	if err != nil {
		return false, fmt.Errorf("failed to evaluate filter %q: %w", f.expr, err)
	}
	matched, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("filter %q did not return a boolean", f.expr)
	}
	return matched, nil
}

// Apply returns the movies that satisfy the filter, in order.
func (f *Filter) Apply(movies []domain.MovieSummary) ([]domain.MovieSummary, error) {
	if f.program == nil {
		return movies, nil
	}
	var out []domain.MovieSummary
	for _, m := range movies {
		ok, err := f.Match(m)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, m)
		}
	}
	return out, nil
}

// String returns the source expression.
func (f *Filter) String() string {
	return f.expr
}

func env(m domain.MovieSummary) map[string]interface{} {
	e := map[string]interface{}{
		"id":          m.ID,
		"title":       m.Title,
		"overview":    m.Overview,
		"rating":      m.VoteAverage,
		"votes":       m.VoteCount,
		"popularity":  m.Popularity,
		"year":        m.Year(),
		"releaseDate": m.ReleaseDate,
		"language":    m.Language,
		"hasPoster":   m.PosterPath != "",
		"hasBackdrop": m.BackdropPath != "",
		"hasArtwork":  m.HasArtwork(),
		"genres":      m.GenreIDs,
	}
	for k, v := range helpers {
		e[k] = v
	}
	return e
}
