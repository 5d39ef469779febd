package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mmcdole/popcorn/internal/catalog"
	"github.com/mmcdole/popcorn/internal/domain"
	"github.com/mmcdole/popcorn/internal/filter"
	"github.com/mmcdole/popcorn/internal/tui/components"
)

type listOptions struct {
	category string
	query    string
	pages    int
	filter   string
	asJSON   bool
}

func newListCmd(opts *options) *cobra.Command {
	lo := &listOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print a listing without the TUI",
		Long: `List walks a category or search listing page by page, exactly as scrolling
would, and prints the movies. --filter narrows the output with an expression
over movie fields (title, overview, rating, votes, popularity, year,
releaseDate, language, hasPoster, hasBackdrop, hasArtwork, genres).`,
		Example: `  popcorn list --category top_rated --pages 3
  popcorn list --search "alien" --filter 'rating >= 7 && year < 2000'
  popcorn list --pages 0 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, opts, lo)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&lo.category, "category", "c", "", "category to list (default from config)")
	flags.StringVarP(&lo.query, "search", "s", "", "search movies by title instead of listing a category")
	flags.IntVarP(&lo.pages, "pages", "p", 1, "number of pages to load, 0 for all")
	flags.StringVarP(&lo.filter, "filter", "f", "", "filter expression, e.g. 'rating >= 7.5'")
	flags.BoolVar(&lo.asJSON, "json", false, "print JSON instead of a table")
	cmd.MarkFlagsMutuallyExclusive("category", "search")

	_ = cmd.RegisterFlagCompletionFunc("category", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return catalog.CategoryIDs(), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runList(cmd *cobra.Command, opts *options, lo *listOptions) error {
	if lo.pages < 0 {
		return fmt.Errorf("invalid --pages: %d (must not be negative)", lo.pages)
	}
	f, err := filter.Compile(lo.filter)
	if err != nil {
		return err
	}

	a, err := loadApp(opts.configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.connect(); err != nil {
		return err
	}
	endpoint, err := a.resolveEndpoint(lo.category, lo.query)
	if err != nil {
		return err
	}

	a.logger.Info("listing", "endpoint", endpoint, "pages", lo.pages, "filter", f.String())

	state, err := catalog.Collect(cmd.Context(), a.newCoordinator(), endpoint, lo.pages, nil)
	if err != nil {
		return fmt.Errorf("failed to load listing: %w", err)
	}

	movies, err := f.Apply(state.Movies())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if lo.asJSON {
		return writeJSON(out, movies, a.cfg.Catalog.ImageBaseURL)
	}
	if err := writeTable(out, movies); err != nil {
		return err
	}

	total := 0
	if state.LastResponse != nil {
		total = state.LastResponse.TotalResults
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s (%d of %d pages loaded, %d shown)\n",
		domain.ResultsLabel(total), len(state.Pages), state.TotalPages(), len(movies))
	return nil
}

// listedMovie is the JSON shape of one listed movie.
type listedMovie struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date,omitempty"`
	Rating      float64 `json:"rating"`
	Votes       int     `json:"votes"`
	Popularity  float64 `json:"popularity"`
	Language    string  `json:"language,omitempty"`
	ImageURL    string  `json:"image_url,omitempty"`
	Overview    string  `json:"overview,omitempty"`
}

func writeJSON(w io.Writer, movies []domain.MovieSummary, imageBaseURL string) error {
	listed := make([]listedMovie, len(movies))
	for i, m := range movies {
		listed[i] = listedMovie{
			ID:          m.ID,
			Title:       m.Title,
			ReleaseDate: m.ReleaseDate,
			Rating:      m.VoteAverage,
			Votes:       m.VoteCount,
			Popularity:  m.Popularity,
			Language:    m.Language,
			ImageURL:    m.ImageURL(imageBaseURL, components.ImageSize),
			Overview:    m.Overview,
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(listed)
}

func writeTable(w io.Writer, movies []domain.MovieSummary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tRELEASED\tRATING\tVOTES")
	for _, m := range movies {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.1f\t%d\n", m.ID, m.Title, m.ReleaseDateLabel(), m.VoteAverage, m.VoteCount)
	}
	return tw.Flush()
}
