package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mmcdole/popcorn/internal/catalog"
)

// warmResult is the outcome of warming one category.
type warmResult struct {
	pages  int
	movies int
	err    error
}

func newWarmCmd(opts *options) *cobra.Command {
	var pages, concurrency int

	cmd := &cobra.Command{
		Use:   "warm",
		Short: "Pre-fetch the first pages of every category into the cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWarm(cmd, opts, pages, concurrency)
		},
	}

	cmd.Flags().IntVarP(&pages, "pages", "p", 3, "pages to fetch per category")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "j", 2, "categories fetched at once")
	return cmd
}

func runWarm(cmd *cobra.Command, opts *options, pages, concurrency int) error {
	if pages < 1 {
		return fmt.Errorf("invalid --pages: %d (must be at least 1)", pages)
	}
	if concurrency < 1 {
		concurrency = 1
	}

	a, err := loadApp(opts.configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.connect(); err != nil {
		return err
	}
	if a.cfg.CachePath() == "" {
		fmt.Fprintln(cmd.ErrOrStderr(), "cache is disabled; responses are kept for this run only")
	}

	errOut := cmd.ErrOrStderr()
	bar := progressbar.NewOptions(len(catalog.Categories)*pages,
		progressbar.OptionSetWriter(errOut),
		progressbar.OptionSetDescription("warming cache"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetVisibility(writerIsTerminal(errOut)),
	)

	results := make([]warmResult, len(catalog.Categories))

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(concurrency)

	for i, c := range catalog.Categories {
		g.Go(func() error {
			// Each category gets its own coordinator; they share the cache
			state, err := catalog.Collect(ctx, a.newCoordinator(), c.Endpoint, pages, func(loaded, total int) {
				_ = bar.Add(1)
			})
			results[i] = warmResult{pages: len(state.Pages), movies: state.MovieCount(), err: err}
			if err != nil {
				a.logger.Warn("warm-up failed", "category", c.ID, "error", err)
			}
			// Keep warming the other categories
			return nil
		})
	}

	_ = g.Wait()
	_ = bar.Finish()
	fmt.Fprintln(errOut)

	out := cmd.OutOrStdout()
	var errs []error
	for i, c := range catalog.Categories {
		r := results[i]
		if r.err != nil {
			fmt.Fprintf(out, "%-12s failed: %v\n", c.ID, r.err)
			errs = append(errs, fmt.Errorf("%s: %w", c.ID, r.err))
			continue
		}
		fmt.Fprintf(out, "%-12s %d pages, %d movies\n", c.ID, r.pages, r.movies)
	}
	fmt.Fprintf(out, "cache holds %d responses\n", a.store.ResponseCount())

	if len(errs) == len(catalog.Categories) {
		return fmt.Errorf("warm-up failed: %w", errors.Join(errs...))
	}
	return nil
}

// writerIsTerminal reports whether w is a terminal file.
func writerIsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isTerminal(f)
}
