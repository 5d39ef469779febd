package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/mmcdole/popcorn/internal/adapter"
	"github.com/mmcdole/popcorn/internal/browse"
	"github.com/mmcdole/popcorn/internal/metrics"
	"github.com/mmcdole/popcorn/internal/search"
	"github.com/mmcdole/popcorn/internal/tui"
)

// options are the flags shared by all commands.
type options struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "popcorn",
		Short: "Browse the movie catalog from your terminal",
		Long: `popcorn is a terminal movie browser. Listings load page by page as you
scroll, and responses are cached locally between runs.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default is ~/.config/popcorn/config.yaml)")

	root.AddCommand(
		newListCmd(opts),
		newWarmCmd(opts),
		newCacheCmd(opts),
		newSetupCmd(opts),
		newVersionCmd(),
	)
	return root
}

func runTUI(ctx context.Context, opts *options) error {
	if !isTerminal(os.Stdout) {
		return errors.New("popcorn needs a terminal; use `popcorn list` for scripted output")
	}

	a, err := loadApp(opts.configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	a.logger.Info("starting popcorn", "version", Version)

	// Check if configured
	if !a.cfg.IsConfigured() {
		return runSetupFlow(ctx, a, opts.configPath)
	}

	if err := a.connect(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	metrics.Serve(ctx, a.cfg.Metrics.Addr, a.logger)

	trigger := browse.NewScrollTrigger(a.cfg.Browse.SentinelIndex, a.cfg.Browse.VisibilityThreshold)
	model := tui.NewModel(
		ctx,
		a.newCoordinator(),
		trigger,
		search.NewService(a.store, a.logger),
		tui.Options{
			ImageBaseURL:    a.cfg.Catalog.ImageBaseURL,
			WebURL:          a.cfg.Catalog.WebURL,
			Columns:         a.cfg.UI.GridColumns,
			DefaultCategory: a.cfg.Browse.DefaultCategory,
			Open:            adapter.NewOpener(a.cfg.UI.OpenCommand, a.cfg.UI.OpenArgs, a.logger).Open,
		},
		a.logger,
	)

	// Run the TUI
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	a.logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		a.logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	a.logger.Info("shutting down")
	return nil
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "popcorn %s\n", Version)
		},
	}
}
