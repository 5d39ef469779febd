package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCacheCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the response cache",
	}
	cmd.AddCommand(newCacheInfoCmd(opts), newCacheClearCmd(opts))
	return cmd
}

func newCacheInfoCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show where the cache lives and what it holds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts.configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			if a.cfg.CachePath() == "" {
				fmt.Fprintln(out, "cache is disabled")
				return nil
			}
			if err := a.openStore(); err != nil {
				return err
			}
			fmt.Fprintf(out, "dir:        %s\n", a.cfg.CachePath())
			fmt.Fprintf(out, "ttl:        %s\n", a.cfg.Cache.TTL)
			fmt.Fprintf(out, "responses:  %d\n", a.store.ResponseCount())
			fmt.Fprintf(out, "searches:   %d\n", len(a.store.RecentQueries()))
			return nil
		},
	}
}

func newCacheClearCmd(opts *options) *cobra.Command {
	var history bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Drop cached responses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts.configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.cfg.CachePath() == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "cache is disabled")
				return nil
			}
			if err := a.openStore(); err != nil {
				return err
			}

			count := a.store.ResponseCount()
			a.store.InvalidateAll()
			if history {
				a.store.ClearHistory()
			}
			a.logger.Info("cache cleared", "responses", count, "history", history)

			fmt.Fprintf(cmd.OutOrStdout(), "removed %d cached responses\n", count)
			return nil
		},
	}

	cmd.Flags().BoolVar(&history, "history", false, "also forget search history")
	return cmd
}
