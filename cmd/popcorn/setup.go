package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mmcdole/popcorn/internal/adapter"
	"github.com/mmcdole/popcorn/internal/adapter/source"
	"github.com/mmcdole/popcorn/internal/browse"
	"github.com/mmcdole/popcorn/internal/catalog"
	"github.com/mmcdole/popcorn/internal/domain"
)

// maxKeyAttempts bounds the API key prompt loop.
const maxKeyAttempts = 3

func newSetupCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Store the catalog API key in the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts.configPath)
			if err != nil {
				return err
			}
			defer a.Close()
			return runSetupFlow(cmd.Context(), a, opts.configPath)
		},
	}
}

// runSetupFlow asks for an API key, checks it against the catalog and saves it.
func runSetupFlow(ctx context.Context, a *app, configPath string) error {
	fmt.Println()
	fmt.Println("Welcome to Popcorn!")
	fmt.Println()
	fmt.Println("Popcorn needs a TMDB API key (v3 auth).")
	fmt.Println("Create one at https://www.themoviedb.org/settings/api")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)
	for attempt := 1; ; attempt++ {
		apiKey, err := readAPIKey(reader)
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		if apiKey == "" {
			fmt.Println("API key cannot be empty. Please try again.")
			continue
		}

		fmt.Println("Checking key...")
		err = checkAPIKey(ctx, a, apiKey)
		if err == nil {
			a.cfg.Catalog.APIKey = apiKey
			break
		}

		fmt.Printf("✗ %v\n", err)
		if !errors.Is(err, domain.ErrAuthFailed) || attempt >= maxKeyAttempts {
			return fmt.Errorf("could not verify API key: %w", err)
		}
		fmt.Println("Please try again.")
		fmt.Println()
	}

	if err := adapter.SaveConfig(a.cfg, configPath); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println("✓ Configuration saved!")
	fmt.Println()
	fmt.Println("Run popcorn again to start browsing.")
	return nil
}

// readAPIKey reads a key without echo when stdin is a terminal.
func readAPIKey(reader *bufio.Reader) (string, error) {
	fmt.Print("API key: ")
	if isTerminal(os.Stdin) {
		keyBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println() // Add newline after hidden input
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(keyBytes)), nil
	}

	input, err := reader.ReadString('\n')
	if err != nil && input == "" {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// checkAPIKey loads the first page of the first category, uncached.
func checkAPIKey(ctx context.Context, a *app, apiKey string) error {
	cfg := a.cfg.Catalog
	cfg.APIKey = apiKey
	repo, err := source.NewCatalog(&cfg, a.logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	coord := browse.NewCoordinator(repo, apiKey, a.logger)
	_, err = coord.Fetch(ctx, browse.FirstPage(catalog.Categories[0].Endpoint))
	return err
}
