package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nmcassa/letterboxdpy-sub000/lib/scrapers/letterboxd/core"
	"github.com/nmcassa/letterboxdpy-sub000/lib/telemetry"
)

var rootCmd = &cobra.Command{
	Use:   "letterboxd-cli",
	Short: "letterboxd-cli scrapes letterboxd profiles, films, lists and search results.",
}

var (
	cookieFile string
	verbose    bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cookieFile, "cookies", "", "Path to a JSON cookie jar for authenticated calls.")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging.")
	cobra.OnInitialize(func() {
		if verbose {
			telemetry.InitSlog(true)
		}
	})
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newCoreClient builds the shared fetch client every subcommand goes
// through, importing the session cookie jar when one was given.
func newCoreClient(ctx context.Context) (*core.Client, error) {
	client, err := core.NewClient(ctx, core.ClientOptions{})
	if err != nil {
		return nil, err
	}
	if cookieFile != "" {
		cookies, err := core.LoadCookieFile(cookieFile)
		if err != nil {
			return nil, fmt.Errorf("load cookie jar: %w", err)
		}
		client.ImportCookies(cookies)
	}
	return client, nil
}

func fatal(msg string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}
