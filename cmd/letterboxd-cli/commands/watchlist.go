package commands

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/nmcassa/letterboxdpy-sub000/lib/scrapers/letterboxd/film"
	"github.com/nmcassa/letterboxdpy-sub000/lib/scrapers/letterboxd/user"
)

var (
	watchlistGenres []string
	watchlistDecade string
	watchlistYear   string
)

func init() {
	watchlistCmd.Flags().StringSliceVar(&watchlistGenres, "genre", nil, "Filter by genre; prefix with - to exclude.")
	watchlistCmd.Flags().StringVar(&watchlistDecade, "decade", "", "Filter by decade, e.g. 1990s.")
	watchlistCmd.Flags().StringVar(&watchlistYear, "release-year", "", "Filter by release year.")
	rootCmd.AddCommand(watchlistCmd)
}

var watchlistCmd = &cobra.Command{
	Use:   "watchlist <username>",
	Short: "Prints a member's watchlist.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		coreClient, err := newCoreClient(cmd.Context())
		if err != nil {
			fatal("failed to initialize client", err)
		}
		client := user.NewClient(coreClient, film.NewClient(coreClient, film.ClientOptions{}))

		result, err := client.Watchlist(cmd.Context(), args[0], user.WatchlistOptions{
			Filters: user.WatchlistFilters{
				Genres: watchlistGenres,
				Decade: watchlistDecade,
				Year:   watchlistYear,
			},
		})
		if err != nil {
			fatal("failed to fetch watchlist", err)
		}
		if !result.Available {
			fmt.Println("watchlist is private")
			return
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"No", "Film", "Year"})
		result.Data.Each(func(_ string, entry user.WatchlistEntry) {
			year := ""
			if entry.Year != nil {
				year = fmt.Sprintf("%d", *entry.Year)
			}
			t.AppendRow(table.Row{entry.No, entry.Name, year})
		})
		t.SetStyle(table.StyleRounded)
		t.Render()

		fmt.Printf("%d films\n", result.Count)
	},
}
