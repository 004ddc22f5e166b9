package commands

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/nmcassa/letterboxdpy-sub000/lib/scrapers/letterboxd/film"
	"github.com/nmcassa/letterboxdpy-sub000/lib/scrapers/letterboxd/user"
)

func init() {
	rootCmd.AddCommand(userCmd)
}

var userCmd = &cobra.Command{
	Use:   "user <username>",
	Short: "Prints a member's profile, stats and favorites.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		coreClient, err := newCoreClient(cmd.Context())
		if err != nil {
			fatal("failed to initialize client", err)
		}
		client := user.NewClient(coreClient, film.NewClient(coreClient, film.ClientOptions{}))

		profile, err := client.Profile(cmd.Context(), args[0])
		if err != nil {
			fatal("failed to fetch profile", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Field", "Value"})
		t.AppendRow(table.Row{"Username", profile.Username})
		t.AppendRow(table.Row{"Display name", profile.DisplayName})
		if profile.Location != "" {
			t.AppendRow(table.Row{"Location", profile.Location})
		}
		if profile.Website != "" {
			t.AppendRow(table.Row{"Website", profile.Website})
		}
		for name, value := range profile.Stats {
			t.AppendRow(table.Row{name, value})
		}
		if profile.WatchlistLength != nil {
			t.AppendRow(table.Row{"Watchlist", *profile.WatchlistLength})
		} else {
			t.AppendRow(table.Row{"Watchlist", "private"})
		}
		for i, favorite := range profile.Favorites {
			if i == 0 {
				t.AppendSeparator()
			}
			t.AppendRow(table.Row{"Favorite", favorite.Name})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
