package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/nmcassa/letterboxdpy-sub000/lib/scrapers/letterboxd/film"
)

func init() {
	rootCmd.AddCommand(movieCmd)
}

var movieCmd = &cobra.Command{
	Use:   "movie <slug>",
	Short: "Prints a film's full profile.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		coreClient, err := newCoreClient(cmd.Context())
		if err != nil {
			fatal("failed to initialize client", err)
		}
		client := film.NewClient(coreClient, film.ClientOptions{})

		profile, err := client.Profile(cmd.Context(), args[0])
		if err != nil {
			fatal("failed to fetch film", err)
		}
		// newer pages load the details tab lazily, so it may need its own fetch
		if len(profile.AlternativeTitles) == 0 {
			if details, err := client.Details(cmd.Context(), args[0]); err == nil {
				profile.AlternativeTitles = details.AlternativeTitles
			}
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Field", "Value"})
		t.AppendRow(table.Row{"Name", profile.Name})
		if profile.Year != nil {
			t.AppendRow(table.Row{"Year", *profile.Year})
		}
		if len(profile.Directors) > 0 {
			t.AppendRow(table.Row{"Directors", strings.Join(profile.Directors, ", ")})
		}
		if len(profile.Genres) > 0 {
			t.AppendRow(table.Row{"Genres", strings.Join(profile.Genres, ", ")})
		}
		if profile.Runtime != nil {
			t.AppendRow(table.Row{"Runtime", fmt.Sprintf("%d min", *profile.Runtime)})
		}
		if len(profile.AlternativeTitles) > 0 {
			t.AppendRow(table.Row{"Also known as", strings.Join(profile.AlternativeTitles, ", ")})
		}
		if profile.Tagline != "" {
			t.AppendRow(table.Row{"Tagline", profile.Tagline})
		}
		if profile.Description != "" {
			t.AppendRow(table.Row{"Description", profile.Description})
		}
		t.AppendRow(table.Row{"URL", profile.URL})
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
