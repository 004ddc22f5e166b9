package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/nmcassa/letterboxdpy-sub000/lib/scrapers/letterboxd/extract"
	"github.com/nmcassa/letterboxdpy-sub000/lib/scrapers/letterboxd/list"
)

func init() {
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list <owner> <slug>",
	Short: "Prints a published list's metadata and films.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		coreClient, err := newCoreClient(cmd.Context())
		if err != nil {
			fatal("failed to initialize client", err)
		}
		client := list.NewClient(coreClient)

		result, err := client.Get(cmd.Context(), args[0], args[1], list.Options{})
		if err != nil {
			fatal("failed to fetch list", err)
		}

		fmt.Printf("%s by %s (%d films)\n", result.Metadata.Title, result.Metadata.Owner, result.Metadata.Count)
		if len(result.Metadata.Tags) > 0 {
			fmt.Printf("tags: %s\n", strings.Join(result.Metadata.Tags, ", "))
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Film", "Year", "URL"})
		result.Movies.Each(func(_ string, movie extract.MovieSummary) {
			year := ""
			if movie.Year != nil {
				year = fmt.Sprintf("%d", *movie.Year)
			}
			t.AppendRow(table.Row{movie.Name, year, movie.URL})
		})
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
