package commands

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/nmcassa/letterboxdpy-sub000/lib/scrapers/letterboxd/search"
)

var (
	searchFilter string
	searchAdult  bool
	searchMax    int
)

func init() {
	searchCmd.Flags().StringVar(&searchFilter, "filter", "", "Restrict results to one kind, e.g. films or members.")
	searchCmd.Flags().BoolVar(&searchAdult, "adult", false, "Include adult titles.")
	searchCmd.Flags().IntVar(&searchMax, "max", 40, "Maximum results to collect.")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Searches films, members, lists and more.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		coreClient, err := newCoreClient(cmd.Context())
		if err != nil {
			fatal("failed to initialize client", err)
		}
		client := search.NewClient(coreClient)

		response, err := client.Search(cmd.Context(), args[0], search.Options{
			Filter:   search.Filter(searchFilter),
			Adult:    searchAdult,
			MaxItems: searchMax,
		})
		if err != nil {
			fatal("search failed", err)
		}
		if !response.Available {
			fmt.Println("no results")
			return
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Kind", "Result", "URL"})
		for _, result := range response.Results {
			name, url := describeResult(result)
			t.AppendRow(table.Row{result.Type, name, url})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()

		fmt.Printf("%d results\n", response.Count)
	},
}

func describeResult(result search.Result) (string, string) {
	switch {
	case result.Film != nil:
		name := result.Film.Name
		if result.Film.Year != nil {
			name = fmt.Sprintf("%s (%d)", name, *result.Film.Year)
		}
		return name, result.Film.URL
	case result.Member != nil:
		return result.Member.DisplayName, result.Member.URL
	case result.Review != nil:
		return fmt.Sprintf("%s on %s", result.Review.Reviewer, result.Review.Movie.Name), result.Review.URL
	case result.List != nil:
		return result.List.Title, result.List.URL
	case result.Tag != nil:
		return result.Tag.Name, result.Tag.URL
	case result.Person != nil:
		return result.Person.Name, result.Person.URL
	case result.Studio != nil:
		return result.Studio.Name, result.Studio.URL
	case result.Story != nil:
		return result.Story.Name, result.Story.URL
	}
	return "", ""
}
