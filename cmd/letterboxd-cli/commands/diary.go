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
	diaryYear    int
	diaryWorkers int
	diaryRuntime bool
)

func init() {
	diaryCmd.Flags().IntVar(&diaryYear, "year", 0, "Limit the diary to one year.")
	diaryCmd.Flags().BoolVar(&diaryRuntime, "runtimes", false, "Enrich entries with film runtimes.")
	diaryCmd.Flags().IntVar(&diaryWorkers, "workers", 1, "Worker bound for runtime enrichment.")
	rootCmd.AddCommand(diaryCmd)
}

var diaryCmd = &cobra.Command{
	Use:   "diary <username>",
	Short: "Prints a member's diary entries.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		coreClient, err := newCoreClient(cmd.Context())
		if err != nil {
			fatal("failed to initialize client", err)
		}

		filmOpts := film.ClientOptions{}
		if diaryRuntime {
			memo, err := newRuntimeMemo()
			if err != nil {
				fatal("failed to open runtime memo", err)
			}
			defer memo.Close()
			filmOpts.RuntimeMemo = memo
		}
		client := user.NewClient(coreClient, film.NewClient(coreClient, filmOpts))

		result, err := client.Diary(cmd.Context(), args[0], user.DiaryOptions{
			Year:           diaryYear,
			EnrichRuntimes: diaryRuntime,
			MaxWorkers:     diaryWorkers,
		})
		if err != nil {
			fatal("failed to fetch diary", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Date", "Film", "Rating", "Rewatch", "Runtime"})
		result.Entries.Each(func(_ string, entry user.DiaryEntry) {
			rating := ""
			if entry.Rating != nil {
				rating = fmt.Sprintf("%.1f", float64(*entry.Rating)/2)
			}
			rewatch := ""
			if entry.Rewatched {
				rewatch = "yes"
			}
			runtime := ""
			if entry.Runtime != nil {
				runtime = fmt.Sprintf("%d min", *entry.Runtime)
			}
			t.AppendRow(table.Row{
				fmt.Sprintf("%04d-%02d-%02d", entry.Date.Year, entry.Date.Month, entry.Date.Day),
				entry.Movie.Name,
				rating,
				rewatch,
				runtime,
			})
		})
		t.SetStyle(table.StyleRounded)
		t.Render()

		fmt.Printf("%d entries over %d pages\n", result.Count, result.LastPage)
	},
}
