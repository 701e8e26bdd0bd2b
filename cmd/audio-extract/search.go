package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/yourusername/audio-extract-go/internal/domain"
	"github.com/yourusername/audio-extract-go/internal/infrastructure"
)

func newSearchCommand(env *cliEnv) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "search <query | playlist-url>",
		Short: "Search videos or list a playlist",
		Long: `Search YouTube for videos matching a query, or list every video of a
playlist when given a playlist URL. The IDs can be passed to audio-extract.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := env.loadConfig()
			if err != nil {
				return err
			}
			log, events, err := newLoggers(config)
			if err != nil {
				return err
			}
			defer log.Sync()
			if events != nil {
				defer events.Close()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			searcher := infrastructure.NewYTDLPExtractor(&config.Extractor, config.Logging.LogsDir, log)
			results, err := domain.Lookup(ctx, searcher, strings.Join(args, " "), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(results)
			}
			if len(results) == 0 {
				fmt.Fprintln(out, "No videos found")
				return nil
			}
			fmt.Fprintln(out, renderSearchResults(results))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", domain.DefaultSearchLimit, "Maximum number of search results (playlists are listed in full)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")
	return cmd
}

func renderSearchResults(results []domain.SearchResult) string {
	rows := make([][]string, 0, len(results))
	for i, result := range results {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			result.ID,
			truncate(result.Title, 60),
			result.DurationString,
			truncate(result.Channel, 30),
		})
	}
	return renderTable(
		[]string{"#", "Video", "Title", "Duration", "Channel"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
	)
}
