package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"
	"github.com/yourusername/audio-extract-go/pkg/logger"
)

func newLogsCommand(env *cliEnv) *cobra.Command {
	var date string
	var query string
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:       "logs [job|error]",
		Short:     "Show categorized event logs",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: categoryNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := env.loadConfig()
			if err != nil {
				return err
			}
			if config.Logging.LogsDir == "" {
				return errors.New("event logs are disabled (set logging.logs_dir)")
			}

			category := logger.LogCategory(args[0])
			day := time.Now()
			if date != "" {
				day, err = time.ParseInLocation(time.DateOnly, date, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --date %q, use YYYY-MM-DD", date)
				}
			}

			reader := logger.NewLogReader(config.Logging.LogsDir)
			var entries []logger.LogEntry
			if query != "" {
				entries, err = reader.SearchLogs(category, day, query, limit)
			} else {
				entries, err = reader.ReadLogs(category, day, limit)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				for _, entry := range entries {
					if err := enc.Encode(entry); err != nil {
						return err
					}
				}
				return nil
			}
			if len(entries) == 0 {
				fmt.Fprintf(out, "No %s log entries for %s\n", category, day.Format(time.DateOnly))
				return nil
			}
			fmt.Fprintln(out, renderLogEntries(entries))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Day to read (YYYY-MM-DD, default today)")
	cmd.Flags().StringVarP(&query, "search", "s", "", "Only show entries containing this text")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Show the last N entries (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print entries as JSON lines")
	return cmd
}

func categoryNames() []string {
	names := make([]string, 0, len(logger.Categories))
	for _, category := range logger.Categories {
		names = append(names, string(category))
	}
	slices.Sort(names)
	return names
}

func renderLogEntries(entries []logger.LogEntry) string {
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, []string{entry.Timestamp, entry.Level, entry.Message, formatFields(entry.Fields)})
	}
	return renderTable([]string{"Time", "Level", "Message", "Fields"}, rows, nil)
}

func formatFields(fields map[string]interface{}) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	var out string
	for i, key := range keys {
		if i > 0 {
			out += " "
		}
		out += fmt.Sprintf("%s=%v", key, fields[key])
	}
	return truncate(out, 80)
}
