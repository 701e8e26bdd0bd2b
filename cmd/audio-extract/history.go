package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/yourusername/audio-extract-go/internal/domain"
	"github.com/yourusername/audio-extract-go/internal/infrastructure"
)

func newHistoryCommand(env *cliEnv) *cobra.Command {
	var status string
	var videoID string
	var limit int
	var showStats bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past jobs from the history database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := env.loadConfig()
			if err != nil {
				return err
			}
			if !config.History.Enabled {
				return errors.New("history is disabled (set history.enabled: true)")
			}

			repo, err := infrastructure.NewSQLiteJobRepository(config.History.DatabasePath)
			if err != nil {
				return err
			}
			defer repo.Close()

			out := cmd.OutOrStdout()
			if showStats {
				stats, err := repo.GetStats()
				if err != nil {
					return err
				}
				fmt.Fprintln(out, renderStats(stats))
				return nil
			}

			jobs, err := findJobs(repo, videoID, status, limit)
			if err != nil {
				return err
			}
			if len(jobs) == 0 {
				fmt.Fprintln(out, "No jobs recorded")
				return nil
			}
			fmt.Fprintln(out, renderHistory(jobs))
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status (queued, processing, completed, failed, cancelled)")
	cmd.Flags().StringVar(&videoID, "video-id", "", "Filter by video ID")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of jobs to show (0 for all)")
	cmd.Flags().BoolVar(&showStats, "stats", false, "Show job counts by status")
	return cmd
}

// findJobs lists recorded jobs, newest first
func findJobs(repo domain.JobRepository, videoID, status string, limit int) ([]*domain.Job, error) {
	if videoID == "" {
		filters := make(map[string]interface{})
		if status != "" {
			filters["status"] = status
		}
		return repo.FindAll(filters, limit)
	}

	all, err := repo.FindByVideoID(videoID)
	if err != nil {
		return nil, err
	}
	jobs := make([]*domain.Job, 0, len(all))
	for _, job := range all {
		if status != "" && string(job.Status) != status {
			continue
		}
		jobs = append(jobs, job)
		if limit > 0 && len(jobs) == limit {
			break
		}
	}
	return jobs, nil
}

func renderHistory(jobs []*domain.Job) string {
	rows := make([][]string, 0, len(jobs))
	for _, job := range jobs {
		detail := job.FilePath
		if job.Status != domain.StatusCompleted {
			detail = job.ErrorMessage
		}
		rows = append(rows, []string{
			shortID(job.ID),
			job.VideoID,
			string(job.Status),
			truncate(job.Title, 40),
			truncate(detail, 60),
			job.CreatedAt.Local().Format(time.DateTime),
		})
	}
	return renderTable(
		[]string{"ID", "Video", "Status", "Title", "File / Error", "Created"},
		rows,
		nil,
	)
}

func renderStats(stats *domain.JobStats) string {
	rows := [][]string{
		{"Completed", strconv.FormatInt(stats.Completed, 10)},
		{"Failed", strconv.FormatInt(stats.Failed, 10)},
		{"Cancelled", strconv.FormatInt(stats.Cancelled, 10)},
		{"Processing", strconv.FormatInt(stats.Processing, 10)},
		{"Queued", strconv.FormatInt(stats.Queued, 10)},
		{"Total", strconv.FormatInt(stats.Total, 10)},
	}
	return renderTable([]string{"Status", "Jobs"}, rows, []columnAlignment{alignLeft, alignRight})
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// truncate shortens s to maxLen runes
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
