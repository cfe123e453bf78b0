package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"subburn/internal/domain"
	"subburn/internal/history"
)

func newJobsCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List recent pipeline runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := history.Open(a.historyPath(), a.logger)
			if err != nil {
				return err
			}
			defer store.Close()

			jobs, err := store.Recent(limit)
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"ID", "Source", "Stages", "Status", "Finished", "Detail"})
			for _, job := range jobs {
				t.AppendRow(table.Row{
					shortID(job.ID),
					filepath.Base(job.SourcePath),
					stagesLabel(job.Stages),
					string(job.Status),
					humanize.Time(job.FinishedAt),
					jobDetail(job),
				})
			}
			t.Render()
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to show")
	return cmd
}

// shortID trims a UUID for table display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// stagesLabel flattens the stage selection for display.
func stagesLabel(stages domain.StageSelection) string {
	var parts []string
	if stages.Transcribe {
		parts = append(parts, "transcribe")
	}
	if stages.Translate {
		parts = append(parts, "translate")
	}
	if stages.Burn {
		parts = append(parts, "burn")
	}
	return strings.Join(parts, "+")
}

// jobDetail picks the most useful one-line summary for a job row.
func jobDetail(job domain.Job) string {
	switch job.Status {
	case domain.JobStatusFailed:
		return job.Err
	case domain.JobStatusCompleted:
		if job.Outputs.VideoPath != "" {
			return job.Outputs.VideoPath
		}
		if job.Outputs.TranslatedSubtitlePath != "" {
			return job.Outputs.TranslatedSubtitlePath
		}
		return job.Outputs.SubtitlePath
	default:
		return ""
	}
}
