package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"subburn/internal/diagnostics"
)

func newDoctorCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check external tools and configured paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			report := diagnostics.NewChecker().Run(a.store.Get())

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Status", "Check", "Message"})
			for _, item := range report.Items {
				message := item.Message
				if item.Hint != "" {
					message = fmt.Sprintf("%s\n%s", item.Message, item.Hint)
				}
				t.AppendRow(table.Row{string(item.Status), item.Name, message})
			}
			t.Render()

			if report.HasFailures {
				return errors.New("some checks failed")
			}
			return nil
		},
	}
}
