package main

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"subburn/internal/language"
)

func newLanguagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List the transcription languages whisper accepts",
		RunE: func(cmd *cobra.Command, args []string) error {
			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Code", "Name"})
			for _, code := range language.Supported() {
				t.AppendRow(table.Row{code, language.DisplayName(code)})
			}
			t.Render()
			return nil
		},
	}
}
