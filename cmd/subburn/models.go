package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"subburn/internal/models"
)

func newModelsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "Manage whisper models",
	}
	cmd.AddCommand(newModelsListCmd(a), newModelsDownloadCmd(a))
	return cmd
}

func newModelsListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available models and their download state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache := models.NewCache(a.store.Get().ModelDir, a.logger)

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"ID", "Name", "Size", "Status", "Description"})
			for _, model := range models.Catalog() {
				status := "-"
				size := humanize.Bytes(uint64(model.SizeBytes))
				if asset, err := cache.Asset(model.ID); err == nil && asset.Present {
					status = "downloaded"
					size = humanize.Bytes(uint64(asset.SizeBytes))
				}
				t.AppendRow(table.Row{model.ID, model.Name, size, status, model.Description})
			}
			t.Render()
			return nil
		},
	}
}

func newModelsDownloadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "download <id>",
		Short: "Download a model into the local cache",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			modelID := args[0]
			cache := models.NewCache(a.store.Get().ModelDir, a.logger)
			if cache.IsPresent(modelID) {
				fmt.Printf("model %s is already downloaded\n", modelID)
				return nil
			}

			bar := progressbar.NewOptions(100,
				progressbar.OptionSetDescription("downloading "+modelID),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionClearOnFinish(),
			)
			asset, err := cache.EnsureDownloaded(cmd.Context(), modelID, func(fraction float64) {
				_ = bar.Set(int(fraction * 100))
			})
			_ = bar.Finish()
			if err != nil {
				return err
			}

			fmt.Printf("downloaded %s (%s) to %s\n", asset.ID, humanize.Bytes(uint64(asset.SizeBytes)), asset.LocalPath)
			return nil
		},
	}
}
