package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"subburn/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and change settings",
	}
	cmd.AddCommand(newConfigShowCmd(a), newConfigSetCmd(a), newConfigPathCmd(a))
	return cmd
}

func newConfigShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.store.Get()

			apiKey := "(not set)"
			if s.TranslateAPIKey != "" {
				apiKey = "(set)"
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Key", "Value"})
			rows := []table.Row{
				{"whisper_model", s.Model},
				{"source_language", s.SourceLanguage},
				{"target_language", s.TargetLanguage},
				{"font_family", s.FontFamily},
				{"font_size", s.FontSize},
				{"font_color", s.FontColor},
				{"outline_color", s.OutlineColor},
				{"background_color", s.BackgroundColor},
				{"position", s.Position},
				{"uppercase", s.Uppercase},
				{"video_quality", s.VideoQuality},
				{"video_preset", s.VideoPreset},
				{"output_dir", s.OutputDir},
				{"model_dir", s.ModelDir},
				{"translate_api_base", s.TranslateAPIBase},
				{"translate_api_key", apiKey},
				{"translate_model", s.TranslateModel},
				{"log_level", s.LogLevel},
			}
			for _, row := range rows {
				t.AppendRow(row)
			}
			t.Render()
			return nil
		},
	}
}

func newConfigSetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting and persist it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := patchForKey(args[0], args[1])
			if err != nil {
				return err
			}
			if _, err := a.store.Update(patch); err != nil {
				return err
			}
			fmt.Printf("%s = %s\n", args[0], args[1])
			return nil
		},
	}
}

func newConfigPathCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the settings file location",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(a.store.Path())
			return nil
		},
	}
}

// patchForKey maps a settings key name to a single-field patch.
func patchForKey(key, value string) (config.Patch, error) {
	var patch config.Patch

	stringKeys := map[string]**string{
		"whisper_model":      &patch.Model,
		"source_language":    &patch.SourceLanguage,
		"target_language":    &patch.TargetLanguage,
		"font_family":        &patch.FontFamily,
		"font_color":         &patch.FontColor,
		"outline_color":      &patch.OutlineColor,
		"background_color":   &patch.BackgroundColor,
		"position":           &patch.Position,
		"video_preset":       &patch.VideoPreset,
		"output_dir":         &patch.OutputDir,
		"model_dir":          &patch.ModelDir,
		"translate_api_base": &patch.TranslateAPIBase,
		"translate_api_key":  &patch.TranslateAPIKey,
		"translate_model":    &patch.TranslateModel,
		"log_level":          &patch.LogLevel,
	}
	intKeys := map[string]**int{
		"font_size":     &patch.FontSize,
		"video_quality": &patch.VideoQuality,
	}

	switch {
	case stringKeys[key] != nil:
		*stringKeys[key] = &value
	case intKeys[key] != nil:
		n, err := strconv.Atoi(value)
		if err != nil {
			return config.Patch{}, fmt.Errorf("setting %s expects a number: %w", key, err)
		}
		*intKeys[key] = &n
	case key == "uppercase":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return config.Patch{}, fmt.Errorf("setting %s expects true or false: %w", key, err)
		}
		patch.Uppercase = &b
	default:
		known := make([]string, 0, len(stringKeys)+len(intKeys)+1)
		for k := range stringKeys {
			known = append(known, k)
		}
		for k := range intKeys {
			known = append(known, k)
		}
		known = append(known, "uppercase")
		sort.Strings(known)
		return config.Patch{}, fmt.Errorf("unknown setting %q, expected one of %s", key, strings.Join(known, ", "))
	}
	return patch, nil
}
