package main

import (
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"subburn/internal/config"
	"subburn/internal/logging"
)

// app carries the state shared by every subcommand: the logger and the
// settings store, both built once in the persistent pre-run hook.
type app struct {
	configPath string
	logLevel   string
	logFormat  string
	logFile    string

	logger *slog.Logger
	store  *config.Store
}

// init builds the logger and loads settings. Flag values win over the
// persisted log level.
func (a *app) init() error {
	settings := config.NewStore(a.configPath, slog.Default()).Get()

	level := a.logLevel
	if level == "" {
		level = settings.LogLevel
	}
	logger, err := logging.New(logging.Options{
		Level:   level,
		Format:  a.logFormat,
		LogFile: a.logFile,
	})
	if err != nil {
		return err
	}

	a.logger = logger
	a.store = config.NewStore(a.configPath, logger)
	return nil
}

// historyPath is the job archive location, next to the settings file.
func (a *app) historyPath() string {
	return filepath.Join(filepath.Dir(a.configPath), "history.db")
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "subburn",
		Short:         "Transcribe, translate, and burn subtitles into videos",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", config.DefaultPath(), "settings file path")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&a.logFormat, "log-format", "text", "log format (text or json)")
	cmd.PersistentFlags().StringVar(&a.logFile, "log-file", "", "also write logs to this file")

	cmd.AddCommand(
		newRunCmd(a),
		newModelsCmd(a),
		newConfigCmd(a),
		newJobsCmd(a),
		newLanguagesCmd(),
		newDoctorCmd(a),
	)
	return cmd
}
