package main

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"subburn/internal/config"
	"subburn/internal/domain"
	"subburn/internal/history"
	"subburn/internal/media"
	"subburn/internal/models"
	"subburn/internal/pipeline"
	"subburn/internal/transcribe"
	"subburn/internal/translate"
)

// runFlags are the per-invocation overrides of the persisted settings.
type runFlags struct {
	noTranscribe bool
	translateTo  string
	noBurn       bool

	model      string
	sourceLang string
	outputDir  string
	uppercase  bool
}

func newRunCmd(a *app) *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run <video>",
		Short: "Run the subtitle pipeline on one video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJob(a, flags, cmd, args[0])
		},
	}

	cmd.Flags().BoolVar(&flags.noTranscribe, "no-transcribe", false, "reuse the .srt file next to the video instead of transcribing")
	cmd.Flags().StringVar(&flags.translateTo, "translate-to", "", "translate captions to this language before burning")
	cmd.Flags().BoolVar(&flags.noBurn, "no-burn", false, "stop after writing subtitle files")
	cmd.Flags().StringVar(&flags.model, "model", "", "whisper model to use (see `subburn models list`)")
	cmd.Flags().StringVar(&flags.sourceLang, "source-lang", "", "spoken language, or auto")
	cmd.Flags().StringVar(&flags.outputDir, "output-dir", "", "directory for subtitle and video outputs")
	cmd.Flags().BoolVar(&flags.uppercase, "uppercase", false, "burn captions in upper case")
	return cmd
}

// runJob wires the pipeline collaborators, starts the job, and renders
// progress until the terminal event arrives.
func runJob(a *app, flags *runFlags, cmd *cobra.Command, sourcePath string) error {
	settings := a.store.Get()
	if flags.model != "" {
		settings.Model = flags.model
	}
	if flags.sourceLang != "" {
		settings.SourceLanguage = flags.sourceLang
	}
	if flags.translateTo != "" {
		settings.TargetLanguage = flags.translateTo
	}
	if flags.outputDir != "" {
		settings.OutputDir = flags.outputDir
	}
	if cmd.Flags().Changed("uppercase") {
		settings.Uppercase = flags.uppercase
	}
	settings = config.Normalize(settings)

	stages := domain.StageSelection{
		Transcribe: !flags.noTranscribe,
		Translate:  flags.translateTo != "",
		Burn:       !flags.noBurn,
	}

	var translator translate.Translator
	if stages.Translate {
		apiKey := settings.TranslateAPIKey
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		engine, err := translate.NewOpenAI(apiKey, settings.TranslateAPIBase, settings.TranslateModel, a.logger)
		if err != nil {
			return err
		}
		translator = engine
	}

	store, err := history.Open(a.historyPath(), a.logger)
	if err != nil {
		return err
	}
	defer store.Close()

	runner := pipeline.NewRunner(pipeline.Options{
		Models:      models.NewCache(settings.ModelDir, a.logger),
		Video:       media.NewTools(a.logger),
		Transcriber: transcribe.NewWhisper(a.logger),
		Translator:  translator,
		Recorder:    store,
		Logger:      a.logger,
	})

	observer := newConsoleObserver()
	if _, err := runner.Start(pipeline.JobSpec{
		SourcePath: sourcePath,
		Stages:     stages,
		Settings:   settings,
		Observer:   observer,
	}); err != nil {
		return err
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signals)
	go func() {
		<-signals
		fmt.Fprintln(os.Stderr, "\ncancelling...")
		_ = runner.Cancel()
	}()

	runner.Wait()
	final := runner.Status()
	observer.flush()

	switch final.Status {
	case domain.JobStatusCompleted:
		fmt.Println("completed")
		if final.Outputs.SubtitlePath != "" {
			fmt.Println("  subtitles: ", final.Outputs.SubtitlePath)
		}
		if final.Outputs.TranslatedSubtitlePath != "" {
			fmt.Println("  translated:", final.Outputs.TranslatedSubtitlePath)
		}
		if final.Outputs.VideoPath != "" {
			fmt.Println("  video:     ", final.Outputs.VideoPath)
		}
		for _, warning := range final.Warnings {
			fmt.Printf("  warning (%s): %s\n", warning.Stage, warning.Message)
		}
		return nil
	case domain.JobStatusCancelled:
		return fmt.Errorf("job cancelled during %s", final.CurrentStage)
	default:
		return fmt.Errorf("job failed: %s", final.Err)
	}
}

// stageLabels are the human descriptions shown next to the progress bar.
var stageLabels = map[domain.Stage]string{
	domain.StageDownloadingModel: "downloading model",
	domain.StageExtractingAudio:  "extracting audio",
	domain.StageTranscribing:     "transcribing",
	domain.StageWritingSubtitles: "writing subtitles",
	domain.StageTranslating:      "translating",
	domain.StageBurning:          "burning subtitles",
}

// consoleObserver renders pipeline events. On a terminal it drives one
// progress bar per stage; otherwise it prints a line per stage.
type consoleObserver struct {
	interactive bool

	mu    sync.Mutex
	stage domain.Stage
	bar   *progressbar.ProgressBar
}

func newConsoleObserver() *consoleObserver {
	return &consoleObserver{
		interactive: isatty.IsTerminal(os.Stderr.Fd()),
	}
}

// OnProgress advances the current stage's bar, rolling over on stage
// transitions.
func (o *consoleObserver) OnProgress(event pipeline.ProgressEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	label := stageLabels[event.Stage]
	if label == "" {
		label = string(event.Stage)
	}

	if event.Stage != o.stage {
		o.finishBarLocked()
		o.stage = event.Stage
		if o.interactive {
			o.bar = progressbar.NewOptions(100,
				progressbar.OptionSetDescription(label),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionClearOnFinish(),
			)
		} else {
			fmt.Fprintf(os.Stderr, "%s...\n", label)
		}
	}

	if o.bar != nil {
		_ = o.bar.Set(int(event.Fraction * 100))
	}
}

// OnFinished closes any open bar; the summary is printed by the caller
// from the runner's final status.
func (o *consoleObserver) OnFinished(pipeline.TerminalEvent) {
	o.flush()
}

// flush finishes the active progress bar, if any.
func (o *consoleObserver) flush() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.finishBarLocked()
}

func (o *consoleObserver) finishBarLocked() {
	if o.bar != nil {
		_ = o.bar.Finish()
		o.bar = nil
	}
}
