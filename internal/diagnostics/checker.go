// Package diagnostics verifies the external tools and filesystem paths a
// pipeline run depends on, producing a report the doctor command prints.
package diagnostics

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"subburn/internal/config"
)

// Status grades one diagnostic item.
type Status string

const (
	StatusPass Status = "pass"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

// Item is one named check result.
type Item struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Status  Status `json:"status"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

// Report aggregates every check result.
type Report struct {
	GeneratedAt time.Time `json:"generatedAt"`
	HasFailures bool      `json:"hasFailures"`
	Items       []Item    `json:"items"`
}

// Checker validates external tools and required filesystem paths.
type Checker struct {
	lookPath   func(string) (string, error)
	stat       func(string) (os.FileInfo, error)
	readDir    func(string) ([]os.DirEntry, error)
	mkdirAll   func(string, os.FileMode) error
	createTemp func(string, string) (*os.File, error)
	remove     func(string) error
}

// NewChecker builds a checker using real OS dependencies.
func NewChecker() *Checker {
	return &Checker{
		lookPath:   exec.LookPath,
		stat:       os.Stat,
		readDir:    os.ReadDir,
		mkdirAll:   os.MkdirAll,
		createTemp: os.CreateTemp,
		remove:     os.Remove,
	}
}

// Run executes all checks against the current settings.
func (c *Checker) Run(settings config.Settings) Report {
	items := []Item{
		c.checkTool("ffmpeg"),
		c.checkTool("ffprobe"),
		c.checkTool("whisper.cpp"),
		c.checkModelDir(settings.ModelDir),
		c.checkOutputDir(settings.OutputDir),
		c.checkTranslation(settings),
	}

	hasFailures := false
	for _, item := range items {
		if item.Status == StatusFail {
			hasFailures = true
			break
		}
	}

	return Report{
		GeneratedAt: time.Now().UTC(),
		HasFailures: hasFailures,
		Items:       items,
	}
}

// checkTool verifies a required CLI executable is on PATH.
func (c *Checker) checkTool(name string) Item {
	path, err := c.lookPath(name)
	if err != nil {
		return Item{
			ID:      "tool_" + name,
			Name:    name,
			Status:  StatusFail,
			Message: fmt.Sprintf("Tool not found in PATH: %s", name),
			Hint:    "Install it and ensure the binary is available on PATH before starting a job.",
		}
	}

	return Item{
		ID:      "tool_" + name,
		Name:    name,
		Status:  StatusPass,
		Message: fmt.Sprintf("Found at %s", path),
	}
}

// checkModelDir validates the model cache directory. A missing directory
// is only a warning; the pipeline creates it on first download.
func (c *Checker) checkModelDir(modelDir string) Item {
	item := Item{
		ID:   "model_dir",
		Name: "Model directory",
	}

	if strings.TrimSpace(modelDir) == "" {
		item.Status = StatusFail
		item.Message = "Model directory is not configured."
		item.Hint = "Set model_dir to a directory where downloaded models can live."
		return item
	}

	info, err := c.stat(modelDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			item.Status = StatusWarn
			item.Message = fmt.Sprintf("Model directory does not exist yet: %s", modelDir)
			item.Hint = "It will be created on the first model download."
			return item
		}
		item.Status = StatusFail
		item.Message = fmt.Sprintf("Cannot access model directory: %s", modelDir)
		item.Hint = "Check permissions for the model directory."
		return item
	}
	if !info.IsDir() {
		item.Status = StatusFail
		item.Message = fmt.Sprintf("Model path is not a directory: %s", modelDir)
		item.Hint = "Point model_dir at a directory, not a file."
		return item
	}

	entries, err := c.readDir(modelDir)
	if err != nil {
		item.Status = StatusFail
		item.Message = fmt.Sprintf("Cannot read model directory: %s", modelDir)
		item.Hint = "Check permissions for the model directory."
		return item
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.ToLower(filepath.Ext(entry.Name())) == ".bin" {
			item.Status = StatusPass
			item.Message = fmt.Sprintf("Model directory has downloaded models: %s", modelDir)
			return item
		}
	}

	item.Status = StatusWarn
	item.Message = fmt.Sprintf("No downloaded models in %s", modelDir)
	item.Hint = "Run `subburn models download <id>` or let the first job download one."
	return item
}

// checkOutputDir validates output directory existence and write access.
func (c *Checker) checkOutputDir(outputDir string) Item {
	item := Item{
		ID:   "output_dir",
		Name: "Output directory",
	}

	if strings.TrimSpace(outputDir) == "" {
		item.Status = StatusFail
		item.Message = "Output directory is not configured."
		item.Hint = "Set output_dir to a directory where subtitle and video files can be written."
		return item
	}

	if err := c.mkdirAll(outputDir, 0o755); err != nil {
		item.Status = StatusFail
		item.Message = fmt.Sprintf("Cannot create output directory: %s", outputDir)
		item.Hint = "Choose a writable location or adjust filesystem permissions."
		return item
	}

	tmpFile, err := c.createTemp(outputDir, ".write-check-*")
	if err != nil {
		item.Status = StatusFail
		item.Message = fmt.Sprintf("Output directory is not writable: %s", outputDir)
		item.Hint = "Choose a writable directory for job outputs."
		return item
	}

	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()
	_ = c.remove(tmpPath)

	item.Status = StatusPass
	item.Message = fmt.Sprintf("Writable directory: %s", outputDir)
	return item
}

// checkTranslation reports whether the translation engine is usable.
// Translation is optional, so a missing key is a warning, not a failure.
func (c *Checker) checkTranslation(settings config.Settings) Item {
	item := Item{
		ID:   "translation",
		Name: "Translation engine",
	}

	if strings.TrimSpace(settings.TranslateAPIKey) == "" {
		item.Status = StatusWarn
		item.Message = "No translation API key configured."
		item.Hint = "Set translate_api_key to enable the translation stage."
		return item
	}
	if strings.TrimSpace(settings.TranslateModel) == "" {
		item.Status = StatusFail
		item.Message = "Translation API key is set but translate_model is empty."
		item.Hint = "Set translate_model to the chat model the endpoint serves."
		return item
	}

	item.Status = StatusPass
	item.Message = fmt.Sprintf("Configured for %s via %s", settings.TranslateModel, settings.TranslateAPIBase)
	return item
}

// NewCheckerForTests creates a checker with injectable dependencies.
func NewCheckerForTests(
	lookPath func(string) (string, error),
	stat func(string) (os.FileInfo, error),
	readDir func(string) ([]os.DirEntry, error),
	mkdirAll func(string, os.FileMode) error,
	createTemp func(string, string) (*os.File, error),
	remove func(string) error,
) *Checker {
	return &Checker{
		lookPath:   lookPath,
		stat:       stat,
		readDir:    readDir,
		mkdirAll:   mkdirAll,
		createTemp: createTemp,
		remove:     remove,
	}
}
