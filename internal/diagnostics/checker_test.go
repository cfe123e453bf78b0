package diagnostics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"subburn/internal/config"
)

// TestCheckerRunAllPass validates the happy-path report.
func TestCheckerRunAllPass(t *testing.T) {
	root := t.TempDir()
	modelDir := filepath.Join(root, "models")
	if err := os.MkdirAll(modelDir, 0o755); err != nil {
		t.Fatalf("mkdir models: %v", err)
	}
	if err := os.WriteFile(filepath.Join(modelDir, "ggml-base.bin"), []byte("stub"), 0o644); err != nil {
		t.Fatalf("write model: %v", err)
	}

	checker := NewCheckerForTests(
		func(name string) (string, error) { return "/usr/local/bin/" + name, nil },
		os.Stat,
		os.ReadDir,
		os.MkdirAll,
		os.CreateTemp,
		os.Remove,
	)

	settings := config.DefaultSettings()
	settings.ModelDir = modelDir
	settings.OutputDir = filepath.Join(root, "output")
	settings.TranslateAPIKey = "sk-test"

	report := checker.Run(settings)
	if report.HasFailures {
		t.Fatalf("expected no failures, got %+v", report.Items)
	}
}

// TestCheckerRunMissingToolsAndPaths validates failure reporting.
func TestCheckerRunMissingToolsAndPaths(t *testing.T) {
	checker := NewCheckerForTests(
		func(string) (string, error) { return "", errors.New("not found") },
		os.Stat,
		os.ReadDir,
		os.MkdirAll,
		os.CreateTemp,
		os.Remove,
	)

	settings := config.DefaultSettings()
	settings.ModelDir = ""
	settings.OutputDir = ""

	report := checker.Run(settings)
	if !report.HasFailures {
		t.Fatal("expected failures")
	}

	assertStatusByID(t, report, "tool_ffmpeg", StatusFail)
	assertStatusByID(t, report, "tool_ffprobe", StatusFail)
	assertStatusByID(t, report, "tool_whisper.cpp", StatusFail)
	assertStatusByID(t, report, "model_dir", StatusFail)
	assertStatusByID(t, report, "output_dir", StatusFail)
}

// TestCheckerEmptyModelDirWarns validates the soft model-dir check.
func TestCheckerEmptyModelDirWarns(t *testing.T) {
	root := t.TempDir()
	modelDir := filepath.Join(root, "models")
	if err := os.MkdirAll(modelDir, 0o755); err != nil {
		t.Fatalf("mkdir models: %v", err)
	}
	if err := os.WriteFile(filepath.Join(modelDir, "README.txt"), []byte("no model"), 0o644); err != nil {
		t.Fatalf("write readme: %v", err)
	}

	checker := NewCheckerForTests(
		func(name string) (string, error) { return "/usr/local/bin/" + name, nil },
		os.Stat,
		os.ReadDir,
		os.MkdirAll,
		os.CreateTemp,
		os.Remove,
	)

	settings := config.DefaultSettings()
	settings.ModelDir = modelDir
	settings.OutputDir = filepath.Join(root, "output")

	report := checker.Run(settings)
	if report.HasFailures {
		t.Fatalf("empty model dir must not fail, got %+v", report.Items)
	}
	assertStatusByID(t, report, "model_dir", StatusWarn)
}

// TestCheckerTranslationStates validates the optional translation check.
func TestCheckerTranslationStates(t *testing.T) {
	checker := NewCheckerForTests(
		func(name string) (string, error) { return "/usr/local/bin/" + name, nil },
		os.Stat,
		os.ReadDir,
		os.MkdirAll,
		os.CreateTemp,
		os.Remove,
	)

	settings := config.DefaultSettings()
	settings.ModelDir = t.TempDir()
	settings.OutputDir = t.TempDir()

	report := checker.Run(settings)
	assertStatusByID(t, report, "translation", StatusWarn)

	settings.TranslateAPIKey = "sk-test"
	settings.TranslateModel = ""
	report = checker.Run(settings)
	assertStatusByID(t, report, "translation", StatusFail)
}

// assertStatusByID checks status for one diagnostic item by ID.
func assertStatusByID(t *testing.T, report Report, id string, want Status) {
	t.Helper()
	for _, item := range report.Items {
		if item.ID == id {
			if item.Status != want {
				t.Fatalf("item %s: got %s, want %s", id, item.Status, want)
			}
			return
		}
	}
	t.Fatalf("diagnostic item not found: %s", id)
}
