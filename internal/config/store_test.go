package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestDefaultSettingsAreValid verifies baseline defaults pass validation.
func TestDefaultSettingsAreValid(t *testing.T) {
	if err := Validate(Normalize(DefaultSettings())); err != nil {
		t.Fatalf("defaults failed validation: %v", err)
	}
}

// TestStoreLoadMissingReturnsDefaults checks first-run behavior.
func TestStoreLoadMissingReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "settings.toml")
	store := NewStore(path, nil)

	got := store.Get()
	if got.Model != "base" {
		t.Fatalf("model = %q, want base", got.Model)
	}
	if got.SourceLanguage != "auto" {
		t.Fatalf("source language = %q, want auto", got.SourceLanguage)
	}
}

// TestStoreLoadCorruptReturnsDefaults checks the never-fail load contract.
func TestStoreLoadCorruptReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	if err := os.WriteFile(path, []byte("{not toml at all"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	store := NewStore(path, nil)
	if got := store.Get(); got.FontSize != 24 {
		t.Fatalf("font size = %d, want default 24", got.FontSize)
	}
}

// TestStoreLoadIgnoresUnknownKeys checks forward compatibility.
func TestStoreLoadIgnoresUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	body := "whisper_model = \"small\"\nfuture_option = \"whatever\"\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	store := NewStore(path, nil)
	got := store.Get()
	if got.Model != "small" {
		t.Fatalf("model = %q, want small", got.Model)
	}
	if got.VideoQuality != 23 {
		t.Fatalf("video quality = %d, want default 23", got.VideoQuality)
	}
}

// TestStoreUpdatePersistsImmediately checks the save-on-change lifecycle.
func TestStoreUpdatePersistsImmediately(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "settings.toml")
	store := NewStore(path, nil)

	model := "small"
	size := 32
	if _, err := store.Update(Patch{Model: &model, FontSize: &size}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	reloaded := NewStore(path, nil).Get()
	if reloaded.Model != "small" || reloaded.FontSize != 32 {
		t.Fatalf("persisted settings = %+v", reloaded)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read settings file: %v", err)
	}
	if !strings.Contains(string(data), "whisper_model = 'small'") &&
		!strings.Contains(string(data), `whisper_model = "small"`) {
		t.Fatalf("settings file missing model key: %s", data)
	}
}

// TestStoreUpdateRejectsOutOfRange checks validation and rollback.
func TestStoreUpdateRejectsOutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	store := NewStore(path, nil)

	size := 5
	_, err := store.Update(Patch{FontSize: &size})
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	if validationErr.Key != "font_size" {
		t.Fatalf("key = %q, want font_size", validationErr.Key)
	}

	if got := store.Get(); got.FontSize != 24 {
		t.Fatalf("font size = %d, want unchanged 24", got.FontSize)
	}
	if _, statErr := os.Stat(path); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("rejected update must not persist, stat err = %v", statErr)
	}
}

// TestValidateEnumViolations checks enum-constrained keys.
func TestValidateEnumViolations(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Settings)
		key    string
	}{
		{"bad model", func(s *Settings) { s.Model = "huge" }, "whisper_model"},
		{"bad source lang", func(s *Settings) { s.SourceLanguage = "xx" }, "source_language"},
		{"auto target lang", func(s *Settings) { s.TargetLanguage = "auto" }, "target_language"},
		{"bad font color", func(s *Settings) { s.FontColor = "magenta" }, "font_color"},
		{"bad outline color", func(s *Settings) { s.OutlineColor = "pink" }, "outline_color"},
		{"bad background", func(s *Settings) { s.BackgroundColor = "blue" }, "background_color"},
		{"bad position", func(s *Settings) { s.Position = "middle" }, "position"},
		{"crf too high", func(s *Settings) { s.VideoQuality = 52 }, "video_quality"},
		{"crf negative", func(s *Settings) { s.VideoQuality = -1 }, "video_quality"},
		{"bad preset", func(s *Settings) { s.VideoPreset = "turbo" }, "video_preset"},
		{"bad log level", func(s *Settings) { s.LogLevel = "verbose" }, "log_level"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			settings := DefaultSettings()
			tc.mutate(&settings)

			err := Validate(settings)
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("error = %v, want ValidationError", err)
			}
			if validationErr.Key != tc.key {
				t.Fatalf("key = %q, want %q", validationErr.Key, tc.key)
			}
		})
	}
}

// TestNormalizeCanonicalizesLanguages checks code normalization on merge.
func TestNormalizeCanonicalizesLanguages(t *testing.T) {
	settings := DefaultSettings()
	settings.SourceLanguage = "EN"
	settings.TargetLanguage = "IT"
	settings.VideoPreset = " Medium "

	normalized := Normalize(settings)
	if normalized.SourceLanguage != "en" {
		t.Fatalf("source = %q, want en", normalized.SourceLanguage)
	}
	if normalized.TargetLanguage != "it" {
		t.Fatalf("target = %q, want it", normalized.TargetLanguage)
	}
	if normalized.VideoPreset != "medium" {
		t.Fatalf("preset = %q, want medium", normalized.VideoPreset)
	}
}
