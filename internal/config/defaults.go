package config

import (
	"os"
	"path/filepath"
)

// DefaultPath returns the per-user settings file location.
func DefaultPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".subburn", "settings.toml")
}

// DefaultSettings returns baseline configuration for first launch.
func DefaultSettings() Settings {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	return Settings{
		Model:          "base",
		SourceLanguage: "auto",
		TargetLanguage: "en",

		FontFamily:      "Arial",
		FontSize:        24,
		FontColor:       "white",
		OutlineColor:    "black",
		BackgroundColor: "none",
		Position:        "bottom",
		Uppercase:       false,

		VideoQuality: 23,
		VideoPreset:  "medium",

		OutputDir: filepath.Join(homeDir, "Videos", "Subtitled"),
		ModelDir:  filepath.Join(homeDir, ".subburn", "models"),

		TranslateAPIBase: "https://api.openai.com/v1",
		TranslateModel:   "gpt-4o-mini",

		LogLevel: "info",
	}
}
