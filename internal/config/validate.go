package config

import (
	"fmt"
	"slices"
	"strings"

	"subburn/internal/language"
	"subburn/internal/models"
)

// Valid ranges and enumerations for every constrained setting.
const (
	MinFontSize = 16
	MaxFontSize = 48
	MinCRF      = 0
	MaxCRF      = 51
)

// Presets are the accepted x264 encoding preset names.
var Presets = []string{
	"ultrafast", "superfast", "veryfast", "faster", "fast",
	"medium", "slow", "slower", "veryslow",
}

// Colors are the accepted subtitle color names.
var Colors = []string{"white", "yellow", "black", "green", "cyan", "gray"}

// BackgroundColors additionally allow disabling the caption background.
var BackgroundColors = append([]string{"none"}, Colors...)

// Positions are the accepted subtitle placements.
var Positions = []string{"bottom", "top-center"}

// ValidationError names the offending settings key.
type ValidationError struct {
	Key     string
	Message string
}

// Error formats the validation failure with its key.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid setting %s: %s", e.Key, e.Message)
}

// Validate checks every constrained field against its declared range or
// enumeration. The first violation is returned.
func Validate(s Settings) error {
	if !slices.Contains(models.IDs(), s.Model) {
		return &ValidationError{
			Key:     "whisper_model",
			Message: fmt.Sprintf("%q is not one of %s", s.Model, strings.Join(models.IDs(), ", ")),
		}
	}

	source, err := language.Normalize(s.SourceLanguage)
	if err != nil || !language.IsSupportedSource(source) {
		return &ValidationError{
			Key:     "source_language",
			Message: fmt.Sprintf("%q is not a supported transcription language", s.SourceLanguage),
		}
	}
	if _, err := language.Normalize(s.TargetLanguage); err != nil || language.IsAuto(s.TargetLanguage) {
		return &ValidationError{
			Key:     "target_language",
			Message: fmt.Sprintf("%q is not a concrete language code", s.TargetLanguage),
		}
	}

	if strings.TrimSpace(s.FontFamily) == "" {
		return &ValidationError{Key: "font_family", Message: "must not be empty"}
	}
	if s.FontSize < MinFontSize || s.FontSize > MaxFontSize {
		return &ValidationError{
			Key:     "font_size",
			Message: fmt.Sprintf("%d is outside %d-%d", s.FontSize, MinFontSize, MaxFontSize),
		}
	}
	if !slices.Contains(Colors, s.FontColor) {
		return &ValidationError{
			Key:     "font_color",
			Message: fmt.Sprintf("%q is not one of %s", s.FontColor, strings.Join(Colors, ", ")),
		}
	}
	if !slices.Contains(Colors, s.OutlineColor) {
		return &ValidationError{
			Key:     "outline_color",
			Message: fmt.Sprintf("%q is not one of %s", s.OutlineColor, strings.Join(Colors, ", ")),
		}
	}
	if !slices.Contains(BackgroundColors, s.BackgroundColor) {
		return &ValidationError{
			Key:     "background_color",
			Message: fmt.Sprintf("%q is not one of %s", s.BackgroundColor, strings.Join(BackgroundColors, ", ")),
		}
	}
	if !slices.Contains(Positions, s.Position) {
		return &ValidationError{
			Key:     "position",
			Message: fmt.Sprintf("%q is not one of %s", s.Position, strings.Join(Positions, ", ")),
		}
	}

	if s.VideoQuality < MinCRF || s.VideoQuality > MaxCRF {
		return &ValidationError{
			Key:     "video_quality",
			Message: fmt.Sprintf("%d is outside %d-%d", s.VideoQuality, MinCRF, MaxCRF),
		}
	}
	if !slices.Contains(Presets, s.VideoPreset) {
		return &ValidationError{
			Key:     "video_preset",
			Message: fmt.Sprintf("%q is not one of %s", s.VideoPreset, strings.Join(Presets, ", ")),
		}
	}

	if strings.TrimSpace(s.OutputDir) == "" {
		return &ValidationError{Key: "output_dir", Message: "must not be empty"}
	}
	if strings.TrimSpace(s.ModelDir) == "" {
		return &ValidationError{Key: "model_dir", Message: "must not be empty"}
	}

	switch strings.ToLower(strings.TrimSpace(s.LogLevel)) {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{
			Key:     "log_level",
			Message: fmt.Sprintf("%q is not one of debug, info, warn, error", s.LogLevel),
		}
	}

	return nil
}

// Normalize trims string fields and canonicalizes language codes. It does
// not validate; call Validate afterwards.
func Normalize(s Settings) Settings {
	s.Model = strings.TrimSpace(s.Model)
	if source, err := language.Normalize(s.SourceLanguage); err == nil {
		s.SourceLanguage = source
	}
	if target, err := language.Normalize(s.TargetLanguage); err == nil && !language.IsAuto(target) {
		s.TargetLanguage = target
	}
	s.FontFamily = strings.TrimSpace(s.FontFamily)
	s.FontColor = strings.ToLower(strings.TrimSpace(s.FontColor))
	s.OutlineColor = strings.ToLower(strings.TrimSpace(s.OutlineColor))
	s.BackgroundColor = strings.ToLower(strings.TrimSpace(s.BackgroundColor))
	s.Position = strings.ToLower(strings.TrimSpace(s.Position))
	s.VideoPreset = strings.ToLower(strings.TrimSpace(s.VideoPreset))
	s.OutputDir = strings.TrimSpace(s.OutputDir)
	s.ModelDir = strings.TrimSpace(s.ModelDir)
	s.TranslateAPIBase = strings.TrimSpace(s.TranslateAPIBase)
	s.TranslateAPIKey = strings.TrimSpace(s.TranslateAPIKey)
	s.TranslateModel = strings.TrimSpace(s.TranslateModel)
	s.LogLevel = strings.ToLower(strings.TrimSpace(s.LogLevel))
	return s
}
