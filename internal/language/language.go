// Package language normalizes the language codes used by the whisper and
// translation adapters and maps them to human-readable names.
package language

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Auto is the sentinel code that lets the transcription engine detect the
// spoken language itself.
const Auto = "auto"

// whisperLanguages are the codes the bundled whisper.cpp builds accept.
var whisperLanguages = []string{
	"en", "it", "fr", "de", "es", "pt", "nl", "ru", "zh", "ja", "ko",
	"ar", "hi", "pl", "sv", "da", "no", "fi", "tr", "uk", "cs", "el",
}

// IsAuto reports whether a code requests automatic detection.
func IsAuto(code string) bool {
	trimmed := strings.TrimSpace(code)
	return trimmed == "" || strings.EqualFold(trimmed, Auto)
}

// Normalize lowercases and validates a language code. Auto and the empty
// string normalize to Auto; anything else must be a parseable BCP 47 tag.
func Normalize(code string) (string, error) {
	if IsAuto(code) {
		return Auto, nil
	}

	tag, err := language.Parse(strings.TrimSpace(code))
	if err != nil {
		return "", fmt.Errorf("unknown language code %q", code)
	}

	base, _ := tag.Base()
	return base.String(), nil
}

// DisplayName returns the English display name for a normalized code.
func DisplayName(code string) string {
	if IsAuto(code) {
		return "Auto Detect"
	}

	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	return display.English.Tags().Name(tag)
}

// Supported returns the transcription language codes, Auto first, the
// rest sorted by code.
func Supported() []string {
	codes := append([]string(nil), whisperLanguages...)
	sort.Strings(codes)
	return append([]string{Auto}, codes...)
}

// IsSupportedSource reports whether a normalized code can be passed to the
// transcription engine as a language hint.
func IsSupportedSource(code string) bool {
	if IsAuto(code) {
		return true
	}
	for _, candidate := range whisperLanguages {
		if candidate == code {
			return true
		}
	}
	return false
}
