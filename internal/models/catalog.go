// Package models tracks the whisper.cpp model catalog and the local model
// cache, including guarded downloads.
package models

import (
	"fmt"

	"subburn/internal/domain"
)

var catalog = []domain.ModelOption{
	{
		ID:          "tiny",
		Name:        "Tiny (Multilingual)",
		FileName:    "ggml-tiny.bin",
		URL:         "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-tiny.bin",
		SizeBytes:   78_000_000,
		Description: "Fastest, least accurate.",
	},
	{
		ID:          "tiny.en",
		Name:        "Tiny (English)",
		FileName:    "ggml-tiny.en.bin",
		URL:         "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-tiny.en.bin",
		SizeBytes:   78_000_000,
		Description: "Fastest, English-only.",
	},
	{
		ID:          "base",
		Name:        "Base (Multilingual)",
		FileName:    "ggml-base.bin",
		URL:         "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-base.bin",
		SizeBytes:   148_000_000,
		Description: "Fast, decent accuracy.",
	},
	{
		ID:          "base.en",
		Name:        "Base (English)",
		FileName:    "ggml-base.en.bin",
		URL:         "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-base.en.bin",
		SizeBytes:   148_000_000,
		Description: "Fast, decent accuracy, English-only.",
	},
	{
		ID:          "small",
		Name:        "Small (Multilingual)",
		FileName:    "ggml-small.bin",
		URL:         "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-small.bin",
		SizeBytes:   488_000_000,
		Description: "Balanced speed and accuracy.",
	},
	{
		ID:          "small.en",
		Name:        "Small (English)",
		FileName:    "ggml-small.en.bin",
		URL:         "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-small.en.bin",
		SizeBytes:   488_000_000,
		Description: "Balanced speed and accuracy, English-only.",
	},
	{
		ID:          "medium",
		Name:        "Medium (Multilingual)",
		FileName:    "ggml-medium.bin",
		URL:         "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-medium.bin",
		SizeBytes:   1_530_000_000,
		Description: "Slower, more accurate.",
	},
	{
		ID:          "large-v3",
		Name:        "Large v3",
		FileName:    "ggml-large-v3.bin",
		URL:         "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-large-v3.bin",
		SizeBytes:   3_100_000_000,
		Description: "Slowest, most accurate.",
	},
	{
		ID:          "large-v3-turbo",
		Name:        "Large v3 Turbo",
		FileName:    "ggml-large-v3-turbo.bin",
		URL:         "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-large-v3-turbo.bin",
		SizeBytes:   1_620_000_000,
		Description: "Faster large-v3 variant.",
	},
}

// Catalog returns a copy of the built-in model presets.
func Catalog() []domain.ModelOption {
	out := make([]domain.ModelOption, len(catalog))
	copy(out, catalog)
	return out
}

// IDs returns every catalog model identifier in catalog order.
func IDs() []string {
	ids := make([]string, len(catalog))
	for i, model := range catalog {
		ids[i] = model.ID
	}
	return ids
}

// ByID returns the catalog entry for a model identifier.
func ByID(id string) (domain.ModelOption, error) {
	for _, model := range catalog {
		if model.ID == id {
			return model, nil
		}
	}
	return domain.ModelOption{}, fmt.Errorf("unknown model id: %s", id)
}
