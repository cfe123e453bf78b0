package translate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"subburn/internal/language"
)

// OpenAI translates caption text through an OpenAI-compatible
// chat-completions API.
type OpenAI struct {
	client openai.Client
	model  string
	logger *slog.Logger
}

// NewOpenAI constructs a translator against the given endpoint. baseURL
// may point at any OpenAI-compatible server.
func NewOpenAI(apiKey, baseURL, model string, logger *slog.Logger) (*OpenAI, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("translation API key is not configured")
	}
	if strings.TrimSpace(model) == "" {
		return nil, errors.New("translation model is not configured")
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if trimmed := strings.TrimSpace(baseURL); trimmed != "" {
		opts = append(opts, option.WithBaseURL(trimmed))
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &OpenAI{
		client: openai.NewClient(opts...),
		model:  model,
		logger: logger,
	}, nil
}

// Translate converts one caption's text, keeping its line structure.
func (o *OpenAI) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	source := "the detected source language"
	if !language.IsAuto(sourceLang) {
		source = language.DisplayName(sourceLang)
	}
	target := language.DisplayName(targetLang)

	systemPrompt := fmt.Sprintf(
		"You translate subtitles from %s to %s. Reply with the translation only, "+
			"no quotes and no commentary. Keep exactly the same number of lines as the input.",
		source, target,
	)

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(text),
		},
		Model:       o.model,
		Temperature: openai.Float(0.3),
	})
	if err != nil {
		return "", fmt.Errorf("translation request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("translation engine returned no choices")
	}

	translated := strings.TrimSpace(resp.Choices[0].Message.Content)
	if translated == "" {
		return "", errors.New("translation engine returned empty text")
	}
	if lineCount(translated) != lineCount(text) {
		return "", fmt.Errorf("translation changed line structure: %d lines in, %d out",
			lineCount(text), lineCount(translated))
	}
	return translated, nil
}

// lineCount counts logical lines in a caption.
func lineCount(s string) int {
	return strings.Count(s, "\n") + 1
}
