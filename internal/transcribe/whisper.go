// Package transcribe wraps the external whisper.cpp engine: given a
// preprocessed audio file and a language hint it produces timed text
// segments.
package transcribe

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"subburn/internal/domain"
	"subburn/internal/language"
)

// Request describes one transcription run.
type Request struct {
	AudioPath string
	ModelPath string
	Language  string
	// AudioDuration, when known, lets the engine report progress as the
	// fraction of audio already transcribed.
	AudioDuration time.Duration
	OnProgress    func(fraction float64)
}

// runResult is an internal process execution response.
type runResult struct {
	Stderr   string
	ExitCode int
}

// commandRunner abstracts process execution for testability. onLine
// receives each stdout line as the engine emits it.
type commandRunner interface {
	Run(ctx context.Context, name string, args []string, onLine func(line string)) (runResult, error)
}

// execRunner executes commands via os/exec, streaming stdout lines.
type execRunner struct{}

// Run executes one command, forwarding stdout lines as they arrive.
func (r *execRunner) Run(ctx context.Context, name string, args []string, onLine func(string)) (runResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return runResult{ExitCode: -1}, fmt.Errorf("open stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return runResult{ExitCode: -1}, err
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if onLine != nil {
			onLine(scanner.Text())
		}
	}

	err = cmd.Wait()
	result := runResult{Stderr: stderr.String(), ExitCode: 0}
	if err != nil {
		result.ExitCode = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		}
		return result, err
	}
	return result, nil
}

// Whisper runs whisper.cpp as an external process.
type Whisper struct {
	binPath string
	runner  commandRunner
	logger  *slog.Logger
}

// NewWhisper constructs the production transcriber.
func NewWhisper(logger *slog.Logger) *Whisper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Whisper{
		binPath: "whisper.cpp",
		runner:  &execRunner{},
		logger:  logger,
	}
}

// NewWhisperWithRunner constructs a transcriber with injectable execution.
func NewWhisperWithRunner(binPath string, runner commandRunner, logger *slog.Logger) *Whisper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Whisper{binPath: binPath, runner: runner, logger: logger}
}

// segmentLine matches the live segment output whisper.cpp prints, e.g.
// [00:00:00.000 --> 00:00:02.500]  hello world
var segmentLine = regexp.MustCompile(`^\[(\d{2}):(\d{2}):(\d{2})\.(\d{3}) --> (\d{2}):(\d{2}):(\d{2})\.(\d{3})\]`)

// Transcribe runs the engine over the audio file and returns its timed
// segments in order. Progress is reported as elapsed-audio-time fraction
// while the engine prints live segments; the returned segments come from
// the engine's JSON output file.
func (w *Whisper) Transcribe(ctx context.Context, req Request) ([]domain.Segment, error) {
	if strings.TrimSpace(req.AudioPath) == "" {
		return nil, errors.New("audio path is required")
	}
	if strings.TrimSpace(req.ModelPath) == "" {
		return nil, errors.New("model path is required")
	}

	outputBase := strings.TrimSuffix(req.AudioPath, filepath.Ext(req.AudioPath))
	jsonPath := outputBase + ".json"
	args := buildArgs(req.ModelPath, req.AudioPath, outputBase, req.Language)

	w.logger.Debug("running whisper.cpp", "audio", req.AudioPath, "model", req.ModelPath)
	var lastFraction float64
	result, runErr := w.runner.Run(ctx, w.binPath, args, func(line string) {
		if req.OnProgress == nil || req.AudioDuration <= 0 {
			return
		}
		end, ok := parseSegmentEnd(line)
		if !ok {
			return
		}
		fraction := float64(end) / float64(req.AudioDuration)
		if fraction > 0.99 {
			fraction = 0.99
		}
		if fraction > lastFraction {
			lastFraction = fraction
			req.OnProgress(fraction)
		}
	})
	if runErr != nil {
		return nil, fmt.Errorf("whisper.cpp failed (exit=%d): %w", result.ExitCode, runErr)
	}

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("read transcription output: %w", err)
	}
	defer func() {
		_ = os.Remove(jsonPath)
	}()

	segments := parseSegments(data)
	if req.OnProgress != nil {
		req.OnProgress(1)
	}
	return segments, nil
}

// buildArgs builds whisper.cpp args for JSON transcript export.
func buildArgs(modelPath, audioPath, outputBase, lang string) []string {
	args := []string{
		"-m", modelPath,
		"-f", audioPath,
		"-of", outputBase,
		"-oj",
	}
	if !language.IsAuto(lang) {
		args = append(args, "-l", strings.TrimSpace(lang))
	}
	return args
}

// parseSegments extracts ordered segments from the engine's JSON output.
func parseSegments(data []byte) []domain.Segment {
	var segments []domain.Segment
	for _, item := range gjson.GetBytes(data, "transcription").Array() {
		text := strings.TrimSpace(item.Get("text").String())
		if text == "" {
			continue
		}
		segments = append(segments, domain.Segment{
			Start: time.Duration(item.Get("offsets.from").Int()) * time.Millisecond,
			End:   time.Duration(item.Get("offsets.to").Int()) * time.Millisecond,
			Text:  text,
		})
	}
	return segments
}

// parseSegmentEnd extracts the end timestamp of a live segment line.
func parseSegmentEnd(line string) (time.Duration, bool) {
	match := segmentLine.FindStringSubmatch(strings.TrimSpace(line))
	if match == nil {
		return 0, false
	}
	return timestampFrom(match[5], match[6], match[7], match[8]), true
}

// timestampFrom converts hour/minute/second/millisecond fields.
func timestampFrom(hh, mm, ss, mmm string) time.Duration {
	toInt := func(s string) time.Duration {
		var n int
		_, _ = fmt.Sscanf(s, "%d", &n)
		return time.Duration(n)
	}
	return toInt(hh)*time.Hour + toInt(mm)*time.Minute + toInt(ss)*time.Second + toInt(mmm)*time.Millisecond
}
