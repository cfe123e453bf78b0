package media

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// ProbeInfo summarizes the container properties the pipeline needs.
type ProbeInfo struct {
	Duration  time.Duration
	HasAudio  bool
	Container string
}

// Tools invokes ffmpeg and ffprobe.
type Tools struct {
	ffmpegPath  string
	ffprobePath string
	runner      Runner
	logger      *slog.Logger
}

// NewTools constructs the production media toolset.
func NewTools(logger *slog.Logger) *Tools {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tools{
		ffmpegPath:  "ffmpeg",
		ffprobePath: "ffprobe",
		runner:      &ExecRunner{},
		logger:      logger,
	}
}

// NewToolsWithRunner constructs a toolset with injectable execution.
func NewToolsWithRunner(ffmpegPath, ffprobePath string, runner Runner, logger *slog.Logger) *Tools {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tools{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		runner:      runner,
		logger:      logger,
	}
}

// Probe inspects a media container and reports duration and audio-track
// presence.
func (t *Tools) Probe(ctx context.Context, videoPath string) (ProbeInfo, error) {
	args := []string{
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		videoPath,
	}

	result, err := t.runner.Run(ctx, t.ffprobePath, args...)
	if err != nil {
		return ProbeInfo{}, &ExecError{
			Name:     t.ffprobePath,
			Args:     args,
			ExitCode: result.ExitCode,
			Stderr:   result.Stderr,
			Err:      err,
		}
	}

	info := ProbeInfo{
		Container: gjson.Get(result.Stdout, "format.format_name").String(),
	}
	if seconds, parseErr := strconv.ParseFloat(gjson.Get(result.Stdout, "format.duration").String(), 64); parseErr == nil {
		info.Duration = time.Duration(seconds * float64(time.Second))
	}
	for _, stream := range gjson.Get(result.Stdout, "streams").Array() {
		if stream.Get("codec_type").String() == "audio" {
			info.HasAudio = true
			break
		}
	}
	return info, nil
}

// ExtractAudio converts the video's audio track to mono 16 kHz PCM WAV,
// the input format the transcription engine expects.
func (t *Tools) ExtractAudio(ctx context.Context, videoPath, audioPath string) error {
	args := []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-i", videoPath,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		audioPath,
	}

	t.logger.Debug("extracting audio", "input", videoPath, "output", audioPath)
	result, err := t.runner.Run(ctx, t.ffmpegPath, args...)
	if err != nil {
		return &ExecError{
			Name:     t.ffmpegPath,
			Args:     args,
			ExitCode: result.ExitCode,
			Stderr:   result.Stderr,
			Err:      err,
		}
	}
	return nil
}

// BurnSubtitles composites the subtitle file into the video picture
// stream with the given style and encode quality.
func (t *Tools) BurnSubtitles(ctx context.Context, videoPath, subtitlePath, outputPath string, style Style, quality Quality) error {
	filter := fmt.Sprintf("subtitles='%s':force_style='%s'", escapeFilterPath(subtitlePath), style.ForceStyle())
	args := []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-i", videoPath,
		"-vf", filter,
		"-c:v", "libx264",
		"-preset", quality.Preset,
		"-crf", strconv.Itoa(quality.CRF),
		"-c:a", "aac",
		"-b:a", "192k",
		outputPath,
	}

	t.logger.Debug("burning subtitles", "input", videoPath, "subtitles", subtitlePath, "output", outputPath)
	result, err := t.runner.Run(ctx, t.ffmpegPath, args...)
	if err != nil {
		return &ExecError{
			Name:     t.ffmpegPath,
			Args:     args,
			ExitCode: result.ExitCode,
			Stderr:   result.Stderr,
			Err:      err,
		}
	}
	return nil
}

// escapeFilterPath escapes characters the subtitles filter treats
// specially inside its quoted argument.
func escapeFilterPath(path string) string {
	escaped := strings.ReplaceAll(path, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `'`, `\'`)
	escaped = strings.ReplaceAll(escaped, `:`, `\:`)
	return escaped
}
