package media

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// fakeRunner simulates command execution outcomes.
type fakeRunner struct {
	run func(ctx context.Context, name string, args ...string) (Result, error)
}

// Run delegates to injected behavior.
func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	if f.run == nil {
		return Result{}, nil
	}
	return f.run(ctx, name, args...)
}

const probeJSON = `{
  "streams": [
    {"codec_type": "video", "codec_name": "h264"},
    {"codec_type": "audio", "codec_name": "aac"}
  ],
  "format": {"format_name": "mov,mp4,m4a,3gp,3g2,mj2", "duration": "12.500000"}
}`

// TestProbeParsesDurationAndAudio checks ffprobe JSON handling.
func TestProbeParsesDurationAndAudio(t *testing.T) {
	var gotName string
	runner := &fakeRunner{
		run: func(ctx context.Context, name string, args ...string) (Result, error) {
			gotName = name
			return Result{Stdout: probeJSON}, nil
		},
	}

	tools := NewToolsWithRunner("ffmpeg", "ffprobe-test", runner, nil)
	info, err := tools.Probe(context.Background(), "/videos/in.mp4")
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if gotName != "ffprobe-test" {
		t.Fatalf("command = %q, want ffprobe-test", gotName)
	}
	if info.Duration != 12500*time.Millisecond {
		t.Fatalf("duration = %v, want 12.5s", info.Duration)
	}
	if !info.HasAudio {
		t.Fatal("expected audio track")
	}
	if !strings.Contains(info.Container, "mp4") {
		t.Fatalf("container = %q", info.Container)
	}
}

// TestProbeNoAudioTrack checks audio detection on video-only input.
func TestProbeNoAudioTrack(t *testing.T) {
	runner := &fakeRunner{
		run: func(ctx context.Context, name string, args ...string) (Result, error) {
			return Result{Stdout: `{"streams":[{"codec_type":"video"}],"format":{"duration":"3.0"}}`}, nil
		},
	}

	tools := NewToolsWithRunner("ffmpeg", "ffprobe", runner, nil)
	info, err := tools.Probe(context.Background(), "/videos/silent.mp4")
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if info.HasAudio {
		t.Fatal("expected no audio track")
	}
}

// TestExtractAudioBuildsExpectedArgs checks the conversion invocation.
func TestExtractAudioBuildsExpectedArgs(t *testing.T) {
	var gotArgs []string
	runner := &fakeRunner{
		run: func(ctx context.Context, name string, args ...string) (Result, error) {
			gotArgs = append([]string{}, args...)
			return Result{}, nil
		},
	}

	tools := NewToolsWithRunner("ffmpeg", "ffprobe", runner, nil)
	if err := tools.ExtractAudio(context.Background(), "/videos/in.mp4", "/tmp/audio.wav"); err != nil {
		t.Fatalf("ExtractAudio() error = %v", err)
	}

	joined := strings.Join(gotArgs, " ")
	for _, want := range []string{"-i /videos/in.mp4", "-ac 1", "-ar 16000", "-c:a pcm_s16le", "/tmp/audio.wav"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("args missing %q: %s", want, joined)
		}
	}
}

// TestExtractAudioWrapsFailure checks command error surfacing.
func TestExtractAudioWrapsFailure(t *testing.T) {
	runner := &fakeRunner{
		run: func(ctx context.Context, name string, args ...string) (Result, error) {
			return Result{Stderr: "Output file does not contain any stream", ExitCode: 1}, errors.New("exit status 1")
		},
	}

	tools := NewToolsWithRunner("ffmpeg", "ffprobe", runner, nil)
	err := tools.ExtractAudio(context.Background(), "/videos/in.mp4", "/tmp/audio.wav")

	var execErr *ExecError
	if !errors.As(err, &execErr) {
		t.Fatalf("error = %v, want ExecError", err)
	}
	if execErr.ExitCode != 1 {
		t.Fatalf("exit code = %d, want 1", execErr.ExitCode)
	}
	if !strings.Contains(execErr.Error(), "any stream") {
		t.Fatalf("error message missing stderr tail: %s", execErr.Error())
	}
}

// TestBurnSubtitlesBuildsFilterAndQuality checks the burn invocation.
func TestBurnSubtitlesBuildsFilterAndQuality(t *testing.T) {
	var gotArgs []string
	runner := &fakeRunner{
		run: func(ctx context.Context, name string, args ...string) (Result, error) {
			gotArgs = append([]string{}, args...)
			return Result{}, nil
		},
	}

	tools := NewToolsWithRunner("ffmpeg", "ffprobe", runner, nil)
	style := Style{
		FontFamily:      "Arial",
		FontSize:        24,
		FontColor:       "yellow",
		OutlineColor:    "black",
		BackgroundColor: "none",
		Position:        "bottom",
	}
	err := tools.BurnSubtitles(context.Background(), "/v/in.mp4", "/v/subs.srt", "/v/out.mp4", style, Quality{CRF: 18, Preset: "slow"})
	if err != nil {
		t.Fatalf("BurnSubtitles() error = %v", err)
	}

	joined := strings.Join(gotArgs, " ")
	for _, want := range []string{
		"force_style=",
		"FontSize=24",
		"FontName=Arial",
		"PrimaryColour=&H00FFFF&",
		"OutlineColour=&H000000&",
		"Alignment=2",
		"BorderStyle=1",
		"-crf 18",
		"-preset slow",
		"-c:v libx264",
	} {
		if !strings.Contains(joined, want) {
			t.Fatalf("args missing %q: %s", want, joined)
		}
	}
}

// TestForceStyleBackgroundBox checks the boxed-background style variant.
func TestForceStyleBackgroundBox(t *testing.T) {
	style := Style{
		FontFamily:      "Arial",
		FontSize:        30,
		FontColor:       "white",
		OutlineColor:    "black",
		BackgroundColor: "gray",
		Position:        "top-center",
	}

	got := style.ForceStyle()
	for _, want := range []string{"BackColour=&H808080&", "BorderStyle=3", "Alignment=8"} {
		if !strings.Contains(got, want) {
			t.Fatalf("force_style missing %q: %s", want, got)
		}
	}
}

// TestEscapeFilterPath checks subtitles filter path escaping.
func TestEscapeFilterPath(t *testing.T) {
	got := escapeFilterPath(`C:\videos\it's.srt`)
	if !strings.Contains(got, `\:`) || !strings.Contains(got, `\'`) || !strings.Contains(got, `\\`) {
		t.Fatalf("escaped path = %q", got)
	}
}
