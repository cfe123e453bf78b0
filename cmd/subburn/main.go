// Command subburn drives the subtitle pipeline: it transcribes a video's
// audio with whisper.cpp, optionally translates the captions, and burns
// them into a new video with ffmpeg.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
