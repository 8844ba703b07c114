// Package ffmpeg wraps the external FFmpeg tools behind a small capability
// interface: apply a named filter graph to a video file, extract a frame,
// and probe stream properties.
package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/socialreel/enhance-worker/internal/stage"
)

// Runner invokes ffmpeg with the given arguments. The video pipeline depends
// on this interface so tests can substitute a fake.
type Runner interface {
	Run(ctx context.Context, args []string) error
}

// ExecRunner runs the real ffmpeg binary from PATH.
type ExecRunner struct{}

var _ Runner = ExecRunner{}

// CheckAvailable returns nil if ffmpeg is in PATH, or a descriptive error.
// Call at startup to validate video processing capability.
func CheckAvailable() error {
	path, err := exec.LookPath("ffmpeg")
	if err != nil {
		return fmt.Errorf("ffmpeg not found in PATH: video enhancement will be unavailable")
	}
	log.Debug().Str("path", path).Msg("ffmpeg found")
	return nil
}

// IsAvailable reports whether ffmpeg is in PATH.
func IsAvailable() bool {
	return CheckAvailable() == nil
}

// Run executes ffmpeg. A missing binary or non-zero exit is a process
// failure; the tool's combined output is included in the error for debugging.
func (ExecRunner) Run(ctx context.Context, args []string) error {
	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		return stage.Errorf(stage.KindProcess, "ffmpeg not found in PATH")
	}

	log.Debug().Strs("args", args).Msg("Running ffmpeg")

	start := time.Now()
	cmd := exec.CommandContext(ctx, ffmpegPath, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return stage.Errorf(stage.KindProcess, "ffmpeg failed: %v\noutput: %s", err, output)
	}

	log.Debug().Dur("duration", time.Since(start)).Msg("ffmpeg complete")
	return nil
}
