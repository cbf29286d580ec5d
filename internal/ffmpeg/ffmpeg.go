// SPDX-License-Identifier: EPL-2.0

// Package ffmpeg wraps the ffmpeg binary for the transcodes the pure-Go
// decoders cannot do: AAC/MP4 input and MP3 output.
package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// DefaultBinary is looked up on PATH when no binary is configured.
const DefaultBinary = "ffmpeg"

var (
	ErrNotFound  = errors.New("ffmpeg not found")
	ErrTranscode = errors.New("ffmpeg transcode failed")
)

// Runner invokes one ffmpeg binary.
type Runner struct {
	binary string
	logger hclog.Logger
}

func New(binary string, logger hclog.Logger) *Runner {
	if binary == "" {
		binary = DefaultBinary
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Runner{binary: binary, logger: logger.Named("ffmpeg")}
}

// Available reports whether the binary can be found.
func (r *Runner) Available() bool {
	_, err := exec.LookPath(r.binary)
	return err == nil
}

// ToWAV decodes any input ffmpeg understands into 16-bit PCM WAV, keeping
// the source rate and channel layout.
func (r *Runner) ToWAV(ctx context.Context, in, out string) error {
	return r.run(ctx, "-i", in, "-vn", "-acodec", "pcm_s16le", "-f", "wav", out)
}

// ToMP3 encodes in as MP3.
func (r *Runner) ToMP3(ctx context.Context, in, out string) error {
	return r.run(ctx, "-i", in, "-vn", "-codec:a", "libmp3lame", "-q:a", "2", "-f", "mp3", out)
}

func (r *Runner) run(ctx context.Context, args ...string) error {
	path, err := exec.LookPath(r.binary)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	argv := append([]string{"-hide_banner", "-loglevel", "error", "-nostdin", "-y"}, args...)
	r.logger.Debug("running ffmpeg", "args", argv)

	cmd := exec.CommandContext(ctx, path, argv...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%w: %w: %s", ErrTranscode, err, strings.TrimSpace(string(out)))
	}
	return nil
}
