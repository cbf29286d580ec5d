// SPDX-License-Identifier: EPL-2.0

// Package codec runs an external watermark tool (audiowmark or a
// compatible binary) as the ExternalCodec backend:
//
//	<tool> [args...] add <input> <output> <id>
//	<tool> [args...] get <input>
//
// Embed and Detect write the buffer to a PCM16 WAV in a scoped temp file
// and hand its path to the tool. Any non-zero exit from get means no
// watermark was found. The tool does
// not distinguish "nothing embedded" from other failures in its exit
// status, and this package does not guess by parsing its diagnostics. A
// tool that cannot be started at all is reported as an error.
package codec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/ik5/audmark"
	"github.com/ik5/audmark/formats/wav"
	"github.com/ik5/audmark/internal/tempscope"
	"github.com/ik5/audmark/utils"
	"github.com/ik5/audmark/watermark"
)

// DefaultBinary is the tool looked up on PATH when none is configured.
const DefaultBinary = "audiowmark"

// DefaultSampleRate is the rate audio is handed to the tool at.
const DefaultSampleRate = 44100

type Options struct {
	Binary string
	// Args are inserted before the add/get subcommand.
	Args []string
	// Env is appended to the inherited environment.
	Env []string
	// SampleRate of the WAV files exchanged with the tool.
	SampleRate int
	// Scope owns the exchanged files. Nil uses the system temp directory.
	Scope *tempscope.Scope
}

// Backend is the ExternalCodec watermark backend. It holds no per-call
// state and is safe for concurrent use.
type Backend struct {
	opts   Options
	logger hclog.Logger
}

func New(opts Options, logger hclog.Logger) *Backend {
	if opts.Binary == "" {
		opts.Binary = DefaultBinary
	}
	if opts.SampleRate <= 0 {
		opts.SampleRate = DefaultSampleRate
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if opts.Scope == nil {
		opts.Scope = tempscope.New("", logger)
	}
	return &Backend{opts: opts, logger: logger.Named("codec")}
}

func (b *Backend) Method() watermark.Method { return watermark.MethodExternalCodec }

func (b *Backend) SampleRate() int { return b.opts.SampleRate }

// CarriesID is true: get returns the exact id given to add.
func (b *Backend) CarriesID() bool { return true }

// Available reports whether the tool binary can be found.
func (b *Backend) Available() bool {
	_, err := exec.LookPath(b.opts.Binary)
	return err == nil
}

func (b *Backend) command(ctx context.Context, args ...string) *exec.Cmd {
	argv := append(append([]string(nil), b.opts.Args...), args...)
	cmd := exec.CommandContext(ctx, b.opts.Binary, argv...)
	if len(b.opts.Env) > 0 {
		cmd.Env = append(os.Environ(), b.opts.Env...)
	}
	b.logger.Debug("running codec", "binary", b.opts.Binary, "args", argv)
	return cmd
}

// EmbedFile writes a copy of in to out carrying id.
func (b *Backend) EmbedFile(ctx context.Context, in, out, id string) error {
	if err := watermark.ValidateID(id); err != nil {
		return err
	}

	var stderr bytes.Buffer
	cmd := b.command(ctx, "add", in, out, id)
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		b.logger.Debug("codec embed failed", "exit_code", exitErr.ExitCode())
		return &watermark.EmbedError{
			ExitCode:   exitErr.ExitCode(),
			Diagnostic: strings.TrimSpace(stderr.String()),
		}
	}
	return fmt.Errorf("%w: %w", watermark.ErrBackendUnavailable, err)
}

// DetectFile extracts the id from in. found is false, with a nil error,
// when the tool exits non-zero.
func (b *Backend) DetectFile(ctx context.Context, in string) (id string, found bool, err error) {
	var stdout, stderr bytes.Buffer
	cmd := b.command(ctx, "get", in)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			b.logger.Debug("codec found no watermark",
				"exit_code", exitErr.ExitCode(),
				"stderr", strings.TrimSpace(stderr.String()))
			return "", false, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", false, ctxErr
		}
		return "", false, fmt.Errorf("%w: %w", watermark.ErrBackendUnavailable, err)
	}

	id = strings.TrimSpace(stdout.String())
	return id, id != "", nil
}

func (b *Backend) checkRate(buf audmark.CanonicalBuffer) error {
	if buf.SampleRate != b.opts.SampleRate {
		return fmt.Errorf("%w: codec expects %d Hz, got %d", watermark.ErrSampleRate, b.opts.SampleRate, buf.SampleRate)
	}
	return nil
}

// writePCM16 stores buf as mono 16-bit WAV at path.
func writePCM16(path string, buf audmark.CanonicalBuffer) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if err := wav.WriteWAV16(f, buf.SampleRate, utils.Float32sToInt16s(nil, buf.Samples)); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// readMono decodes the tool's output WAV to mono at the backend rate.
func (b *Backend) readMono(path string) (audmark.CanonicalBuffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return audmark.CanonicalBuffer{}, err
	}
	src, err := wav.Decoder{}.Decode(bytes.NewReader(data))
	if err != nil {
		return audmark.CanonicalBuffer{}, err
	}
	defer src.Close()

	samples, err := audmark.ResampleToMono(src, b.opts.SampleRate, 4096)
	if err != nil {
		return audmark.CanonicalBuffer{}, err
	}
	return audmark.CanonicalBuffer{Samples: samples, SampleRate: b.opts.SampleRate}, nil
}

// Embed runs the tool's add command over buf.
func (b *Backend) Embed(ctx context.Context, buf audmark.CanonicalBuffer, id string) (audmark.CanonicalBuffer, error) {
	if err := watermark.ValidateID(id); err != nil {
		return audmark.CanonicalBuffer{}, err
	}
	if err := b.checkRate(buf); err != nil {
		return audmark.CanonicalBuffer{}, err
	}

	var marked audmark.CanonicalBuffer
	err := b.opts.Scope.Do([]string{".in.wav", ".out.wav"}, func(files []*tempscope.File) error {
		if err := writePCM16(files[0].Path, buf); err != nil {
			return err
		}
		if err := b.EmbedFile(ctx, files[0].Path, files[1].Path, id); err != nil {
			return err
		}

		var err error
		if marked, err = b.readMono(files[1].Path); err != nil {
			return fmt.Errorf("%w: reading tool output: %w", watermark.ErrEmbedFailed, err)
		}
		return nil
	})
	return marked, err
}

// Detect runs the tool's get command over buf.
func (b *Backend) Detect(ctx context.Context, buf audmark.CanonicalBuffer) (watermark.DetectionResult, error) {
	if err := b.checkRate(buf); err != nil {
		return watermark.DetectionResult{}, err
	}

	var (
		id    string
		found bool
	)
	err := b.opts.Scope.Do([]string{".wav"}, func(files []*tempscope.File) error {
		if err := writePCM16(files[0].Path, buf); err != nil {
			return err
		}
		var err error
		id, found, err = b.DetectFile(ctx, files[0].Path)
		return err
	})
	if err != nil {
		return watermark.DetectionResult{}, err
	}
	return watermark.FromExtraction(id, found), nil
}
