// SPDX-License-Identifier: EPL-2.0

// Package aac decodes AAC and MP4/M4A audio by transcoding to WAV with
// ffmpeg. The input and intermediate files live in scoped temp files that
// are removed before Decode returns.
package aac

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ik5/audmark/audio"
	"github.com/ik5/audmark/formats/wav"
	"github.com/ik5/audmark/internal/ffmpeg"
	"github.com/ik5/audmark/internal/tempscope"
)

var ErrInvalidAAC = errors.New("invalid AAC stream")

type Decoder struct {
	FFmpeg *ffmpeg.Runner
	Scope  *tempscope.Scope
}

// New returns a Decoder using runner and scope. Nil values fall back to the
// ffmpeg on PATH and the system temp directory.
func New(runner *ffmpeg.Runner, scope *tempscope.Scope) Decoder {
	if runner == nil {
		runner = ffmpeg.New("", nil)
	}
	if scope == nil {
		scope = tempscope.New("", nil)
	}
	return Decoder{FFmpeg: runner, Scope: scope}
}

func (d Decoder) Decode(r io.Reader) (audio.Source, error) {
	return d.DecodeContext(context.Background(), r)
}

// DecodeContext is Decode with ctx bounding the ffmpeg run.
func (d Decoder) DecodeContext(ctx context.Context, r io.Reader) (audio.Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d = New(d.FFmpeg, d.Scope)

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading aac data: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidAAC)
	}

	var pcm []byte
	err = d.Scope.Do([]string{".m4a", ".wav"}, func(files []*tempscope.File) error {
		in, out := files[0].Path, files[1].Path
		if err := os.WriteFile(in, data, 0o600); err != nil {
			return err
		}
		if err := d.FFmpeg.ToWAV(ctx, in, out); err != nil {
			if errors.Is(err, ffmpeg.ErrNotFound) || ctx.Err() != nil {
				return err
			}
			return fmt.Errorf("%w: %w", ErrInvalidAAC, err)
		}
		b, err := os.ReadFile(out)
		pcm = b
		return err
	})
	if err != nil {
		return nil, err
	}

	return wav.Decoder{}.Decode(bytes.NewReader(pcm))
}
