// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audmark/audio"
	"github.com/jfreymuth/oggvorbis"
)

var ErrInvalidVorbis = errors.New("invalid Ogg Vorbis stream")

// oggReader is the part of oggvorbis.Reader the source needs.
type oggReader interface {
	SampleRate() int
	Channels() int
	Read([]float32) (int, error)
}

type source struct {
	dec oggReader
}

func (s *source) SampleRate() int { return s.dec.SampleRate() }
func (s *source) Channels() int   { return s.dec.Channels() }
func (s *source) Close() error    { return nil }

// ReadSamples reads whole frames; oggvorbis counts interleaved values.
func (s *source) ReadSamples(dst []float32) (int, error) {
	channels := s.dec.Channels()
	dst = dst[:len(dst)-len(dst)%channels]
	if len(dst) == 0 {
		return 0, nil
	}

	n, err := s.dec.Read(dst)
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("%w: %w", ErrInvalidVorbis, err)
	}
	if n == 0 && err == nil {
		return 0, io.EOF
	}
	return n, err
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidVorbis, err)
	}
	if dec.Channels() <= 0 {
		return nil, ErrInvalidVorbis
	}

	return &source{dec: dec}, nil
}
