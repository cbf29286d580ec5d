// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
	"github.com/ik5/audmark/audio"
	"github.com/ik5/audmark/utils"
)

// aiffReader is the part of aiff.Decoder the source needs.
type aiffReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

type source struct {
	dec        aiffReader
	sampleRate int
	channels   int
	intBuf     *goaudio.IntBuffer
	done       bool
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return nil }

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	if s.done {
		return 0, io.EOF
	}

	if s.intBuf == nil || cap(s.intBuf.Data) < len(dst) {
		s.intBuf = &goaudio.IntBuffer{Data: make([]int, len(dst))}
	}
	s.intBuf.Data = s.intBuf.Data[:len(dst)]

	n, err := s.dec.PCMBuffer(s.intBuf)
	if err != nil && err != io.EOF {
		return 0, fmt.Errorf("reading PCM: %w", err)
	}
	if n == 0 {
		s.done = true
		return 0, io.EOF
	}

	for i, v := range s.intBuf.Data[:n] {
		dst[i] = utils.Int16ToFloat32(int16(v))
	}

	if n < len(dst) || err == io.EOF {
		s.done = true
		return n, io.EOF
	}
	return n, nil
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading aiff data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := aiff.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotAiffFile
	}
	dec.ReadInfo()

	if dec.BitDepth != 16 {
		return nil, fmt.Errorf("%w: got %d", ErrOnlyPCM16bitSupported, dec.BitDepth)
	}

	format := dec.Format()
	if format == nil || format.NumChannels <= 0 {
		return nil, ErrNotAiffFile
	}

	return &source{
		dec:        dec,
		sampleRate: format.SampleRate,
		channels:   format.NumChannels,
	}, nil
}
