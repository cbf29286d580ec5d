// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
	"github.com/ik5/audmark/audio"
	"github.com/ik5/audmark/utils"
)

const (
	formatPCM        = 1
	formatExtensible = 0xFFFE
)

// pcmReader is the part of gowav.Decoder the source needs; it lets tests
// substitute a fake.
type pcmReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

type source struct {
	dec        pcmReader
	sampleRate int
	channels   int
	bitDepth   int
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
	if err != nil {
		return 0, fmt.Errorf("reading PCM: %w", err)
	}
	if n == 0 {
		s.done = true
		return 0, io.EOF
	}

	if s.bitDepth == 16 {
		for i, v := range s.intBuf.Data[:n] {
			dst[i] = utils.Int16ToFloat32(int16(v))
		}
	} else {
		scale := 1 / float32(int64(1)<<(s.bitDepth-1))
		for i, v := range s.intBuf.Data[:n] {
			dst[i] = float32(v) * scale
		}
	}

	return n, nil
}

// Decoder decodes integer PCM WAV files.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading wav data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := gowav.NewDecoder(rs)
	dec.ReadInfo()
	if err := dec.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotWavFile, err)
	}
	if dec.NumChans == 0 || dec.SampleRate == 0 {
		return nil, ErrNotWavFile
	}

	if dec.WavAudioFormat != formatPCM && dec.WavAudioFormat != formatExtensible {
		return nil, fmt.Errorf("%w: format tag %d", ErrUnsupportedEncoding, dec.WavAudioFormat)
	}

	switch dec.BitDepth {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, dec.BitDepth)
	}

	if err := dec.FwdToPCM(); err != nil || dec.PCMChunk == nil {
		return nil, ErrNoDataChunk
	}

	return &source{
		dec:        dec,
		sampleRate: int(dec.SampleRate),
		channels:   int(dec.NumChans),
		bitDepth:   int(dec.BitDepth),
	}, nil
}
