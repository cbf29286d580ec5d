// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"encoding/binary"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/ik5/audmark/audio"
	"github.com/ik5/audmark/utils"
)

// go-mp3 output is always 16-bit stereo.
const outputChannels = 2

// mp3Reader is the part of gomp3.Decoder the source needs.
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
}

type source struct {
	dec        mp3Reader
	sampleRate int
	buf        []byte
	carry      []byte // partial frame left over from the previous read
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return outputChannels }
func (s *source) Close() error    { return nil }

func (s *source) ReadSamples(dst []float32) (int, error) {
	const frameBytes = outputChannels * 2

	dst = dst[:len(dst)-len(dst)%outputChannels]
	if len(dst) == 0 {
		return 0, nil
	}

	need := len(dst) * 2
	if cap(s.buf) < need {
		s.buf = make([]byte, need)
	}
	s.buf = s.buf[:need]

	filled := copy(s.buf, s.carry)
	s.carry = s.carry[:0]

	var err error
	for {
		var n int
		n, err = s.dec.Read(s.buf[filled:])
		filled += n
		if err != nil || filled >= frameBytes {
			break
		}
	}
	if err != nil && err != io.EOF {
		return 0, fmt.Errorf("%w: %w", ErrInvalidMP3, err)
	}

	usable := filled - filled%frameBytes
	if err == nil {
		s.carry = append(s.carry, s.buf[usable:filled]...)
	}

	samples := usable / 2
	for i := range samples {
		dst[i] = utils.Int16ToFloat32(int16(binary.LittleEndian.Uint16(s.buf[2*i:])))
	}
	return samples, err
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMP3, err)
	}

	return &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		buf:        make([]byte, 8192),
	}, nil
}
