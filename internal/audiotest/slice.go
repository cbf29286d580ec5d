// SPDX-License-Identifier: EPL-2.0

package audiotest

import "io"

// SliceSource plays back a fixed interleaved buffer.
type SliceSource struct {
	samples    []float32
	sampleRate int
	channels   int
	pos        int
}

func NewSliceSource(samples []float32, sampleRate, channels int) *SliceSource {
	return &SliceSource{samples: samples, sampleRate: sampleRate, channels: channels}
}

func (s *SliceSource) SampleRate() int { return s.sampleRate }
func (s *SliceSource) Channels() int   { return s.channels }
func (s *SliceSource) Close() error    { return nil }

func (s *SliceSource) ReadSamples(dst []float32) (int, error) {
	if s.pos >= len(s.samples) {
		return 0, io.EOF
	}

	n := copy(dst, s.samples[s.pos:])
	s.pos += n
	if s.pos >= len(s.samples) {
		return n, io.EOF
	}
	return n, nil
}
