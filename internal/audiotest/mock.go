// SPDX-License-Identifier: EPL-2.0

// Package audiotest holds fixtures shared by the module's tests: synthetic
// sources, in-memory WAV files and a stand-in for the external watermark
// tool.
package audiotest

import (
	"io"
	"math"
)

// MockSource generates audio from a waveform function. It satisfies
// audio.Source without importing it.
type MockSource struct {
	sampleRate   int
	channels     int
	totalSamples int // frames to generate
	generated    int
	waveform     func(sample int, channel int) float32
	closed       bool
}

// NewMockSource creates a source of totalSamples frames.
func NewMockSource(sampleRate, channels, totalSamples int, waveform func(sample int, channel int) float32) *MockSource {
	return &MockSource{
		sampleRate:   sampleRate,
		channels:     channels,
		totalSamples: totalSamples,
		waveform:     waveform,
	}
}

func NewSilentSource(sampleRate, channels, totalSamples int) *MockSource {
	return NewConstantSource(sampleRate, channels, totalSamples, 0)
}

func NewSineSource(sampleRate, channels, totalSamples int, frequency float64) *MockSource {
	return NewMockSource(sampleRate, channels, totalSamples, func(sample int, _ int) float32 {
		return float32(math.Sin(2 * math.Pi * frequency * float64(sample) / float64(sampleRate)))
	})
}

func NewConstantSource(sampleRate, channels, totalSamples int, value float32) *MockSource {
	return NewMockSource(sampleRate, channels, totalSamples, func(int, int) float32 {
		return value
	})
}

func (m *MockSource) SampleRate() int { return m.sampleRate }
func (m *MockSource) Channels() int   { return m.channels }
func (m *MockSource) Closed() bool    { return m.closed }

func (m *MockSource) Close() error {
	m.closed = true
	return nil
}

func (m *MockSource) ReadSamples(dst []float32) (int, error) {
	if m.generated >= m.totalSamples {
		return 0, io.EOF
	}

	frames := min(len(dst)/m.channels, m.totalSamples-m.generated)
	for f := range frames {
		for ch := range m.channels {
			dst[f*m.channels+ch] = m.waveform(m.generated+f, ch)
		}
	}

	m.generated += frames
	if m.generated >= m.totalSamples {
		return frames * m.channels, io.EOF
	}
	return frames * m.channels, nil
}
