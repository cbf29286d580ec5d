// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// MonoMixer down-mixes a multi-channel Source to one channel by averaging
// each frame. Mono sources pass through untouched.
type MonoMixer struct {
	src Source
	tmp []float32
}

func NewMonoMixer(src Source) *MonoMixer {
	return &MonoMixer{src: src}
}

func (m *MonoMixer) SampleRate() int { return m.src.SampleRate() }
func (m *MonoMixer) Channels() int   { return 1 }

func (m *MonoMixer) Close() error {
	if err := m.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

func (m *MonoMixer) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	channels := m.src.Channels()
	switch {
	case channels <= 0:
		return 0, ErrNoChannels
	case channels == 1:
		return m.src.ReadSamples(dst)
	}

	need := len(dst) * channels
	if cap(m.tmp) < need {
		m.tmp = make([]float32, max(need, 8192))
	}
	m.tmp = m.tmp[:need]

	n, err := m.src.ReadSamples(m.tmp)
	frames := n / channels
	if frames == 0 {
		return 0, err
	}

	if channels == 2 {
		for f := range frames {
			dst[f] = (m.tmp[2*f] + m.tmp[2*f+1]) * 0.5
		}
		return frames, err
	}

	inv := 1 / float32(channels)
	for f := range frames {
		var sum float32
		for _, v := range m.tmp[f*channels : (f+1)*channels] {
			sum += v
		}
		dst[f] = sum * inv
	}
	return frames, err
}
