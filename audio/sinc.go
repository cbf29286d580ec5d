// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"

	resampling "github.com/tphakala/go-audio-resampling"
)

// SincResample converts an interleaved buffer between sample rates with the
// high-quality polyphase resampler. It runs on the whole buffer at once, so
// it suits request-sized clips rather than unbounded streams. The input is
// padded with silence to push the tail out of the filter's delay line and
// the output is trimmed to the exact duration of the input.
func SincResample(samples []float32, channels, from, to int) ([]float32, error) {
	if from <= 0 || to <= 0 {
		return nil, ErrInvalidRate
	}
	if channels <= 0 {
		return nil, ErrNoChannels
	}
	if len(samples)%channels != 0 {
		return nil, ErrInvalidDstSize
	}
	if from == to || len(samples) == 0 {
		return append([]float32(nil), samples...), nil
	}

	rs, err := resampling.New(&resampling.Config{
		InputRate:  float64(from),
		OutputRate: float64(to),
		Channels:   channels,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return nil, fmt.Errorf("creating resampler: %w", err)
	}

	frames := len(samples) / channels
	want := int(int64(frames)*int64(to)/int64(from)) * channels
	pad := max(from/10, 64) * channels

	in := make([]float64, len(samples)+pad)
	for i, v := range samples {
		in[i] = float64(v)
	}

	out, err := rs.Process(in)
	if err != nil {
		return nil, fmt.Errorf("resampling: %w", err)
	}

	if len(out) > want {
		out = out[:want]
	}
	out = out[:len(out)-len(out)%channels]

	res := make([]float32, len(out))
	for i, v := range out {
		res[i] = float32(v)
	}
	return res, nil
}
