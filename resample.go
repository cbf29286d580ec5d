// SPDX-License-Identifier: EPL-2.0

package audmark

import (
	"github.com/ik5/audmark/audio"
	"github.com/ik5/audmark/utils"
)

// ResampleToMono down-mixes src to one channel and resamples it to
// targetRate with the streaming cubic resampler, returning every sample.
// When src already runs at targetRate no resampling happens, so the output
// is the plain down-mix.
//
// bufferSize is the read chunk in samples (e.g. 4096). The caller keeps
// ownership of src and must close it.
//
// Example:
//
//	src, _ := wav.Decoder{}.Decode(file)
//	defer src.Close()
//	samples, err := audmark.ResampleToMono(src, 16000, 4096)
func ResampleToMono(src audio.Source, targetRate, bufferSize int) ([]float32, error) {
	if targetRate <= 0 {
		return nil, audio.ErrInvalidRate
	}

	var s audio.Source = audio.NewMonoMixer(src)
	if src.SampleRate() != targetRate {
		s = audio.NewResampler(s, targetRate)
	}

	return audio.Collect(s, bufferSize)
}

// ResampleToMono16 is ResampleToMono followed by a lossless-rounding
// conversion to 16-bit PCM.
func ResampleToMono16(src audio.Source, targetRate, bufferSize int) ([]int16, error) {
	samples, err := ResampleToMono(src, targetRate, bufferSize)
	if err != nil {
		return nil, err
	}
	return utils.Float32sToInt16s(nil, samples), nil
}
