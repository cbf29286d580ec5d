// SPDX-License-Identifier: EPL-2.0

// Package audio holds the streaming building blocks the decoders and the
// canonical-buffer conversion are made of.
//
// # Source
//
// Every decoder yields a Source:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    Close() error
//	}
//
// Samples are interleaved float32 in [-1, 1). ReadSamples returns io.EOF,
// possibly together with the final samples, once the stream is exhausted.
// Wrappers such as Resampler and MonoMixer are Sources themselves and close
// the Source they wrap.
//
// # Resampling
//
// Resampler converts the rate of a stream with Catmull-Rom interpolation and
// a one-pole low-pass when downsampling:
//
//	r := audio.NewResampler(src, 16000)
//
// SincResample works on a whole buffer with a polyphase sinc filter and is
// the higher-quality choice for request-sized clips.
//
// # Channel Mixing
//
// MonoMixer averages each frame down to one channel; mono input passes
// through untouched.
//
// # Registry
//
// Registry maps a container name to its Decoder and is safe for concurrent
// use:
//
//	reg := audio.NewRegistry()
//	reg.Register("wav", wav.Decoder{})
//	dec, ok := reg.Get("wav")
//
// Collect drains any Source into a slice.
package audio
