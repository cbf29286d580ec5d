// SPDX-License-Identifier: EPL-2.0

// Package wav decodes RIFF/WAVE files and writes mono PCM 16-bit WAV.
//
// Decoding is backed by github.com/go-audio/wav, so files with extra chunks
// (LIST, fact, odd-sized padding) are handled. Integer PCM at 16, 24 and 32
// bits is supported; samples are normalized to float32 in [-1, 1).
//
//	src, err := wav.Decoder{}.Decode(r)
//	buf := make([]float32, 4096)
//	n, err := src.ReadSamples(buf)
//
// 16-bit samples are scaled by 1/32768, the exact inverse of the writer's
// conversion, so decode followed by Encode reproduces the original PCM bit
// for bit. The watermark codec path relies on that.
//
// Writing:
//
//	err := wav.Encode(w, 16000, samples) // []float32 -> PCM16 mono
//	err := wav.WriteWAV16(w, 16000, pcm)  // []int16 already quantized
package wav
