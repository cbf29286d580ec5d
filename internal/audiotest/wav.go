// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"bytes"
	"encoding/binary"
	"math"
)

// WAV16 builds a canonical 44-byte-header PCM16 WAV file in memory.
// samples are interleaved.
func WAV16(sampleRate, channels int, samples []int16) []byte {
	buf := new(bytes.Buffer)

	blockAlign := uint16(channels * 2)
	dataSize := uint32(len(samples) * 2)

	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, 36+dataSize)
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(1))
	binary.Write(buf, binary.LittleEndian, uint16(channels))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate)*uint32(blockAlign))
	binary.Write(buf, binary.LittleEndian, blockAlign)
	binary.Write(buf, binary.LittleEndian, uint16(16))

	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, dataSize)
	binary.Write(buf, binary.LittleEndian, samples)

	return buf.Bytes()
}

// SilenceWAV returns frames of digital silence.
func SilenceWAV(sampleRate, channels, frames int) []byte {
	return WAV16(sampleRate, channels, make([]int16, frames*channels))
}

// SineWAV returns a sine tone at amplitude amp (0..1) on every channel.
func SineWAV(sampleRate, channels, frames int, freq, amp float64) []byte {
	samples := make([]int16, frames*channels)
	for f := range frames {
		v := int16(amp * 32767 * math.Sin(2*math.Pi*freq*float64(f)/float64(sampleRate)))
		for ch := range channels {
			samples[f*channels+ch] = v
		}
	}
	return WAV16(sampleRate, channels, samples)
}

// NoiseWAV returns deterministic pseudo-random noise at amplitude amp.
func NoiseWAV(sampleRate, frames int, amp float64, seed uint32) []byte {
	samples := make([]int16, frames)
	x := seed | 1
	for i := range samples {
		x ^= x << 13
		x ^= x >> 17
		x ^= x << 5
		u := float64(x)/float64(math.MaxUint32)*2 - 1
		samples[i] = int16(amp * 32767 * u)
	}
	return WAV16(sampleRate, 1, samples)
}
