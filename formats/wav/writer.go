// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/ik5/audmark/utils"
)

const headerSize = 44

// WriteWAV16 writes a mono 16-bit PCM WAV at sampleRate.
func WriteWAV16(w io.Writer, sampleRate int, samples []int16) error {
	const (
		channels      = 1
		bitsPerSample = 16
		blockAlign    = channels * bitsPerSample / 8
	)
	dataSize := uint32(len(samples) * 2)

	header := make([]byte, headerSize)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], 36+dataSize)
	copy(header[8:12], "WAVE")

	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], formatPCM)
	binary.LittleEndian.PutUint16(header[22:24], channels)
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(sampleRate)*blockAlign)
	binary.LittleEndian.PutUint16(header[32:34], blockAlign)
	binary.LittleEndian.PutUint16(header[34:36], bitsPerSample)

	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], dataSize)

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	const chunkSize = 8192
	buf := make([]byte, min(len(samples), chunkSize)*2)

	for i := 0; i < len(samples); i += chunkSize {
		chunk := samples[i:min(i+chunkSize, len(samples))]
		out := buf[:len(chunk)*2]
		for j, s := range chunk {
			binary.LittleEndian.PutUint16(out[j*2:], uint16(s))
		}
		if _, err := w.Write(out); err != nil {
			return fmt.Errorf("writing samples: %w", err)
		}
	}

	return nil
}

// Encode quantizes mono float32 samples to PCM16 and writes them as WAV.
func Encode(w io.Writer, sampleRate int, samples []float32) error {
	return WriteWAV16(w, sampleRate, utils.Float32sToInt16s(nil, samples))
}
