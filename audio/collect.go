// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"
)

// Collect drains src and returns every sample it produced. bufSize is the
// read chunk size in samples; it is rounded down to a multiple of the
// channel count.
func Collect(src Source, bufSize int) ([]float32, error) {
	channels := src.Channels()
	if channels <= 0 {
		return nil, ErrNoChannels
	}

	bufSize -= bufSize % channels
	if bufSize <= 0 {
		bufSize = channels * 1024
	}

	buf := make([]float32, bufSize)
	out := make([]float32, 0, bufSize)

	for {
		n, err := src.ReadSamples(buf)
		out = append(out, buf[:n]...)

		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, fmt.Errorf("reading samples: %w", err)
		}
	}
}
