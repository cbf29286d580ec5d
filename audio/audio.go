// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"context"
	"io"
	"sort"
	"sync"
)

// Source is a stream of interleaved float32 PCM.
type Source interface {
	// SampleRate of the PCM stream in Hz.
	SampleRate() int
	// Channels count (e.g., 1=mono, 2=stereo).
	Channels() int
	// ReadSamples fills dst with interleaved samples, nominally in [-1,1].
	// It returns the number of float32 values written (not frames). When
	// n == 0 with err == io.EOF, the stream is finished.
	ReadSamples(dst []float32) (n int, err error)
	// Close releases any resources.
	Close() error
}

// Decoder constructs a Source from an input reader.
type Decoder interface {
	Decode(r io.Reader) (Source, error)
}

// ContextDecoder is implemented by decoders that do blocking work outside
// the process, such as running a transcoder, and can be canceled.
type ContextDecoder interface {
	Decoder
	DecodeContext(ctx context.Context, r io.Reader) (Source, error)
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(r io.Reader) (Source, error)

func (f DecoderFunc) Decode(r io.Reader) (Source, error) { return f(r) }

// Registry maps format keys (e.g. "wav", "mp3") to decoders. It is safe for
// concurrent use; registration normally happens once at start-up and lookups
// happen per request.
type Registry struct {
	mu     sync.RWMutex
	codecs map[string]Decoder
}

func NewRegistry() *Registry {
	return &Registry{codecs: make(map[string]Decoder)}
}

func (r *Registry) Register(format string, d Decoder) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.codecs[format] = d
}

func (r *Registry) Get(format string) (Decoder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.codecs[format]
	return d, ok
}

// Formats returns the registered format keys in sorted order.
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.codecs))
	for k := range r.codecs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
