// SPDX-License-Identifier: EPL-2.0

package neural

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/ik5/audmark"
	"github.com/ik5/audmark/watermark"
)

// Backend is the NeuralImplicit watermark backend.
type Backend struct {
	model     Model
	available bool
}

// New wraps a loaded model.
func New(model Model) *Backend {
	return &Backend{model: model, available: true}
}

// NewNoop returns the unavailable backend that never detects.
func NewNoop() *Backend {
	return &Backend{model: Noop{}}
}

// Load builds the spread-spectrum backend from a weights file, or from the
// default weights when path is empty.
func Load(path string, logger hclog.Logger) (*Backend, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	w := DefaultWeights()
	if path != "" {
		var err error
		if w, err = LoadWeights(path); err != nil {
			return nil, fmt.Errorf("%w: %w", watermark.ErrBackendUnavailable, err)
		}
	}

	m, err := NewSpreadSpectrum(w)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", watermark.ErrBackendUnavailable, err)
	}

	logger.Info("neural model loaded", "weights", path, "version", w.Version, "carrier_length", w.CarrierLength)
	return New(m), nil
}

func (b *Backend) Method() watermark.Method { return watermark.MethodNeural }

// Available is false for the no-op fallback.
func (b *Backend) Available() bool { return b.available }

// SampleRate is always the canonical 16 kHz.
func (b *Backend) SampleRate() int { return audmark.CanonicalRate }

// CarriesID is false: the mark says only that audio was marked.
func (b *Backend) CarriesID() bool { return false }

func checkRate(buf audmark.CanonicalBuffer) error {
	if buf.SampleRate != audmark.CanonicalRate {
		return fmt.Errorf("%w: neural model needs %d Hz, got %d", watermark.ErrSampleRate, audmark.CanonicalRate, buf.SampleRate)
	}
	return nil
}

// Embed marks buf. id is not encoded.
func (b *Backend) Embed(_ context.Context, buf audmark.CanonicalBuffer, _ string) (audmark.CanonicalBuffer, error) {
	if err := checkRate(buf); err != nil {
		return audmark.CanonicalBuffer{}, err
	}
	out, err := b.model.Embed(buf.Samples)
	if err != nil {
		return audmark.CanonicalBuffer{}, fmt.Errorf("%w: %w", watermark.ErrEmbedFailed, err)
	}
	return audmark.CanonicalBuffer{Samples: out, SampleRate: buf.SampleRate}, nil
}

// Detect scores buf and maps the model confidence through the shared
// threshold.
func (b *Backend) Detect(_ context.Context, buf audmark.CanonicalBuffer) (watermark.DetectionResult, error) {
	if err := checkRate(buf); err != nil {
		return watermark.DetectionResult{}, err
	}
	score, err := b.model.Detect(buf.Samples)
	if err != nil {
		return watermark.DetectionResult{}, err
	}
	return watermark.FromConfidence(score), nil
}
