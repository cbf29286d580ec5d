// SPDX-License-Identifier: EPL-2.0

// Package registry owns the process-wide watermark backends. Each backend is
// built on first use, exactly once, and shared by every caller afterwards.
package registry

import (
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/ik5/audmark/watermark"
	"github.com/ik5/audmark/watermark/codec"
	"github.com/ik5/audmark/watermark/neural"
)

type Options struct {
	// WeightsPath is the neural model weights file. Empty uses the
	// built-in weights.
	WeightsPath string
	Codec       codec.Options
}

// Registry lazily constructs the backends. Concurrent first callers block
// until the single construction finishes.
type Registry struct {
	opts   Options
	logger hclog.Logger

	// loadNeural is replaceable in tests.
	loadNeural func(path string, logger hclog.Logger) (*neural.Backend, error)

	neuralOnce sync.Once
	neural     *neural.Backend

	codecOnce sync.Once
	codec     *codec.Backend
}

func New(opts Options, logger hclog.Logger) *Registry {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Registry{
		opts:       opts,
		logger:     logger.Named("registry"),
		loadNeural: neural.Load,
	}
}

// Neural returns the neural backend. When the model cannot be loaded the
// no-op backend is returned instead, and stays in place for the life of
// the process.
func (r *Registry) Neural() *neural.Backend {
	r.neuralOnce.Do(func() {
		b, err := r.loadNeural(r.opts.WeightsPath, r.logger)
		if err != nil {
			r.logger.Warn("neural backend unavailable, using no-op model", "weights", r.opts.WeightsPath, "error", err)
			b = neural.NewNoop()
		}
		r.neural = b
	})
	return r.neural
}

// ExternalCodec returns the external codec backend. There is no fallback:
// a missing tool shows up in Status and as errors from the backend.
func (r *Registry) ExternalCodec() *codec.Backend {
	r.codecOnce.Do(func() {
		r.codec = codec.New(r.opts.Codec, r.logger)
		if !r.codec.Available() {
			r.logger.Warn("external codec not found", "binary", r.opts.Codec.Binary)
		} else {
			r.logger.Info("external codec ready", "binary", r.opts.Codec.Binary)
		}
	})
	return r.codec
}

// Backend returns the backend for m as the shared capability. The
// pipeline dispatches every request through it.
func (r *Registry) Backend(m watermark.Method) (watermark.Backend, error) {
	switch m {
	case watermark.MethodNeural:
		return r.Neural(), nil
	case watermark.MethodExternalCodec:
		return r.ExternalCodec(), nil
	default:
		return nil, watermark.ErrUnknownMethod
	}
}

// Status reports per-backend availability, keyed by method name.
type Status map[watermark.Method]bool

func (r *Registry) Status() Status {
	st := make(Status)
	for _, m := range watermark.Methods() {
		b, err := r.Backend(m)
		st[m] = err == nil && b.Available()
	}
	return st
}
