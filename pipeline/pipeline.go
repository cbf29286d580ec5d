// SPDX-License-Identifier: EPL-2.0

// Package pipeline runs one embed or detect request end to end:
// parse the payload, decode it, dispatch to the selected backend, and
// reconcile the backend's result into the shared response shape.
//
// Nothing is retried. Every failure is returned as *Error carrying the
// stage and a Kind the transport can map to a status code. A negative
// detection is a normal response, never an error.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/ik5/audmark"
	"github.com/ik5/audmark/formats/aac"
	"github.com/ik5/audmark/formats/wav"
	"github.com/ik5/audmark/internal/config"
	"github.com/ik5/audmark/internal/ffmpeg"
	"github.com/ik5/audmark/internal/tempscope"
	"github.com/ik5/audmark/watermark"
	"github.com/ik5/audmark/watermark/codec"
	"github.com/ik5/audmark/watermark/registry"
)

// Output formats for embedded audio.
const (
	FormatWAV = "wav"
	FormatMP3 = "mp3"
)

type EmbedRequest struct {
	Audio        string `json:"audio"`
	WatermarkID  string `json:"watermarkId,omitempty"`
	Method       string `json:"method,omitempty"`
	OutputFormat string `json:"outputFormat,omitempty"`
}

type EmbedResponse struct {
	Success bool `json:"success"`
	// Audio is a data URI holding the watermarked clip.
	Audio string `json:"watermarkedAudio"`
	// WatermarkID is the embedded id; nil for the neural backend, which
	// cannot carry one.
	WatermarkID  *string          `json:"watermarkId"`
	Method       watermark.Method `json:"method"`
	OutputFormat string           `json:"outputFormat"`
}

type DetectRequest struct {
	Audio  string `json:"audio"`
	Method string `json:"method,omitempty"`
}

type DetectResponse struct {
	Success bool `json:"success"`
	watermark.DetectionResult
}

type Options struct {
	// Decoder produces the canonical buffer for the neural backend.
	Decoder *audmark.Decoder
	// CodecDecoder produces mono audio at the external tool's rate.
	CodecDecoder *audmark.Decoder
	Registry     *registry.Registry
	Scope        *tempscope.Scope
	FFmpeg       *ffmpeg.Runner
}

// Pipeline is safe for concurrent use; requests share only the registry.
type Pipeline struct {
	// decoders is keyed by output rate and read-only after New.
	decoders map[int]*audmark.Decoder
	formats  []string
	registry *registry.Registry
	scope    *tempscope.Scope
	ffmpeg   *ffmpeg.Runner
	logger   hclog.Logger
}

func New(opts Options, logger hclog.Logger) *Pipeline {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if opts.Scope == nil {
		opts.Scope = tempscope.New("", logger)
	}
	if opts.FFmpeg == nil {
		opts.FFmpeg = ffmpeg.New("", logger)
	}
	if opts.Decoder == nil {
		opts.Decoder = audmark.NewDecoder()
	}
	if opts.CodecDecoder == nil {
		opts.CodecDecoder = audmark.NewDecoder(audmark.WithSampleRate(codec.DefaultSampleRate))
	}
	if opts.Registry == nil {
		opts.Registry = registry.New(registry.Options{Codec: codec.Options{Scope: opts.Scope}}, logger)
	}

	return &Pipeline{
		decoders: map[int]*audmark.Decoder{
			opts.Decoder.SampleRate():      opts.Decoder,
			opts.CodecDecoder.SampleRate(): opts.CodecDecoder,
		},
		formats:  opts.Decoder.Formats(),
		registry: opts.Registry,
		scope:    opts.Scope,
		ffmpeg:   opts.FFmpeg,
		logger:   logger.Named("pipeline"),
	}
}

// NewFromConfig wires every collaborator from cfg.
func NewFromConfig(cfg *config.Config, logger hclog.Logger) *Pipeline {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	scope := tempscope.New(cfg.Temp.Dir, logger)
	runner := ffmpeg.New(cfg.FFmpeg.Binary, logger)
	aacDec := aac.New(runner, scope)

	decoderOpts := func(rate int) []audmark.DecoderOption {
		return []audmark.DecoderOption{
			audmark.WithSampleRate(rate),
			audmark.WithResampler(cfg.Decoder.Resampler),
			audmark.WithBufferSize(cfg.Decoder.BufferSize),
			audmark.WithContainerDecoder(audmark.ContainerAAC, aacDec),
		}
	}

	reg := registry.New(registry.Options{
		WeightsPath: cfg.Neural.WeightsPath,
		Codec: codec.Options{
			Binary:     cfg.Codec.Binary,
			Args:       cfg.Codec.Args,
			SampleRate: cfg.Codec.SampleRate,
			Scope:      scope,
		},
	}, logger)

	logger.Debug("pipeline configured", "temp_dir", scope.Dir(), "resampler", cfg.Decoder.Resampler, "codec_rate", cfg.Codec.SampleRate)
	return New(Options{
		Decoder:      audmark.NewDecoder(decoderOpts(audmark.CanonicalRate)...),
		CodecDecoder: audmark.NewDecoder(decoderOpts(cfg.Codec.SampleRate)...),
		Registry:     reg,
		Scope:        scope,
		FFmpeg:       runner,
	}, logger)
}

// Registry exposes backend availability to health reporting.
func (p *Pipeline) Registry() *registry.Registry { return p.registry }

// Formats lists the input containers the pipeline decodes.
func (p *Pipeline) Formats() []string { return p.formats }

func parseOutputFormat(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", FormatWAV:
		return FormatWAV, nil
	case FormatMP3:
		return FormatMP3, nil
	default:
		return "", fmt.Errorf("%w: output format %q", ErrMalformedInput, s)
	}
}

func (p *Pipeline) Embed(ctx context.Context, req EmbedRequest) (*EmbedResponse, error) {
	method, err := watermark.ParseMethod(req.Method)
	if err != nil {
		return nil, fail(StageParse, err)
	}
	format, err := parseOutputFormat(req.OutputFormat)
	if err != nil {
		return nil, fail(StageParse, err)
	}
	id := req.WatermarkID
	if id == "" {
		id = watermark.DefaultID
	}
	if err := watermark.ValidateID(id); err != nil {
		return nil, fail(StageParse, err)
	}
	in, err := ParsePayload(req.Audio)
	if err != nil {
		return nil, fail(StageParse, err)
	}

	backend, err := p.registry.Backend(method)
	if err != nil {
		return nil, fail(StageDispatch, err)
	}
	if !backend.Available() {
		p.logger.Debug("backend unavailable", "method", method)
	}

	buf, err := p.decode(ctx, backend, in)
	if err != nil {
		return nil, err
	}
	marked, err := backend.Embed(ctx, buf, id)
	if err != nil {
		return nil, fail(StageDispatch, err)
	}

	var w bytes.Buffer
	if err := wav.Encode(&w, marked.SampleRate, marked.Samples); err != nil {
		return nil, fail(StageEncode, err)
	}
	out := w.Bytes()

	var outID *string
	if backend.CarriesID() {
		outID = &id
	}

	mime := "audio/wav"
	if format == FormatMP3 {
		if out, err = p.toMP3(ctx, out); err != nil {
			return nil, fail(StageEncode, err)
		}
		mime = "audio/mpeg"
	}

	p.logger.Debug("embedded watermark", "method", method, "format", format, "duration", marked.Duration(), "bytes", len(out))
	return &EmbedResponse{
		Success:      true,
		Audio:        DataURI(mime, out),
		WatermarkID:  outID,
		Method:       method,
		OutputFormat: format,
	}, nil
}

func (p *Pipeline) Detect(ctx context.Context, req DetectRequest) (*DetectResponse, error) {
	method, err := watermark.ParseMethod(req.Method)
	if err != nil {
		return nil, fail(StageParse, err)
	}
	in, err := ParsePayload(req.Audio)
	if err != nil {
		return nil, fail(StageParse, err)
	}

	backend, err := p.registry.Backend(method)
	if err != nil {
		return nil, fail(StageDispatch, err)
	}
	buf, err := p.decode(ctx, backend, in)
	if err != nil {
		return nil, err
	}
	result, err := backend.Detect(ctx, buf)
	if err != nil {
		return nil, fail(StageDispatch, err)
	}

	p.logger.Debug("detection finished", "method", method, "detected", result.Detected, "confidence", result.Confidence)
	return &DetectResponse{Success: true, DetectionResult: result}, nil
}

// decode produces mono audio at the rate backend works at.
func (p *Pipeline) decode(ctx context.Context, backend watermark.Backend, in audmark.EncodedAudio) (audmark.CanonicalBuffer, error) {
	dec, ok := p.decoders[backend.SampleRate()]
	if !ok {
		return audmark.CanonicalBuffer{}, fail(StageDecode, fmt.Errorf("%w: no decoder at %d Hz for %s",
			watermark.ErrSampleRate, backend.SampleRate(), backend.Method()))
	}
	buf, err := dec.DecodeContext(ctx, in)
	if err != nil {
		return audmark.CanonicalBuffer{}, fail(StageDecode, err)
	}
	return buf, nil
}

func (p *Pipeline) toMP3(ctx context.Context, wavData []byte) ([]byte, error) {
	var out []byte
	err := p.scope.Do([]string{".wav", ".mp3"}, func(files []*tempscope.File) error {
		if err := os.WriteFile(files[0].Path, wavData, 0o600); err != nil {
			return err
		}
		if err := p.ffmpeg.ToMP3(ctx, files[0].Path, files[1].Path); err != nil {
			return err
		}
		b, err := os.ReadFile(files[1].Path)
		out = b
		return err
	})
	return out, err
}
