// SPDX-License-Identifier: EPL-2.0

package audmark

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/ik5/audmark/audio"
	"github.com/ik5/audmark/formats/aac"
	"github.com/ik5/audmark/formats/aiff"
	"github.com/ik5/audmark/formats/mp3"
	"github.com/ik5/audmark/formats/vorbis"
	"github.com/ik5/audmark/formats/wav"
)

// CanonicalRate is the sample rate of buffers handed to the neural backend.
const CanonicalRate = 16000

const defaultBufferSize = 4096

// Resampler names accepted by WithResampler.
const (
	ResamplerCubic = "cubic"
	ResamplerSinc  = "sinc"
)

// EncodedAudio is a received payload together with its declared MIME type
// or container tag.
type EncodedAudio struct {
	Data []byte
	MIME string
}

// CanonicalBuffer is mono PCM at SampleRate.
type CanonicalBuffer struct {
	Samples    []float32
	SampleRate int
}

// Duration is the playing time of the buffer, zero when SampleRate is unset.
func (b CanonicalBuffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(len(b.Samples)) * time.Second / time.Duration(b.SampleRate)
}

// Decoder converts EncodedAudio into a CanonicalBuffer. It is safe for
// concurrent use once built.
type Decoder struct {
	rate       int
	resampler  string
	bufferSize int
	formats    *audio.Registry
}

type DecoderOption func(*Decoder)

// WithSampleRate sets the output rate. Non-positive values are ignored.
func WithSampleRate(rate int) DecoderOption {
	return func(d *Decoder) {
		if rate > 0 {
			d.rate = rate
		}
	}
}

// WithResampler picks ResamplerCubic (streaming) or ResamplerSinc (whole
// buffer, higher quality).
func WithResampler(name string) DecoderOption {
	return func(d *Decoder) {
		if name == ResamplerSinc {
			d.resampler = ResamplerSinc
		} else {
			d.resampler = ResamplerCubic
		}
	}
}

func WithBufferSize(n int) DecoderOption {
	return func(d *Decoder) {
		if n > 0 {
			d.bufferSize = n
		}
	}
}

// WithContainerDecoder replaces the decoder used for c, e.g. to give the
// AAC decoder a configured ffmpeg and temp scope.
func WithContainerDecoder(c Container, dec audio.Decoder) DecoderOption {
	return func(d *Decoder) {
		d.formats.Register(c.String(), dec)
	}
}

func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{
		rate:       CanonicalRate,
		resampler:  ResamplerCubic,
		bufferSize: defaultBufferSize,
		formats:    audio.NewRegistry(),
	}
	d.formats.Register(ContainerWAV.String(), wav.Decoder{})
	d.formats.Register(ContainerMP3.String(), mp3.Decoder{})
	d.formats.Register(ContainerAAC.String(), aac.New(nil, nil))
	d.formats.Register(ContainerOgg.String(), vorbis.Decoder{})
	d.formats.Register(ContainerAIFF.String(), aiff.Decoder{})

	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SampleRate returns the rate of every buffer Decode produces.
func (d *Decoder) SampleRate() int { return d.rate }

// Formats lists the container names Decode accepts.
func (d *Decoder) Formats() []string { return d.formats.Formats() }

// Decode selects the container from in.MIME, decodes, down-mixes to mono
// and resamples to the decoder's rate when the source differs.
func (d *Decoder) Decode(in EncodedAudio) (CanonicalBuffer, error) {
	return d.DecodeContext(context.Background(), in)
}

// DecodeContext is Decode with ctx handed to container decoders that
// implement audio.ContextDecoder.
func (d *Decoder) DecodeContext(ctx context.Context, in EncodedAudio) (CanonicalBuffer, error) {
	c, err := ParseContainer(in.MIME)
	if err != nil {
		return CanonicalBuffer{}, err
	}

	dec, ok := d.formats.Get(c.String())
	if !ok {
		return CanonicalBuffer{}, fmt.Errorf("%w: no decoder for %s", ErrUnsupportedFormat, c)
	}

	var src audio.Source
	if cd, ok := dec.(audio.ContextDecoder); ok {
		src, err = cd.DecodeContext(ctx, bytes.NewReader(in.Data))
	} else {
		src, err = dec.Decode(bytes.NewReader(in.Data))
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return CanonicalBuffer{}, ctxErr
		}
		return CanonicalBuffer{}, fmt.Errorf("%w: %s: %w", ErrMalformedAudio, c, err)
	}
	defer src.Close()

	samples, err := d.toCanonical(src)
	if err != nil {
		return CanonicalBuffer{}, fmt.Errorf("%w: %s: %w", ErrMalformedAudio, c, err)
	}

	return CanonicalBuffer{Samples: samples, SampleRate: d.rate}, nil
}

func (d *Decoder) toCanonical(src audio.Source) ([]float32, error) {
	if d.resampler != ResamplerSinc {
		return ResampleToMono(src, d.rate, d.bufferSize)
	}

	mono, err := audio.Collect(audio.NewMonoMixer(src), d.bufferSize)
	if err != nil {
		return nil, err
	}
	if src.SampleRate() == d.rate {
		return mono, nil
	}
	return audio.SincResample(mono, 1, src.SampleRate(), d.rate)
}
