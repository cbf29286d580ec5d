// SPDX-License-Identifier: EPL-2.0

package audmark

import (
	"context"
	"errors"
	"io"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/ik5/audmark/audio"
	"github.com/ik5/audmark/internal/audiotest"
	"github.com/ik5/audmark/utils"
)

func TestDecoder_CanonicalRateSkipsResampling(t *testing.T) {
	t.Parallel()

	pcm := []int16{0, 1000, -1000, 32767, -32768, 12345}
	dec := NewDecoder()

	buf, err := dec.Decode(EncodedAudio{Data: audiotest.WAV16(CanonicalRate, 1, pcm), MIME: "audio/wav"})
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if buf.SampleRate != CanonicalRate {
		t.Errorf("SampleRate = %d, want %d", buf.SampleRate, CanonicalRate)
	}
	if len(buf.Samples) != len(pcm) {
		t.Fatalf("len = %d, want %d", len(buf.Samples), len(pcm))
	}
	for i, v := range pcm {
		if got := utils.Float32ToInt16(buf.Samples[i]); got != v {
			t.Errorf("sample %d = %d, want %d", i, got, v)
		}
	}
}

func TestDecoder_StereoResampled(t *testing.T) {
	t.Parallel()

	for _, name := range []string{ResamplerCubic, ResamplerSinc} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			dec := NewDecoder(WithResampler(name))
			buf, err := dec.Decode(EncodedAudio{Data: audiotest.SineWAV(44100, 2, 44100, 440, 0.5)})
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if buf.SampleRate != CanonicalRate {
				t.Errorf("SampleRate = %d, want %d", buf.SampleRate, CanonicalRate)
			}
			if len(buf.Samples) < 15000 || len(buf.Samples) > 16002 {
				t.Errorf("len = %d, want about 16000", len(buf.Samples))
			}
			if d := buf.Duration(); d < 900*time.Millisecond || d > 1001*time.Millisecond {
				t.Errorf("Duration() = %v, want about 1s", d)
			}
		})
	}
}

func TestDecoder_CustomRate(t *testing.T) {
	t.Parallel()

	dec := NewDecoder(WithSampleRate(44100), WithBufferSize(1000))
	if dec.SampleRate() != 44100 {
		t.Fatalf("SampleRate() = %d", dec.SampleRate())
	}

	buf, err := dec.Decode(EncodedAudio{Data: audiotest.SilenceWAV(44100, 1, 44100)})
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(buf.Samples) != 44100 {
		t.Errorf("len = %d, want 44100", len(buf.Samples))
	}
}

func TestDecoder_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      EncodedAudio
		wantErr error
	}{
		{name: "non-audio mime", in: EncodedAudio{Data: []byte{1, 2, 3}, MIME: "image/png"}, wantErr: ErrUnsupportedFormat},
		{name: "truncated wav", in: EncodedAudio{Data: []byte("RIFF\x10\x00\x00\x00WAVE")}, wantErr: ErrMalformedAudio},
		{name: "garbage mp3", in: EncodedAudio{Data: []byte("not an mp3"), MIME: "audio/mpeg"}, wantErr: ErrMalformedAudio},
		{name: "garbage ogg", in: EncodedAudio{Data: []byte("not an ogg"), MIME: "audio/ogg"}, wantErr: ErrMalformedAudio},
		{name: "garbage aiff", in: EncodedAudio{Data: []byte("not an aiff"), MIME: "audio/aiff"}, wantErr: ErrMalformedAudio},
		{name: "empty", in: EncodedAudio{}, wantErr: ErrMalformedAudio},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewDecoder().Decode(tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Decode() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecoder_WithContainerDecoder(t *testing.T) {
	t.Parallel()

	called := false
	fake := audio.DecoderFunc(func(io.Reader) (audio.Source, error) {
		called = true
		return audiotest.NewSliceSource([]float32{0.25, 0.75}, CanonicalRate, 2), nil
	})

	dec := NewDecoder(WithContainerDecoder(ContainerAAC, fake))
	buf, err := dec.Decode(EncodedAudio{Data: []byte{0}, MIME: "audio/aac"})
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !called {
		t.Fatal("custom decoder was not used")
	}
	if len(buf.Samples) != 1 || buf.Samples[0] != 0.5 {
		t.Errorf("Samples = %v, want [0.5]", buf.Samples)
	}
}

func TestCanonicalBuffer_DurationZeroRate(t *testing.T) {
	t.Parallel()

	if d := (CanonicalBuffer{Samples: make([]float32, 10)}).Duration(); d != 0 {
		t.Errorf("Duration() = %v, want 0", d)
	}
}

func TestDecoder_MP3KeepsSampleCount(t *testing.T) {
	t.Parallel()

	data, err := os.ReadFile("formats/mp3/testdata/silence-16k-mono.mp3")
	if err != nil {
		t.Fatal(err)
	}

	// 28 frames of 576 samples at 16 kHz.
	const want, frame = 28 * 576, 576

	for _, name := range []string{ResamplerCubic, ResamplerSinc} {
		buf, err := NewDecoder(WithResampler(name)).Decode(EncodedAudio{Data: data, MIME: "audio/mpeg"})
		if err != nil {
			t.Fatalf("%s: Decode() error = %v", name, err)
		}
		if buf.SampleRate != CanonicalRate {
			t.Errorf("%s: SampleRate = %d, want %d", name, buf.SampleRate, CanonicalRate)
		}
		if n := len(buf.Samples); n < want-frame || n > want+frame {
			t.Errorf("%s: len = %d, want %d within one frame", name, n, want)
		}
	}
}

type ctxDecoder struct {
	audio.Decoder
	got context.Context
}

func (d *ctxDecoder) DecodeContext(ctx context.Context, r io.Reader) (audio.Source, error) {
	d.got = ctx
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return audiotest.NewSliceSource([]float32{0.5}, CanonicalRate, 1), nil
}

func TestDecoder_DecodeContext(t *testing.T) {
	t.Parallel()

	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "request")

	cd := &ctxDecoder{}
	dec := NewDecoder(WithContainerDecoder(ContainerAAC, cd))

	if _, err := dec.DecodeContext(ctx, EncodedAudio{Data: []byte{0}, MIME: "audio/mp4"}); err != nil {
		t.Fatalf("DecodeContext() error = %v", err)
	}
	if cd.got == nil || cd.got.Value(key{}) != "request" {
		t.Error("container decoder did not receive the request context")
	}

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err := dec.DecodeContext(canceled, EncodedAudio{Data: []byte{0}, MIME: "audio/mp4"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("DecodeContext() error = %v, want context.Canceled", err)
	}
	if errors.Is(err, ErrMalformedAudio) {
		t.Error("cancellation reported as malformed audio")
	}
}

func TestDecoder_Formats(t *testing.T) {
	t.Parallel()

	want := []string{"aac", "aiff", "mp3", "ogg", "wav"}
	if got := NewDecoder().Formats(); !reflect.DeepEqual(got, want) {
		t.Errorf("Formats() = %v, want %v", got, want)
	}
}
