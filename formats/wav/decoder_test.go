// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/ik5/audmark/audio"
	"github.com/ik5/audmark/internal/audiotest"
)

// fmtChunk writes a 16-byte fmt chunk.
func fmtChunk(buf *bytes.Buffer, format, channels uint16, rate uint32, bits uint16) {
	blockAlign := channels * bits / 8
	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, format)
	binary.Write(buf, binary.LittleEndian, channels)
	binary.Write(buf, binary.LittleEndian, rate)
	binary.Write(buf, binary.LittleEndian, rate*uint32(blockAlign))
	binary.Write(buf, binary.LittleEndian, blockAlign)
	binary.Write(buf, binary.LittleEndian, bits)
}

func riffWrap(body []byte) []byte {
	out := new(bytes.Buffer)
	out.WriteString("RIFF")
	binary.Write(out, binary.LittleEndian, uint32(4+len(body)))
	out.WriteString("WAVE")
	out.Write(body)
	return out.Bytes()
}

func TestDecoder_ValidFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		rate     int
		channels int
	}{
		{name: "mono 8k", rate: 8000, channels: 1},
		{name: "stereo 44.1k", rate: 44100, channels: 2},
		{name: "mono 16k", rate: 16000, channels: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			data := audiotest.SilenceWAV(tt.rate, tt.channels, 100)
			src, err := Decoder{}.Decode(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if src.SampleRate() != tt.rate {
				t.Errorf("SampleRate() = %d, want %d", src.SampleRate(), tt.rate)
			}
			if src.Channels() != tt.channels {
				t.Errorf("Channels() = %d, want %d", src.Channels(), tt.channels)
			}
		})
	}
}

func TestDecoder_SampleValues(t *testing.T) {
	t.Parallel()

	samples := []int16{0, 16384, 32767, -16384, -32768}
	src, err := Decoder{}.Decode(bytes.NewReader(audiotest.WAV16(8000, 1, samples)))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	got, err := audio.Collect(src, 64)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	want := []float32{0, 0.5, 32767.0 / 32768.0, -0.5, -1}
	if len(got) != len(want) {
		t.Fatalf("got %d samples, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestDecoder_NonSeekableReader(t *testing.T) {
	t.Parallel()

	data := audiotest.SineWAV(16000, 1, 1600, 440, 0.5)
	src, err := Decoder{}.Decode(io.MultiReader(bytes.NewReader(data)))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	got, err := audio.Collect(src, 256)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(got) != 1600 {
		t.Errorf("got %d samples, want 1600", len(got))
	}
}

func TestDecoder_SkipsUnknownChunks(t *testing.T) {
	t.Parallel()

	body := new(bytes.Buffer)
	fmtChunk(body, 1, 1, 8000, 16)
	body.WriteString("junk")
	binary.Write(body, binary.LittleEndian, uint32(4))
	body.Write([]byte{1, 2, 3, 4})
	body.WriteString("data")
	binary.Write(body, binary.LittleEndian, uint32(4))
	binary.Write(body, binary.LittleEndian, []int16{100, 200})

	src, err := Decoder{}.Decode(bytes.NewReader(riffWrap(body.Bytes())))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	got, err := audio.Collect(src, 16)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d samples, want 2", len(got))
	}
}

func TestDecoder_Rejects(t *testing.T) {
	t.Parallel()

	floatBody := new(bytes.Buffer)
	fmtChunk(floatBody, 3, 1, 8000, 32)
	floatBody.WriteString("data")
	binary.Write(floatBody, binary.LittleEndian, uint32(0))

	eightBit := new(bytes.Buffer)
	fmtChunk(eightBit, 1, 1, 8000, 8)
	eightBit.WriteString("data")
	binary.Write(eightBit, binary.LittleEndian, uint32(0))

	noData := new(bytes.Buffer)
	fmtChunk(noData, 1, 1, 8000, 16)

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{name: "not riff", data: []byte("NOT A WAV FILE AT ALL, JUST TEXT"), want: ErrNotWavFile},
		{name: "truncated header", data: []byte("RIFF\x00"), want: ErrNotWavFile},
		{name: "ieee float", data: riffWrap(floatBody.Bytes()), want: ErrUnsupportedEncoding},
		{name: "8-bit", data: riffWrap(eightBit.Bytes()), want: ErrUnsupportedBitDepth},
		{name: "no data chunk", data: riffWrap(noData.Bytes()), want: ErrNoDataChunk},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Decoder{}.Decode(bytes.NewReader(tt.data))
			if !errors.Is(err, tt.want) {
				t.Errorf("Decode() error = %v, want %v", err, tt.want)
			}
		})
	}
}

type fakePCM struct {
	values []int
	err    error
}

func (f *fakePCM) PCMBuffer(buf *goaudio.IntBuffer) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	n := copy(buf.Data, f.values)
	f.values = f.values[n:]
	return n, nil
}

func TestSource_BitDepthScaling(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		depth int
		value int
		want  float32
	}{
		{name: "16-bit half", depth: 16, value: 16384, want: 0.5},
		{name: "24-bit half", depth: 24, value: 1 << 22, want: 0.5},
		{name: "32-bit negative full", depth: 32, value: -(1 << 31), want: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := &source{dec: &fakePCM{values: []int{tt.value}}, sampleRate: 8000, channels: 1, bitDepth: tt.depth}
			dst := make([]float32, 4)

			n, err := src.ReadSamples(dst)
			if err != nil || n != 1 {
				t.Fatalf("ReadSamples() = (%d, %v), want (1, nil)", n, err)
			}
			if math.Abs(float64(dst[0]-tt.want)) > 1e-6 {
				t.Errorf("sample = %v, want %v", dst[0], tt.want)
			}

			if n, err := src.ReadSamples(dst); n != 0 || err != io.EOF {
				t.Errorf("second ReadSamples() = (%d, %v), want (0, EOF)", n, err)
			}
		})
	}
}

func TestSource_ReadError(t *testing.T) {
	t.Parallel()

	errDisk := errors.New("disk on fire")
	src := &source{dec: &fakePCM{err: errDisk}, sampleRate: 8000, channels: 1, bitDepth: 16}

	if _, err := src.ReadSamples(make([]float32, 4)); !errors.Is(err, errDisk) {
		t.Errorf("ReadSamples() error = %v, want %v", err, errDisk)
	}
}
