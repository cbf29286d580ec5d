// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/ik5/audmark/audio"
)

type mockOggReader struct {
	rate     int
	channels int
	data     []float32
	err      error
}

func (m *mockOggReader) SampleRate() int { return m.rate }
func (m *mockOggReader) Channels() int   { return m.channels }

func (m *mockOggReader) Read(p []float32) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	if len(m.data) == 0 {
		return 0, io.EOF
	}
	n := copy(p, m.data)
	m.data = m.data[n:]
	return n, nil
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	_, err := Decoder{}.Decode(bytes.NewReader([]byte("OggS but not really")))
	if !errors.Is(err, ErrInvalidVorbis) {
		t.Errorf("Decode() error = %v, want ErrInvalidVorbis", err)
	}
}

func TestSource_PassesSamplesThrough(t *testing.T) {
	t.Parallel()

	want := []float32{0.1, -0.1, 0.2, -0.2, 0.3, -0.3}
	src := &source{dec: &mockOggReader{rate: 48000, channels: 2, data: append([]float32(nil), want...)}}

	got, err := audio.Collect(src, 4)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d samples, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d = %v, want %v", i, got[i], want[i])
		}
	}
	if src.SampleRate() != 48000 || src.Channels() != 2 {
		t.Errorf("metadata = (%d, %d), want (48000, 2)", src.SampleRate(), src.Channels())
	}
}

func TestSource_ReadError(t *testing.T) {
	t.Parallel()

	src := &source{dec: &mockOggReader{rate: 44100, channels: 1, err: errors.New("corrupt page")}}
	if _, err := src.ReadSamples(make([]float32, 8)); !errors.Is(err, ErrInvalidVorbis) {
		t.Errorf("ReadSamples() error = %v, want ErrInvalidVorbis", err)
	}
}
