// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// Environment variables understood by the fake codec tool.
const (
	FakeCodecEnv     = "AUDMARK_FAKE_CODEC"
	FakeCodecFailEnv = "AUDMARK_FAKE_CODEC_FAIL"
)

const fakeMagic = 0xA5

// FakeCodecCommand returns the binary, prefix arguments and extra
// environment that make the running test binary behave like the external
// watermark tool. The test package must define:
//
//	func TestHelperProcess(t *testing.T) { audiotest.MaybeRunFakeCodec() }
func FakeCodecCommand() (string, []string, []string) {
	return os.Args[0], []string{"-test.run=^TestHelperProcess$", "--"}, []string{FakeCodecEnv + "=1"}
}

// MaybeRunFakeCodec turns the current process into the fake tool when it
// was started by FakeCodecCommand. It never returns in that case.
func MaybeRunFakeCodec() {
	if os.Getenv(FakeCodecEnv) != "1" {
		return
	}

	args := os.Args
	for i, a := range args {
		if a == "--" {
			args = args[i+1:]
			break
		}
	}
	os.Exit(RunFakeCodec(args, os.Stdout, os.Stderr))
}

// RunFakeCodec implements `add <in> <out> <id>` and `get <in>` by hiding the
// id in the least significant bits of the PCM16 data chunk. It returns the
// process exit status.
func RunFakeCodec(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, "usage: add <in> <out> <id> | get <in>")
		return 2
	}

	switch {
	case args[0] == "add" && len(args) == 4:
		if os.Getenv(FakeCodecFailEnv) == "add" {
			fmt.Fprintln(stderr, "audiowmark: cannot embed: input too short")
			return 3
		}
		if err := fakeAdd(args[1], args[2], args[3]); err != nil {
			fmt.Fprintln(stderr, err)
			return 2
		}
		return 0
	case args[0] == "get" && len(args) == 2:
		id, err := fakeGet(args[1])
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		fmt.Fprintf(stdout, "  %s\n", id)
		return 0
	default:
		fmt.Fprintln(stderr, "bad arguments")
		return 2
	}
}

func fakeAdd(in, out, id string) error {
	raw, err := os.ReadFile(in)
	if err != nil {
		return err
	}
	start, end, err := dataChunk(raw)
	if err != nil {
		return err
	}

	payload := append([]byte{fakeMagic, byte(len(id))}, id...)
	if len(payload)*8 > (end-start)/2 {
		return errors.New("input too short for payload")
	}

	for bit := range len(payload) * 8 {
		b := (payload[bit/8] >> (7 - bit%8)) & 1
		lo := start + bit*2
		raw[lo] = raw[lo]&^1 | b
	}
	return os.WriteFile(out, raw, 0o600)
}

func fakeGet(in string) (string, error) {
	raw, err := os.ReadFile(in)
	if err != nil {
		return "", err
	}
	start, end, err := dataChunk(raw)
	if err != nil {
		return "", err
	}

	samples := (end - start) / 2
	readByte := func(idx int) (byte, bool) {
		if (idx+1)*8 > samples {
			return 0, false
		}
		var v byte
		for i := range 8 {
			v = v<<1 | raw[start+(idx*8+i)*2]&1
		}
		return v, true
	}

	if m, ok := readByte(0); !ok || m != fakeMagic {
		return "", errors.New("no watermark found")
	}
	n, ok := readByte(1)
	if !ok || n == 0 {
		return "", errors.New("no watermark found")
	}

	id := make([]byte, n)
	for i := range id {
		if id[i], ok = readByte(2 + i); !ok {
			return "", errors.New("truncated watermark")
		}
	}
	return string(id), nil
}

// dataChunk locates the PCM payload of a RIFF/WAVE file.
func dataChunk(raw []byte) (int, int, error) {
	if len(raw) < 12 || !bytes.Equal(raw[:4], []byte("RIFF")) || !bytes.Equal(raw[8:12], []byte("WAVE")) {
		return 0, 0, errors.New("not a wav file")
	}

	pos := 12
	for pos+8 <= len(raw) {
		id := string(raw[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(raw[pos+4 : pos+8]))
		body := pos + 8
		if id == "data" {
			return body, min(body+size, len(raw)), nil
		}
		pos = body + size + size%2
	}
	return 0, 0, errors.New("no data chunk")
}
