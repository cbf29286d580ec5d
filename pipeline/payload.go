// SPDX-License-Identifier: EPL-2.0

package pipeline

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/ik5/audmark"
)

// ParsePayload decodes a base64 audio payload, optionally wrapped in a
// data URI (data:<mime>;base64,<payload>). Without the prefix the MIME type
// is left empty, which the decoder treats as WAV.
func ParsePayload(s string) (audmark.EncodedAudio, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return audmark.EncodedAudio{}, fmt.Errorf("%w: empty audio", ErrMalformedInput)
	}

	var mime string
	if len(s) >= 5 && strings.EqualFold(s[:5], "data:") {
		header, payload, ok := strings.Cut(s[5:], ",")
		if !ok {
			return audmark.EncodedAudio{}, fmt.Errorf("%w: data URI without payload", ErrMalformedInput)
		}
		meta, found := cutSuffixFold(header, ";base64")
		if !found {
			return audmark.EncodedAudio{}, fmt.Errorf("%w: data URI is not base64", ErrMalformedInput)
		}
		mime, s = meta, payload
	}

	// Clients wrap long payloads; whitespace is not part of the alphabet.
	s = strings.Join(strings.Fields(s), "")

	enc := base64.StdEncoding
	if len(s)%4 != 0 {
		enc = base64.RawStdEncoding
	}
	data, err := enc.DecodeString(s)
	if err != nil {
		return audmark.EncodedAudio{}, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}
	if len(data) == 0 {
		return audmark.EncodedAudio{}, fmt.Errorf("%w: empty audio", ErrMalformedInput)
	}

	return audmark.EncodedAudio{Data: data, MIME: mime}, nil
}

// DataURI encodes data as a base64 data URI.
func DataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func cutSuffixFold(s, suffix string) (string, bool) {
	if len(s) < len(suffix) || !strings.EqualFold(s[len(s)-len(suffix):], suffix) {
		return s, false
	}
	return s[:len(s)-len(suffix)], true
}
