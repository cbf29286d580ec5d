// SPDX-License-Identifier: EPL-2.0

package watermark

import (
	"context"
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/ik5/audmark"
)

// Method selects a backend.
type Method string

const (
	MethodNeural        Method = "neural"
	MethodExternalCodec Method = "external-codec"
)

// Methods lists every backend variant.
func Methods() []Method { return []Method{MethodNeural, MethodExternalCodec} }

// ParseMethod accepts the method names case-insensitively. An empty string
// selects the neural backend.
func ParseMethod(s string) (Method, error) {
	switch Method(strings.ToLower(strings.TrimSpace(s))) {
	case "", MethodNeural:
		return MethodNeural, nil
	case MethodExternalCodec:
		return MethodExternalCodec, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
	}
}

// DetectionThreshold is the confidence a neural detection must exceed.
// Exactly 0.5 is not a detection.
const DetectionThreshold = 0.5

// DefaultID is embedded when the caller does not supply an id.
const DefaultID = "AUDIO_WM_2025"

// Backend is the capability every backend variant exposes. Audio crosses
// the interface as mono PCM at the backend's SampleRate.
type Backend interface {
	Method() Method
	Available() bool
	SampleRate() int
	// CarriesID reports whether Embed stores id so Detect can return it.
	CarriesID() bool
	// Embed returns a marked copy of buf.
	Embed(ctx context.Context, buf audmark.CanonicalBuffer, id string) (audmark.CanonicalBuffer, error)
	Detect(ctx context.Context, buf audmark.CanonicalBuffer) (DetectionResult, error)
}

// DetectionResult is the backend-independent detection outcome.
// Confidence is in [0, 100]. WatermarkID is nil for the neural backend and
// for negative codec results.
type DetectionResult struct {
	Detected    bool    `json:"detected"`
	WatermarkID *string `json:"watermarkId"`
	Confidence  float64 `json:"confidence"`
	Method      Method  `json:"method"`
}

// FromConfidence maps a neural confidence in [0, 1] to a result. Values
// outside the range are clamped; NaN counts as zero.
func FromConfidence(score float64) DetectionResult {
	if math.IsNaN(score) {
		score = 0
	}
	score = min(max(score, 0), 1)

	return DetectionResult{
		Detected:   score > DetectionThreshold,
		Confidence: score * 100,
		Method:     MethodNeural,
	}
}

// FromExtraction maps an external codec extraction to a result. The codec
// either recovers an exact id or nothing, so confidence is 100 or 0.
func FromExtraction(id string, found bool) DetectionResult {
	if !found || id == "" {
		return DetectionResult{Method: MethodExternalCodec}
	}
	return DetectionResult{
		Detected:    true,
		WatermarkID: &id,
		Confidence:  100,
		Method:      MethodExternalCodec,
	}
}

// ValidateID rejects empty ids and ids with non-printable runes.
func ValidateID(id string) error {
	if id == "" {
		return ErrInvalidID
	}
	for _, r := range id {
		if !unicode.IsPrint(r) {
			return fmt.Errorf("%w: %q", ErrInvalidID, id)
		}
	}
	return nil
}
