// SPDX-License-Identifier: EPL-2.0

package pipeline

import (
	"errors"
	"fmt"

	"github.com/ik5/audmark"
	"github.com/ik5/audmark/internal/ffmpeg"
	"github.com/ik5/audmark/watermark"
)

// ErrMalformedInput covers request payloads that cannot be interpreted:
// bad base64, a bad data URI, an unknown method or output format.
var ErrMalformedInput = errors.New("malformed input")

// Stage names where a request failed.
type Stage string

const (
	StageParse    Stage = "parse"
	StageDecode   Stage = "decode"
	StageDispatch Stage = "dispatch"
	StageEncode   Stage = "encode"
)

// Kind classifies a failure for the caller.
type Kind int

const (
	KindInternal Kind = iota
	KindMalformedInput
	KindUnsupportedFormat
	KindMalformedAudio
	KindBackendUnavailable
	KindEmbedFailed
)

func (k Kind) String() string {
	switch k {
	case KindMalformedInput:
		return "malformed_input"
	case KindUnsupportedFormat:
		return "unsupported_format"
	case KindMalformedAudio:
		return "malformed_audio"
	case KindBackendUnavailable:
		return "backend_unavailable"
	case KindEmbedFailed:
		return "embed_failed"
	default:
		return "internal"
	}
}

// ClientError reports whether the failure was caused by the request.
func (k Kind) ClientError() bool {
	switch k {
	case KindMalformedInput, KindUnsupportedFormat, KindMalformedAudio:
		return true
	}
	return false
}

// Error is returned by every failed pipeline call.
type Error struct {
	Stage Stage
	Kind  Kind
	Err   error
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %v", e.Stage, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

func fail(stage Stage, err error) *Error {
	return &Error{Stage: stage, Kind: classify(err), Err: err}
}

func classify(err error) Kind {
	switch {
	case errors.Is(err, ErrMalformedInput),
		errors.Is(err, watermark.ErrInvalidID),
		errors.Is(err, watermark.ErrUnknownMethod):
		return KindMalformedInput
	case errors.Is(err, ffmpeg.ErrNotFound),
		errors.Is(err, watermark.ErrBackendUnavailable):
		return KindBackendUnavailable
	case errors.Is(err, audmark.ErrUnsupportedFormat):
		return KindUnsupportedFormat
	case errors.Is(err, audmark.ErrMalformedAudio):
		return KindMalformedAudio
	case errors.Is(err, watermark.ErrEmbedFailed):
		return KindEmbedFailed
	default:
		return KindInternal
	}
}

// KindOf returns the failure kind of err; errors that did not come from a
// Pipeline are classified by the sentinel they wrap.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return classify(err)
}
