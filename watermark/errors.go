// SPDX-License-Identifier: EPL-2.0

package watermark

import (
	"errors"
	"fmt"
)

var (
	ErrBackendUnavailable = errors.New("watermark backend unavailable")
	ErrEmbedFailed        = errors.New("watermark embed failed")
	ErrUnknownMethod      = errors.New("unknown watermark method")
	ErrInvalidID          = errors.New("watermark id must be non-empty printable text")
	ErrSampleRate         = errors.New("sample rate not accepted by backend")
)

// EmbedError carries the external tool's exit status and diagnostic output.
type EmbedError struct {
	ExitCode   int
	Diagnostic string
}

func (e *EmbedError) Error() string {
	if e.Diagnostic == "" {
		return fmt.Sprintf("%s: exit status %d", ErrEmbedFailed, e.ExitCode)
	}
	return fmt.Sprintf("%s: exit status %d: %s", ErrEmbedFailed, e.ExitCode, e.Diagnostic)
}

func (e *EmbedError) Unwrap() error { return ErrEmbedFailed }
