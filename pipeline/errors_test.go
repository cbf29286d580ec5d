// SPDX-License-Identifier: EPL-2.0

package pipeline

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ik5/audmark"
	"github.com/ik5/audmark/internal/ffmpeg"
	"github.com/ik5/audmark/watermark"
	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err    error
		want   Kind
		client bool
	}{
		{err: fmt.Errorf("x: %w", ErrMalformedInput), want: KindMalformedInput, client: true},
		{err: watermark.ErrInvalidID, want: KindMalformedInput, client: true},
		{err: watermark.ErrUnknownMethod, want: KindMalformedInput, client: true},
		{err: audmark.ErrUnsupportedFormat, want: KindUnsupportedFormat, client: true},
		{err: audmark.ErrMalformedAudio, want: KindMalformedAudio, client: true},
		{err: fmt.Errorf("%w: aac: %w", audmark.ErrMalformedAudio, ffmpeg.ErrNotFound), want: KindBackendUnavailable},
		{err: watermark.ErrBackendUnavailable, want: KindBackendUnavailable},
		{err: &watermark.EmbedError{ExitCode: 1}, want: KindEmbedFailed},
		{err: errors.New("disk full"), want: KindInternal},
		{err: &Error{Stage: StageDecode, Kind: KindMalformedAudio, Err: errors.New("x")}, want: KindMalformedAudio, client: true},
	}

	for _, tt := range tests {
		got := KindOf(tt.err)
		assert.Equal(t, tt.want, got, tt.err.Error())
		assert.Equal(t, tt.client, got.ClientError(), tt.err.Error())
		assert.NotEmpty(t, got.String())
	}
}

func TestErrorWraps(t *testing.T) {
	t.Parallel()

	err := fail(StageDispatch, &watermark.EmbedError{ExitCode: 2, Diagnostic: "nope"})
	assert.Equal(t, KindEmbedFailed, err.Kind)
	assert.ErrorIs(t, err, watermark.ErrEmbedFailed)
	assert.Contains(t, err.Error(), "dispatch: ")
}
