// SPDX-License-Identifier: EPL-2.0

package audmark

import "errors"

var (
	// ErrUnsupportedFormat indicates a container tag no decoder accepts.
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrMalformedAudio indicates the container could not be parsed.
	ErrMalformedAudio = errors.New("malformed audio")
)
