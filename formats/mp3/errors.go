// SPDX-License-Identifier: EPL-2.0

package mp3

import "errors"

var ErrInvalidMP3 = errors.New("invalid MP3 stream")
