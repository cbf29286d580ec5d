// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis streams through
// github.com/jfreymuth/oggvorbis. Vorbis decodes natively to float32, so
// samples are passed through without rescaling.
package vorbis
