// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF files through github.com/go-audio/aiff.
// Only 16-bit PCM is accepted.
package aiff
