// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MPEG-1/2 Layer III audio through
// github.com/hajimehoshi/go-mp3.
//
// go-mp3 always produces interleaved stereo 16-bit PCM, even for mono
// files, so the returned Source reports two channels; down-mixing is left to
// audio.MonoMixer.
package mp3
