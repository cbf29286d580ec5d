// SPDX-License-Identifier: EPL-2.0

// Package audmark turns encoded audio of any supported container into the
// canonical buffer every watermark backend consumes: mono float32 PCM at a
// fixed sample rate.
//
// # Containers
//
// The container is chosen from the declared MIME type or tag with
// ParseContainer:
//   - "mpeg" or "mp3" selects MP3 (formats/mp3)
//   - "aac", "mp4" or "m4a" selects AAC, decoded through ffmpeg (formats/aac)
//   - "ogg" or "vorbis" selects Ogg Vorbis (formats/vorbis)
//   - "aiff" selects AIFF (formats/aiff)
//   - anything else under audio/, or no tag at all, is treated as WAV
//
// A tag naming another top-level media type, such as image/png, is rejected
// with ErrUnsupportedFormat.
//
// # Quick Start
//
//	dec := audmark.NewDecoder()
//	buf, err := dec.Decode(audmark.EncodedAudio{Data: data, MIME: "audio/mpeg"})
//	if err != nil {
//	    return err
//	}
//	// buf.Samples is mono at buf.SampleRate (16000 by default)
//
// # Resampling
//
// Sources already at the target rate are never resampled. Otherwise the
// default streaming cubic resampler from the audio package is used, or the
// polyphase sinc resampler when the decoder is built with
// WithResampler(ResamplerSinc).
//
// ResampleToMono and ResampleToMono16 expose the same mono+resample step for
// callers that already hold an audio.Source.
package audmark
