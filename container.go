// SPDX-License-Identifier: EPL-2.0

package audmark

import (
	"fmt"
	"strings"
)

// Container is the decode strategy selected for an input.
type Container int

const (
	ContainerWAV Container = iota
	ContainerMP3
	ContainerAAC
	ContainerOgg
	ContainerAIFF
)

func (c Container) String() string {
	switch c {
	case ContainerWAV:
		return "wav"
	case ContainerMP3:
		return "mp3"
	case ContainerAAC:
		return "aac"
	case ContainerOgg:
		return "ogg"
	case ContainerAIFF:
		return "aiff"
	default:
		return fmt.Sprintf("Container(%d)", int(c))
	}
}

// MIME returns the canonical MIME type for the container.
func (c Container) MIME() string {
	switch c {
	case ContainerMP3:
		return "audio/mpeg"
	case ContainerAAC:
		return "audio/aac"
	case ContainerOgg:
		return "audio/ogg"
	case ContainerAIFF:
		return "audio/aiff"
	default:
		return "audio/wav"
	}
}

// containerRules are checked in order; the first rule with a matching
// substring wins.
var containerRules = []struct {
	needles   []string
	container Container
}{
	{[]string{"mpeg", "mp3"}, ContainerMP3},
	{[]string{"aac", "mp4", "m4a"}, ContainerAAC},
	{[]string{"ogg", "vorbis"}, ContainerOgg},
	{[]string{"aiff"}, ContainerAIFF},
	{[]string{"wav"}, ContainerWAV},
}

// ParseContainer selects a decode strategy from a MIME type or short tag.
// Matching is case-insensitive. An empty or unrecognized audio tag selects
// WAV; a tag from another top-level media type is ErrUnsupportedFormat.
func ParseContainer(tag string) (Container, error) {
	t := strings.ToLower(strings.TrimSpace(tag))
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	if t == "" {
		return ContainerWAV, nil
	}

	for _, rule := range containerRules {
		for _, n := range rule.needles {
			if strings.Contains(t, n) {
				return rule.container, nil
			}
		}
	}

	if top, _, ok := strings.Cut(t, "/"); ok && top != "audio" && t != "application/octet-stream" {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, tag)
	}
	return ContainerWAV, nil
}
