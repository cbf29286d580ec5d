// SPDX-License-Identifier: EPL-2.0

package utils

const pcm16Scale = 32768.0

// Float32ToInt16 converts a normalized sample to 16-bit PCM.
//
// The scale matches Int16ToFloat32 and the result is rounded, so any value
// produced by Int16ToFloat32 converts back to the exact same int16. Values
// outside [-1, 1) are clamped.
func Float32ToInt16(x float32) int16 {
	v := x * pcm16Scale
	if v >= 32767 {
		return 32767
	}
	if v <= -32768 {
		return -32768
	}

	if v >= 0 {
		return int16(v + 0.5)
	}
	return int16(v - 0.5)
}

// Int16ToFloat32 converts a 16-bit PCM sample to a float32 in [-1, 1).
func Int16ToFloat32(v int16) float32 {
	return float32(v) / pcm16Scale
}

// Float32sToInt16s converts a whole buffer, reusing dst when it is large enough.
func Float32sToInt16s(dst []int16, src []float32) []int16 {
	if cap(dst) < len(src) {
		dst = make([]int16, len(src))
	}
	dst = dst[:len(src)]
	for i, x := range src {
		dst[i] = Float32ToInt16(x)
	}
	return dst
}
