// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audmark/utils"
)

// Resampler streams src at a new sample rate using Catmull-Rom
// interpolation. It works on interleaved samples and preserves the channel
// count. When downsampling, every source frame first passes through a
// one-pole low-pass filter to tame aliasing.
type Resampler struct {
	src      Source
	dstRate  int
	channels int
	step     float64 // source frames advanced per output frame

	// win[c] holds frames base-1, base, base+1, base+2 for channel c.
	win    [][4]float32
	frac   float64
	primed bool

	loaded int // real frames read from src so far
	last   int // index of the last real frame, valid once eof is set
	base   int
	eof    bool

	chunk    []float32
	chunkPos int
	chunkLen int
	srcErr   error

	lowpass bool
	alpha   float32
	state   []float32
	frame   []float32
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()
	step := float64(src.SampleRate()) / float64(dstRate)

	r := &Resampler{
		src:      src,
		dstRate:  dstRate,
		channels: channels,
		step:     step,
		win:      make([][4]float32, channels),
		chunk:    make([]float32, channels*1024),
		state:    make([]float32, channels),
		frame:    make([]float32, channels),
	}

	if step > 1 {
		r.lowpass = true
		r.alpha = float32(1 / step)
	}

	return r
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// readFrame copies the next source frame into r.frame. It reports false once
// the source is exhausted.
func (r *Resampler) readFrame() (bool, error) {
	for r.chunkLen-r.chunkPos < r.channels {
		if r.srcErr != nil {
			if errors.Is(r.srcErr, io.EOF) {
				return false, nil
			}
			return false, r.srcErr
		}

		n, err := r.src.ReadSamples(r.chunk)
		r.chunkPos, r.chunkLen = 0, n-n%r.channels
		r.srcErr = err
		if n == 0 && err == nil {
			r.srcErr = io.ErrNoProgress
		}
	}

	copy(r.frame, r.chunk[r.chunkPos:r.chunkPos+r.channels])
	r.chunkPos += r.channels

	if r.lowpass {
		if r.loaded == 0 {
			copy(r.state, r.frame)
		}
		for c, x := range r.frame {
			y := r.alpha*x + (1-r.alpha)*r.state[c]
			r.state[c] = y
			r.frame[c] = y
		}
	}

	r.loaded++
	return true, nil
}

// push shifts the window left by one frame and appends the next source
// frame, repeating the newest frame once the source is exhausted.
func (r *Resampler) push() error {
	ok := false
	if !r.eof {
		var err error
		ok, err = r.readFrame()
		if err != nil {
			return fmt.Errorf("%w", err)
		}
		if !ok {
			r.eof = true
			r.last = r.loaded - 1
		}
	}

	for c := range r.win {
		w := &r.win[c]
		w[0], w[1], w[2] = w[1], w[2], w[3]
		if ok {
			w[3] = r.frame[c]
		}
	}
	return nil
}

// prime loads up to three frames so the window holds frames -1 (clamped to
// 0), 0, 1 and 2.
func (r *Resampler) prime() error {
	var frames [3][]float32
	n := 0
	for n < len(frames) {
		ok, err := r.readFrame()
		if err != nil {
			return fmt.Errorf("%w", err)
		}
		if !ok {
			r.eof = true
			break
		}
		frames[n] = append([]float32(nil), r.frame...)
		n++
	}

	if n == 0 {
		r.last = -1
		return nil
	}
	if r.eof {
		r.last = n - 1
	}

	for c := range r.win {
		f0 := frames[0][c]
		f1 := frames[min(1, n-1)][c]
		f2 := frames[min(2, n-1)][c]
		r.win[c] = [4]float32{f0, f0, f1, f2}
	}
	return nil
}

// ReadSamples produces samples at the destination rate. dst length must be a
// multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if r.channels <= 0 {
		return 0, ErrNoChannels
	}
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if !r.primed {
		r.primed = true
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	written := 0
	for written < len(dst) {
		if r.eof && r.base > r.last {
			break
		}

		t := float32(r.frac)
		for c := range r.win {
			dst[written+c] = utils.CatmullRom(&r.win[c], t)
		}
		written += r.channels

		r.frac += r.step
		for r.frac >= 1 {
			r.frac--
			r.base++
			if err := r.push(); err != nil {
				return written, err
			}
		}
	}

	if r.eof && r.base > r.last {
		return written, io.EOF
	}
	return written, nil
}
