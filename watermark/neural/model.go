// SPDX-License-Identifier: EPL-2.0

package neural

import (
	"math"
	"math/rand/v2"
)

// Model embeds and scores the implicit mark. Implementations must be safe
// for concurrent use.
type Model interface {
	Embed(samples []float32) ([]float32, error)
	// Detect returns a confidence in [0, 1].
	Detect(samples []float32) (float64, error)
}

// SpreadSpectrum adds a low-level pseudo-random ±1 carrier to the signal and
// detects it by normalized correlation. It is immutable after construction.
type SpreadSpectrum struct {
	w       Weights
	carrier []float32
}

func NewSpreadSpectrum(w Weights) (*SpreadSpectrum, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewPCG(w.Seed, w.Seed^0x9e3779b97f4a7c15))
	carrier := make([]float32, w.CarrierLength)
	for i := range carrier {
		if rng.Uint64()&1 == 0 {
			carrier[i] = -1
		} else {
			carrier[i] = 1
		}
	}

	return &SpreadSpectrum{w: w, carrier: carrier}, nil
}

// stats returns the carrier correlation and the signal energy.
func (m *SpreadSpectrum) stats(samples []float32) (corr, energy float64) {
	n := len(m.carrier)
	for i, x := range samples {
		v := float64(x)
		corr += v * float64(m.carrier[i%n])
		energy += v * v
	}
	return corr, energy
}

// score is the correlation normalized so unmarked audio scores roughly
// standard normal.
func (m *SpreadSpectrum) score(samples []float32) float64 {
	corr, energy := m.stats(samples)
	if energy == 0 {
		return 0
	}
	return corr / math.Sqrt(energy)
}

// A clip of l samples cannot score above sqrt(l). Short clips embed toward
// shortTarget*sqrt(l) and detect around shortCenter*sqrt(l) so a marked clip
// always clears the detection center.
const (
	shortTarget = 0.9
	shortCenter = 0.7
)

// amplitude picks the carrier amplitude: Strength times the input RMS, at
// least MinAmplitude, raised further when needed for the marked signal to
// reach TargetScore.
func (m *SpreadSpectrum) amplitude(samples []float32) float64 {
	corr, energy := m.stats(samples)
	l := float64(len(samples))

	a := max(m.w.Strength*math.Sqrt(energy/l), m.w.MinAmplitude)

	t := min(m.w.TargetScore, shortTarget*math.Sqrt(l))
	// With u = corr + a*l the marked score is u*sqrt(l)/sqrt(u*u + resid),
	// increasing in u. Solve for score t; u stays positive when the input is
	// a multiple of the carrier and resid is zero.
	resid := max(l*energy-corr*corr, 0)
	u := max(t*math.Sqrt(resid/(l-t*t)), m.w.MinAmplitude*l)
	need := (u - corr) / l

	return max(a, need)
}

// center is the logistic midpoint for a clip of l samples.
func (m *SpreadSpectrum) center(l int) float64 {
	return min(m.w.Center, shortCenter*math.Sqrt(float64(l)))
}

func (m *SpreadSpectrum) Embed(samples []float32) ([]float32, error) {
	out := make([]float32, len(samples))
	if len(samples) == 0 {
		return out, nil
	}

	a := m.amplitude(samples)
	n := len(m.carrier)
	for i, x := range samples {
		out[i] = float32(float64(x) + a*float64(m.carrier[i%n]))
	}
	return out, nil
}

func (m *SpreadSpectrum) Detect(samples []float32) (float64, error) {
	if len(samples) == 0 {
		return 0, nil
	}
	z := m.score(samples)
	return 1 / (1 + math.Exp(-m.w.Slope*(z-m.center(len(samples))))), nil
}

// Noop is the stand-in used when no model could be loaded. It leaves audio
// untouched and never detects anything.
type Noop struct{}

func (Noop) Embed(samples []float32) ([]float32, error) {
	return append([]float32(nil), samples...), nil
}

func (Noop) Detect([]float32) (float64, error) { return 0, nil }
