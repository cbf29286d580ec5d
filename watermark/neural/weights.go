// SPDX-License-Identifier: EPL-2.0

package neural

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var ErrInvalidWeights = errors.New("invalid model weights")

// Weights parameterizes the spread-spectrum model.
type Weights struct {
	Version int `yaml:"version"`
	// Seed derives the ±1 carrier sequence.
	Seed uint64 `yaml:"seed"`
	// CarrierLength is the carrier period in samples.
	CarrierLength int `yaml:"carrier_length"`
	// Strength is the carrier amplitude relative to the input RMS.
	Strength float64 `yaml:"strength"`
	// MinAmplitude keeps silent input markable.
	MinAmplitude float64 `yaml:"min_amplitude"`
	// TargetScore is the correlation score Embed aims for.
	TargetScore float64 `yaml:"target_score"`
	// Center and Slope shape the logistic that maps score to confidence.
	Center float64 `yaml:"center"`
	Slope  float64 `yaml:"slope"`
}

// DefaultWeights are used when no weights file is configured.
func DefaultWeights() Weights {
	return Weights{
		Version:       1,
		Seed:          0x5eed_a0d1_0c0d_e001,
		CarrierLength: 4096,
		Strength:      0.1,
		MinAmplitude:  1.0 / 2048,
		TargetScore:   8,
		Center:        4,
		Slope:         1.5,
	}
}

func (w Weights) Validate() error {
	switch {
	case w.CarrierLength < 16:
		return fmt.Errorf("%w: carrier_length %d < 16", ErrInvalidWeights, w.CarrierLength)
	case w.Strength < 0 || w.MinAmplitude <= 0:
		return fmt.Errorf("%w: amplitudes must be positive", ErrInvalidWeights)
	case w.TargetScore <= w.Center:
		return fmt.Errorf("%w: target_score must exceed center", ErrInvalidWeights)
	case w.Slope <= 0:
		return fmt.Errorf("%w: slope must be positive", ErrInvalidWeights)
	}
	return nil
}

// LoadWeights reads a YAML weights file. Fields it omits keep their default.
func LoadWeights(path string) (Weights, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Weights{}, fmt.Errorf("reading weights: %w", err)
	}

	w := DefaultWeights()
	if err := yaml.Unmarshal(data, &w); err != nil {
		return Weights{}, fmt.Errorf("%w: %w", ErrInvalidWeights, err)
	}
	if err := w.Validate(); err != nil {
		return Weights{}, err
	}
	return w, nil
}
