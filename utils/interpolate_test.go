// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"math"
	"testing"
)

func TestCatmullRom(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		p         [4]float32
		x         float32
		want      float32
		tolerance float32
	}{
		{name: "start returns p1", p: [4]float32{0, 1, 2, 3}, x: 0, want: 1, tolerance: 0.0001},
		{name: "end returns p2", p: [4]float32{0, 1, 2, 3}, x: 1, want: 2, tolerance: 0.0001},
		{name: "linear data stays linear", p: [4]float32{1, 2, 3, 4}, x: 0.25, want: 2.25, tolerance: 0.001},
		{name: "zero signal", p: [4]float32{}, x: 0.5, want: 0, tolerance: 0},
		{name: "symmetric crossing", p: [4]float32{-1, -0.5, 0.5, 1}, x: 0.5, want: 0, tolerance: 0.001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := CatmullRom(&tt.p, tt.x)
			if diff := float32(math.Abs(float64(got - tt.want))); diff > tt.tolerance {
				t.Errorf("CatmullRom(%v, %v) = %v, want %v", tt.p, tt.x, got, tt.want)
			}
		})
	}
}

func TestCatmullRom_ZeroAllocs(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping allocation test in short mode")
	}

	p := [4]float32{0.5, 1.0, 0.8, 0.3}
	allocs := testing.AllocsPerRun(1000, func() {
		_ = CatmullRom(&p, 0.5)
	})

	if allocs > 0 {
		t.Errorf("CatmullRom allocated %v times, want 0", allocs)
	}
}
