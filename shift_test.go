/*
Copyright © 2019 the TracerBudget authors.
This file is part of TracerBudget.

TracerBudget is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

TracerBudget is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with TracerBudget.  If not, see <http://www.gnu.org/licenses/>.
*/

package tracerbudget

import (
	"math"
	"testing"
)

// TestShiftWest pins the index semantics of the shift operator:
// position i holds what was at i+1, and the easternmost column is NaN
// rather than wrapping.
func TestShiftWest(t *testing.T) {
	a := denseFromSlice([]int{2, 3}, []float64{1, 2, 3, 4, 5, 6})
	s := ShiftWest(a)
	for j := 0; j < 2; j++ {
		for i := 0; i < 2; i++ {
			if got, want := s.Get(j, i), a.Get(j, i+1); got != want {
				t.Errorf("shifted[%d,%d]: got %g, want %g", j, i, got, want)
			}
		}
		if got := s.Get(j, 2); !math.IsNaN(got) {
			t.Errorf("shifted[%d,2]: got %g, want NaN", j, got)
		}
	}
}

func TestShiftSouth(t *testing.T) {
	a := denseFromSlice([]int{3, 2}, []float64{1, 2, 3, 4, 5, 6})
	s := ShiftSouth(a)
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if got, want := s.Get(j, i), a.Get(j+1, i); got != want {
				t.Errorf("shifted[%d,%d]: got %g, want %g", j, i, got, want)
			}
		}
		if got := s.Get(2, i); !math.IsNaN(got) {
			t.Errorf("shifted[2,%d]: got %g, want NaN", i, got)
		}
	}
}

func TestShiftWest3D(t *testing.T) {
	a := denseFromSlice([]int{1, 2, 2}, []float64{1, 2, 3, 4})
	s := ShiftWest(a)
	if got := s.Get(0, 0, 0); got != 2 {
		t.Errorf("shifted[0,0,0]: got %g, want 2", got)
	}
	if got := s.Get(0, 1, 0); got != 4 {
		t.Errorf("shifted[0,1,0]: got %g, want 4", got)
	}
	if got := s.Get(0, 0, 1); !math.IsNaN(got) {
		t.Errorf("shifted[0,0,1]: got %g, want NaN", got)
	}
}

func TestFluxDivergence(t *testing.T) {
	fluxE := denseFromSlice([]int{1, 2, 2}, []float64{1, 2, 3, 4})
	fluxN := denseFromSlice([]int{1, 2, 2}, []float64{5, 6, 7, 8})
	vol := denseFromSlice([]int{1, 2, 2}, []float64{1, 1, 1, 1})

	div := FluxDivergence(fluxE, fluxN, vol, advectiveSign)
	// Only cell (0,0) has both a west and a south neighbor:
	// (2-1) + (7-5) = 3.
	if got := div.Get(0, 0, 0); got != 3 {
		t.Errorf("divergence[0,0,0]: got %g, want 3", got)
	}
	for _, idx := range [][3]int{{0, 0, 1}, {0, 1, 0}, {0, 1, 1}} {
		if got := div.Get(idx[0], idx[1], idx[2]); !math.IsNaN(got) {
			t.Errorf("divergence%v: got %g, want NaN at the domain boundary", idx, got)
		}
	}
}

// TestFluxDivergenceSignAsymmetry checks that for identical inputs the
// diffusive divergence is the exact negation of the advective one.
func TestFluxDivergenceSignAsymmetry(t *testing.T) {
	fluxE := denseFromSlice([]int{1, 3, 3}, []float64{1, -2, 3, 4, 5, -6, 7, 8, 9})
	fluxN := denseFromSlice([]int{1, 3, 3}, []float64{-1, 2, 3, 4, -5, 6, 7, -8, 9})
	vol := denseFromSlice([]int{1, 3, 3}, []float64{2, 2, 2, 2, 2, 2, 2, 2, 2})

	adv := FluxDivergence(fluxE, fluxN, vol, advectiveSign)
	mix := FluxDivergence(fluxE, fluxN, vol, diffusiveSign)
	for i := range adv.Elements {
		a, m := adv.Elements[i], mix.Elements[i]
		if math.IsNaN(a) != math.IsNaN(m) {
			t.Errorf("element %d: NaN pattern differs (%g vs %g)", i, a, m)
		} else if !math.IsNaN(a) && m != -a {
			t.Errorf("element %d: got %g, want %g", i, m, -a)
		}
	}
}

func TestSumLevels(t *testing.T) {
	a := denseFromSlice([]int{2, 1, 2}, []float64{1, math.NaN(), 2, math.NaN()})
	s := sumLevels(a)
	if got := s.Get(0, 0); got != 3 {
		t.Errorf("sum[0,0]: got %g, want 3", got)
	}
	// A column that is NaN at every level sums to zero; callers mask
	// such columns afterwards.
	if got := s.Get(0, 1); got != 0 {
		t.Errorf("sum[0,1]: got %g, want 0", got)
	}
}
