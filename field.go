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

	"github.com/ctessum/sparse"
)

// Dimension names used on output fields. Only index-based dimensions
// are carried; the auxiliary 2-d latitude and longitude coordinate
// fields present in POP history files are never attached to results.
var (
	mapDims     = []string{"nlat", "nlon"}
	timeMapDims = []string{"time", "nlat", "nlon"}
	volumeDims  = []string{"z_t", "nlat", "nlon"}
)

// Field is a data array together with the descriptive metadata that is
// carried through to output files.
type Field struct {
	Data *sparse.DenseArray
	Dims []string

	Name        string
	Units       string
	LongName    string
	Description string

	// KRange records the vertical level range "<klo> - <khi>" for
	// terms that integrate or difference between two levels.
	KRange string
}

// nanDense returns an array of the given shape with every element set
// to NaN. NaN marks land, below-bottom and otherwise undefined cells
// throughout this package; it propagates through arithmetic, so masked
// cells stay masked in derived quantities.
func nanDense(shape ...int) *sparse.DenseArray {
	a := sparse.ZerosDense(shape...)
	for i := range a.Elements {
		a.Elements[i] = math.NaN()
	}
	return a
}

// maskZero replaces exactly-zero elements with NaN. A vertically
// integrated flux that sums to exactly zero can only come from a
// column with no data (land), so zeros are folded back into the
// missing-value mask rather than reported as legitimate zero flux.
func maskZero(a *sparse.DenseArray) {
	for i, v := range a.Elements {
		if v == 0 {
			a.Elements[i] = math.NaN()
		}
	}
}

// stackRecords combines per-time-record arrays into a single array
// with time as the leading dimension.
func stackRecords(recs []*sparse.DenseArray) *sparse.DenseArray {
	shape := append([]int{len(recs)}, recs[0].Shape...)
	out := sparse.ZerosDense(shape...)
	n := len(recs[0].Elements)
	for t, r := range recs {
		copy(out.Elements[t*n:(t+1)*n], r.Elements)
	}
	return out
}

func shapesMatch(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i, v := range a {
		if v != b[i] {
			return false
		}
	}
	return true
}
