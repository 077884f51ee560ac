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

// POP flux variables are staggered: the east-face and north-face
// fluxes stored at index (j,i) belong to the faces of the cell at
// (j,i), so the flux through a cell's west (south) face is the
// east-face (north-face) flux of its neighbor at i+1 (j+1) in POP's
// index convention. The shift operators below align those neighbor
// values with the cell center.

// Divergence sign conventions. POP stores advective fluxes with the
// opposite sign to diffusive fluxes, so the two families of lateral
// terms difference the shifted contributions in opposite orders.
const (
	advectiveSign = 1.0
	diffusiveSign = -1.0
)

// ShiftWest returns a copy of a translated one index step along the
// west-east axis (the last axis), so that position i holds the value
// that was at i+1. The easternmost column has no neighbor and is NaN;
// there is no wraparound.
func ShiftWest(a *sparse.DenseArray) *sparse.DenseArray {
	return shiftAxis(a, len(a.Shape)-1)
}

// ShiftSouth returns a copy of a translated one index step along the
// south-north axis (the second-to-last axis), so that position j holds
// the value that was at j+1. The northernmost row is NaN.
func ShiftSouth(a *sparse.DenseArray) *sparse.DenseArray {
	return shiftAxis(a, len(a.Shape)-2)
}

func shiftAxis(a *sparse.DenseArray, axis int) *sparse.DenseArray {
	out := sparse.ZerosDense(a.Shape...)
	for i := range out.Elements {
		index := a.IndexNd(i)
		index[axis]++
		if index[axis] == a.Shape[axis] {
			out.Elements[i] = math.NaN()
		} else {
			out.Elements[i] = a.Get(index...)
		}
	}
	return out
}

// FluxDivergence computes the net volume-weighted flux out of each
// cell center from east-face and north-face flux fields on the same
// grid as vol. Each face flux is weighted by the volume of the cell it
// is stored on, and the west and south contributions come from the
// shifted neighbor fields. sign is advectiveSign or diffusiveSign.
// Cells at the domain boundary where a shifted neighbor is undefined
// come out NaN rather than wrapping or clamping.
func FluxDivergence(fluxEast, fluxNorth, vol *sparse.DenseArray, sign float64) *sparse.DenseArray {
	fluxWest := ShiftWest(fluxEast)
	fluxSouth := ShiftSouth(fluxNorth)
	volWest := ShiftWest(vol)
	volSouth := ShiftSouth(vol)

	out := sparse.ZerosDense(fluxEast.Shape...)
	for i := range out.Elements {
		e := fluxEast.Elements[i] * vol.Elements[i]
		w := fluxWest.Elements[i] * volWest.Elements[i]
		n := fluxNorth.Elements[i] * vol.Elements[i]
		s := fluxSouth.Elements[i] * volSouth.Elements[i]
		out.Elements[i] = sign * ((w - e) + (s - n))
	}
	return out
}

// sumLevels integrates a (z, nlat, nlon) array over all vertical
// levels, producing a (nlat, nlon) map. NaN cells (land and
// below-bottom) are treated as zero here; columns with no data at all
// therefore sum to zero and are masked back to NaN by the caller.
func sumLevels(a *sparse.DenseArray) *sparse.DenseArray {
	nz := a.Shape[0]
	ny, nx := a.Shape[1], a.Shape[2]
	n := ny * nx
	out := sparse.ZerosDense(ny, nx)
	for k := 0; k < nz; k++ {
		lvl := a.Elements[k*n : (k+1)*n]
		for i, v := range lvl {
			if !math.IsNaN(v) {
				out.Elements[i] += v
			}
		}
	}
	return out
}
