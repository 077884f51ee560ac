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
	"fmt"
	"math"

	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/floats"
)

// CellGeometry describes the static POP tracer-cell grid: horizontal
// cell areas, vertical level thicknesses and, for each water column,
// the index of the deepest active level. It is computed once per
// analysis session and shared read-only by all budget terms.
type CellGeometry struct {
	// Area is the horizontal tracer cell area TAREA [cm^2],
	// dimensions (nlat, nlon).
	Area *sparse.DenseArray
	// Thickness is the vertical extent dz of each level [cm].
	Thickness []float64
	// BottomLevel is KMT, the number of active levels in each
	// column; a cell at level k is ocean iff k < BottomLevel.
	BottomLevel *sparse.DenseArray

	vol *Field
}

// NewCellGeometry validates the grid arrays and eagerly computes the
// 3-d cell volume field, which every budget term reuses.
func NewCellGeometry(area *sparse.DenseArray, thickness []float64, bottomLevel *sparse.DenseArray) (*CellGeometry, error) {
	vol, err := Volume3D(area, thickness, bottomLevel)
	if err != nil {
		return nil, err
	}
	return &CellGeometry{
		Area:        area,
		Thickness:   thickness,
		BottomLevel: bottomLevel,
		vol:         vol,
	}, nil
}

// Volume returns the tracer cell volume field [cm^3], dimensions
// (z_t, nlat, nlon). The field is shared; callers must not modify it.
func (g *CellGeometry) Volume() *Field { return g.vol }

// Nz returns the number of vertical levels.
func (g *CellGeometry) Nz() int { return len(g.Thickness) }

// surfaceVolume returns the level-0 slab of the cell volume field,
// dimensions (nlat, nlon).
func (g *CellGeometry) surfaceVolume() *sparse.DenseArray {
	ny, nx := g.Area.Shape[0], g.Area.Shape[1]
	out := sparse.ZerosDense(ny, nx)
	copy(out.Elements, g.vol.Data.Elements[:ny*nx])
	return out
}

// levelVolume returns the level-k slab of the cell volume field.
func (g *CellGeometry) levelVolume(k int) *sparse.DenseArray {
	ny, nx := g.Area.Shape[0], g.Area.Shape[1]
	out := sparse.ZerosDense(ny, nx)
	copy(out.Elements, g.vol.Data.Elements[k*ny*nx:(k+1)*ny*nx])
	return out
}

// Volume3D computes the tracer cell volume thickness[k]*area[j,i] for
// every ocean cell and NaN for land and below-bottom cells. A cell at
// vertical index k is ocean iff k < bottomLevel at that horizontal
// position. Sea surface height variations are not included.
func Volume3D(area *sparse.DenseArray, thickness []float64, bottomLevel *sparse.DenseArray) (*Field, error) {
	if len(area.Shape) != 2 {
		return nil, fmt.Errorf("tracerbudget: cell area must be 2-d, got shape %v", area.Shape)
	}
	if !shapesMatch(area.Shape, bottomLevel.Shape) {
		return nil, fmt.Errorf("tracerbudget: cell area shape %v does not match bottom level shape %v",
			area.Shape, bottomLevel.Shape)
	}
	if len(thickness) == 0 {
		return nil, fmt.Errorf("tracerbudget: no vertical levels given")
	}
	nz := len(thickness)
	ny, nx := area.Shape[0], area.Shape[1]
	n := ny * nx
	vol := sparse.ZerosDense(nz, ny, nx)
	for k := 0; k < nz; k++ {
		lvl := vol.Elements[k*n : (k+1)*n]
		copy(lvl, area.Elements)
		floats.Scale(thickness[k], lvl)
		for i, kmt := range bottomLevel.Elements {
			if float64(k) >= kmt {
				lvl[i] = math.NaN()
			}
		}
	}
	return &Field{
		Data:     vol,
		Dims:     volumeDims,
		Name:     "vol3d",
		Units:    "cm3",
		LongName: "Tcell volume",
	}, nil
}

// SurfaceMask returns a 2-d multiplicative mask that is 1 where
// regionMask differs from selectedRegion and NaN elsewhere. The mask
// is built by dividing an indicator field by itself, so excluded and
// zero-valued cells become NaN while everything else becomes exactly 1.
// An input that is selectedRegion (or zero) everywhere yields an
// all-NaN mask; that is an expected outcome for some region choices,
// not an error.
func SurfaceMask(regionMask *sparse.DenseArray, selectedRegion float64) *Field {
	m := sparse.ZerosDense(regionMask.Shape...)
	for i, v := range regionMask.Elements {
		if v == selectedRegion {
			v = math.NaN()
		}
		m.Elements[i] = v / v
	}
	return &Field{
		Data:     m,
		Dims:     mapDims,
		Name:     "mask",
		Units:    "1 / NaN",
		LongName: "surface ocean mask",
	}
}

// VolumeMask returns a multiplicative mask of the same shape as vol
// that is 1 where vol is nonzero and defined, and NaN elsewhere.
// VolumeMask is idempotent: applying it to its own output reproduces
// the output.
func VolumeMask(vol *sparse.DenseArray) *Field {
	m := sparse.ZerosDense(vol.Shape...)
	for i, v := range vol.Elements {
		m.Elements[i] = v / v
	}
	return &Field{
		Data:     m,
		Dims:     volumeDims,
		Name:     "mask3d",
		Units:    "1 / NaN",
		LongName: "ocean volume mask",
	}
}
