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
)

// VerticalIntegral computes the volume integral of the tracer itself
// over levels [klo, khi), producing a (time, nlat, nlon) map in units
// of tracer·cm^3. Columns that integrate to exactly zero carry no
// data and are masked to NaN. The result is the quantity whose time
// derivative the other budget terms should sum to; see Tendency.
func VerticalIntegral(t Tracer, geom *CellGeometry, ds DataSource, klo, khi int) (*Field, error) {
	if klo < 0 || khi <= klo || khi > geom.Nz() {
		return nil, fmt.Errorf("tracerbudget: invalid level range %d - %d for %d levels", klo, khi, geom.Nz())
	}
	next, err := ds.VarData(t.String())
	if err != nil {
		return nil, err
	}
	vol := geom.Volume().Data
	data, err := collectMaps(func(recs []*sparse.DenseArray) (*sparse.DenseArray, error) {
		rec := recs[0]
		if !shapesMatch(rec.Shape, vol.Shape) {
			return nil, fmt.Errorf("tracerbudget: %s record shape %v does not match volume shape %v",
				t, rec.Shape, vol.Shape)
		}
		ny, nx := rec.Shape[1], rec.Shape[2]
		n := ny * nx
		out := sparse.ZerosDense(ny, nx)
		for k := klo; k < khi; k++ {
			lvl := rec.Elements[k*n : (k+1)*n]
			volLvl := vol.Elements[k*n : (k+1)*n]
			for i, v := range lvl {
				v *= volLvl[i]
				if !math.IsNaN(v) {
					out.Elements[i] += v
				}
			}
		}
		return out, nil
	}, next)
	if err != nil {
		return nil, err
	}
	maskZero(data)
	return &Field{
		Data:        data,
		Dims:        timeMapDims,
		Name:        t.String() + "_zint",
		Units:       t.Units() + " cm^3",
		LongName:    t.String() + " vertical average",
		Description: fmt.Sprintf("Int_V {%s} dV", t),
		KRange:      fmt.Sprintf("%d - %d", klo, khi),
	}, nil
}
