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

	"github.com/ctessum/unit"
	"gonum.org/v1/gonum/floats"
)

var secPerDay = unit.New(60.*60.*24., unit.Second)

// Tendency computes an approximate time derivative of a vertically
// integrated tracer field from monthly means. POP timestamps monthly
// output at the end of each averaging period, so the average of two
// consecutive monthly means approximates the field value at the
// boundary between them; differencing those mid-point values and
// dividing by the averaging period length gives a centered-difference
// rate [zint units/s].
//
// The first and last time records of the output are entirely NaN: a
// centered difference on a finite series is undefined at both ends.
// This is a structural property of the estimate, not an error.
func Tendency(t Tracer, zint *Field, timeBounds [][2]float64) (*Field, error) {
	if len(zint.Data.Shape) != 3 {
		return nil, fmt.Errorf("tracerbudget: vertically integrated field must be 3-d, got shape %v", zint.Data.Shape)
	}
	nt := zint.Data.Shape[0]
	if nt < 2 {
		return nil, fmt.Errorf("tracerbudget: tendency needs at least 2 time records, got %d", nt)
	}
	if len(timeBounds) != nt {
		return nil, fmt.Errorf("tracerbudget: %d time bounds for %d time records", len(timeBounds), nt)
	}
	n := zint.Data.Shape[1] * zint.Data.Shape[2]

	// Mid-point series; the last record has no right neighbor.
	mid := make([][]float64, nt-1)
	for i := 0; i < nt-1; i++ {
		m := make([]float64, n)
		floats.AddTo(m, zint.Data.Elements[i*n:(i+1)*n], zint.Data.Elements[(i+1)*n:(i+2)*n])
		floats.Scale(0.5, m)
		mid[i] = m
	}

	out := nanDense(zint.Data.Shape...)
	for i := 1; i < nt-1; i++ {
		dt := (timeBounds[i][1] - timeBounds[i][0]) * secPerDay.Value()
		if dt <= 0 {
			return nil, fmt.Errorf("tracerbudget: non-positive averaging period at time record %d", i)
		}
		rec := out.Elements[i*n : (i+1)*n]
		floats.SubTo(rec, mid[i], mid[i-1])
		floats.Scale(1/dt, rec)
	}

	return &Field{
		Data:     out,
		Dims:     timeMapDims,
		Name:     t.prefix() + "_" + t.String() + "_tend",
		Units:    zint.Units + "/s",
		LongName: zint.LongName + " tendency",
		KRange:   zint.KRange,
	}, nil
}
