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
	"os"
	"sort"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// outputFillValue marks missing cells in output files; it is the
// NetCDF default fill value for float data.
const outputFillValue = 9.96921e+36

// WriteTerms writes the given budget term fields to w as a NetCDF
// file. Fields sharing a dimension name must agree on its length, and
// field names must be unique. NaN cells are written as the declared
// _FillValue.
func WriteTerms(w *os.File, fields ...*Field) error {
	if len(fields) == 0 {
		return fmt.Errorf("tracerbudget: no fields to write")
	}

	var dimNames []string
	dimLens := make(map[string]int)
	byName := make(map[string]*Field)
	for _, fld := range fields {
		if len(fld.Dims) != len(fld.Data.Shape) {
			return fmt.Errorf("tracerbudget: field %s has %d dimension names for shape %v",
				fld.Name, len(fld.Dims), fld.Data.Shape)
		}
		if _, ok := byName[fld.Name]; ok {
			return fmt.Errorf("tracerbudget: duplicate output field %s", fld.Name)
		}
		byName[fld.Name] = fld
		for i, d := range fld.Dims {
			l := fld.Data.Shape[i]
			if have, ok := dimLens[d]; ok {
				if have != l {
					return fmt.Errorf("tracerbudget: dimension %s has conflicting lengths %d and %d", d, have, l)
				}
				continue
			}
			dimLens[d] = l
			dimNames = append(dimNames, d)
		}
	}
	lengths := make([]int, len(dimNames))
	for i, d := range dimNames {
		lengths[i] = dimLens[d]
	}

	h := cdf.NewHeader(dimNames, lengths)
	h.AddAttribute("", "comment", "POP tracer budget diagnostic terms")

	// Sort the names so they write in the same order every time.
	names := make([]string, 0, len(byName))
	for n := range byName {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, name := range names {
		fld := byName[name]
		h.AddVariable(name, fld.Dims, []float32{0})
		h.AddAttribute(name, "units", fld.Units)
		h.AddAttribute(name, "long_name", fld.LongName)
		if fld.Description != "" {
			h.AddAttribute(name, "description", fld.Description)
		}
		if fld.KRange != "" {
			h.AddAttribute(name, "k_range", fld.KRange)
		}
		h.AddAttribute(name, "_FillValue", []float32{outputFillValue})
	}
	h.Define()

	f, err := cdf.Create(w, h) // writes the header to w
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := writeNCF(f, name, byName[name].Data); err != nil {
			return fmt.Errorf("tracerbudget: writing variable %s: %v", name, err)
		}
	}
	return cdf.UpdateNumRecs(w)
}

// writeNCF writes data to the variable named v in f, converting NaN
// to the output fill value.
func writeNCF(f *cdf.File, v string, data *sparse.DenseArray) error {
	data32 := make([]float32, len(data.Elements))
	for i, e := range data.Elements {
		if math.IsNaN(e) {
			data32[i] = outputFillValue
		} else {
			data32[i] = float32(e)
		}
	}
	end := f.Header.Lengths(v)
	start := make([]int, len(end))
	w := f.Writer(v, start, end)
	_, err := w.Write(data32)
	return err
}
