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
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// NextData is a type of function that returns data for the next time
// record of a variable. If there are no more records, it returns the
// io.EOF error.
type NextData func() (*sparse.DenseArray, error)

// DataSource provides raw model output variables to the budget term
// computations. Each budget term resolves and reads its own input
// variables through this interface; implementations must mask
// missing values to NaN.
type DataSource interface {
	// VarData returns an iterator over the time records of the named
	// variable. Each record is the variable's non-time dimensions,
	// e.g. (z_t, nlat, nlon) for a 4-d variable.
	VarData(varName string) (NextData, error)

	// Scalar returns the value of the scalar variable scalarName
	// stored in the same file as fileVar.
	Scalar(fileVar, scalarName string) (float64, error)

	// TimeBounds returns the start and end of each time averaging
	// period [days since run start], read from the file holding
	// fileVar. POP timestamps monthly means at the end of the
	// averaging period, so the bounds, not the timestamps, give the
	// period lengths.
	TimeBounds(fileVar string) ([][2]float64, error)
}

// Config locates the output of a single model run. POP history output
// split by variable is expected at
//
//	{BaseDirectory}/{VAR}/{CaseID}.{GridTag}.{EnsembleID:03d}.pop.h.{VAR}*.nc
//
// which is the CESM Large Ensemble directory convention.
type Config struct {
	// BaseDirectory is the root of the per-variable directory tree.
	BaseDirectory string
	// CaseID is the model case identifier, e.g. "b.e11.B20TRC5CNBDRD".
	CaseID string
	// GridTag identifies the model resolution, e.g. "f09_g16".
	GridTag string
	// EnsembleID is the ensemble member number.
	EnsembleID int
}

// Dataset reads variables from NetCDF history files laid out according
// to a Config. It implements DataSource.
type Dataset struct {
	cfg Config

	// MsgChan, if non-nil, receives progress messages as files are
	// read.
	MsgChan chan string
}

// NewDataset validates cfg and returns a Dataset for it.
func NewDataset(cfg Config) (*Dataset, error) {
	vars := []string{cfg.BaseDirectory, cfg.CaseID, cfg.GridTag}
	varNames := []string{"BaseDirectory", "CaseID", "GridTag"}
	for i, v := range vars {
		if v == "" {
			return nil, fmt.Errorf("tracerbudget: dataset configuration variable %s is not specified", varNames[i])
		}
	}
	return &Dataset{cfg: cfg}, nil
}

// Resolve returns the path of the file holding varName. It is an
// error for the naming convention to match no file or more than one
// file.
func (d *Dataset) Resolve(varName string) (string, error) {
	pattern := filepath.Join(d.cfg.BaseDirectory, varName,
		fmt.Sprintf("%s.%s.%03d.pop.h.%s*.nc", d.cfg.CaseID, d.cfg.GridTag, d.cfg.EnsembleID, varName))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", fmt.Errorf("tracerbudget: resolving variable %s: %v", varName, err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("tracerbudget: no file found for variable %s (pattern %s)", varName, pattern)
	}
	if len(matches) > 1 {
		return "", fmt.Errorf("tracerbudget: variable %s matches %d files (pattern %s)", varName, len(matches), pattern)
	}
	return matches[0], nil
}

// VarData returns an iterator over the time records of varName,
// reading one record per call. The underlying file is closed when the
// iterator is drained or returns an error.
func (d *Dataset) VarData(varName string) (NextData, error) {
	path, err := d.Resolve(varName)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	ff, err := cdf.Open(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("tracerbudget: opening %s: %v", path, err)
	}
	nrec, err := numRecords(f, ff, varName)
	if err != nil {
		f.Close()
		return nil, err
	}
	var n int
	return func() (*sparse.DenseArray, error) {
		if n == nrec {
			if d.MsgChan != nil {
				d.MsgChan <- fmt.Sprintf("Read %d records of %s from %s", n, varName, path)
			}
			f.Close()
			return nil, io.EOF
		}
		data, err := readRecord(ff, varName, n)
		if err != nil {
			f.Close()
			return nil, err
		}
		n++
		return data, nil
	}, nil
}

// Scalar reads the scalar variable scalarName from the file holding
// fileVar.
func (d *Dataset) Scalar(fileVar, scalarName string) (float64, error) {
	path, err := d.Resolve(fileVar)
	if err != nil {
		return 0, err
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	ff, err := cdf.Open(f)
	if err != nil {
		return 0, fmt.Errorf("tracerbudget: opening %s: %v", path, err)
	}
	if !hasVariable(ff, scalarName) {
		return 0, fmt.Errorf("tracerbudget: variable %s not in %s", scalarName, path)
	}
	r := ff.Reader(scalarName, nil, nil)
	buf := r.Zero(1)
	if _, err := r.Read(buf); err != nil {
		return 0, fmt.Errorf("tracerbudget: reading %s from %s: %v", scalarName, path, err)
	}
	switch b := buf.(type) {
	case []float32:
		return float64(b[0]), nil
	case []float64:
		return b[0], nil
	}
	return 0, fmt.Errorf("tracerbudget: variable %s in %s is not floating point", scalarName, path)
}

// TimeBounds reads the time_bound variable from the file holding
// fileVar.
func (d *Dataset) TimeBounds(fileVar string) ([][2]float64, error) {
	path, err := d.Resolve(fileVar)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	ff, err := cdf.Open(f)
	if err != nil {
		return nil, fmt.Errorf("tracerbudget: opening %s: %v", path, err)
	}
	nrec, err := numRecords(f, ff, "time_bound")
	if err != nil {
		return nil, err
	}
	bounds := make([][2]float64, nrec)
	for n := 0; n < nrec; n++ {
		rec, err := readRecord(ff, "time_bound", n)
		if err != nil {
			return nil, err
		}
		if len(rec.Elements) != 2 {
			return nil, fmt.Errorf("tracerbudget: time_bound record in %s has %d elements, want 2", path, len(rec.Elements))
		}
		bounds[n][0] = rec.Elements[0]
		bounds[n][1] = rec.Elements[1]
	}
	return bounds, nil
}

// GridData reads the static grid description (TAREA, dz, KMT and
// REGION_MASK) from a POP history or grid file, returning the cell
// geometry and the region mask.
func GridData(filename string) (*CellGeometry, *sparse.DenseArray, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	ff, err := cdf.Open(f)
	if err != nil {
		return nil, nil, fmt.Errorf("tracerbudget: opening grid file %s: %v", filename, err)
	}
	area, err := readAll(ff, "TAREA")
	if err != nil {
		return nil, nil, err
	}
	dz, err := readAll(ff, "dz")
	if err != nil {
		return nil, nil, err
	}
	kmt, err := readAll(ff, "KMT")
	if err != nil {
		return nil, nil, err
	}
	region, err := readAll(ff, "REGION_MASK")
	if err != nil {
		return nil, nil, err
	}
	geom, err := NewCellGeometry(area, dz.Elements, kmt)
	if err != nil {
		return nil, nil, err
	}
	return geom, region, nil
}

// numRecords returns the number of time records of varName in ff. For
// record variables the count is computed from the file size; for fixed
// variables it is the length of the leading dimension.
func numRecords(f *os.File, ff *cdf.File, varName string) (int, error) {
	dims := ff.Header.Lengths(varName)
	if len(dims) == 0 {
		return 0, fmt.Errorf("tracerbudget: variable %s not in file %s", varName, f.Name())
	}
	if dims[0] > 0 {
		return dims[0], nil
	}
	fi, err := f.Stat()
	if err != nil {
		return 0, err
	}
	return int(ff.Header.NumRecs(fi.Size())), nil
}

// readRecord reads time record n of varName from ff, masking fill
// values to NaN.
func readRecord(ff *cdf.File, varName string, n int) (*sparse.DenseArray, error) {
	dims := ff.Header.Lengths(varName)
	if len(dims) == 0 {
		return nil, fmt.Errorf("tracerbudget: variable %s not in file", varName)
	}
	dims = dims[1:]
	nread := 1
	for _, dim := range dims {
		nread *= dim
	}
	start, end := make([]int, len(dims)+1), make([]int, len(dims)+1)
	start[0], end[0] = n, n+1
	r := ff.Reader(varName, start, end)
	buf := r.Zero(nread)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("tracerbudget: reading record %d of variable %s: %v", n, varName, err)
	}
	data, err := bufToDense(buf, dims, varName)
	if err != nil {
		return nil, err
	}
	maskFillValues(ff, varName, data)
	return data, nil
}

// readAll reads the whole of a fixed (non-record) variable.
func readAll(ff *cdf.File, varName string) (*sparse.DenseArray, error) {
	dims := ff.Header.Lengths(varName)
	if len(dims) == 0 {
		return nil, fmt.Errorf("tracerbudget: variable %s not in file", varName)
	}
	nread := 1
	for _, dim := range dims {
		nread *= dim
	}
	r := ff.Reader(varName, nil, nil)
	buf := r.Zero(nread)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("tracerbudget: reading variable %s: %v", varName, err)
	}
	data, err := bufToDense(buf, dims, varName)
	if err != nil {
		return nil, err
	}
	maskFillValues(ff, varName, data)
	return data, nil
}

func bufToDense(buf interface{}, dims []int, varName string) (*sparse.DenseArray, error) {
	data := sparse.ZerosDense(dims...)
	switch b := buf.(type) {
	case []float32:
		for i, v := range b {
			data.Elements[i] = float64(v)
		}
	case []float64:
		copy(data.Elements, b)
	case []int32:
		for i, v := range b {
			data.Elements[i] = float64(v)
		}
	case []int16:
		for i, v := range b {
			data.Elements[i] = float64(v)
		}
	default:
		return nil, fmt.Errorf("tracerbudget: unsupported data type %T for variable %s", buf, varName)
	}
	return data, nil
}

// maskFillValues replaces elements equal to the variable's _FillValue
// or missing_value attribute with NaN.
func maskFillValues(ff *cdf.File, varName string, data *sparse.DenseArray) {
	for _, attr := range []string{"_FillValue", "missing_value"} {
		var noData float64
		switch v := ff.Header.GetAttribute(varName, attr).(type) {
		case []float32:
			if len(v) == 0 {
				continue
			}
			noData = float64(v[0])
		case []float64:
			if len(v) == 0 {
				continue
			}
			noData = v[0]
		default:
			continue
		}
		for i, d := range data.Elements {
			if d == noData {
				data.Elements[i] = math.NaN()
			}
		}
	}
}

func hasVariable(ff *cdf.File, varName string) bool {
	for _, v := range ff.Header.Variables() {
		if v == varName {
			return true
		}
	}
	return false
}
