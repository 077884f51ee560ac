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
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ctessum/cdf"
)

const testFill = float32(9.96921e+36)

func testConfig(base string) Config {
	return Config{
		BaseDirectory: base,
		CaseID:        "b.e11.B20TRC5CNBDRD",
		GridTag:       "f09_g16",
		EnsembleID:    4,
	}
}

// historyFileName returns the file name the naming convention expects
// for varName, with an optional extra suffix before the extension.
func historyFileName(cfg Config, varName, suffix string) string {
	return cfg.CaseID + "." + cfg.GridTag + ".004.pop.h." + varName + suffix + ".nc"
}

type ncVar struct {
	name  string
	dims  []string
	vals  interface{} // []float32, []float64 or []int32
	attrs map[string]interface{}
}

// writeTestNC creates a NetCDF file at path with the given dimensions
// and fully written variables.
func writeTestNC(t *testing.T, path string, dims []string, lengths []int, vars []ncVar) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	h := cdf.NewHeader(dims, lengths)
	for _, v := range vars {
		h.AddVariable(v.name, v.dims, v.vals)
		for a, val := range v.attrs {
			h.AddAttribute(v.name, a, val)
		}
	}
	h.Define()
	w, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	f, err := cdf.Create(w, h)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range vars {
		end := f.Header.Lengths(v.name)
		start := make([]int, len(end))
		// The cdf strider reports io.EOF when a write lands exactly on the
		// variable's end offset (always the case for scalar variables), even
		// though all values were written.
		if _, err := f.Writer(v.name, start, end).Write(v.vals); err != nil && err != io.EOF {
			t.Fatalf("writing %s: %v", v.name, err)
		}
	}
	if err := cdf.UpdateNumRecs(w); err != nil {
		t.Fatal(err)
	}
}

// writeHistoryFile writes a POP-style history file for varName into the
// directory layout Resolve expects.
func writeHistoryFile(t *testing.T, cfg Config, varName string, dims []string, lengths []int, vars ...ncVar) string {
	t.Helper()
	path := filepath.Join(cfg.BaseDirectory, varName, historyFileName(cfg, varName, ""))
	writeTestNC(t, path, dims, lengths, vars)
	return path
}

func TestResolve(t *testing.T) {
	cfg := testConfig(t.TempDir())
	ds, err := NewDataset(cfg)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := ds.Resolve("UET"); err == nil {
		t.Error("expected an error when no file matches")
	}

	dir := filepath.Join(cfg.BaseDirectory, "UET")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(dir, historyFileName(cfg, "UET", ""))
	if err := os.WriteFile(want, nil, 0644); err != nil {
		t.Fatal(err)
	}
	got, err := ds.Resolve("UET")
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("resolved %q, want %q", got, want)
	}

	// A second file matching the pattern makes resolution ambiguous.
	second := filepath.Join(dir, historyFileName(cfg, "UET", ".185001-190012"))
	if err := os.WriteFile(second, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ds.Resolve("UET"); err == nil {
		t.Error("expected an error when two files match")
	}
}

func TestNewDatasetValidation(t *testing.T) {
	if _, err := NewDataset(Config{CaseID: "c", GridTag: "g"}); err == nil {
		t.Error("expected an error for an empty base directory")
	}
	if _, err := NewDataset(Config{BaseDirectory: "d", GridTag: "g"}); err == nil {
		t.Error("expected an error for an empty case ID")
	}
}

func TestVarData(t *testing.T) {
	cfg := testConfig(t.TempDir())
	writeHistoryFile(t, cfg, "UET",
		[]string{"time", "z_t", "nlat", "nlon"}, []int{2, 1, 1, 2},
		ncVar{
			name: "UET",
			dims: []string{"time", "z_t", "nlat", "nlon"},
			vals: []float32{1, 2, 3, testFill},
			attrs: map[string]interface{}{
				"_FillValue": []float32{testFill},
			},
		})
	ds, err := NewDataset(cfg)
	if err != nil {
		t.Fatal(err)
	}
	next, err := ds.VarData("UET")
	if err != nil {
		t.Fatal(err)
	}

	rec, err := next()
	if err != nil {
		t.Fatal(err)
	}
	if !shapesMatch(rec.Shape, []int{1, 1, 2}) {
		t.Fatalf("record shape: got %v", rec.Shape)
	}
	if rec.Get(0, 0, 0) != 1 || rec.Get(0, 0, 1) != 2 {
		t.Errorf("record 0: got %v", rec.Elements)
	}

	rec, err = next()
	if err != nil {
		t.Fatal(err)
	}
	if rec.Get(0, 0, 0) != 3 {
		t.Errorf("record 1: got %v", rec.Elements)
	}
	if got := rec.Get(0, 0, 1); !math.IsNaN(got) {
		t.Errorf("fill value: got %g, want NaN", got)
	}

	if _, err := next(); err == nil {
		t.Error("expected io.EOF after the last record")
	}
}

func TestScalar(t *testing.T) {
	cfg := testConfig(t.TempDir())
	writeHistoryFile(t, cfg, "SHF",
		[]string{"time", "nlat", "nlon"}, []int{1, 1, 1},
		ncVar{name: "SHF", dims: []string{"time", "nlat", "nlon"}, vals: []float32{0}},
		ncVar{name: "rho_sw", dims: nil, vals: []float64{1.026}})
	ds, err := NewDataset(cfg)
	if err != nil {
		t.Fatal(err)
	}
	got, err := ds.Scalar("SHF", "rho_sw")
	if err != nil {
		t.Fatal(err)
	}
	if got != 1.026 {
		t.Errorf("rho_sw: got %g, want 1.026", got)
	}
	if _, err := ds.Scalar("SHF", "cp_sw"); err == nil {
		t.Error("expected an error for a missing scalar")
	}
}

func TestTimeBounds(t *testing.T) {
	cfg := testConfig(t.TempDir())
	writeHistoryFile(t, cfg, "TEMP",
		[]string{"time", "d2", "nlat", "nlon"}, []int{2, 2, 1, 1},
		ncVar{name: "TEMP", dims: []string{"time", "nlat", "nlon"}, vals: []float32{0, 0}},
		ncVar{name: "time_bound", dims: []string{"time", "d2"}, vals: []float64{0, 31, 31, 59}})
	ds, err := NewDataset(cfg)
	if err != nil {
		t.Fatal(err)
	}
	bounds, err := ds.TimeBounds("TEMP")
	if err != nil {
		t.Fatal(err)
	}
	want := [][2]float64{{0, 31}, {31, 59}}
	if len(bounds) != len(want) {
		t.Fatalf("got %d bounds, want %d", len(bounds), len(want))
	}
	for i, b := range bounds {
		if b != want[i] {
			t.Errorf("bound %d: got %v, want %v", i, b, want[i])
		}
	}
}

func TestGridData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "grid.nc")
	writeTestNC(t, path,
		[]string{"z_t", "nlat", "nlon"}, []int{2, 1, 2},
		[]ncVar{
			{name: "TAREA", dims: []string{"nlat", "nlon"}, vals: []float64{2, 3}},
			{name: "dz", dims: []string{"z_t"}, vals: []float64{10, 20}},
			{name: "KMT", dims: []string{"nlat", "nlon"}, vals: []int32{2, 0}},
			{name: "REGION_MASK", dims: []string{"nlat", "nlon"}, vals: []int32{1, 0}},
		})
	geom, region, err := GridData(path)
	if err != nil {
		t.Fatal(err)
	}
	if geom.Nz() != 2 {
		t.Errorf("levels: got %d, want 2", geom.Nz())
	}
	if got := geom.Volume().Data.Get(0, 0, 0); got != 20 {
		t.Errorf("volume[0,0,0]: got %g, want 20", got)
	}
	if got := geom.Volume().Data.Get(0, 0, 1); !math.IsNaN(got) {
		t.Errorf("land volume: got %g, want NaN", got)
	}
	if region.Get(0, 0) != 1 || region.Get(0, 1) != 0 {
		t.Errorf("region mask: got %v", region.Elements)
	}
}

func TestGridDataMissingVariable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "grid.nc")
	writeTestNC(t, path,
		[]string{"nlat", "nlon"}, []int{1, 1},
		[]ncVar{{name: "TAREA", dims: []string{"nlat", "nlon"}, vals: []float64{1}}})
	if _, _, err := GridData(path); err == nil {
		t.Error("expected an error for a grid file without dz")
	}
}
