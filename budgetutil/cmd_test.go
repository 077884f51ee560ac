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

package budgetutil

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	tracerbudget "github.com/weilin2018/pop2-tracer-budget"
)

func TestDefaults(t *testing.T) {
	if got := Cfg.GetString("Tracer"); got != "TEMP" {
		t.Errorf("Tracer default: got %q, want TEMP", got)
	}
	if got := Cfg.GetInt("KLo"); got != 0 {
		t.Errorf("KLo default: got %d, want 0", got)
	}
	if got := Cfg.GetInt("KHi"); got != 1 {
		t.Errorf("KHi default: got %d, want 1", got)
	}
	if vars := Cfg.GetStringSlice("SurfaceFluxVars"); !reflect.DeepEqual(vars, []string{"SHF"}) {
		t.Errorf("SurfaceFluxVars default: got %v", vars)
	}
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "budget.toml")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	fmt.Fprint(f, `
CaseID = "b.e11.B20TRC5CNBDRD"
GridTag = "f09_g16"
EnsembleID = 4
Tracer = "SALT"
KHi = 10
`)
	f.Close()

	Root.PersistentFlags().Set("config", path)
	defer Root.PersistentFlags().Set("config", "")
	if err := setConfig(); err != nil {
		t.Fatal(err)
	}
	if got := Cfg.GetString("Tracer"); got != "SALT" {
		t.Errorf("Tracer: got %q, want SALT", got)
	}
	if got := Cfg.GetInt("KHi"); got != 10 {
		t.Errorf("KHi: got %d, want 10", got)
	}
	if got := Cfg.GetInt("EnsembleID"); got != 4 {
		t.Errorf("EnsembleID: got %d, want 4", got)
	}
}

func TestRunRequiresGridFile(t *testing.T) {
	cfg := tracerbudget.Config{BaseDirectory: ".", CaseID: "c", GridTag: "g"}
	if err := Run("", "out.nc", "TEMP", 0, 1, nil, cfg); err == nil {
		t.Error("expected an error for a missing grid file")
	}
	if err := Run("grid.nc", "out.nc", "DIC", 0, 1, nil, cfg); err == nil {
		t.Error("expected an error for an unknown tracer")
	}
}
