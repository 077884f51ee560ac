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

	"github.com/ctessum/sparse"
	"github.com/ctessum/unit"
)

// collectMaps drains the given iterators in lockstep, applies f to
// each set of simultaneous records, and stacks the resulting 2-d maps
// into a (time, nlat, nlon) array. Iteration stops at the first
// iterator to be exhausted.
func collectMaps(f func(recs []*sparse.DenseArray) (*sparse.DenseArray, error), nexts ...NextData) (*sparse.DenseArray, error) {
	var maps []*sparse.DenseArray
	for {
		recs := make([]*sparse.DenseArray, len(nexts))
		done := false
		for i, next := range nexts {
			rec, err := next()
			if err == io.EOF {
				done = true
				break
			}
			if err != nil {
				return nil, err
			}
			recs[i] = rec
		}
		if done {
			break
		}
		m, err := f(recs)
		if err != nil {
			return nil, err
		}
		maps = append(maps, m)
	}
	if len(maps) == 0 {
		return nil, fmt.Errorf("tracerbudget: input variable has no time records")
	}
	return stackRecords(maps), nil
}

// LateralAdvection computes the vertically integrated divergence of
// the resolved lateral advective tracer flux as a (time, nlat, nlon)
// map [tracer cm^3/s]. Columns that integrate to exactly zero carry
// no data and are masked to NaN.
func LateralAdvection(t Tracer, geom *CellGeometry, ds DataSource) (*Field, error) {
	return lateralTerm(t, geom, ds, t.eastAdvectionVar(), t.northAdvectionVar(),
		advectiveSign, "lateral advective flux (resolved)", "lat_adv_res")
}

// HorizontalMixing computes the vertically integrated divergence of
// the horizontal diffusive tracer flux. It is structurally identical
// to LateralAdvection but with the opposite divergence sign, matching
// the sign convention POP stores diffusive fluxes with.
func HorizontalMixing(t Tracer, geom *CellGeometry, ds DataSource) (*Field, error) {
	return lateralTerm(t, geom, ds, t.eastDiffusionVar(), t.northDiffusionVar(),
		diffusiveSign, "lateral diffusive flux (resolved)", "lat_mix_res")
}

func lateralTerm(t Tracer, geom *CellGeometry, ds DataSource, eastVar, northVar string, sign float64, longName, suffix string) (*Field, error) {
	east, err := ds.VarData(eastVar)
	if err != nil {
		return nil, err
	}
	north, err := ds.VarData(northVar)
	if err != nil {
		return nil, err
	}
	vol := geom.Volume().Data
	data, err := collectMaps(func(recs []*sparse.DenseArray) (*sparse.DenseArray, error) {
		e, n := recs[0], recs[1]
		if !shapesMatch(e.Shape, vol.Shape) {
			return nil, fmt.Errorf("tracerbudget: %s record shape %v does not match volume shape %v",
				eastVar, e.Shape, vol.Shape)
		}
		return sumLevels(FluxDivergence(e, n, vol, sign)), nil
	}, east, north)
	if err != nil {
		return nil, err
	}
	maskZero(data)
	return &Field{
		Data:        data,
		Dims:        timeMapDims,
		Name:        t.prefix() + "_" + suffix,
		Units:       t.FluxUnits(),
		LongName:    longName,
		Description: fmt.Sprintf("Int_z{-Div[<%s>, <%s>]}", eastVar, northVar),
	}, nil
}

// VerticalAdvection computes the net resolved vertical advective
// supply to the surface layer: the advective flux through the
// interface just below the surface level, scaled by the surface cell
// volume and negated. Unlike the lateral terms it is evaluated at a
// single interface rather than summed over depth.
func VerticalAdvection(t Tracer, geom *CellGeometry, ds DataSource) (*Field, error) {
	varName := t.verticalAdvectionVar()
	next, err := ds.VarData(varName)
	if err != nil {
		return nil, err
	}
	volSurf := geom.surfaceVolume()
	data, err := collectMaps(func(recs []*sparse.DenseArray) (*sparse.DenseArray, error) {
		rec := recs[0]
		if len(rec.Shape) != 3 || rec.Shape[0] < 2 {
			return nil, fmt.Errorf("tracerbudget: %s record shape %v does not have at least 2 interface levels",
				varName, rec.Shape)
		}
		ny, nx := rec.Shape[1], rec.Shape[2]
		n := ny * nx
		out := sparse.ZerosDense(ny, nx)
		for i := 0; i < n; i++ {
			out.Elements[i] = -rec.Elements[n+i] * volSurf.Elements[i]
		}
		return out, nil
	}, next)
	if err != nil {
		return nil, err
	}
	return &Field{
		Data:        data,
		Dims:        timeMapDims,
		Name:        t.prefix() + "_vert_adv_res",
		Units:       t.FluxUnits(),
		LongName:    "vertical advective flux (resolved)",
		Description: fmt.Sprintf("Int_z{-d[<%s>]/dz}", varName),
	}, nil
}

// DiabaticVerticalMixing computes the vertical integral of the
// diabatic (KPP) implicit vertical mixing flux between levels klo and
// khi. The flux at each of the two levels is scaled by the cell area
// where the water column reaches below that level, and by zero where
// it does not: there is no mixing flux below the seafloor. Undefined
// bottom values are filled to zero before differencing so that
// columns shallower than khi keep their surface contribution.
func DiabaticVerticalMixing(t Tracer, geom *CellGeometry, ds DataSource, klo, khi int) (*Field, error) {
	if err := checkLevelRange(klo, khi, geom.Nz()); err != nil {
		return nil, err
	}
	varName := t.diabaticMixingVar()
	next, err := ds.VarData(varName)
	if err != nil {
		return nil, err
	}
	area := geom.Area
	kmt := geom.BottomLevel
	data, err := collectMaps(func(recs []*sparse.DenseArray) (*sparse.DenseArray, error) {
		rec := recs[0]
		if len(rec.Shape) != 3 || rec.Shape[0] <= khi {
			return nil, fmt.Errorf("tracerbudget: %s record shape %v does not cover level %d",
				varName, rec.Shape, khi)
		}
		ny, nx := rec.Shape[1], rec.Shape[2]
		n := ny * nx
		out := sparse.ZerosDense(ny, nx)
		for i := 0; i < n; i++ {
			var areaTop, areaBot float64
			if kmt.Elements[i] > float64(klo) {
				areaTop = area.Elements[i]
			}
			if kmt.Elements[i] > float64(khi) {
				areaBot = area.Elements[i]
			}
			top := rec.Elements[klo*n+i] * areaTop
			bot := rec.Elements[khi*n+i] * areaBot
			if math.IsNaN(bot) {
				bot = 0
			}
			out.Elements[i] = -(bot - top)
		}
		return out, nil
	}, next)
	if err != nil {
		return nil, err
	}
	return &Field{
		Data:        data,
		Dims:        timeMapDims,
		Name:        t.prefix() + "_dia_vmix",
		Units:       t.FluxUnits(),
		LongName:    "vertical (diabatic) mixing flux (resolved)",
		Description: fmt.Sprintf("Int_z{-d[<%s>]/dz}", varName),
		KRange:      fmt.Sprintf("%d - %d", klo, khi),
	}, nil
}

// AdiabaticVerticalMixing computes the vertical integral of the
// adiabatic (eddy-induced, GM plus submesoscale) vertical diffusive
// flux between levels klo and khi. The flux at each level is scaled by
// the cell volume at that level; unlike the diabatic term there is no
// area-based seafloor gating, since the volume field already carries
// NaN below the bottom. Undefined bottom values are filled to zero
// before differencing.
func AdiabaticVerticalMixing(t Tracer, geom *CellGeometry, ds DataSource, klo, khi int) (*Field, error) {
	if err := checkLevelRange(klo, khi, geom.Nz()); err != nil {
		return nil, err
	}
	varName := t.adiabaticMixingVar()
	next, err := ds.VarData(varName)
	if err != nil {
		return nil, err
	}
	volLo := geom.levelVolume(klo)
	volHi := geom.levelVolume(khi)
	data, err := collectMaps(func(recs []*sparse.DenseArray) (*sparse.DenseArray, error) {
		rec := recs[0]
		if len(rec.Shape) != 3 || rec.Shape[0] <= khi {
			return nil, fmt.Errorf("tracerbudget: %s record shape %v does not cover level %d",
				varName, rec.Shape, khi)
		}
		ny, nx := rec.Shape[1], rec.Shape[2]
		n := ny * nx
		out := sparse.ZerosDense(ny, nx)
		for i := 0; i < n; i++ {
			top := rec.Elements[klo*n+i] * volLo.Elements[i]
			bot := rec.Elements[khi*n+i] * volHi.Elements[i]
			if math.IsNaN(bot) {
				bot = 0
			}
			out.Elements[i] = -(bot - top)
		}
		return out, nil
	}, next)
	if err != nil {
		return nil, err
	}
	return &Field{
		Data:        data,
		Dims:        timeMapDims,
		Name:        t.prefix() + "_adi_vmix",
		Units:       t.FluxUnits(),
		LongName:    "vertical (adiabatic) mixing flux (resolved)",
		Description: fmt.Sprintf("Int_z{-d[<%s>]/dz}", varName),
		KRange:      fmt.Sprintf("%d - %d", klo, khi),
	}, nil
}

// SurfaceFlux computes the volume-integrated surface source term for
// the named POP surface forcing variable: the variable converted to a
// tracer flux rate with a variable-dependent scale factor and
// multiplied by the horizontal cell area. Fluxes are positive down,
// into the ocean.
func SurfaceFlux(t Tracer, varName string, geom *CellGeometry, ds DataSource) (*Field, error) {
	rhoSW, err := ds.Scalar(varName, "rho_sw")
	if err != nil {
		return nil, err
	}
	cpSW, err := ds.Scalar(varName, "cp_sw")
	if err != nil {
		return nil, err
	}
	latVap, err := ds.Scalar(varName, "latent_heat_vapor")
	if err != nil {
		return nil, err
	}
	latFus, err := ds.Scalar(varName, "latent_heat_fusion")
	if err != nil {
		return nil, err
	}
	scale := surfaceScale(varName, rhoSW, cpSW, latVap, latFus)

	next, err := ds.VarData(varName)
	if err != nil {
		return nil, err
	}
	area := geom.Area
	data, err := collectMaps(func(recs []*sparse.DenseArray) (*sparse.DenseArray, error) {
		rec := recs[0]
		if !shapesMatch(rec.Shape, area.Shape) {
			return nil, fmt.Errorf("tracerbudget: %s record shape %v does not match cell area shape %v",
				varName, rec.Shape, area.Shape)
		}
		out := sparse.ZerosDense(rec.Shape...)
		for i, v := range rec.Elements {
			out.Elements[i] = v * scale * area.Elements[i]
		}
		return out, nil
	}, next)
	if err != nil {
		return nil, err
	}
	return &Field{
		Data:     data,
		Dims:     timeMapDims,
		Name:     t.prefix() + "_" + varName,
		Units:    t.FluxUnits(),
		LongName: "vertical flux across sea surface",
	}, nil
}

// Dimensions of the physical constants read from POP history files,
// after conversion to MKS-compatible dimensions (values stay on the
// centimeter grid).
var (
	massPerVolume       = unit.Dimensions{unit.MassDim: 1, unit.LengthDim: -3}
	energyPerMass       = unit.Dimensions{unit.LengthDim: 2, unit.TimeDim: -2}
	energyPerMassKelvin = unit.Dimensions{unit.LengthDim: 2, unit.TimeDim: -2, unit.TemperatureDim: -1}
)

// surfaceScale returns the factor converting a POP surface forcing
// variable to a tracer flux rate [degC cm/s]. The constants arrive in
// POP's storage units: rhoSW in g/cm^3, cpSW in erg/g/K, latVap in
// J/kg and latFus in erg/g.
func surfaceScale(varName string, rhoSW, cpSW, latVap, latFus float64) float64 {
	rho := unit.New(rhoSW*1e-3, massPerVolume)         // kg/cm^3
	cp := unit.New(cpSW*1e-7*1e3, energyPerMassKelvin) // J/kg/K
	rhoCp := unit.Mul(rho, cp)                         // J/cm^3/K

	switch varName {
	case "SHF", "QFLUX", "SENH_F", "LWDN_F", "LWUP_F", "SHF_QSW", "MELTH_F":
		// W/m^2 -> degC cm/s
		return unit.Div(unit.New(1e-4, unit.Dimless), rhoCp).Value()
	case "SNOW_F", "IOFF_F":
		// kg/m^2/s -> degC cm/s; frozen inputs absorb latent heat.
		latentFusion := unit.New(latFus*1e-7*1e3, energyPerMass) // J/kg
		return unit.Div(unit.Mul(unit.New(-1e-4, unit.Dimless), latentFusion), rhoCp).Value()
	case "EVAP_F":
		// kg/m^2/s -> degC cm/s
		latentVapor := unit.New(latVap, energyPerMass) // J/kg
		return unit.Div(unit.Mul(unit.New(1e-4, unit.Dimless), latentVapor), rhoCp).Value()
	}
	return 1
}

func checkLevelRange(klo, khi, nz int) error {
	if klo < 0 || khi <= klo || khi >= nz {
		return fmt.Errorf("tracerbudget: invalid level range %d - %d for %d levels", klo, khi, nz)
	}
	return nil
}
