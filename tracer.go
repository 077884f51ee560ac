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

import "fmt"

// Tracer selects which ocean tracer a budget is computed for. It
// determines the physical units of the result and the names of the POP
// history variables each budget term reads.
type Tracer int

const (
	// Temperature is potential temperature [degC].
	Temperature Tracer = iota
	// Salinity is salinity [PSU].
	Salinity
)

// ParseTracer converts a POP tracer name ("TEMP" or "SALT") to a
// Tracer.
func ParseTracer(name string) (Tracer, error) {
	switch name {
	case "TEMP":
		return Temperature, nil
	case "SALT":
		return Salinity, nil
	}
	return 0, fmt.Errorf("tracerbudget: unknown tracer %q (want TEMP or SALT)", name)
}

// String returns the POP name of the tracer.
func (t Tracer) String() string {
	if t == Temperature {
		return "TEMP"
	}
	return "SALT"
}

// Units returns the units of the tracer itself.
func (t Tracer) Units() string {
	if t == Temperature {
		return "degC"
	}
	return "PSU"
}

// FluxUnits returns the units of a volume-integrated tracer flux rate.
func (t Tracer) FluxUnits() string {
	return t.Units() + " cm^3/s"
}

// prefix is the lower-case tag used to name output fields.
func (t Tracer) prefix() string {
	if t == Temperature {
		return "temp"
	}
	return "salt"
}

// eastAdvectionVar is the resolved advective tracer flux through the
// east face of each cell.
func (t Tracer) eastAdvectionVar() string {
	if t == Temperature {
		return "UET"
	}
	return "UES"
}

// northAdvectionVar is the resolved advective tracer flux through the
// north face of each cell.
func (t Tracer) northAdvectionVar() string {
	if t == Temperature {
		return "VNT"
	}
	return "VNS"
}

// verticalAdvectionVar is the resolved advective tracer flux through
// the top face of each cell, defined at level interfaces.
func (t Tracer) verticalAdvectionVar() string {
	if t == Temperature {
		return "WTT"
	}
	return "WTS"
}

// eastDiffusionVar and northDiffusionVar are the horizontal diffusive
// tracer fluxes through the east and north cell faces.
func (t Tracer) eastDiffusionVar() string  { return "HDIFE_" + t.String() }
func (t Tracer) northDiffusionVar() string { return "HDIFN_" + t.String() }

// diabaticMixingVar is the diabatic (KPP) implicit vertical mixing
// flux at level interfaces.
func (t Tracer) diabaticMixingVar() string { return "DIA_IMPVF_" + t.String() }

// adiabaticMixingVar is the adiabatic (GM plus submesoscale) vertical
// diffusive flux through cell bottoms.
func (t Tracer) adiabaticMixingVar() string { return "HDIFB_" + t.String() }
