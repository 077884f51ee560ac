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

// Package tracerbudget computes diagnostic terms of an ocean tracer
// (heat or salt) budget from gridded POP model output.
//
// The budget of a vertically integrated tracer is split into additive
// terms: resolved lateral and vertical advection, lateral (horizontal)
// diffusion, diabatic and adiabatic vertical mixing, and surface
// forcing. Each term is derived from raw POP flux variables on the
// model's native curvilinear grid using finite-volume differencing,
// and is returned as a labeled map in units of tracer·cm³/s. An
// approximate tendency computed by centered differencing of monthly
// means allows the budget to be checked for closure.
//
// Raw variables are read per time record from NetCDF history files
// through the DataSource interface; static grid information (cell
// area, level thickness, ocean depth in levels) is read once and
// shared read-only across all term computations.
package tracerbudget

// Version gives the version number.
const Version = "0.3.0"
