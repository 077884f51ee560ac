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

	log "github.com/sirupsen/logrus"

	tracerbudget "github.com/weilin2018/pop2-tracer-budget"
)

// Run computes every budget term for the configured tracer and level
// range and writes the results to outputFile as a NetCDF file.
func Run(gridFile, outputFile, tracerName string, klo, khi int, surfaceFluxVars []string, cfg tracerbudget.Config) error {
	tracer, err := tracerbudget.ParseTracer(tracerName)
	if err != nil {
		return err
	}
	if gridFile == "" {
		return fmt.Errorf("tracerbudget: configuration variable GridFile is not specified")
	}

	log.WithFields(log.Fields{
		"tracer": tracer.String(),
		"case":   cfg.CaseID,
		"levels": fmt.Sprintf("%d - %d", klo, khi),
	}).Info("starting budget calculation")

	geom, region, err := tracerbudget.GridData(gridFile)
	if err != nil {
		return err
	}
	// Region 0 is land in POP region masks.
	mask := tracerbudget.SurfaceMask(region, 0)

	ds, err := tracerbudget.NewDataset(cfg)
	if err != nil {
		return err
	}
	ds.MsgChan = logChan()

	type termFunc struct {
		name string
		f    func() (*tracerbudget.Field, error)
	}
	terms := []termFunc{
		{"lateral advection", func() (*tracerbudget.Field, error) {
			return tracerbudget.LateralAdvection(tracer, geom, ds)
		}},
		{"horizontal mixing", func() (*tracerbudget.Field, error) {
			return tracerbudget.HorizontalMixing(tracer, geom, ds)
		}},
		{"vertical advection", func() (*tracerbudget.Field, error) {
			return tracerbudget.VerticalAdvection(tracer, geom, ds)
		}},
		{"diabatic vertical mixing", func() (*tracerbudget.Field, error) {
			return tracerbudget.DiabaticVerticalMixing(tracer, geom, ds, klo, khi)
		}},
		{"adiabatic vertical mixing", func() (*tracerbudget.Field, error) {
			return tracerbudget.AdiabaticVerticalMixing(tracer, geom, ds, klo, khi)
		}},
	}
	for _, v := range surfaceFluxVars {
		v := v
		terms = append(terms, termFunc{"surface flux " + v, func() (*tracerbudget.Field, error) {
			return tracerbudget.SurfaceFlux(tracer, v, geom, ds)
		}})
	}

	var fields []*tracerbudget.Field
	for _, term := range terms {
		log.WithField("term", term.name).Info("computing")
		fld, err := term.f()
		if err != nil {
			return fmt.Errorf("tracerbudget: computing %s: %v", term.name, err)
		}
		fields = append(fields, fld)
	}

	log.WithField("term", "vertical integral").Info("computing")
	zint, err := tracerbudget.VerticalIntegral(tracer, geom, ds, klo, khi)
	if err != nil {
		return fmt.Errorf("tracerbudget: computing vertical integral: %v", err)
	}
	fields = append(fields, zint)

	log.WithField("term", "tendency").Info("computing")
	bounds, err := ds.TimeBounds(tracer.String())
	if err != nil {
		return err
	}
	tend, err := tracerbudget.Tendency(tracer, zint, bounds)
	if err != nil {
		return fmt.Errorf("tracerbudget: computing tendency: %v", err)
	}
	fields = append(fields, tend, mask)

	w, err := os.Create(outputFile)
	if err != nil {
		return err
	}
	defer w.Close()
	if err := tracerbudget.WriteTerms(w, fields...); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"file":  outputFile,
		"terms": len(fields),
	}).Info("wrote budget terms")
	return nil
}

// logChan returns a channel forwarding progress messages to the logger.
func logChan() chan string {
	c := make(chan string)
	go func() {
		for msg := range c {
			log.Info(msg)
		}
	}()
	return c
}
