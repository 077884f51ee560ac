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

// Package budgetutil holds the configuration and command-line interface
// for the tracerbudget program.
package budgetutil

import (
	"fmt"
	"os"

	"github.com/lnashier/viper"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	tracerbudget "github.com/weilin2018/pop2-tracer-budget"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to the budget
	// calculation.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "BaseDirectory",
			usage: `
              BaseDirectory is the root of the per-variable model output
              directory tree. Each history variable VAR is expected at
              BaseDirectory/VAR/. The path can include environment variables.`,
			defaultVal: ".",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "CaseID",
			usage: `
              CaseID is the model case identifier that history file names
              start with, e.g. "b.e11.B20TRC5CNBDRD".`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "GridTag",
			usage: `
              GridTag identifies the model resolution in history file
              names, e.g. "f09_g16".`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "EnsembleID",
			usage: `
              EnsembleID is the ensemble member number in history file
              names.`,
			defaultVal: 1,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "Tracer",
			usage: `
              Tracer selects the tracer the budget is computed for.
              Valid options are "TEMP" and "SALT".`,
			shorthand:  "t",
			defaultVal: "TEMP",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "GridFile",
			usage: `
              GridFile is the path of a history or grid file holding the
              static grid variables TAREA, dz, KMT and REGION_MASK. The
              path can include environment variables.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "KLo",
			usage: `
              KLo is the shallowest vertical level index (inclusive) of
              the analysis region.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "KHi",
			usage: `
              KHi is the deepest vertical level index (exclusive) of the
              analysis region.`,
			defaultVal: 1,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "SurfaceFluxVars",
			usage: `
              SurfaceFluxVars is a list of surface forcing history
              variables to convert to volume-integrated surface flux
              terms, e.g. SHF, SHF_QSW, QFLUX, EVAP_F, SNOW_F.`,
			defaultVal: []string{"SHF"},
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path of the NetCDF file the budget terms
              are written to. It can include environment variables.`,
			shorthand:  "o",
			defaultVal: "tracer_budget.nc",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("TRACERBUDGET")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case []string:
				if option.shorthand == "" {
					set.StringSlice(option.name, option.defaultVal.([]string), option.usage)
				} else {
					set.StringSliceP(option.name, option.shorthand, option.defaultVal.([]string), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("tracerbudget: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "tracerbudget",
	Short: "Closed heat and salt budgets from POP model output.",
	Long: `tracerbudget computes the terms of the volume-integrated heat or salt
budget of the upper ocean from POP history output split by variable.

Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'TRACERBUDGET_var' where
'var' is the name of the variable to be set.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of tracerbudget.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tracerbudget v%s\n", tracerbudget.Version)
	},
	DisableAutoGenTag: true,
}

// runCmd computes all budget terms and writes them to the output file.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Compute the budget terms.",
	Long: `run computes every term of the tracer budget over the configured
vertical level range and writes the results to OutputFile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		klo, err := cast.ToIntE(Cfg.Get("KLo"))
		if err != nil {
			return fmt.Errorf("tracerbudget: reading 'KLo': %v", err)
		}
		khi, err := cast.ToIntE(Cfg.Get("KHi"))
		if err != nil {
			return fmt.Errorf("tracerbudget: reading 'KHi': %v", err)
		}
		return Run(
			os.ExpandEnv(Cfg.GetString("GridFile")),
			os.ExpandEnv(Cfg.GetString("OutputFile")),
			Cfg.GetString("Tracer"),
			klo, khi,
			Cfg.GetStringSlice("SurfaceFluxVars"),
			tracerbudget.Config{
				BaseDirectory: os.ExpandEnv(Cfg.GetString("BaseDirectory")),
				CaseID:        Cfg.GetString("CaseID"),
				GridTag:       Cfg.GetString("GridTag"),
				EnsembleID:    Cfg.GetInt("EnsembleID"),
			})
	},
	DisableAutoGenTag: true,
}
