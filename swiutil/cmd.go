/*
Copyright © 2024 the modflow6-swi authors.
This file is part of modflow6-swi.

modflow6-swi is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

modflow6-swi is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with modflow6-swi.  If not, see <http://www.gnu.org/licenses/>.
*/


package swiutil

import (
	"fmt"

	swi "github.com/langevin-usgs/modflow6-swi"
	"github.com/langevin-usgs/modflow6-swi/memsolver"
	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to swi.
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
			name: "WorkDir",
			usage: `
              WorkDir is the directory that relative input and output
              paths are resolved against. The default is the current
              directory.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "SolverConfig",
			usage: `
              SolverConfig is the path to the TOML file describing the
              flow simulation: its stress periods, models, and solver
              settings.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "FreshwaterModel",
			usage: `
              FreshwaterModel is the name of the freshwater flow model.`,
			shorthand:  "f",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "SaltwaterModel",
			usage: `
              SaltwaterModel is the name of the saltwater flow model. Leave
              it empty to run with a fixed saltwater head instead.`,
			shorthand:  "s",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Verbose",
			usage: `
              Verbose causes every variable address to be logged as it is
              resolved.`,
			shorthand:  "v",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "MaxOuterIterations",
			usage: `
              MaxOuterIterations is the largest number of outer iterations
              in each time step. A time step that does not converge within
              this number of iterations is kept and the simulation
              continues.`,
			defaultVal: 100,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "SolutionID",
			usage: `
              SolutionID is the identifier of the numerical solution that
              is stepped.`,
			defaultVal: memsolver.SolutionID,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "HeadSaltwater",
			usage: `
              HeadSaltwater is the fixed saltwater head used when there is
              no saltwater model.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "FreshwaterDensity",
			usage: `
              FreshwaterDensity is the density of freshwater.`,
			defaultVal: swi.DefaultFreshwaterDensity,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "SaltwaterDensity",
			usage: `
              SaltwaterDensity is the density of saltwater. It must be
              greater than FreshwaterDensity.`,
			defaultVal: swi.DefaultSaltwaterDensity,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "FinalizeOnError",
			usage: `
              FinalizeOnError causes the flow solver to be finalized when
              the simulation fails after the solver has been initialized.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path to the interface elevation archive.
              The format is chosen by the extension: .gob, .csv, .xlsx,
              .sqlite or .db.`,
			shorthand:  "o",
			defaultVal: "swi_output.gob",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "LogFile",
			usage: `
              LogFile is the path to the log file. The default is OutputFile
              with a .log extension.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "PlotFile",
			usage: `
              PlotFile, if not empty, is the path to an image of the
              interface elevation in each cell through time. The image
              format is chosen by the extension, for example .png or .svg.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "MetricsFile",
			usage: `
              MetricsFile, if not empty, is the path where the run
              statistics are written in the Prometheus text format.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "OpenPlot",
			usage: `
              OpenPlot opens PlotFile in the default viewer once the
              simulation is complete.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("SWI")
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch v := option.defaultVal.(type) {
			case string:
				set.StringP(option.name, option.shorthand, v, option.usage)
			case bool:
				set.BoolP(option.name, option.shorthand, v, option.usage)
			case int:
				set.IntP(option.name, option.shorthand, v, option.usage)
			case float64:
				set.Float64P(option.name, option.shorthand, v, option.usage)
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
	Root.AddCommand(pointersCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("swi: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "swi",
	Short: "A seawater intrusion package for groundwater flow models.",
	Long: `swi couples a sharp freshwater/saltwater interface to a transient
groundwater flow simulation. In each time step the interface elevation is
recomputed from the freshwater and saltwater heads and the storage change
caused by its movement is passed back to the flow solver, iterating until
the flow solution converges.

Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'SWI_var' where 'var' is the
name of the variable to be set.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of swi.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("swi v%s\n", swi.Version)
	},
	DisableAutoGenTag: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation.",
	Long: `run runs a flow simulation with the interface coupling and writes the
interface elevation at the end of each time step to OutputFile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, err := LoadRunConfig(Cfg)
		if err != nil {
			return err
		}
		return Run(cmd, rc)
	},
	DisableAutoGenTag: true,
}

var pointersCmd = &cobra.Command{
	Use:   "pointers",
	Short: "Print the solver variables used by swi.",
	Long: `pointers initializes the flow simulation, resolves every solver variable
used by the interface coupling, and prints each address and its current value.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		models, err := checkModels(Cfg.GetString("FreshwaterModel"), Cfg.GetString("SaltwaterModel"))
		if err != nil {
			return err
		}
		solverConfig, err := checkInputFile("SolverConfig", Cfg.GetString("SolverConfig"), Cfg.GetString("WorkDir"))
		if err != nil {
			return err
		}
		return Pointers(cmd, solverConfig, models, Cfg.GetBool("Verbose"))
	},
	DisableAutoGenTag: true,
}

// Pointers binds every solver variable used by the coupling and writes
// their addresses and values to the command output.
func Pointers(cmd *cobra.Command, solverConfig string, models [2]string, verbose bool) error {
	s, _, err := newSolver(solverConfig, logrus.StandardLogger())
	if err != nil {
		return err
	}
	if err := s.Initialize(); err != nil {
		return err
	}
	r := swi.NewRegistry(s, models[0], models[1])
	r.Verbose = verbose
	bindErr := r.BindAll()
	if err := r.Describe(cmd.OutOrStdout()); err != nil {
		return err
	}
	if err := s.Finalize(); err != nil {
		return err
	}
	return bindErr
}
