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
	"os"
	"path/filepath"
	"strings"

	swi "github.com/langevin-usgs/modflow6-swi"
	"github.com/lnashier/viper"
	"github.com/spf13/cast"
)

// RunConfig holds the checked settings of a simulation run.
type RunConfig struct {
	SolverConfig string
	Models       [2]string // freshwater and saltwater model names

	Verbose            bool
	MaxOuterIterations int
	SolutionID         int
	HeadSaltwater      float64
	Densities          swi.Densities
	FinalizeOnError    bool

	OutputFile  string
	LogFile     string
	PlotFile    string
	MetricsFile string
	OpenPlot    bool
}

// LoadRunConfig reads and checks the run settings in cfg.
func LoadRunConfig(cfg *viper.Viper) (*RunConfig, error) {
	workDir := os.ExpandEnv(cfg.GetString("WorkDir"))
	rc := &RunConfig{
		Verbose:         cast.ToBool(cfg.Get("Verbose")),
		FinalizeOnError: cast.ToBool(cfg.Get("FinalizeOnError")),
		OpenPlot:        cast.ToBool(cfg.Get("OpenPlot")),
	}
	var err error
	if rc.Models, err = checkModels(cfg.GetString("FreshwaterModel"), cfg.GetString("SaltwaterModel")); err != nil {
		return nil, err
	}
	if rc.SolverConfig, err = checkInputFile("SolverConfig", cfg.GetString("SolverConfig"), workDir); err != nil {
		return nil, err
	}
	if rc.MaxOuterIterations, err = checkIterations(cfg.Get("MaxOuterIterations")); err != nil {
		return nil, err
	}
	if rc.SolutionID, err = cast.ToIntE(cfg.Get("SolutionID")); err != nil {
		return nil, fmt.Errorf("swi: reading SolutionID: %v", err)
	}
	if rc.HeadSaltwater, err = cast.ToFloat64E(cfg.Get("HeadSaltwater")); err != nil {
		return nil, fmt.Errorf("swi: reading HeadSaltwater: %v", err)
	}
	if rc.Densities, err = checkDensities(cfg.Get("FreshwaterDensity"), cfg.Get("SaltwaterDensity")); err != nil {
		return nil, err
	}
	if rc.OutputFile, err = checkOutputFile(cfg.GetString("OutputFile"), workDir); err != nil {
		return nil, err
	}
	rc.LogFile = checkLogFile(resolve(cfg.GetString("LogFile"), workDir), rc.OutputFile)
	rc.PlotFile = resolve(cfg.GetString("PlotFile"), workDir)
	rc.MetricsFile = resolve(cfg.GetString("MetricsFile"), workDir)
	if rc.OpenPlot && rc.PlotFile == "" {
		return nil, fmt.Errorf("swi: OpenPlot is set but PlotFile is empty")
	}
	return rc, nil
}

// resolve expands environment variables in path and makes a relative
// path relative to workDir.
func resolve(path, workDir string) string {
	path = os.ExpandEnv(path)
	if path == "" || workDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(workDir, path)
}

// checkModels makes sure a freshwater model is given and that the
// saltwater model, if any, is a different model.
func checkModels(fresh, salt string) ([2]string, error) {
	fresh, salt = strings.TrimSpace(os.ExpandEnv(fresh)), strings.TrimSpace(os.ExpandEnv(salt))
	if fresh == "" {
		return [2]string{}, fmt.Errorf("you need to specify the freshwater model name in the FreshwaterModel configuration variable")
	}
	if strings.EqualFold(fresh, salt) {
		return [2]string{}, fmt.Errorf("swi: FreshwaterModel and SaltwaterModel are both %q", fresh)
	}
	return [2]string{fresh, salt}, nil
}

// checkInputFile makes sure that the named input file is specified and
// exists.
func checkInputFile(name, f, workDir string) (string, error) {
	if f == "" {
		return "", fmt.Errorf("you need to specify the %s configuration variable", name)
	}
	f = resolve(f, workDir)
	if _, err := os.Stat(f); err != nil {
		return f, fmt.Errorf("swi: problem with %s: %v", name, err)
	}
	return f, nil
}

// checkOutputFile makes sure that the output file is specified, that
// its directory exists, and that its format is supported.
func checkOutputFile(f, workDir string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`you need to specify an output file configuration variable (for example: OutputFile="output.gob")`)
	}
	f = resolve(f, workDir)
	if _, err := os.Stat(filepath.Dir(f)); err != nil {
		return f, fmt.Errorf("swi: the OutputFile directory doesn't exist: %v", err)
	}
	if _, ok := seriesWriters[strings.ToLower(filepath.Ext(f))]; !ok {
		return f, fmt.Errorf("swi: unsupported OutputFile format %q", filepath.Ext(f))
	}
	return f, nil
}

// checkLogFile fills in a default value for the log file path if one isn't
// specified.
func checkLogFile(logFile, outputFile string) string {
	if logFile == "" {
		logFile = strings.TrimSuffix(outputFile, filepath.Ext(outputFile)) + ".log"
	}
	return logFile
}

// checkIterations makes sure the outer iteration limit is a positive
// integer.
func checkIterations(v interface{}) (int, error) {
	n, err := cast.ToIntE(v)
	if err != nil {
		return 0, fmt.Errorf("swi: reading MaxOuterIterations: %v", err)
	}
	if n < 1 {
		return 0, fmt.Errorf("swi: MaxOuterIterations must be at least 1, but is %d", n)
	}
	return n, nil
}

// checkDensities converts the fluid densities and computes their ratios.
func checkDensities(fresh, salt interface{}) (swi.Densities, error) {
	rhoF, err := cast.ToFloat64E(fresh)
	if err != nil {
		return swi.Densities{}, fmt.Errorf("swi: reading FreshwaterDensity: %v", err)
	}
	rhoS, err := cast.ToFloat64E(salt)
	if err != nil {
		return swi.Densities{}, fmt.Errorf("swi: reading SaltwaterDensity: %v", err)
	}
	return swi.NewDensities(rhoF, rhoS)
}
