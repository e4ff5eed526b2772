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
	"path/filepath"
	"testing"

	"github.com/kr/pretty"
	swi "github.com/langevin-usgs/modflow6-swi"
	"github.com/lnashier/viper"
)

func testConfig() *viper.Viper {
	cfg := viper.New()
	for k, v := range map[string]interface{}{
		"WorkDir":            "testdata",
		"SolverConfig":       "solver.toml",
		"FreshwaterModel":    "gwf",
		"SaltwaterModel":     "",
		"Verbose":            "true",
		"MaxOuterIterations": "25",
		"SolutionID":         1,
		"HeadSaltwater":      "0.5",
		"FreshwaterDensity":  1000.0,
		"SaltwaterDensity":   "1025",
		"FinalizeOnError":    false,
		"OutputFile":         "out.csv",
		"LogFile":            "",
		"PlotFile":           "",
		"MetricsFile":        "",
		"OpenPlot":           false,
	} {
		cfg.Set(k, v)
	}
	return cfg
}

func TestLoadRunConfig(t *testing.T) {
	rc, err := LoadRunConfig(testConfig())
	if err != nil {
		t.Fatal(err)
	}
	want := &RunConfig{
		SolverConfig:       filepath.Join("testdata", "solver.toml"),
		Models:             [2]string{"gwf", ""},
		Verbose:            true,
		MaxOuterIterations: 25,
		SolutionID:         1,
		HeadSaltwater:      0.5,
		OutputFile:         filepath.Join("testdata", "out.csv"),
		LogFile:            filepath.Join("testdata", "out.log"),
	}
	d := swi.DefaultDensities()
	if rc.Densities.AlphaF() != d.AlphaF() || rc.Densities.AlphaS() != d.AlphaS() {
		t.Errorf("densities = %v; want %v", rc.Densities, d)
	}
	want.Densities = rc.Densities
	if diff := pretty.Diff(rc, want); len(diff) != 0 {
		t.Errorf("run configuration differs:\n%v", diff)
	}
}

func TestLoadRunConfigErrors(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value interface{}
	}{
		{name: "no freshwater model", key: "FreshwaterModel", value: ""},
		{name: "same models", key: "SaltwaterModel", value: "GWF"},
		{name: "no solver config", key: "SolverConfig", value: ""},
		{name: "missing solver config", key: "SolverConfig", value: "nonexistent.toml"},
		{name: "zero iterations", key: "MaxOuterIterations", value: 0},
		{name: "bad iterations", key: "MaxOuterIterations", value: "many"},
		{name: "inverted densities", key: "SaltwaterDensity", value: 990.0},
		{name: "bad head", key: "HeadSaltwater", value: "sea level"},
		{name: "no output file", key: "OutputFile", value: ""},
		{name: "unsupported output", key: "OutputFile", value: "out.txt"},
		{name: "missing output directory", key: "OutputFile", value: "nodir/out.gob"},
		{name: "open without plot", key: "OpenPlot", value: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Set(test.key, test.value)
			if _, err := LoadRunConfig(cfg); err == nil {
				t.Errorf("%s=%v: expected an error", test.key, test.value)
			}
		})
	}
}

func TestCheckLogFile(t *testing.T) {
	if have := checkLogFile("", "/tmp/run/zeta.sqlite"); have != "/tmp/run/zeta.log" {
		t.Errorf("default log file = %s", have)
	}
	if have := checkLogFile("my.log", "zeta.gob"); have != "my.log" {
		t.Errorf("log file = %s", have)
	}
}
