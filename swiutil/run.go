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
	"io"
	"os"
	"time"

	swi "github.com/langevin-usgs/modflow6-swi"
	"github.com/langevin-usgs/modflow6-swi/internal/hash"
	"github.com/langevin-usgs/modflow6-swi/memsolver"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/skratchdot/open-golang/open"
	"github.com/spf13/cobra"
)

func newSolver(path string, log logrus.FieldLogger) (*memsolver.Solver, *memsolver.Config, error) {
	c, err := memsolver.LoadConfigFile(path)
	if err != nil {
		return nil, nil, err
	}
	s, err := memsolver.New(c)
	if err != nil {
		return nil, nil, err
	}
	s.Log = log
	return s, c, nil
}

// runKey identifies the inputs of a simulation in the output archive.
type runKey struct {
	Solver                    *memsolver.Config
	Freshwater, Saltwater     string
	HeadSaltwater             float64
	FreshDensity, SaltDensity float64
	MaxOuterIterations        int
}

// Run runs a simulation.
//
// CobraCommand is the cobra.Command instance where Run is called from.
// Log messages are written to its output and to rc.LogFile.
//
// The archived interface elevations are written to rc.OutputFile, and,
// if they are not empty, a plot to rc.PlotFile and the run statistics to
// rc.MetricsFile. If the simulation fails, the time steps completed
// before the failure are still written.
func Run(CobraCommand *cobra.Command, rc *RunConfig) error {
	startTime := time.Now()

	logfile, err := os.Create(rc.LogFile)
	if err != nil {
		return fmt.Errorf("swi: problem creating log file: %v", err)
	}
	defer logfile.Close()
	log := logrus.New()
	log.Out = io.MultiWriter(CobraCommand.OutOrStdout(), logfile)
	log.Formatter = &logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	}

	log.WithField("file", rc.SolverConfig).Info("loading flow simulation")
	s, cfg, err := newSolver(rc.SolverConfig, log)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	d, err := swi.NewDriver(s, swi.Config{
		Freshwater:      rc.Models[0],
		Saltwater:       rc.Models[1],
		Verbose:         rc.Verbose,
		SolutionID:      rc.SolutionID,
		HeadSaltwater:   rc.HeadSaltwater,
		Densities:       rc.Densities,
		FinalizeOnError: rc.FinalizeOnError,
	},
		swi.WithLogger(log),
		swi.WithMetrics(swi.NewMetrics(reg)),
		swi.WithStepFuncs(swi.Log(log)),
	)
	if err != nil {
		return err
	}
	runErr := d.Run(rc.MaxOuterIterations)
	if runErr != nil {
		log.WithError(runErr).Error("simulation failed")
	}

	series := d.Series()
	key := hash.Hash(runKey{
		Solver:             cfg,
		Freshwater:         rc.Models[0],
		Saltwater:          rc.Models[1],
		HeadSaltwater:      rc.HeadSaltwater,
		FreshDensity:       rc.Densities.Fresh(),
		SaltDensity:        rc.Densities.Salt(),
		MaxOuterIterations: rc.MaxOuterIterations,
	})
	if runErr == nil || len(series) > 0 {
		if err := WriteSeries(rc.OutputFile, key, series); err != nil {
			return err
		}
		log.WithFields(logrus.Fields{"file": rc.OutputFile, "run": key}).Info("wrote interface elevations")
	}
	if rc.MetricsFile != "" {
		if err := WriteMetrics(rc.MetricsFile, reg); err != nil {
			return err
		}
	}
	if runErr != nil {
		return runErr
	}

	if rc.PlotFile != "" {
		if err := PlotSeries(rc.PlotFile, series); err != nil {
			return err
		}
		if rc.OpenPlot {
			if err := open.Run(rc.PlotFile); err != nil {
				log.WithError(err).Warn("could not open plot")
			}
		}
	}

	log.WithFields(logrus.Fields{
		"steps":        len(series),
		"nonconverged": series.NonConverged(),
		"walltime":     time.Since(startTime).Round(time.Millisecond).String(),
	}).Info("swi simulation complete")
	return nil
}
