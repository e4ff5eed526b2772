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

package swi

import "github.com/prometheus/client_golang/prometheus"

// Metrics collects run statistics from a Driver.
type Metrics struct {
	SolveCalls        prometheus.Counter
	TimeSteps         prometheus.Counter
	NonConvergedSteps prometheus.Counter
	OuterIterations   prometheus.Histogram
	SimulationTime    prometheus.Gauge
}

// NewMetrics creates the run metrics and registers them with reg.
// If reg is nil the metrics are not registered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SolveCalls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "swi",
			Name:      "solve_calls_total",
			Help:      "Number of single-iteration solver calls.",
		}),
		TimeSteps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "swi",
			Name:      "time_steps_total",
			Help:      "Number of completed time steps.",
		}),
		NonConvergedSteps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "swi",
			Name:      "nonconverged_steps_total",
			Help:      "Number of time steps that exhausted the outer iteration budget.",
		}),
		OuterIterations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "swi",
			Name:      "outer_iterations",
			Help:      "Outer iterations used per time step.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
		}),
		SimulationTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "swi",
			Name:      "simulation_time",
			Help:      "Current simulation time.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.SolveCalls, m.TimeSteps, m.NonConvergedSteps,
			m.OuterIterations, m.SimulationTime)
	}
	return m
}
