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

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// State is the lifecycle state of a Driver.
type State int

// Driver states.
const (
	Uninitialized State = iota
	Initialized
	StepInProgress
	StepConverged // the step's outer iterations are done, converged or not
	Finalized
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initialized:
		return "initialized"
	case StepInProgress:
		return "step in progress"
	case StepConverged:
		return "step converged"
	case Finalized:
		return "finalized"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Config holds the construction-time configuration of a Driver.
type Config struct {
	// Freshwater is the name of the freshwater flow model. It is required.
	Freshwater string

	// Saltwater is the name of the saltwater flow model. Leave it empty
	// for a freshwater-only simulation.
	Saltwater string

	// Verbose enables logging of every resolved variable address.
	Verbose bool

	// SolutionID is the solver component stepped by the Driver.
	// Zero means 1.
	SolutionID int

	// HeadSaltwater is the fixed saltwater head used when there is no
	// saltwater model.
	HeadSaltwater float64

	// Densities gives the fluid density ratios. The zero value means
	// DefaultDensities.
	Densities Densities

	// FinalizeOnError causes the solver to be finalized when Run fails
	// after the solver has been initialized. By default a failed run
	// leaves the solver as it was at the failure.
	FinalizeOnError bool
}

// StepFunc is called after each completed time step with the archived
// snapshot. StepFuncs are advisory and cannot stop the simulation.
type StepFunc func(d *Driver, s Snapshot)

// Option configures a Driver.
type Option func(*Driver)

// WithLogger sets the logger. The default is the logrus standard logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(d *Driver) { d.log = l }
}

// WithMetrics records run statistics in m.
func WithMetrics(m *Metrics) Option {
	return func(d *Driver) { d.metrics = m }
}

// WithStepFuncs adds functions to run after each time step.
func WithStepFuncs(f ...StepFunc) Option {
	return func(d *Driver) { d.stepFuncs = append(d.stepFuncs, f...) }
}

// Driver steps a Solver through a simulation, coupling the interface
// elevation to the flow solution with an outer Picard iteration in each
// time step.
type Driver struct {
	cfg     Config
	solver  Solver
	reg     *Registry
	tracker *Tracker

	coupling Coupling
	series   Series
	state    State
	started  bool // the solver has been initialized

	log       logrus.FieldLogger
	metrics   *Metrics
	stepFuncs []StepFunc
}

// NewDriver returns a Driver for s. The solver is not touched until Run
// is called.
func NewDriver(s Solver, cfg Config, opts ...Option) (*Driver, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil solver", ErrConfig)
	}
	if cfg.Freshwater == "" {
		return nil, fmt.Errorf("%w: the freshwater model name is required", ErrConfig)
	}
	if cfg.Saltwater != "" && cfg.Saltwater == cfg.Freshwater {
		return nil, fmt.Errorf("%w: the freshwater and saltwater models are both named %s",
			ErrConfig, cfg.Freshwater)
	}
	if cfg.Densities == (Densities{}) {
		cfg.Densities = DefaultDensities()
	} else if !cfg.Densities.valid() {
		return nil, fmt.Errorf("%w: invalid densities %v", ErrConfig, cfg.Densities)
	}
	if cfg.SolutionID == 0 {
		cfg.SolutionID = 1
	}

	d := &Driver{
		cfg:    cfg,
		solver: s,
		log:    logrus.StandardLogger(),
	}
	for _, o := range opts {
		o(d)
	}

	d.reg = NewRegistry(s, cfg.Freshwater, cfg.Saltwater)
	d.reg.Verbose = cfg.Verbose
	d.reg.Log = d.log
	d.tracker = NewTracker(cfg.Densities)
	d.tracker.HeadSaltwater = cfg.HeadSaltwater
	return d, nil
}

// State returns the lifecycle state.
func (d *Driver) State() State { return d.state }

// Registry returns the pointer registry used by the driver.
func (d *Driver) Registry() *Registry { return d.reg }

// Series returns the archived interface elevations, one per completed
// time step.
func (d *Driver) Series() Series { return d.series }

// Run runs the whole simulation. Each time step gets at most
// maxOuterIterations outer iterations; a step that exhausts them without
// the solver reporting convergence is archived as it stands and the
// simulation carries on.
func (d *Driver) Run(maxOuterIterations int) (err error) {
	if d.state != Uninitialized {
		return fmt.Errorf("%w: Run called when %s", ErrState, d.state)
	}
	if maxOuterIterations < 1 {
		return fmt.Errorf("%w: maximum outer iterations must be >= 1, have %d", ErrConfig, maxOuterIterations)
	}
	if d.cfg.FinalizeOnError {
		defer func() {
			if err != nil && d.started && d.state != Finalized {
				if ferr := d.solver.Finalize(); ferr != nil {
					err = errors.Join(err, fmt.Errorf("swi: finalizing solver after error: %w", ferr))
				}
			}
		}()
	}

	if err = d.initialize(); err != nil {
		return err
	}

	end := d.solver.GetEndTime()
	for step := 0; d.solver.GetCurrentTime() < end; step++ {
		if err = d.step(step, maxOuterIterations); err != nil {
			return err
		}
	}

	if err = d.solver.Finalize(); err != nil {
		return fmt.Errorf("swi: finalizing solver: %w", err)
	}
	d.state = Finalized
	d.log.WithField("steps", len(d.series)).Info("simulation finalized")
	return nil
}

// initialize initializes the solver, binds the solver variables, sets
// the derivative multipliers, and computes the initial interface.
func (d *Driver) initialize() error {
	if err := d.solver.Initialize(); err != nil {
		return fmt.Errorf("swi: initializing solver: %w", err)
	}
	d.started = true
	if err := d.reg.BindAll(); err != nil {
		return err
	}
	d.coupling = d.reg.Coupling()

	αf, αs := d.cfg.Densities.AlphaF(), d.cfg.Densities.AlphaS()
	switch c := d.coupling.(type) {
	case SingleModel:
		fill(c.Fresh.DMult, αf+1)
	case CoupledPair:
		fill(c.Fresh.DMult, αf+1)
		fill(c.Salt.DMult, αs)
	}

	if err := d.tracker.Update(d.coupling); err != nil {
		return err
	}
	d.state = Initialized
	d.log.WithFields(logrus.Fields{
		"freshwater": d.cfg.Freshwater,
		"saltwater":  d.cfg.Saltwater,
		"densities":  d.cfg.Densities.String(),
	}).Info("swi initialized")
	return nil
}

func fill(a []float64, v float64) {
	for i := range a {
		a[i] = v
	}
}

// step runs time step number step.
func (d *Driver) step(step, maxOuterIterations int) error {
	delt := d.reg.Sim().Delt
	if len(delt) == 0 {
		return fmt.Errorf("%w: %s is empty", ErrUnbound, Delt)
	}
	dt := delt[0]
	t0 := d.solver.GetCurrentTime()
	id := d.cfg.SolutionID
	d.state = StepInProgress

	if err := d.solver.PrepareTimeStep(dt); err != nil {
		return fmt.Errorf("swi: preparing time step %d: %w", step, err)
	}
	if err := d.solver.PrepareSolve(id); err != nil {
		return fmt.Errorf("swi: preparing solve in time step %d: %w", step, err)
	}

	var converged bool
	kiter := 0
	for ; kiter < maxOuterIterations; kiter++ {
		if err := Formulate(dt, d.coupling, d.cfg.Densities); err != nil {
			return err
		}
		var err error
		converged, err = d.solver.Solve(id)
		if err != nil {
			return fmt.Errorf("swi: solving time step %d, iteration %d: %w", step, kiter, err)
		}
		if d.metrics != nil {
			d.metrics.SolveCalls.Inc()
		}
		if err := d.tracker.Update(d.coupling); err != nil {
			return err
		}
		d.log.WithFields(logrus.Fields{
			"step":      step,
			"iteration": kiter,
			"converged": converged,
		}).Debug("outer iteration")
		if converged {
			break
		}
	}
	iterations := kiter
	if converged {
		iterations = kiter + 1
	}
	d.state = StepConverged

	last := d.tracker.Last()
	snap := Snapshot{
		Step:       step,
		Time:       t0 + dt,
		Dt:         dt,
		Iterations: iterations,
		Converged:  converged,
		Zeta:       append(make([]float64, 0, len(last)), last...),
	}
	d.series = append(d.series, snap)
	if !converged {
		d.log.WithFields(logrus.Fields{
			"step":       step,
			"dt":         dt,
			"iterations": iterations,
		}).Warn("outer iterations exhausted without convergence; continuing")
	}

	if err := d.solver.FinalizeSolve(id); err != nil {
		return fmt.Errorf("swi: finalizing solve in time step %d: %w", step, err)
	}
	if err := d.solver.FinalizeTimeStep(); err != nil {
		return fmt.Errorf("swi: finalizing time step %d: %w", step, err)
	}

	if d.metrics != nil {
		d.metrics.TimeSteps.Inc()
		d.metrics.OuterIterations.Observe(float64(iterations))
		d.metrics.SimulationTime.Set(d.solver.GetCurrentTime())
		if !converged {
			d.metrics.NonConvergedSteps.Inc()
		}
	}
	for _, f := range d.stepFuncs {
		f(d, snap)
	}
	return nil
}
