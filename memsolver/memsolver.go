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


// Package memsolver is an in-process groundwater flow solver for
// simple chains of cells. It exposes its state by variable address in
// the same way as a full flow solver's API, so that it can be driven by
// swi.Driver in tests and small demonstrations.
package memsolver

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	swi "github.com/langevin-usgs/modflow6-swi"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// SolutionID is the identifier of the only numerical solution.
const SolutionID = 1

// ErrLifecycle is returned when a solver method is called out of order.
var ErrLifecycle = errors.New("memsolver: lifecycle error")

type phase int

const (
	created phase = iota
	betweenSteps
	stepPrepared
	solving
	solveFinalized
	finalized
)

var phaseNames = [...]string{"created", "between time steps", "time step prepared",
	"solving", "solve finalized", "finalized"}

func (p phase) String() string { return phaseNames[p] }

type model struct {
	cfg  *ModelConfig
	name string

	x, xold          []float64
	top, bot, area   []float64
	zeta, hcof, rhs  []float64
	dmult            []float64
	sy, ss, recharge []float64
	iss, insto       []int32

	chd map[int]float64
}

// Solver is a flow solver holding every model in memory.
type Solver struct {
	// Log receives debugging output. The default is the logrus
	// standard logger.
	Log logrus.FieldLogger

	cfg    *Config
	dt     []float64
	period []int

	kstp  int
	time  float64
	phase phase
	delt  []float64

	models []*model
	floats map[string][]float64
	ints   map[string][]int32

	iterations int
}

var _ swi.Solver = (*Solver)(nil)

// New returns a solver for c. Arrays are allocated by Initialize.
func New(c *Config) (*Solver, error) {
	if c == nil {
		return nil, fmt.Errorf("memsolver: nil configuration")
	}
	s := &Solver{
		Log: logrus.StandardLogger(),
		cfg: c,
	}
	s.dt, s.period = c.TDIS.steps()
	return s, nil
}

func (s *Solver) check(want ...phase) error {
	for _, p := range want {
		if s.phase == p {
			return nil
		}
	}
	return fmt.Errorf("%w: solver is %s", ErrLifecycle, s.phase)
}

// Initialize allocates the model arrays and sets the heads to their
// starting values.
func (s *Solver) Initialize() error {
	if err := s.check(created); err != nil {
		return err
	}
	s.floats = make(map[string][]float64)
	s.ints = make(map[string][]int32)
	s.delt = []float64{s.dt[0]}
	s.floats["TDIS/DELT"] = s.delt

	for i := range s.cfg.Models {
		mc := &s.cfg.Models[i]
		n := mc.NCell
		m := &model{
			cfg:      mc,
			name:     strings.ToUpper(mc.Name),
			x:        append([]float64(nil), mc.Strt...),
			xold:     append([]float64(nil), mc.Strt...),
			top:      append([]float64(nil), mc.Top...),
			bot:      append([]float64(nil), mc.Bot...),
			area:     append([]float64(nil), mc.Area...),
			zeta:     make([]float64, n),
			hcof:     make([]float64, n),
			rhs:      make([]float64, n),
			dmult:    make([]float64, n),
			sy:       append([]float64(nil), mc.SY...),
			ss:       append([]float64(nil), mc.SS...),
			recharge: append([]float64(nil), mc.Recharge...),
			iss:      []int32{0},
			insto:    []int32{0},
			chd:      make(map[int]float64),
		}
		for _, c := range mc.CHD {
			m.chd[c.Cell] = c.Head
			m.x[c.Cell] = c.Head
			m.xold[c.Cell] = c.Head
		}
		if mc.Storage {
			m.insto[0] = 1
		}
		s.models = append(s.models, m)

		p := m.name + "/"
		s.floats[p+"X"] = m.x
		s.floats[p+"XOLD"] = m.xold
		s.floats[p+"DIS/TOP"] = m.top
		s.floats[p+"DIS/BOT"] = m.bot
		s.floats[p+"DIS/AREA"] = m.area
		s.floats[p+"SWI/ZETA"] = m.zeta
		s.floats[p+"SWI/HCOF"] = m.hcof
		s.floats[p+"SWI/RHS"] = m.rhs
		s.floats[p+"SWI/DMULT"] = m.dmult
		if mc.Storage {
			s.floats[p+"STO/SY"] = m.sy
			s.floats[p+"STO/SS"] = m.ss
		}
		s.floats[p+"RCH/RECHARGE"] = m.recharge
		s.ints[p+"ISS"] = m.iss
		s.ints[p+"INSTO"] = m.insto
	}
	s.setSteady()
	s.phase = betweenSteps
	return nil
}

// setSteady sets the steady-state flag of every model for the next
// time step.
func (s *Solver) setSteady() {
	var v int32
	if s.kstp < len(s.period) && s.cfg.TDIS.Periods[s.period[s.kstp]].Steady {
		v = 1
	}
	for _, m := range s.models {
		m.iss[0] = v
	}
}

// GetVarAddress returns the address of the variable identified by
// names: the variable name followed by the component (a model name or
// TDIS) and optionally a package name.
func (s *Solver) GetVarAddress(names ...string) (string, error) {
	if s.phase == created || s.phase == finalized {
		return "", fmt.Errorf("%w: solver is %s", ErrLifecycle, s.phase)
	}
	up := make([]string, len(names))
	for i, n := range names {
		up[i] = strings.ToUpper(n)
	}
	var addr string
	switch len(up) {
	case 2:
		addr = up[1] + "/" + up[0]
	case 3:
		addr = up[1] + "/" + up[2] + "/" + up[0]
	default:
		return "", fmt.Errorf("memsolver: variable names %v: want 2 or 3 names", names)
	}
	if _, ok := s.floats[addr]; ok {
		return addr, nil
	}
	if _, ok := s.ints[addr]; ok {
		return addr, nil
	}
	return "", fmt.Errorf("memsolver: no variable %s", addr)
}

// GetValuePtr returns the floating point array at addr. The array is
// the solver's own storage.
func (s *Solver) GetValuePtr(addr string) ([]float64, error) {
	a, ok := s.floats[addr]
	if !ok {
		return nil, fmt.Errorf("memsolver: no floating point variable %s", addr)
	}
	return a, nil
}

// GetValuePtrInt returns the integer array at addr.
func (s *Solver) GetValuePtrInt(addr string) ([]int32, error) {
	a, ok := s.ints[addr]
	if !ok {
		return nil, fmt.Errorf("memsolver: no integer variable %s", addr)
	}
	return a, nil
}

// Addresses returns every variable address, sorted.
func (s *Solver) Addresses() []string {
	o := make([]string, 0, len(s.floats)+len(s.ints))
	for a := range s.floats {
		o = append(o, a)
	}
	for a := range s.ints {
		o = append(o, a)
	}
	sort.Strings(o)
	return o
}

func (s *Solver) GetEndTime() float64     { return s.cfg.TDIS.EndTime() }
func (s *Solver) GetCurrentTime() float64 { return s.time }

// PrepareTimeStep starts the next time step with length dt.
func (s *Solver) PrepareTimeStep(dt float64) error {
	if err := s.check(betweenSteps); err != nil {
		return err
	}
	if s.kstp >= len(s.dt) {
		return fmt.Errorf("%w: simulation has ended", ErrLifecycle)
	}
	if !(dt > 0) {
		return fmt.Errorf("memsolver: time step length must be > 0, have %g", dt)
	}
	s.delt[0] = dt
	s.setSteady()
	for _, m := range s.models {
		copy(m.xold, m.x)
	}
	s.iterations = 0
	s.phase = stepPrepared
	return nil
}

func checkID(id int) error {
	if id != SolutionID {
		return fmt.Errorf("memsolver: no solution %d", id)
	}
	return nil
}

// PrepareSolve starts the iterations of solution id.
func (s *Solver) PrepareSolve(id int) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := s.check(stepPrepared); err != nil {
		return err
	}
	s.phase = solving
	return nil
}

// Solve assembles and solves the flow equation of every model once. It
// reports convergence when no head changed by more than HClose.
func (s *Solver) Solve(id int) (bool, error) {
	if err := checkID(id); err != nil {
		return false, err
	}
	if err := s.check(solving); err != nil {
		return false, err
	}
	dt := s.delt[0]
	var dhmax float64
	for _, m := range s.models {
		h, err := m.solve(dt)
		if err != nil {
			return false, fmt.Errorf("memsolver: model %s: %w", m.name, err)
		}
		dhmax = math.Max(dhmax, floats.Distance(h, m.x, math.Inf(1)))
		copy(m.x, h)
	}
	s.iterations++
	s.Log.WithFields(logrus.Fields{
		"kstp":      s.kstp,
		"iteration": s.iterations,
		"dhmax":     dhmax,
	}).Debug("memsolver solve")
	return dhmax <= s.cfg.HClose, nil
}

// solve assembles and solves the model's equations for the current
// time step and returns the new heads.
func (m *model) solve(dt float64) ([]float64, error) {
	n := len(m.x)
	a := mat.NewDense(n, n, nil)
	b := mat.NewVecDense(n, nil)
	transient := m.iss[0] == 0
	cond := m.cfg.Conductance

	for i := 0; i < n; i++ {
		if h, ok := m.chd[i]; ok {
			a.Set(i, i, 1)
			b.SetVec(i, h)
			continue
		}
		var diag, rhs float64
		if i > 0 {
			diag -= cond[i-1]
			a.Set(i, i-1, cond[i-1])
		}
		if i < n-1 {
			diag -= cond[i]
			a.Set(i, i+1, cond[i])
		}
		rhs -= m.recharge[i] * m.area[i]
		if transient {
			diag += m.hcof[i]
			rhs += m.rhs[i]
			if m.insto[0] != 0 {
				sc := m.ss[i] * m.area[i] * (m.top[i] - m.bot[i]) / dt
				diag -= sc
				rhs -= sc * m.xold[i]
			}
		}
		a.Set(i, i, diag)
		b.SetVec(i, rhs)
	}

	var h mat.VecDense
	if err := h.SolveVec(a, b); err != nil {
		var c mat.Condition
		if !errors.As(err, &c) || math.IsInf(float64(c), 1) {
			return nil, err
		}
	}
	o := make([]float64, n)
	for i := range o {
		o[i] = h.AtVec(i)
	}
	for i, v := range m.chd {
		o[i] = v
	}
	return o, nil
}

// FinalizeSolve ends the iterations of solution id.
func (s *Solver) FinalizeSolve(id int) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := s.check(solving); err != nil {
		return err
	}
	s.phase = solveFinalized
	return nil
}

// FinalizeTimeStep ends the current time step and advances the
// simulation time.
func (s *Solver) FinalizeTimeStep() error {
	if err := s.check(solveFinalized); err != nil {
		return err
	}
	s.time += s.delt[0]
	s.kstp++
	if s.kstp == len(s.dt) {
		s.time = s.GetEndTime()
	} else {
		s.delt[0] = s.dt[s.kstp]
	}
	s.phase = betweenSteps
	return nil
}

// Finalize ends the simulation.
func (s *Solver) Finalize() error {
	if s.phase == finalized {
		return fmt.Errorf("%w: already finalized", ErrLifecycle)
	}
	s.phase = finalized
	return nil
}
