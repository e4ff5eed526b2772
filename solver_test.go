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
	"fmt"
	"math"
	"strings"
)

const testTolerance = 1e-12

func different(a, b, tolerance float64) bool {
	if a == b {
		return false
	}
	if 2*math.Abs(a-b)/math.Abs(a+b) > tolerance || math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	return false
}

// stubSolver is a scripted Solver that keeps its state in maps keyed by
// address.
type stubSolver struct {
	floats map[string][]float64
	ints   map[string][]int32

	time, end float64
	dt        float64

	// converge reports whether Solve converges in the given step and
	// outer iteration. If nil, Solve never converges.
	converge func(step, iter int) bool

	// onSolve, if not nil, is run on each Solve call before returning.
	onSolve func(s *stubSolver, step, iter int)

	solveErr   error
	solveCalls []int // per step
	resolved   []string
	calls      []string

	step, iter int
}

// newStubSolver returns a solver with a freshwater model and, if salt
// is not empty, a saltwater model, each with n cells. The simulation
// has nstp unit-length transient steps.
func newStubSolver(fresh, salt string, n, nstp int) *stubSolver {
	s := &stubSolver{
		floats: make(map[string][]float64),
		ints:   make(map[string][]int32),
		end:    float64(nstp),
		dt:     1,
	}
	s.floats["TDIS/DELT"] = []float64{1}
	for _, m := range []string{fresh, salt} {
		if m == "" {
			continue
		}
		m = strings.ToUpper(m)
		s.addModel(m, n)
	}
	return s
}

func (s *stubSolver) addModel(m string, n int) {
	filled := func(v float64) []float64 {
		a := make([]float64, n)
		for i := range a {
			a[i] = v
		}
		return a
	}
	s.floats[m+"/X"] = filled(0)
	s.floats[m+"/XOLD"] = filled(0)
	s.floats[m+"/DIS/TOP"] = filled(10)
	s.floats[m+"/DIS/BOT"] = filled(-100)
	s.floats[m+"/DIS/AREA"] = filled(100)
	s.floats[m+"/SWI/ZETA"] = filled(0)
	s.floats[m+"/SWI/HCOF"] = filled(0)
	s.floats[m+"/SWI/RHS"] = filled(0)
	s.floats[m+"/SWI/DMULT"] = filled(0)
	s.floats[m+"/STO/SY"] = filled(0.2)
	s.ints[m+"/ISS"] = []int32{0}
	s.ints[m+"/INSTO"] = []int32{1}
}

func (s *stubSolver) GetVarAddress(names ...string) (string, error) {
	var addr string
	switch len(names) {
	case 2:
		addr = names[1] + "/" + names[0]
	case 3:
		addr = names[1] + "/" + names[2] + "/" + names[0]
	default:
		return "", fmt.Errorf("stub: bad address %v", names)
	}
	_, okf := s.floats[addr]
	_, oki := s.ints[addr]
	if !okf && !oki {
		return "", fmt.Errorf("stub: unknown variable %v", names)
	}
	s.resolved = append(s.resolved, addr)
	return addr, nil
}

func (s *stubSolver) GetValuePtr(addr string) ([]float64, error) {
	a, ok := s.floats[addr]
	if !ok {
		return nil, fmt.Errorf("stub: no float variable at %s", addr)
	}
	return a, nil
}

func (s *stubSolver) GetValuePtrInt(addr string) ([]int32, error) {
	a, ok := s.ints[addr]
	if !ok {
		return nil, fmt.Errorf("stub: no integer variable at %s", addr)
	}
	return a, nil
}

func (s *stubSolver) Initialize() error {
	s.calls = append(s.calls, "initialize")
	return nil
}

func (s *stubSolver) GetEndTime() float64     { return s.end }
func (s *stubSolver) GetCurrentTime() float64 { return s.time }

func (s *stubSolver) PrepareTimeStep(dt float64) error {
	s.calls = append(s.calls, "prepare_time_step")
	s.dt = dt
	s.iter = 0
	s.solveCalls = append(s.solveCalls, 0)
	return nil
}

func (s *stubSolver) PrepareSolve(int) error {
	s.calls = append(s.calls, "prepare_solve")
	return nil
}

func (s *stubSolver) Solve(int) (bool, error) {
	s.calls = append(s.calls, "solve")
	if s.solveErr != nil {
		return false, s.solveErr
	}
	s.solveCalls[s.step]++
	if s.onSolve != nil {
		s.onSolve(s, s.step, s.iter)
	}
	conv := s.converge != nil && s.converge(s.step, s.iter)
	s.iter++
	return conv, nil
}

func (s *stubSolver) FinalizeSolve(int) error {
	s.calls = append(s.calls, "finalize_solve")
	return nil
}

func (s *stubSolver) FinalizeTimeStep() error {
	s.calls = append(s.calls, "finalize_time_step")
	s.time += s.dt
	s.step++
	return nil
}

func (s *stubSolver) Finalize() error {
	s.calls = append(s.calls, "finalize")
	return nil
}

func (s *stubSolver) called(name string) int {
	var n int
	for _, c := range s.calls {
		if c == name {
			n++
		}
	}
	return n
}
