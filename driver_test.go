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
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func quietLogger() logrus.FieldLogger {
	l, _ := test.NewNullLogger()
	return l
}

// gathered returns the metric families in reg by name.
func gathered(t *testing.T, reg *prometheus.Registry) map[string]*dto.MetricFamily {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	o := make(map[string]*dto.MetricFamily)
	for _, mf := range mfs {
		o[mf.GetName()] = mf
	}
	return o
}

func TestDriverNonConvergence(t *testing.T) {
	const maxOuter = 3
	s := newStubSolver("gwf", "", 4, 2)
	reg := prometheus.NewRegistry()
	d, err := NewDriver(s, Config{Freshwater: "gwf"},
		WithLogger(quietLogger()), WithMetrics(NewMetrics(reg)))
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Run(maxOuter); err != nil {
		t.Fatalf("non-convergence should not be an error: %v", err)
	}
	if len(s.solveCalls) != 2 || s.solveCalls[0] != maxOuter || s.solveCalls[1] != maxOuter {
		t.Errorf("solve calls per step = %v; want [%d %d]", s.solveCalls, maxOuter, maxOuter)
	}
	series := d.Series()
	if len(series) != 2 {
		t.Fatalf("series length = %d; want 2", len(series))
	}
	for i, snap := range series {
		if snap.Converged || snap.Iterations != maxOuter || snap.Step != i {
			t.Errorf("snapshot %d = %+v", i, snap)
		}
		if len(snap.Zeta) != 4 {
			t.Errorf("snapshot %d has %d cells", i, len(snap.Zeta))
		}
	}
	if series.NonConverged() != 2 {
		t.Errorf("non-converged = %d", series.NonConverged())
	}
	if d.State() != Finalized || s.called("finalize") != 1 {
		t.Errorf("state %s, finalize called %d times", d.State(), s.called("finalize"))
	}

	mfs := gathered(t, reg)
	counters := map[string]float64{
		"swi_solve_calls_total":        2 * maxOuter,
		"swi_time_steps_total":         2,
		"swi_nonconverged_steps_total": 2,
	}
	for name, want := range counters {
		mf, ok := mfs[name]
		if !ok {
			t.Errorf("metric %s not registered", name)
			continue
		}
		if have := mf.GetMetric()[0].GetCounter().GetValue(); have != want {
			t.Errorf("%s = %g; want %g", name, have, want)
		}
	}
	if h := mfs["swi_outer_iterations"].GetMetric()[0].GetHistogram(); h.GetSampleCount() != 2 || h.GetSampleSum() != 2*maxOuter {
		t.Errorf("outer iterations histogram: count %d, sum %g", h.GetSampleCount(), h.GetSampleSum())
	}
	if g := mfs["swi_simulation_time"].GetMetric()[0].GetGauge().GetValue(); g != 2 {
		t.Errorf("simulation time = %g; want 2", g)
	}
}

func TestDriverCallOrder(t *testing.T) {
	s := newStubSolver("gwf", "", 2, 1)
	s.converge = func(step, iter int) bool { return iter == 1 }
	d, err := NewDriver(s, Config{Freshwater: "gwf"}, WithLogger(quietLogger()))
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Run(10); err != nil {
		t.Fatal(err)
	}
	want := []string{"initialize", "prepare_time_step", "prepare_solve",
		"solve", "solve", "finalize_solve", "finalize_time_step", "finalize"}
	if strings.Join(s.calls, ",") != strings.Join(want, ",") {
		t.Errorf("calls:\nhave %v\nwant %v", s.calls, want)
	}
	if snap := d.Series()[0]; !snap.Converged || snap.Iterations != 2 {
		t.Errorf("snapshot = %+v; want converged after 2 iterations", snap)
	}
}

func TestDriverArchivesPreviousIterate(t *testing.T) {
	s := newStubSolver("gwf", "", 1, 1)
	s.onSolve = func(s *stubSolver, step, iter int) {
		s.floats["GWF/X"][0] = float64(iter + 1)
	}
	s.converge = func(step, iter int) bool { return iter == 1 }
	d, err := NewDriver(s, Config{Freshwater: "gwf"}, WithLogger(quietLogger()))
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Run(5); err != nil {
		t.Fatal(err)
	}
	// The last solve sets head 2, so zeta is -80, but the archived value
	// is the interface from the iteration before, -40.
	if z := s.floats["GWF/SWI/ZETA"][0]; z != -80 {
		t.Errorf("final zeta = %g; want -80", z)
	}
	if z := d.Series()[0].Zeta[0]; z != -40 {
		t.Errorf("archived zeta = %g; want -40", z)
	}
}

func TestDriverCoupledPair(t *testing.T) {
	s := newStubSolver("fresh", "salt", 3, 2)
	s.onSolve = func(s *stubSolver, step, iter int) {
		for i := range s.floats["FRESH/X"] {
			s.floats["FRESH/X"][i] = float64(step + i)
			s.floats["SALT/X"][i] = 0.5
		}
	}
	s.converge = func(step, iter int) bool { return iter == 0 }
	d, err := NewDriver(s, Config{Freshwater: "fresh", Saltwater: "salt"}, WithLogger(quietLogger()))
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Run(4); err != nil {
		t.Fatal(err)
	}
	dens := DefaultDensities()
	for i, v := range s.floats["FRESH/SWI/DMULT"] {
		if v != dens.AlphaF()+1 {
			t.Errorf("fresh dmult[%d] = %g", i, v)
		}
	}
	for i, v := range s.floats["SALT/SWI/DMULT"] {
		if v != dens.AlphaS() {
			t.Errorf("salt dmult[%d] = %g", i, v)
		}
	}
	fz, sz := s.floats["FRESH/SWI/ZETA"], s.floats["SALT/SWI/ZETA"]
	for i := range fz {
		want := 41*0.5 - 40*float64(1+i)
		if different(fz[i], want, testTolerance) || fz[i] != sz[i] {
			t.Errorf("cell %d: fresh zeta %g, salt zeta %g; want %g", i, fz[i], sz[i], want)
		}
	}
	// Storage terms of the saltwater model carry the opposite sign.
	fh, sh := s.floats["FRESH/SWI/HCOF"], s.floats["SALT/SWI/HCOF"]
	for i := range fh {
		if fh[i] > 0 || sh[i] < 0 {
			t.Errorf("cell %d: fresh hcof %g, salt hcof %g", i, fh[i], sh[i])
		}
	}
}

func TestDriverBindingFailure(t *testing.T) {
	for _, finalize := range []bool{false, true} {
		s := newStubSolver("gwf", "", 2, 1)
		delete(s.floats, "GWF/SWI/ZETA")
		d, err := NewDriver(s, Config{Freshwater: "gwf", FinalizeOnError: finalize},
			WithLogger(quietLogger()))
		if err != nil {
			t.Fatal(err)
		}
		err = d.Run(3)
		if !errors.Is(err, ErrBinding) {
			t.Errorf("finalize=%v: error = %v; want ErrBinding", finalize, err)
		}
		want := 0
		if finalize {
			want = 1
		}
		if n := s.called("finalize"); n != want {
			t.Errorf("finalize=%v: Finalize called %d times; want %d", finalize, n, want)
		}
		if s.called("solve") != 0 {
			t.Errorf("finalize=%v: solver stepped after binding failure", finalize)
		}
	}
}

func TestDriverSolveError(t *testing.T) {
	s := newStubSolver("gwf", "", 2, 3)
	s.solveErr = errors.New("matrix is singular")
	d, err := NewDriver(s, Config{Freshwater: "gwf"}, WithLogger(quietLogger()))
	if err != nil {
		t.Fatal(err)
	}
	err = d.Run(3)
	if !errors.Is(err, s.solveErr) {
		t.Fatalf("error = %v; want wrapped solver error", err)
	}
	if len(d.Series()) != 0 {
		t.Errorf("series should be empty after a failed first step")
	}
	if d.State() != StepInProgress {
		t.Errorf("state = %s", d.State())
	}
}

func TestDriverRunTwice(t *testing.T) {
	s := newStubSolver("gwf", "", 1, 1)
	d, err := NewDriver(s, Config{Freshwater: "gwf"}, WithLogger(quietLogger()))
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Run(0); !errors.Is(err, ErrConfig) {
		t.Errorf("maxOuter 0: error = %v; want ErrConfig", err)
	}
	if err := d.Run(1); err != nil {
		t.Fatal(err)
	}
	if err := d.Run(1); !errors.Is(err, ErrState) {
		t.Errorf("second run: error = %v; want ErrState", err)
	}
}

func TestNewDriverConfig(t *testing.T) {
	s := newStubSolver("gwf", "", 1, 1)
	bad := []Config{
		{},
		{Freshwater: "gwf", Saltwater: "gwf"},
		{Freshwater: "gwf", Densities: Densities{fresh: 1025, salt: 1000}},
	}
	for _, c := range bad {
		if _, err := NewDriver(s, c); !errors.Is(err, ErrConfig) {
			t.Errorf("%+v: error = %v; want ErrConfig", c, err)
		}
	}
	if _, err := NewDriver(nil, Config{Freshwater: "gwf"}); !errors.Is(err, ErrConfig) {
		t.Errorf("nil solver: error = %v", err)
	}
}

func TestDriverStepFuncs(t *testing.T) {
	s := newStubSolver("gwf", "", 2, 3)
	s.converge = func(step, iter int) bool { return true }
	logger, hook := test.NewNullLogger()

	var steps []int
	record := func(d *Driver, snap Snapshot) { steps = append(steps, snap.Step) }
	d, err := NewDriver(s, Config{Freshwater: "gwf"},
		WithLogger(logger), WithStepFuncs(record, Log(logger)))
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Run(2); err != nil {
		t.Fatal(err)
	}
	if len(steps) != 3 || steps[2] != 2 {
		t.Errorf("step funcs called for steps %v", steps)
	}
	var n int
	for _, e := range hook.AllEntries() {
		if e.Message == "time step complete" {
			n++
			if _, ok := e.Data["zetaMin"]; !ok {
				t.Errorf("entry missing zetaMin: %v", e.Data)
			}
		}
	}
	if n != 3 {
		t.Errorf("logged %d step messages; want 3", n)
	}
}
