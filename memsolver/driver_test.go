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


package memsolver_test

import (
	"math"
	"testing"

	swi "github.com/langevin-usgs/modflow6-swi"
	"github.com/langevin-usgs/modflow6-swi/memsolver"
	"github.com/sirupsen/logrus/hooks/test"
)

func run(t *testing.T, file string, cfg swi.Config) (*memsolver.Solver, *swi.Driver) {
	t.Helper()
	c, err := memsolver.LoadConfigFile(file)
	if err != nil {
		t.Fatal(err)
	}
	s, err := memsolver.New(c)
	if err != nil {
		t.Fatal(err)
	}
	l, _ := test.NewNullLogger()
	s.Log = l
	d, err := swi.NewDriver(s, cfg, swi.WithLogger(l))
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Run(20); err != nil {
		t.Fatal(err)
	}
	return s, d
}

func TestDriverSingleModel(t *testing.T) {
	s, d := run(t, "testdata/single.toml", swi.Config{Freshwater: "gwf"})

	series := d.Series()
	if len(series) != 6 {
		t.Fatalf("%d snapshots; want 6", len(series))
	}
	for _, snap := range series {
		if !snap.Converged || snap.Iterations != 2 {
			t.Errorf("step %d: converged=%v after %d iterations", snap.Step, snap.Converged, snap.Iterations)
		}
	}
	if math.Abs(series[5].Time-11) > 1e-9 {
		t.Errorf("final time = %g", series[5].Time)
	}

	// The lens grows through the transient period.
	_, z4, err := series.Cell(4)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < 5; i++ {
		if !(z4[i] < z4[i-1]) {
			t.Errorf("interface in cell 4 did not deepen in step %d: %v", i, z4)
		}
	}

	// The final steady period reaches the steady-state heads.
	x, _ := s.GetValuePtr("GWF/X")
	zeta, _ := s.GetValuePtr("GWF/SWI/ZETA")
	for i, h := range []float64{0, 0.04, 0.07, 0.09, 0.1} {
		if math.Abs(x[i]-h) > 1e-9 {
			t.Errorf("x[%d] = %g; want %g", i, x[i], h)
		}
		if math.Abs(zeta[i]+40*x[i]) > 1e-9 {
			t.Errorf("zeta[%d] = %g; want %g", i, zeta[i], -40*x[i])
		}
		if math.Abs(series[5].Zeta[i]-zeta[i]) > 1e-9 {
			t.Errorf("archived zeta[%d] = %g; want %g", i, series[5].Zeta[i], zeta[i])
		}
	}
	dmult, _ := s.GetValuePtr("GWF/SWI/DMULT")
	if dmult[0] != 41 {
		t.Errorf("dmult = %g; want 41", dmult[0])
	}
}

func TestDriverCoupledMatchesFixedSaltHead(t *testing.T) {
	s, coupled := run(t, "testdata/coupled.toml",
		swi.Config{Freshwater: "gwf", Saltwater: "gwf_salt"})
	_, single := run(t, "testdata/single.toml",
		swi.Config{Freshwater: "gwf", HeadSaltwater: 0.1})

	cs, ss := coupled.Series(), single.Series()
	if len(cs) != len(ss) {
		t.Fatalf("series lengths %d and %d", len(cs), len(ss))
	}
	for i := range cs {
		for j := range cs[i].Zeta {
			if math.Abs(cs[i].Zeta[j]-ss[i].Zeta[j]) > 1e-9 {
				t.Errorf("step %d cell %d: coupled zeta %g, single zeta %g",
					i, j, cs[i].Zeta[j], ss[i].Zeta[j])
			}
		}
	}
	fz, _ := s.GetValuePtr("GWF/SWI/ZETA")
	sz, _ := s.GetValuePtr("GWF_SALT/SWI/ZETA")
	for i := range fz {
		if fz[i] != sz[i] {
			t.Errorf("cell %d: fresh zeta %g, salt zeta %g", i, fz[i], sz[i])
		}
	}
}
