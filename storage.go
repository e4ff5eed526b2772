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

	"gonum.org/v1/gonum/floats"
)

// active reports whether an interface at elevation zeta lies within a
// cell spanning (bot, top]. A cell whose interface sits exactly on its
// bottom is inactive and one whose interface sits on its top is active,
// so an interface on a layer boundary belongs to exactly one cell.
func active(zeta, bot, top float64) bool {
	return zeta > bot && zeta <= top
}

// FormulateStorage writes the linearized storage terms caused by
// interface movement into the Hcof and Rhs arrays of p:
//
//	hcof = −(alpha/dt)·area·sy
//	rhs  = hcof·xold
//
// where sy is the specific yield of cells whose interface lies within
// the cell and zero elsewhere. When the model has no storage package
// bound, sy is zero everywhere.
func FormulateStorage(dt float64, p *ModelPointers, alpha float64) error {
	if !(dt > 0) {
		return fmt.Errorf("%w: dt=%g in model %s", ErrNonPositiveDt, dt, p.Model.Name)
	}
	if err := p.require(storageVars...); err != nil {
		return err
	}
	n := len(p.Zeta)
	for _, a := range [][]float64{p.Top, p.Bot, p.Area, p.XOld, p.Hcof, p.Rhs} {
		if len(a) != n {
			return fmt.Errorf("swi: model %s: storage arrays have mismatched lengths", p.Model.Name)
		}
	}
	sy := p.SY
	if sy != nil && len(sy) != n {
		return fmt.Errorf("swi: model %s: sy has %d cells, want %d", p.Model.Name, len(sy), n)
	}

	f := -alpha / dt
	for i := 0; i < n; i++ {
		var syEff float64
		if sy != nil && active(p.Zeta[i], p.Bot[i], p.Top[i]) {
			syEff = sy[i]
		}
		p.Hcof[i] = f * (p.Area[i] * syEff)
	}
	floats.MulTo(p.Rhs, p.Hcof, p.XOld)
	return nil
}

// storageVars are the variables FormulateStorage needs bound.
var storageVars = []Variable{HeadOld, Zeta, Top, Bottom, Area, Hcof, Rhs}

// Formulate refreshes the storage terms of every model in c that is in
// transient mode for the current time step. The freshwater model uses
// alpha = αf and the saltwater model uses alpha = −αs. Models in
// steady-state mode are left untouched.
func Formulate(dt float64, c Coupling, d Densities) error {
	switch c := c.(type) {
	case SingleModel:
		return formulateTransient(dt, c.Fresh, d.AlphaF())
	case CoupledPair:
		if err := formulateTransient(dt, c.Fresh, d.AlphaF()); err != nil {
			return err
		}
		return formulateTransient(dt, c.Salt, -d.AlphaS())
	default:
		panic(fmt.Errorf("swi: unknown coupling %T", c))
	}
}

func formulateTransient(dt float64, p *ModelPointers, alpha float64) error {
	tr, err := p.Transient()
	if err != nil {
		return err
	}
	if !tr {
		return nil
	}
	return FormulateStorage(dt, p, alpha)
}
