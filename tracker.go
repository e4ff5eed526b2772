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

// Tracker keeps the interface elevation consistent with the current
// heads.
type Tracker struct {
	Densities Densities

	// HeadSaltwater is the saltwater head used when there is no
	// saltwater model.
	HeadSaltwater float64

	last []float64
}

// NewTracker returns a tracker using the density ratios in d and a
// fixed saltwater head of 0.
func NewTracker(d Densities) *Tracker {
	return &Tracker{Densities: d}
}

// Update recomputes zeta = αs·hs − αf·hf in place in the freshwater
// zeta array and, for a CoupledPair, copies the same values into the
// saltwater zeta array. The freshwater zeta held before the update is
// retained and can be retrieved with Last.
func (t *Tracker) Update(c Coupling) error {
	if !t.Densities.valid() {
		return fmt.Errorf("%w: tracker densities are not set", ErrConfig)
	}
	fresh := c.Freshwater()
	if err := fresh.require(Zeta, Head); err != nil {
		return err
	}
	zeta, hf := fresh.Zeta, fresh.X
	if len(zeta) != len(hf) {
		return fmt.Errorf("swi: model %s: zeta has %d cells but head has %d",
			fresh.Model.Name, len(zeta), len(hf))
	}

	if cap(t.last) < len(zeta) {
		t.last = make([]float64, len(zeta))
	}
	t.last = t.last[:len(zeta)]
	copy(t.last, zeta)

	αf, αs := t.Densities.AlphaF(), t.Densities.AlphaS()
	switch c := c.(type) {
	case SingleModel:
		floats.ScaleTo(zeta, -αf, hf)
		floats.AddConst(αs*t.HeadSaltwater, zeta)
	case CoupledPair:
		if err := c.Salt.require(Zeta, Head); err != nil {
			return err
		}
		hs := c.Salt.X
		if len(hs) != len(hf) || len(c.Salt.Zeta) != len(zeta) {
			return fmt.Errorf("swi: models %s and %s have different numbers of cells",
				fresh.Model.Name, c.Salt.Model.Name)
		}
		floats.ScaleTo(zeta, -αf, hf)
		floats.AddScaled(zeta, αs, hs)
		copy(c.Salt.Zeta, zeta)
	default:
		panic(fmt.Errorf("swi: unknown coupling %T", c))
	}
	return nil
}

// Last returns the freshwater zeta as it was at the start of the most
// recent Update. The returned slice is reused by the next Update.
func (t *Tracker) Last() []float64 { return t.last }
