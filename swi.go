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

// Package swi couples a sharp-interface seawater-intrusion calculation to
// an external transient groundwater flow solver.
//
// Each time step, the Driver runs an outer Picard iteration that
// reformulates the storage terms caused by interface movement, asks the
// solver for one iteration, and recomputes the freshwater/saltwater
// interface elevation (zeta) from the new heads using the Ghyben-Herzberg
// relation:
//
//	zeta = αs·hs − αf·hf
//
// where αf = ρf/(ρs−ρf) and αs = ρs/(ρs−ρf). Arrays are exchanged with the
// solver by aliasing: slices returned by the Solver share memory with the
// solver's internal state, so writes made here are seen by the solver on its
// next access.
package swi

import (
	"errors"
	"fmt"
)

// Version gives the version number.
const Version = "0.1.0"

// Default fluid densities [kg/m³].
const (
	DefaultFreshwaterDensity = 1000.
	DefaultSaltwaterDensity  = 1025.
)

var (
	// ErrBinding is returned when a variable address cannot be resolved
	// by the solver.
	ErrBinding = errors.New("swi: variable binding failed")

	// ErrUnbound is returned when a variable is used before it has been
	// bound to the solver.
	ErrUnbound = errors.New("swi: variable is not bound")

	// ErrNonPositiveDt is returned when storage is formulated with a
	// time step length that is not greater than zero.
	ErrNonPositiveDt = errors.New("swi: time step length must be > 0")

	// ErrState is returned when a Driver method is called in the wrong
	// lifecycle state.
	ErrState = errors.New("swi: invalid driver state")

	// ErrConfig is returned for invalid construction-time configuration.
	ErrConfig = errors.New("swi: invalid configuration")
)

// Densities holds the freshwater and saltwater densities and the
// dimensionless density ratios derived from them. The ratios are
// computed once by NewDensities; the zero value is not usable.
type Densities struct {
	fresh, salt    float64
	alphaF, alphaS float64
}

// NewDensities returns the density ratios for freshwater density rhoF
// and saltwater density rhoS. rhoS must be greater than rhoF, and rhoF
// must be positive.
func NewDensities(rhoF, rhoS float64) (Densities, error) {
	if !(rhoF > 0) || !(rhoS > rhoF) {
		return Densities{}, fmt.Errorf("%w: densities must satisfy 0 < ρf < ρs, have ρf=%g ρs=%g",
			ErrConfig, rhoF, rhoS)
	}
	drho := rhoS - rhoF
	return Densities{
		fresh:  rhoF,
		salt:   rhoS,
		alphaF: rhoF / drho,
		alphaS: rhoS / drho,
	}, nil
}

// DefaultDensities returns the ratios for ρf=1000 and ρs=1025.
func DefaultDensities() Densities {
	d, err := NewDensities(DefaultFreshwaterDensity, DefaultSaltwaterDensity)
	if err != nil {
		panic(err)
	}
	return d
}

// Fresh returns the freshwater density.
func (d Densities) Fresh() float64 { return d.fresh }

// Salt returns the saltwater density.
func (d Densities) Salt() float64 { return d.salt }

// AlphaF returns ρf/(ρs−ρf).
func (d Densities) AlphaF() float64 { return d.alphaF }

// AlphaS returns ρs/(ρs−ρf).
func (d Densities) AlphaS() float64 { return d.alphaS }

func (d Densities) valid() bool { return d.salt > d.fresh && d.fresh > 0 }

func (d Densities) String() string {
	return fmt.Sprintf("ρf=%g ρs=%g αf=%g αs=%g", d.fresh, d.salt, d.alphaF, d.alphaS)
}
