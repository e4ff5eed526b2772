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

// Coupling is the set of flow models taking part in a simulation. It is
// either a SingleModel or a CoupledPair.
type Coupling interface {
	// Freshwater returns the freshwater model pointers, which are
	// present in every configuration.
	Freshwater() *ModelPointers
	coupling()
}

// SingleModel is a freshwater-only configuration. The saltwater head
// is a fixed scalar.
type SingleModel struct {
	Fresh *ModelPointers
}

// CoupledPair is a density-coupled freshwater and saltwater model pair
// sharing one interface.
type CoupledPair struct {
	Fresh, Salt *ModelPointers
}

func (c SingleModel) Freshwater() *ModelPointers { return c.Fresh }
func (c CoupledPair) Freshwater() *ModelPointers { return c.Fresh }

func (SingleModel) coupling() {}
func (CoupledPair) coupling() {}
