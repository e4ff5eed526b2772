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

// Solver is the external transient groundwater flow solver that the
// Driver steps through a simulation. Implementations own all of the
// arrays they hand out: the slices returned by GetValuePtr and
// GetValuePtrInt must alias the solver's internal state rather than
// copy it.
type Solver interface {
	// GetVarAddress resolves an upper-case (variable, model[, package])
	// name tuple to an address tag. It returns an error if the tuple does
	// not correspond to a variable exposed by the loaded simulation.
	GetVarAddress(names ...string) (string, error)

	// GetValuePtr returns a live view of the floating point array
	// stored at address.
	GetValuePtr(address string) ([]float64, error)

	// GetValuePtrInt returns a live view of the integer array
	// stored at address.
	GetValuePtrInt(address string) ([]int32, error)

	Initialize() error
	GetEndTime() float64
	GetCurrentTime() float64
	PrepareTimeStep(dt float64) error
	PrepareSolve(component int) error

	// Solve performs a single outer iteration of solution component
	// and reports whether the component has converged.
	Solve(component int) (converged bool, err error)

	FinalizeSolve(component int) error
	FinalizeTimeStep() error
	Finalize() error
}

// Role identifies which member of a density-coupled model pair a
// flow model is.
type Role int

// Model roles.
const (
	Freshwater Role = iota
	Saltwater
)

func (r Role) String() string {
	switch r {
	case Freshwater:
		return "freshwater"
	case Saltwater:
		return "saltwater"
	default:
		return "unknown role"
	}
}

// Model describes a flow model taking part in the coupling.
type Model struct {
	Name string
	Role Role
}

func (m Model) String() string { return m.Name + " (" + m.Role.String() + ")" }
