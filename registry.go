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
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// Scope identifies which pointer set a variable is bound into.
type Scope int

// Registry scopes.
const (
	Simulation Scope = iota
	FreshwaterModel
	SaltwaterModel
)

func (s Scope) String() string {
	switch s {
	case Simulation:
		return "simulation"
	case FreshwaterModel:
		return "freshwater model"
	case SaltwaterModel:
		return "saltwater model"
	default:
		return fmt.Sprintf("scope(%d)", int(s))
	}
}

// Variable is one of the fixed set of solver variables used by the
// interface tracker and the storage formulation.
type Variable int

// Solver variables.
const (
	Delt                 Variable = iota // time step length
	Head                                 // current head iterate
	HeadOld                              // head at the end of the previous time step
	SteadyState                          // steady-state flag; 0 when transient
	StorageFlag                          // non-zero when the storage package is active
	Top                                  // cell top elevation
	Bottom                               // cell bottom elevation
	Area                                 // cell plan area
	Zeta                                 // interface elevation
	Hcof                                 // storage coefficient on the matrix diagonal
	Rhs                                  // storage right-hand side term
	DerivativeMultiplier                 // zeta derivative multiplier used by the solver's Newton terms
	SpecificYield                        // storage coefficient, only bound when StorageFlag is set
	numVariables
)

type variableInfo struct {
	name    string // solver variable name
	pkg     string // package name; the namespace for simulation variables
	integer bool
	sim     bool // simulation scope rather than model scope
}

var variables = [numVariables]variableInfo{
	Delt:                 {name: "DELT", pkg: "TDIS", sim: true},
	Head:                 {name: "X"},
	HeadOld:              {name: "XOLD"},
	SteadyState:          {name: "ISS", integer: true},
	StorageFlag:          {name: "INSTO", integer: true},
	Top:                  {name: "TOP", pkg: "DIS"},
	Bottom:               {name: "BOT", pkg: "DIS"},
	Area:                 {name: "AREA", pkg: "DIS"},
	Zeta:                 {name: "ZETA", pkg: "SWI"},
	Hcof:                 {name: "HCOF", pkg: "SWI"},
	Rhs:                  {name: "RHS", pkg: "SWI"},
	DerivativeMultiplier: {name: "DMULT", pkg: "SWI"},
	SpecificYield:        {name: "SY", pkg: "STO"},
}

func (v Variable) String() string {
	if v < 0 || v >= numVariables {
		return fmt.Sprintf("variable(%d)", int(v))
	}
	return strings.ToLower(variables[v].name)
}

// Integer reports whether v is an integer flag array.
func (v Variable) Integer() bool { return variables[v].integer }

// names returns the upper-case address tuple for v in model.
func (v Variable) names(model string) []string {
	info := variables[v]
	var n []string
	if info.sim {
		n = []string{info.name, info.pkg}
	} else if info.pkg == "" {
		n = []string{info.name, model}
	} else {
		n = []string{info.name, model, info.pkg}
	}
	for i, s := range n {
		n[i] = strings.ToUpper(s)
	}
	return n
}

// SimPointers holds the simulation-level variables.
type SimPointers struct {
	Delt []float64

	addr map[Variable]string
}

// ModelPointers holds the variables of one flow model. Each slice is an
// alias of solver memory; a nil slice is unbound.
type ModelPointers struct {
	Model Model

	X, XOld         []float64
	Top, Bot, Area  []float64
	Zeta, Hcof, Rhs []float64
	DMult           []float64
	SY              []float64
	ISS, InSto      []int32

	addr map[Variable]string
}

func (p *ModelPointers) floatField(v Variable) *[]float64 {
	switch v {
	case Head:
		return &p.X
	case HeadOld:
		return &p.XOld
	case Top:
		return &p.Top
	case Bottom:
		return &p.Bot
	case Area:
		return &p.Area
	case Zeta:
		return &p.Zeta
	case Hcof:
		return &p.Hcof
	case Rhs:
		return &p.Rhs
	case DerivativeMultiplier:
		return &p.DMult
	case SpecificYield:
		return &p.SY
	}
	return nil
}

func (p *ModelPointers) intField(v Variable) *[]int32 {
	switch v {
	case SteadyState:
		return &p.ISS
	case StorageFlag:
		return &p.InSto
	}
	return nil
}

// Bound reports whether v has been bound.
func (p *ModelPointers) Bound(v Variable) bool {
	if v.Integer() {
		f := p.intField(v)
		return f != nil && *f != nil
	}
	f := p.floatField(v)
	return f != nil && *f != nil
}

// require returns ErrUnbound naming the first of vars that is not bound.
func (p *ModelPointers) require(vars ...Variable) error {
	for _, v := range vars {
		if !p.Bound(v) {
			return fmt.Errorf("%w: %s in model %s", ErrUnbound, v, p.Model.Name)
		}
	}
	return nil
}

// StorageEnabled reports whether the model's storage flag is set.
func (p *ModelPointers) StorageEnabled() (bool, error) {
	f, err := p.flag(StorageFlag)
	return f != 0, err
}

// Transient reports whether the model is in transient mode for the
// current time step.
func (p *ModelPointers) Transient() (bool, error) {
	f, err := p.flag(SteadyState)
	return f == transientFlag, err
}

// transientFlag is the steady-state flag value of a transient period.
const transientFlag int32 = 0

func (p *ModelPointers) flag(v Variable) (int32, error) {
	if err := p.require(v); err != nil {
		return 0, err
	}
	a := *p.intField(v)
	if len(a) == 0 {
		return 0, fmt.Errorf("%w: %s in model %s is empty", ErrBinding, v, p.Model.Name)
	}
	return a[0], nil
}

// Registry binds solver variables to named pointer sets for the
// simulation and for each participating model.
type Registry struct {
	// Verbose causes each resolved address to be logged at info level
	// rather than debug level.
	Verbose bool

	Log logrus.FieldLogger

	solver Solver
	sim    SimPointers
	fresh  *ModelPointers
	salt   *ModelPointers // nil for a freshwater-only configuration
}

// NewRegistry returns an empty registry for the models named fresh and
// salt. salt should be empty when there is no saltwater model.
func NewRegistry(s Solver, fresh, salt string) *Registry {
	r := &Registry{
		Log:    logrus.StandardLogger(),
		solver: s,
		sim:    SimPointers{addr: make(map[Variable]string)},
		fresh: &ModelPointers{
			Model: Model{Name: fresh, Role: Freshwater},
			addr:  make(map[Variable]string),
		},
	}
	if salt != "" {
		r.salt = &ModelPointers{
			Model: Model{Name: salt, Role: Saltwater},
			addr:  make(map[Variable]string),
		}
	}
	return r
}

// Sim returns the simulation pointer set.
func (r *Registry) Sim() *SimPointers { return &r.sim }

// Model returns the pointer set for a model scope, or nil if the scope
// has no model.
func (r *Registry) Model(s Scope) *ModelPointers {
	switch s {
	case FreshwaterModel:
		return r.fresh
	case SaltwaterModel:
		return r.salt
	}
	return nil
}

// Coupling returns the model configuration held by the registry.
func (r *Registry) Coupling() Coupling {
	if r.salt == nil {
		return SingleModel{Fresh: r.fresh}
	}
	return CoupledPair{Fresh: r.fresh, Salt: r.salt}
}

// Bind resolves the address of v in scope, fetches the live array and
// stores it in the scope's pointer set.
func (r *Registry) Bind(s Scope, v Variable) error {
	if v < 0 || v >= numVariables {
		return fmt.Errorf("%w: unknown variable %d", ErrConfig, int(v))
	}
	var model string
	var mp *ModelPointers
	if variables[v].sim {
		if s != Simulation {
			return fmt.Errorf("%w: %s is a simulation variable, not a %s variable", ErrConfig, v, s)
		}
	} else {
		if mp = r.Model(s); mp == nil {
			return fmt.Errorf("%w: no model configured for %s scope", ErrConfig, s)
		}
		model = mp.Model.Name
	}

	names := v.names(model)
	addr, err := r.solver.GetVarAddress(names...)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrBinding, strings.Join(names, ", "), err)
	}
	if r.Verbose {
		r.Log.Infof("Accessing pointer using tag: %s", addr)
	} else {
		r.Log.Debugf("Accessing pointer using tag: %s", addr)
	}

	if v.Integer() {
		a, err := r.solver.GetValuePtrInt(addr)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrBinding, addr, err)
		}
		*mp.intField(v) = a
		mp.addr[v] = addr
		return nil
	}
	a, err := r.solver.GetValuePtr(addr)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrBinding, addr, err)
	}
	if mp == nil {
		r.sim.Delt = a
		r.sim.addr[v] = addr
		return nil
	}
	*mp.floatField(v) = a
	mp.addr[v] = addr
	return nil
}

// modelVariables are bound in every model scope.
var modelVariables = []Variable{Head, HeadOld, SteadyState, StorageFlag,
	Top, Bottom, Area, Zeta, Hcof, Rhs, DerivativeMultiplier}

// BindAll binds every variable needed by the coupling. SpecificYield is
// bound in a model scope only if that model's storage flag is set when
// BindAll is called.
func (r *Registry) BindAll() error {
	if err := r.Bind(Simulation, Delt); err != nil {
		return err
	}
	scopes := []Scope{FreshwaterModel}
	if r.salt != nil {
		scopes = append(scopes, SaltwaterModel)
	}
	for _, s := range scopes {
		for _, v := range modelVariables {
			if err := r.Bind(s, v); err != nil {
				return err
			}
		}
		sto, err := r.Model(s).StorageEnabled()
		if err != nil {
			return err
		}
		if sto {
			if err := r.Bind(s, SpecificYield); err != nil {
				return err
			}
		}
	}
	return nil
}

// Get returns the floating point array bound to v in scope s.
func (r *Registry) Get(s Scope, v Variable) ([]float64, error) {
	if s == Simulation {
		if v != Delt || r.sim.Delt == nil {
			return nil, fmt.Errorf("%w: %s in %s scope", ErrUnbound, v, s)
		}
		return r.sim.Delt, nil
	}
	mp := r.Model(s)
	if mp == nil {
		return nil, fmt.Errorf("%w: no model configured for %s scope", ErrUnbound, s)
	}
	if v.Integer() || mp.floatField(v) == nil {
		return nil, fmt.Errorf("%w: %s is not a floating point model variable", ErrConfig, v)
	}
	if err := mp.require(v); err != nil {
		return nil, err
	}
	return *mp.floatField(v), nil
}

// GetInt returns the integer array bound to v in scope s.
func (r *Registry) GetInt(s Scope, v Variable) ([]int32, error) {
	mp := r.Model(s)
	if mp == nil {
		return nil, fmt.Errorf("%w: no model configured for %s scope", ErrUnbound, s)
	}
	if !v.Integer() {
		return nil, fmt.Errorf("%w: %s is not an integer model variable", ErrConfig, v)
	}
	if err := mp.require(v); err != nil {
		return nil, err
	}
	return *mp.intField(v), nil
}

// Describe writes the address and current value of every bound
// variable to w.
func (r *Registry) Describe(w io.Writer) error {
	if a, ok := r.sim.addr[Delt]; ok {
		if _, err := fmt.Fprintf(w, "%s %s [%s]: %v\n", Simulation, Delt, a, r.sim.Delt); err != nil {
			return err
		}
	}
	for _, s := range []Scope{FreshwaterModel, SaltwaterModel} {
		mp := r.Model(s)
		if mp == nil {
			continue
		}
		for v := Variable(0); v < numVariables; v++ {
			a, ok := mp.addr[v]
			if !ok {
				continue
			}
			var val interface{}
			if v.Integer() {
				val = *mp.intField(v)
			} else {
				val = *mp.floatField(v)
			}
			if _, err := fmt.Fprintf(w, "%s %s [%s]: %v\n", mp.Model.Name, v, a, val); err != nil {
				return err
			}
		}
	}
	return nil
}
