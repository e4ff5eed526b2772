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


package memsolver

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// DefaultHClose is the head change convergence criterion used when the
// configuration does not give one.
const DefaultHClose = 1e-6

// Config holds the configuration of a simulation.
type Config struct {
	// HClose is the largest head change between successive solves at
	// which a solve is considered converged.
	HClose float64 `toml:"hclose"`

	TDIS TDIS `toml:"tdis"`

	Models []ModelConfig `toml:"model"`
}

// TDIS holds the time discretization.
type TDIS struct {
	Periods []Period `toml:"period"`
}

// Period is a stress period.
type Period struct {
	PerLen float64 `toml:"perlen"`
	NStp   int     `toml:"nstp"`
	TSMult float64 `toml:"tsmult"` // zero means 1
	Steady bool    `toml:"steady"`
}

// ModelConfig holds the configuration of one flow model: a chain of
// NCell cells, each connected to the next by a conductance. Array
// values of length one apply to every cell.
type ModelConfig struct {
	Name  string `toml:"name"`
	NCell int    `toml:"ncell"`

	Top  []float64 `toml:"top"`
	Bot  []float64 `toml:"bot"`
	Area []float64 `toml:"area"`

	// Storage enables the storage package. SY is only available to
	// callers when Storage is set.
	Storage bool      `toml:"storage"`
	SY      []float64 `toml:"sy"`
	SS      []float64 `toml:"ss"`

	// Conductance between cell i and i+1. It has NCell-1 values or one.
	Conductance []float64 `toml:"conductance"`

	// Recharge is the inflow rate per unit area.
	Recharge []float64 `toml:"recharge"`

	Strt []float64 `toml:"strt"`
	CHD  []CHD     `toml:"chd"`
}

// CHD is a constant-head cell.
type CHD struct {
	Cell int     `toml:"cell"`
	Head float64 `toml:"head"`
}

// LoadConfig reads a TOML configuration from r.
func LoadConfig(r io.Reader) (*Config, error) {
	c := new(Config)
	if _, err := toml.NewDecoder(r).Decode(c); err != nil {
		return nil, fmt.Errorf("memsolver: reading configuration: %v", err)
	}
	if err := c.setup(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadConfigFile reads a TOML configuration from the named file.
func LoadConfigFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("memsolver: %v", err)
	}
	defer f.Close()
	return LoadConfig(f)
}

// setup fills in defaults and checks c for errors.
func (c *Config) setup() error {
	if c.HClose == 0 {
		c.HClose = DefaultHClose
	}
	if !(c.HClose > 0) {
		return fmt.Errorf("memsolver: hclose must be > 0, have %g", c.HClose)
	}
	if len(c.TDIS.Periods) == 0 {
		return fmt.Errorf("memsolver: no stress periods")
	}
	for i := range c.TDIS.Periods {
		p := &c.TDIS.Periods[i]
		if p.TSMult == 0 {
			p.TSMult = 1
		}
		if !(p.PerLen > 0) || p.NStp < 1 || !(p.TSMult > 0) {
			return fmt.Errorf("memsolver: period %d: need perlen > 0, nstp >= 1 and tsmult > 0", i+1)
		}
	}
	if len(c.Models) == 0 {
		return fmt.Errorf("memsolver: no models")
	}
	names := make(map[string]bool)
	for i := range c.Models {
		m := &c.Models[i]
		name := strings.ToUpper(m.Name)
		if name == "" || name == "TDIS" || strings.Contains(name, "/") {
			return fmt.Errorf("memsolver: invalid model name %q", m.Name)
		}
		if names[name] {
			return fmt.Errorf("memsolver: duplicate model name %q", m.Name)
		}
		names[name] = true
		if err := m.setup(); err != nil {
			return fmt.Errorf("memsolver: model %s: %v", m.Name, err)
		}
	}
	return nil
}

func (m *ModelConfig) setup() error {
	if m.NCell < 1 {
		return fmt.Errorf("ncell must be >= 1")
	}
	var err error
	expand := func(name string, a []float64, n int, def float64, required bool) []float64 {
		if err != nil {
			return nil
		}
		switch len(a) {
		case 0:
			if required {
				err = fmt.Errorf("%s is required", name)
				return nil
			}
			a = []float64{def}
			fallthrough
		case 1:
			o := make([]float64, n)
			for i := range o {
				o[i] = a[0]
			}
			return o
		case n:
			return a
		}
		err = fmt.Errorf("%s has %d values; want 1 or %d", name, len(a), n)
		return nil
	}
	m.Top = expand("top", m.Top, m.NCell, 0, true)
	m.Bot = expand("bot", m.Bot, m.NCell, 0, true)
	m.Area = expand("area", m.Area, m.NCell, 0, true)
	m.SY = expand("sy", m.SY, m.NCell, 0, false)
	m.SS = expand("ss", m.SS, m.NCell, 0, false)
	m.Recharge = expand("recharge", m.Recharge, m.NCell, 0, false)
	m.Strt = expand("strt", m.Strt, m.NCell, 0, false)
	if m.NCell > 1 {
		m.Conductance = expand("conductance", m.Conductance, m.NCell-1, 0, true)
	}
	if err != nil {
		return err
	}
	for i := 0; i < m.NCell; i++ {
		if !(m.Top[i] > m.Bot[i]) {
			return fmt.Errorf("cell %d: top %g is not above bottom %g", i, m.Top[i], m.Bot[i])
		}
		if !(m.Area[i] > 0) {
			return fmt.Errorf("cell %d: area must be > 0", i)
		}
	}
	for _, c := range m.Conductance {
		if c < 0 || math.IsNaN(c) {
			return fmt.Errorf("negative conductance %g", c)
		}
	}
	for _, h := range m.CHD {
		if h.Cell < 0 || h.Cell >= m.NCell {
			return fmt.Errorf("constant head cell %d out of range", h.Cell)
		}
	}
	return nil
}

// steps returns the length of every time step and the index of the
// period it belongs to.
func (t *TDIS) steps() (dt []float64, period []int) {
	for ip, p := range t.Periods {
		d := p.PerLen / float64(p.NStp)
		if p.TSMult != 1 {
			d = p.PerLen * (p.TSMult - 1) / (math.Pow(p.TSMult, float64(p.NStp)) - 1)
		}
		for i := 0; i < p.NStp; i++ {
			dt = append(dt, d)
			period = append(period, ip)
			d *= p.TSMult
		}
	}
	return dt, period
}

// EndTime returns the total simulation length.
func (t *TDIS) EndTime() float64 {
	var e float64
	for _, p := range t.Periods {
		e += p.PerLen
	}
	return e
}
