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
	"encoding/gob"
	"fmt"
	"io"
)

// Snapshot is the archived interface elevation at the end of one time
// step.
type Snapshot struct {
	Step       int     // zero-based time step index
	Time       float64 // simulation time at the end of the step
	Dt         float64 // time step length
	Iterations int     // outer iterations used
	Converged  bool    // false if the iteration budget was exhausted
	Zeta       []float64
}

// Series is the chronological sequence of archived snapshots, one per
// completed time step.
type Series []Snapshot

// Zeta returns the interface elevation of every snapshot.
func (s Series) Zeta() [][]float64 {
	o := make([][]float64, len(s))
	for i, snap := range s {
		o[i] = snap.Zeta
	}
	return o
}

// Cell returns the times and interface elevations of cell i through
// the series.
func (s Series) Cell(i int) (times, zeta []float64, err error) {
	times = make([]float64, len(s))
	zeta = make([]float64, len(s))
	for j, snap := range s {
		if i < 0 || i >= len(snap.Zeta) {
			return nil, nil, fmt.Errorf("swi: cell %d out of range in step %d (%d cells)", i, snap.Step, len(snap.Zeta))
		}
		times[j] = snap.Time
		zeta[j] = snap.Zeta[i]
	}
	return times, zeta, nil
}

// NonConverged returns the number of steps that exhausted their
// iteration budget.
func (s Series) NonConverged() int {
	var n int
	for _, snap := range s {
		if !snap.Converged {
			n++
		}
	}
	return n
}

// Save writes s to w in gob format.
func (s Series) Save(w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(s); err != nil {
		return fmt.Errorf("swi: saving series: %v", err)
	}
	return nil
}

// LoadSeries reads a series previously written by Save.
func LoadSeries(r io.Reader) (Series, error) {
	var s Series
	if err := gob.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("swi: loading series: %v", err)
	}
	return s, nil
}
