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


package hash

import (
	"math"
	"testing"
)

type input struct {
	Name   string
	Values []float64
}

type opaque struct {
	name string
}

func TestHash(t *testing.T) {
	a := Hash(input{Name: "gwf", Values: []float64{1, 2}})
	b := Hash(input{Name: "gwf", Values: []float64{1, 2}})
	c := Hash(input{Name: "gwf", Values: []float64{1, 3}})
	if a != b {
		t.Errorf("equal inputs: %s != %s", a, b)
	}
	if a == c {
		t.Errorf("different inputs have the same hash %s", a)
	}
	if len(a) != 32 {
		t.Errorf("hash %s has length %d", a, len(a))
	}
}

func TestHashFallback(t *testing.T) {
	a, b := Hash(opaque{name: "x"}), Hash(opaque{name: "y"})
	if a == b {
		t.Errorf("unexported fields were not hashed: %s", a)
	}
	if Hash(opaque{name: "x"}) != a {
		t.Error("fallback hash is not deterministic")
	}
	if n := Hash(input{Values: []float64{math.NaN()}}); len(n) != 32 {
		t.Errorf("NaN input: %s", n)
	}
}
