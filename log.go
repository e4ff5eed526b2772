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
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

// Log returns a StepFunc that writes a status message for each time
// step to l.
func Log(l logrus.FieldLogger) StepFunc {
	startTime := time.Now()
	stepTime := time.Now()

	return func(d *Driver, s Snapshot) {
		f := logrus.Fields{
			"step":       s.Step,
			"time":       s.Time,
			"dt":         s.Dt,
			"iterations": s.Iterations,
			"converged":  s.Converged,
			"walltime":   time.Since(startTime).Round(time.Millisecond).String(),
			"Δwalltime":  time.Since(stepTime).Round(time.Millisecond).String(),
		}
		if len(s.Zeta) > 0 {
			f["zetaMin"] = floats.Min(s.Zeta)
			f["zetaMax"] = floats.Max(s.Zeta)
		}
		l.WithFields(f).Info("time step complete")
		stepTime = time.Now()
	}
}
