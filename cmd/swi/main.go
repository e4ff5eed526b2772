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


// Command swi is a command-line interface for running groundwater flow
// simulations with a seawater intrusion interface.
package main

import (
	"fmt"
	"os"

	"github.com/langevin-usgs/modflow6-swi/swiutil"
)

func main() {
	if err := swiutil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
