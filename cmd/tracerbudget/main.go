/*
Copyright © 2019 the TracerBudget authors.
This file is part of TracerBudget.

TracerBudget is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

TracerBudget is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with TracerBudget.  If not, see <http://www.gnu.org/licenses/>.
*/

// Command tracerbudget is a command-line interface for computing ocean
// tracer budgets from POP model output.
package main

import (
	"fmt"
	"os"

	"github.com/weilin2018/pop2-tracer-budget/budgetutil"
)

func main() {
	if err := budgetutil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
