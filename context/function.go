// Copyright 2024 The Asteria Authors
// This file is part of Asteria.
//
// Asteria is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Asteria is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Asteria. If not, see <http://www.gnu.org/licenses/>.

package context

import (
	"github.com/asteria-lang/asteria/asterror"
	"github.com/asteria-lang/asteria/reference"
	"github.com/asteria-lang/asteria/value"
)

// InitializeExecutiveFunction binds a freshly entered function frame per
// spec §4.E: each formal parameter becomes a local variable (missing
// arguments bind to null, surplus arguments are collected into the
// variadic tail), and the five predefined references are set. loc/name
// populate `__file`/`__line`/`__func`; self becomes `__this`; the surplus
// arguments become the capture behind `__varg`.
func (c *Context) InitializeExecutiveFunction(loc asterror.SourceLocation, name string, params []string, self reference.Reference, args []reference.Reference) error {
	for i, param := range params {
		if param == "" {
			continue
		}
		if IsNameReserved(param) {
			return asterror.New(asterror.KindReservedName,
				"the function parameter name `%s` is reserved and cannot be used", param)
		}
		if i < len(args) {
			c.SetNamed(param, args[i])
		} else {
			c.SetNamed(param, reference.Constant(value.Null()))
		}
	}
	var surplus []reference.Reference
	if len(params) < len(args) {
		surplus = append(surplus, args[len(params):]...)
	}

	c.SetNamed("__file", reference.Constant(value.String(loc.File)))
	c.SetNamed("__line", reference.Constant(value.Integer(int64(loc.Line))))
	c.SetNamed("__func", reference.Constant(value.String(name)))
	c.SetNamed("__this", self)
	c.SetNamed("__varg", reference.Constant(value.FunctionValue(NewVariadicArguer(loc, name, surplus))))
	return nil
}
