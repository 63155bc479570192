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
	"fmt"

	"github.com/asteria-lang/asteria/asterror"
	"github.com/asteria-lang/asteria/reference"
	"github.com/asteria-lang/asteria/value"
)

// VariadicArguer is the `__varg` predefined callable every executive
// function context binds: called with no arguments it reports the count
// of surplus positional arguments; called with one integer argument it
// returns that (wrap-allowed) argument, or null if out of range.
type VariadicArguer struct {
	loc  asterror.SourceLocation
	name string
	args []reference.Reference
}

// NewVariadicArguer captures the surplus arguments a call supplied beyond
// its declared parameter list.
func NewVariadicArguer(loc asterror.SourceLocation, name string, args []reference.Reference) *VariadicArguer {
	return &VariadicArguer{loc: loc, name: name, args: args}
}

// Describe implements value.Function, rendering the way the original's
// Variadic_arguer::describe() does so value.Dump shows a meaningful label
// instead of a bare "function" token.
func (v *VariadicArguer) Describe() string {
	return fmt.Sprintf("variadic argument accessor at '%s'", v.loc)
}

// EnumerateVariables implements value.Function, visiting every Variable
// transitively reachable from each captured surplus argument.
func (v *VariadicArguer) EnumerateVariables(visit func(value.VariableRef)) {
	for i := range v.args {
		v.args[i].EnumerateVariables(visit)
	}
}

// Invoke implements the native (non-PTC) calling convention: zero
// arguments reports the surplus-argument count, one integer argument
// reads back that argument by (wrap-allowed) index, and any other arity
// or argument type fails.
func (v *VariadicArguer) Invoke(args []value.Value) (reference.Reference, error) {
	switch len(args) {
	case 0:
		return reference.Constant(value.Integer(int64(len(v.args)))), nil
	case 1:
		if args[0].Kind() != value.KindInteger {
			return reference.Reference{}, asterror.New(asterror.KindArgType,
				"the argument passed to a variadic argument accessor must be of type `integer`")
		}
		idx, ok := reference.WrapIndex(args[0].Int(), int64(len(v.args)))
		if !ok {
			return reference.Constant(value.Null()), nil
		}
		return v.args[idx], nil
	default:
		return reference.Reference{}, asterror.New(asterror.KindArgArity,
			"a variadic argument accessor takes no more than one argument")
	}
}
