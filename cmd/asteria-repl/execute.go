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

package main

import (
	"fmt"

	"github.com/asteria-lang/asteria/air"
	"github.com/asteria-lang/asteria/asterror"
	"github.com/asteria-lang/asteria/reference"
	"github.com/asteria-lang/asteria/value"
)

// executeQueue runs queue as a top-level script function: no declared
// parameters, a void `__this`, and every entry of scriptArgs bound behind
// `__varg` as a surplus argument, exactly as a zero-parameter executive
// function call would see them per context.InitializeExecutiveFunction.
func executeQueue(d *air.Driver, queue air.Queue, scriptArgs []string) (reference.Reference, error) {
	args := make([]reference.Reference, len(scriptArgs))
	for i, s := range scriptArgs {
		args[i] = reference.Constant(value.String(s))
	}

	loc := asterror.SourceLocation{File: "<top level>", Line: 0}
	if err := d.Context().InitializeExecutiveFunction(loc, "<top level>", nil, reference.Void(), args); err != nil {
		return reference.Reference{}, err
	}

	ref, err := queue.Execute(d)
	popErr := d.PopContext(err)
	if err == nil {
		err = popErr
	}
	if err != nil {
		return reference.Reference{}, err
	}
	if err := ref.FinishCall(); err != nil {
		return reference.Reference{}, err
	}
	return ref, nil
}

// stringifyReference renders a settled Reference the way
// original_source/asteria/src/repl.cpp's do_stringify(Reference) does:
// a value-category label followed by the dumped value, or a fixed marker
// for the two rootless cases.
func stringifyReference(r *reference.Reference) string {
	switch r.Kind() {
	case reference.RootVoid:
		return "<void>"
	case reference.RootUninit:
		return "<uninit>"
	}
	v, err := r.DereferenceReadonly()
	if err != nil {
		return fmt.Sprintf("<bad reference: %s>", err)
	}
	prefix := "temporary "
	switch r.Kind() {
	case reference.RootVariable:
		prefix = "variable "
	case reference.RootConstant:
		prefix = "constant "
	}
	return prefix + v.Dump()
}
