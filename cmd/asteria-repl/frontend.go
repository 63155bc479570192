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
	"errors"

	"github.com/asteria-lang/asteria/air"
)

// Frontend turns source text into an executable AIR queue. Lexing,
// parsing, and AIR node semantics live outside this module, so a host
// wires its own Frontend into run(); asteria-repl only drives the CLI,
// the REPL loop, and the runtime around whatever Frontend it is given.
type Frontend interface {
	Compile(path string, source []byte, optimizeLevel int) (air.Queue, error)
}

// ErrNoFrontend is returned by noFrontend, the zero-value Frontend this
// binary falls back to when it isn't linked against a real compiler.
var ErrNoFrontend = errors.New("no script frontend is linked into this binary")

type noFrontend struct{}

func (noFrontend) Compile(string, []byte, int) (air.Queue, error) {
	return nil, ErrNoFrontend
}
