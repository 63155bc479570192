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
	"io"
	"sync/atomic"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"

	"github.com/asteria-lang/asteria/asterror"
	"github.com/asteria-lang/asteria/runtime"
	"github.com/asteria-lang/asteria/value"
)

var _ runtime.Hooks = (*replHooks)(nil)

// replHooks is the runtime.Hooks implementation this binary installs on
// every Global: it prints an execution trace to stderr when -v is given
// (mirroring original_source/asteria/src/repl.cpp's REPL_Hooks), and it
// turns a caught SIGINT into an error the next single-step trap raises,
// rather than killing the process outright.
type replHooks struct {
	out         io.Writer
	verbose     bool
	interrupted *int32
}

func newREPLHooks(out io.Writer, verbose bool, interrupted *int32) *replHooks {
	return &replHooks{out: out, verbose: verbose, interrupted: interrupted}
}

func (h *replHooks) VariableDeclare(loc asterror.SourceLocation, name string) {
	if !h.verbose {
		return
	}
	fmt.Fprintf(h.out, "~ running: [%s] declaring variable: %s\n", loc, name)
}

func (h *replHooks) FunctionCall(loc asterror.SourceLocation, target string) {
	if !h.verbose {
		return
	}
	fmt.Fprintf(h.out, "~ running: [%s] initiating function call: %s\n", loc, target)
}

func (h *replHooks) FunctionReturn(loc asterror.SourceLocation, target string, result value.Value) {
	if !h.verbose {
		return
	}
	fmt.Fprintf(h.out, "~ running: [%s] returned from function call: %s -> %s\n", loc, target, result.Dump())
	fmt.Fprint(h.out, spew.Sdump(result))
}

func (h *replHooks) FunctionExcept(loc asterror.SourceLocation, target string, err error) {
	if !h.verbose {
		return
	}
	fmt.Fprintf(h.out, "~ running: [%s] caught exception from function call: %s: %s\n",
		loc, target, color.RedString(err.Error()))
}

// SingleStepTrap is polled once per tail-call trampoline hop; it's where a
// caught SIGINT actually aborts a running script, matching how
// on_single_step_trap in the reference REPL throws once `interrupted`
// has been set by its signal handler.
func (h *replHooks) SingleStepTrap(loc asterror.SourceLocation) error {
	if atomic.LoadInt32(h.interrupted) == 0 {
		return nil
	}
	return asterror.New(asterror.KindSystemError, "interrupt received\n[received at %s]", loc)
}
