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

package air

import (
	"github.com/asteria-lang/asteria/asterror"
	"github.com/asteria-lang/asteria/context"
	"github.com/asteria-lang/asteria/gc"
	"github.com/asteria-lang/asteria/ptc"
	"github.com/asteria-lang/asteria/reference"
	"github.com/asteria-lang/asteria/variable"
)

// Driver is the evaluation-time glue spec §2 calls "the remaining ~20%":
// it owns the reference stack a Queue pushes through, the current
// lexical Context, and the collector and trampoline hooks every AIR
// node needs but none of them should have to wire up itself. A
// compiler front-end's Node implementations are handed a *Driver and
// call back into it; this package never decides what a node does.
type Driver struct {
	collector *gc.GenCollector
	ctx       *context.Context
	stack     *Stack
	hooks     ptc.Hooks
}

// NewDriver returns a Driver ready to execute a top-level AIR queue
// inside ctx, backed by collector for variable allocation and hooks
// (which may be nil) for the tail-call trampoline's single-step trap
// and call/return notifications.
func NewDriver(collector *gc.GenCollector, ctx *context.Context, hooks ptc.Hooks) *Driver {
	return &Driver{collector: collector, ctx: ctx, stack: NewStack(), hooks: hooks}
}

// Context returns the driver's current lexical scope.
func (d *Driver) Context() *context.Context { return d.ctx }

// Stack returns the driver's reference stack.
func (d *Driver) Stack() *Stack { return d.stack }

// Hooks returns the trampoline hooks this driver was built with, or
// nil if none were installed.
func (d *Driver) Hooks() ptc.Hooks { return d.hooks }

// PushContext enters a nested executive scope, mirroring a block or
// function body's entry in the original evaluator.
func (d *Driver) PushContext() {
	d.ctx = context.NewExecutive(d.ctx)
}

// PopContext leaves the current scope and restores its parent, running
// every deferred expression registered on the exiting scope first.
// cause is the error (if any) driving this exit; the deferred run may
// supersede it per context.Context.RunDeferred. If there is no parent
// to restore, the deferred expressions still run and the current scope
// stays in place.
func (d *Driver) PopContext(cause error) error {
	cur := d.ctx
	parent := cur.Parent()
	if parent == nil {
		return cur.RunDeferred(cause)
	}
	d.ctx = parent
	return cur.RunDeferred(cause)
}

// CreateVariable allocates a new GC-tracked Variable in the given
// generation, exactly as the original evaluator's "declare a local
// variable" AIR node does before binding the new Variable into the
// current Context.
func (d *Driver) CreateVariable(hint gc.Generation) *variable.Variable {
	return d.collector.CreateVariable(hint)
}

// TailCall constructs the PTC trampoline payload for a call compiled in
// tail position, wiring this driver's current context and hooks into
// the chain so a caller need only build the Reference and return it.
func (d *Driver) TailCall(target ptc.Target, self reference.Reference, args []reference.Reference, calleeLoc asterror.SourceLocation, calleeName string, callerOpt *asterror.SourceLocation) reference.Reference {
	p := ptc.New(target, self, args, d.ctx, calleeLoc, calleeName, callerOpt, d.hooks)
	return reference.TailCall(p)
}
