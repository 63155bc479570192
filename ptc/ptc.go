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

// Package ptc implements [TAILCALL]: the proper-tail-call trampoline
// protocol described in spec §4.F. A compiled call site in tail position
// constructs a PTCArguments instead of invoking its callee directly;
// reference.FinishCall drives the trampoline to completion one Resolve
// step at a time, which keeps host call-stack usage O(1) no matter how
// deep the script-level tail recursion runs.
package ptc

import (
	"github.com/asteria-lang/asteria/asterror"
	"github.com/asteria-lang/asteria/context"
	"github.com/asteria-lang/asteria/reference"
	"github.com/asteria-lang/asteria/value"
)

// Awareness is how a PTC-aware callee produced its result for one
// trampoline step, mirroring the original's ptc_aware_by_ref/by_value/void
// enum.
type Awareness int

const (
	// ByRef means the callee handed back a live reference (possibly into
	// a Variable) without copying its value.
	ByRef Awareness = iota
	// ByValue means the callee's result must be read and copied, since
	// whatever it referenced may not outlive the call.
	ByValue
	// Void means the callee produced no result at all.
	Void
)

func (a Awareness) String() string {
	switch a {
	case ByRef:
		return "by-ref"
	case ByValue:
		return "by-value"
	case Void:
		return "void"
	default:
		return "unknown-awareness"
	}
}

// Target is the capability a value.Function must additionally implement
// to be invoked through the PTC trampoline. InvokeTailAware executes one
// call step: self holds the callee's receiver on entry and must be
// overwritten in place with the result before returning. If the callee's
// own body ends in tail position, self may be set to another
// RootTailCall reference built via tr.Next, letting the trampoline keep
// unwinding without growing the host stack.
type Target interface {
	value.Function
	InvokeTailAware(tr *Trampoline, ctx *context.Context, self *reference.Reference, args []reference.Reference) (Awareness, error)
}

// Hooks lets a host observe or interrupt the trampoline: a single-step
// trap for cooperative cancellation (honoring Ctrl-C in the REPL, per
// spec §5), and call/return notifications for a debugger or profiler. A
// nil Hooks disables all three; an implementation that only cares about
// a subset should no-op the rest.
type Hooks interface {
	// SingleStepTrap is polled once per trampoline hop before the callee
	// runs; a non-nil error aborts the call and propagates as the
	// trampoline's result, matching the REPL's Ctrl-C interrupt path.
	SingleStepTrap() error
	OnFunctionCall(loc asterror.SourceLocation, name string)
	OnFunctionReturn(loc asterror.SourceLocation, name string)
}

// frame is one stacked call remembered for LIFO unwind once the
// trampoline settles or an exception propagates through it.
type frame struct {
	loc  asterror.SourceLocation
	name string
	ctx  *context.Context
}

// state is the bookkeeping shared by every PTCArguments produced within
// one chain of tail calls: frames accumulate and the awareness
// conjunction is OR'd in at every hop, even though reference.FinishCall
// drives the loop one Resolve() call at a time and each hop is a
// distinct PTCArguments value.
type state struct {
	hooks  Hooks
	frames []frame
	conj   Awareness
}

func (s *state) absorb(a Awareness) {
	if a > s.conj {
		s.conj = a
	}
}

// Trampoline is the shared handle passed into InvokeTailAware so a
// callee whose own body ends in tail position can construct the next
// hop sharing this chain's frame list and conjunction accumulator,
// rather than starting a disconnected trampoline of its own.
type Trampoline struct {
	st        *state
	callerOpt *asterror.SourceLocation
}

// Next builds the PTCArguments for the next hop of this same trampoline
// chain.
func (tr *Trampoline) Next(target Target, self reference.Reference, args []reference.Reference, ctx *context.Context, calleeLoc asterror.SourceLocation, calleeName string) *PTCArguments {
	return &PTCArguments{
		target: target, self: self, args: args, ctx: ctx,
		calleeLoc: calleeLoc, calleeName: calleeName,
		callerOpt: tr.callerOpt, st: tr.st,
	}
}

// PTCArguments is the [TAILCALL] payload a compiled call site in tail
// position constructs instead of invoking its callee directly (spec
// §4.F). It implements reference.TailCallPayload.
type PTCArguments struct {
	target     Target
	self       reference.Reference
	args       []reference.Reference
	ctx        *context.Context
	calleeLoc  asterror.SourceLocation
	calleeName string
	callerOpt  *asterror.SourceLocation
	st         *state
}

// New constructs the payload for the first hop of a new trampoline
// chain. callerOpt is the call site's own source location, appended as
// the enclosing-function backtrace frame if this chain eventually
// throws; pass nil for a call with no meaningful enclosing frame (e.g.
// a top-level script entry point). hooks may be nil.
func New(target Target, self reference.Reference, args []reference.Reference, ctx *context.Context, calleeLoc asterror.SourceLocation, calleeName string, callerOpt *asterror.SourceLocation, hooks Hooks) *PTCArguments {
	return &PTCArguments{
		target: target, self: self, args: args, ctx: ctx,
		calleeLoc: calleeLoc, calleeName: calleeName, callerOpt: callerOpt,
		st: &state{hooks: hooks},
	}
}

// Resolve implements reference.TailCallPayload. It performs exactly one
// step of spec §4.F's finish_call loop body: emit the single-step trap
// and on-function-call hook, remember this frame, invoke the target in
// PTC-aware mode, and fold its awareness into the chain's accumulator.
// If the callee settled on something other than another tail call, the
// full LIFO frame unwind and the by-ref/by-value/void conjunction rule
// run before the final Reference is returned.
func (p *PTCArguments) Resolve() (reference.Reference, error) {
	st := p.st

	if st.hooks != nil {
		if err := st.hooks.SingleStepTrap(); err != nil {
			return reference.Reference{}, p.unwindOnError(err)
		}
		st.hooks.OnFunctionCall(p.calleeLoc, p.calleeName)
	}
	st.frames = append(st.frames, frame{loc: p.calleeLoc, name: p.calleeName, ctx: p.ctx})

	self := p.self
	tr := &Trampoline{st: st, callerOpt: p.callerOpt}
	mode, err := p.target.InvokeTailAware(tr, p.ctx, &self, p.args)
	if err != nil {
		return reference.Reference{}, p.unwindOnError(err)
	}
	st.absorb(mode)

	if self.Kind() == reference.RootTailCall {
		return self, nil
	}
	if err := p.unwind(nil); err != nil {
		return reference.Reference{}, err
	}
	return settle(self, st.conj)
}

// unwind pops every remembered frame in LIFO order, running each frame's
// deferred expressions and emitting the on-function-return hook. cause,
// if non-nil, is the error propagating through the unwind (a deferred
// expression that itself fails supersedes it, per context.RunDeferred).
func (p *PTCArguments) unwind(cause error) error {
	st := p.st
	for i := len(st.frames) - 1; i >= 0; i-- {
		f := st.frames[i]
		if f.ctx != nil {
			cause = f.ctx.RunDeferred(cause)
		}
		if st.hooks != nil {
			st.hooks.OnFunctionReturn(f.loc, f.name)
		}
	}
	st.frames = nil
	return cause
}

// unwindOnError implements the exception path: each remembered frame is
// unwound the same way as the normal-completion path, but a synthetic
// "[proper tail call]" backtrace frame is pushed per frame first, and the
// caller's own location (if any) is appended as the enclosing function
// once every frame has unwound.
func (p *PTCArguments) unwindOnError(cause error) error {
	st := p.st
	re, _ := cause.(*asterror.RuntimeError)
	for i := len(st.frames) - 1; i >= 0; i-- {
		f := st.frames[i]
		if re != nil {
			re.PushFramePlain(f.loc, "[proper tail call]")
		}
		if f.ctx != nil {
			cause = f.ctx.RunDeferred(cause)
			re, _ = cause.(*asterror.RuntimeError)
		}
		if st.hooks != nil {
			st.hooks.OnFunctionReturn(f.loc, f.name)
		}
	}
	st.frames = nil
	if re != nil && p.callerOpt != nil {
		re.PushFrameFunc(*p.callerOpt, p.calleeName)
	}
	return cause
}

// settle applies spec §4.F step 3's conjunction rule to the trampoline's
// final, non-tail-call self reference.
func settle(self reference.Reference, conj Awareness) (reference.Reference, error) {
	switch conj {
	case Void:
		return reference.Void(), nil
	case ByValue:
		v, err := self.DereferenceReadonly()
		if err != nil {
			return reference.Reference{}, err
		}
		return reference.Temporary(v), nil
	default:
		return self, nil
	}
}
