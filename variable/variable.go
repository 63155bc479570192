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

// Package variable implements [VARIABLE]: the GC-tracked mutable cell that
// every script-level "variable" reference root eventually points at.
package variable

import (
	"github.com/asteria-lang/asteria/asterror"
	"github.com/asteria-lang/asteria/value"
)

// Variable is a heap-allocated, GC-tracked cell holding a Value. It is
// never copied; all script-level aliasing goes through *Variable.
//
// gcRef is scratch storage owned exclusively by the collector between
// collection passes (the staging reference count described in spec §4.D);
// no other package may read or write it.
type Variable struct {
	v           value.Value
	immutable   bool
	uninit      bool
	gcRef       int64
	collectable bool
	refCount    int64
}

// New allocates a Variable holding null and marked uninitialized,
// matching spec §4.B: "a newly-allocated variable from the collector must
// be in uninitialized state." Callers that want an initialized variable
// must call Reset immediately after.
func New() *Variable {
	return &Variable{uninit: true}
}

// Value returns the held value. It panics-free returns the last value set
// by Reset even while uninitialized is true; callers that must honor the
// uninitialized-read failure call CheckInitialized or IsUninitialized first.
func (v *Variable) Value() value.Value { return v.v }

// Peek implements value.VariableRef for reachability scans; it must never
// fail, so it ignores the uninitialized flag and simply returns whatever
// value is currently stored (null for a freshly allocated cell).
func (v *Variable) Peek() value.Value { return v.v }

// OpenValue returns a pointer-like mutable view by returning the current
// value and a setter; it fails with KindImmutableWrite if the variable is
// immutable. This stands in for the C++ get_mutable_value() reference
// return, since Go has no aliasable reference to a struct field across
// package boundaries that would preserve invariants.
func (v *Variable) OpenValue() (value.Value, func(value.Value), error) {
	if v.immutable {
		return value.Value{}, nil, asterror.New(asterror.KindImmutableWrite,
			"attempt to modify immutable variable")
	}
	return v.v, func(nv value.Value) { v.v = nv }, nil
}

// IsImmutable reports whether writes to this variable are rejected.
func (v *Variable) IsImmutable() bool { return v.immutable }

// IsUninitialized reports whether the variable has never been assigned a
// value via Reset since allocation or the last Uninitialize call.
func (v *Variable) IsUninitialized() bool { return v.uninit }

// Uninitialize clears the variable back to the uninitialized state,
// dropping its held value's reference for reachability purposes.
func (v *Variable) Uninitialize() {
	v.v = value.Null()
	v.uninit = true
}

// Reset assigns a new value and mutability flag, clearing the
// uninitialized flag. This is the only way to leave the uninitialized
// state.
func (v *Variable) Reset(nv value.Value, immutable bool) {
	v.v = nv
	v.immutable = immutable
	v.uninit = false
}

// CheckInitialized returns a use-uninit RuntimeError if the variable has
// never been Reset, otherwise nil. Call sites performing a read dereference
// should check this before consuming Value().
func (v *Variable) CheckInitialized() error {
	if v.uninit {
		return asterror.New(asterror.KindUseUninit, "variable has not been initialized")
	}
	return nil
}

// GCRef returns the collector's scratch reference count for this
// generation's current collection pass.
func (v *Variable) GCRef() int64 { return v.gcRef }

// SetGCRef overwrites the collector's scratch reference count.
func (v *Variable) SetGCRef(n int64) { v.gcRef = n }

// AddGCRef adjusts the collector's scratch reference count by delta and
// returns the new value, used for the increment/decrement-by-one
// operations throughout the mark phase.
func (v *Variable) AddGCRef(delta int64) int64 {
	v.gcRef += delta
	return v.gcRef
}

// MarkCollectable flags whether the collector's tracked set currently owns
// this cell (as opposed to a cell that has been reaped and is sitting in
// the carrier pool awaiting reuse).
func (v *Variable) MarkCollectable(b bool) { v.collectable = b }

// Collectable reports MarkCollectable's last value.
func (v *Variable) Collectable() bool { return v.collectable }

// EnumerateVariables visits every Variable transitively reachable from the
// value held by v (not including v itself), used by the collector's
// subtract-internal-refs phase.
func (v *Variable) EnumerateVariables(visit func(value.VariableRef)) {
	v.v.CollectReachable(visit)
}

// Retain and Release maintain an explicit strong-reference count,
// independent of Go's own memory management, exclusively for the tracing
// collector's cycle-detection algorithm: the collector needs "how many
// live holders point at this Variable" the way the original relies on
// rocket::refcounted_ptr's use_count(), which Go's garbage-collected
// pointers do not expose. Every stable holder of a *Variable — the
// collector's own tracked set, and a reference.Reference bound to a
// RootVariable root — calls Retain when it starts holding the pointer
// and Release when it stops (reassigned, zoomed out, or disposed at
// scope exit). Transient local aliases taken only for the duration of a
// single function call are not tracked, matching how the original's
// temporaries are moved rather than retained.
func (v *Variable) Retain() int64 {
	v.refCount++
	return v.refCount
}

// Release decrements the strong-reference count and returns the new value.
func (v *Variable) Release() int64 {
	v.refCount--
	return v.refCount
}

// RefCount returns the current explicit strong-reference count.
func (v *Variable) RefCount() int64 { return v.refCount }
