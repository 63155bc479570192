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

// Package reference implements [REFERENCE]: a root plus an ordered
// modifier path, and the dereference/zoom/finish-call operations defined
// on it.
package reference

import (
	"github.com/asteria-lang/asteria/asterror"
	"github.com/asteria-lang/asteria/value"
	"github.com/asteria-lang/asteria/variable"
)

// RootKind tags the active alternative of a reference root.
type RootKind int

const (
	// RootUninit is a bypassed slot; any use fails.
	RootUninit RootKind = iota
	// RootVoid is the result of a call that returned nothing.
	RootVoid
	// RootTemporary owns an inline Value; not mutable.
	RootTemporary
	// RootVariable points at a tracked Variable; mutability follows it.
	RootVariable
	// RootConstant is a read-only inline Value.
	RootConstant
	// RootTailCall is a suspended call awaiting FinishCall.
	RootTailCall
)

// TailCallPayload is the minimal surface FinishCall needs from a
// suspended call. Package ptc supplies the concrete PTC_Arguments type
// and implements this interface; reference only needs to invoke it and
// splice the resulting Reference back into this root.
type TailCallPayload interface {
	// Resolve runs one non-tail step of the trampoline, returning the
	// Reference produced by the call, which may itself be another
	// RootTailCall to keep unpacking.
	Resolve() (Reference, error)
}

// ModifierKind tags the active alternative of a path element.
type ModifierKind int

const (
	ModArrayIndex ModifierKind = iota
	ModObjectKey
)

// Modifier is one step of a reference's path.
type Modifier struct {
	Kind  ModifierKind
	Index int64
	Key   string
}

func ArrayIndex(i int64) Modifier { return Modifier{Kind: ModArrayIndex, Index: i} }
func ObjectKey(k string) Modifier { return Modifier{Kind: ModObjectKey, Key: k} }

// Reference is a root plus an ordered modifier path.
type Reference struct {
	kind     RootKind
	value    value.Value      // temporary / constant payload
	variable *variable.Variable // variable root
	tailCall TailCallPayload  // tail-call root
	mods     []Modifier
}

// Uninit returns a bypassed reference.
func Uninit() Reference { return Reference{kind: RootUninit} }

// Void returns a void-result reference.
func Void() Reference { return Reference{kind: RootVoid} }

// Temporary returns a reference owning an inline, non-mutable Value.
func Temporary(v value.Value) Reference { return Reference{kind: RootTemporary, value: v} }

// Constant returns a read-only inline-Value reference.
func Constant(v value.Value) Reference { return Reference{kind: RootConstant, value: v} }

// Variable returns a reference pointing at a tracked Variable. This is a
// stable binding: it retains v for the collector's reference-count
// comparison (see variable.Variable.Retain) and the caller must eventually
// Dispose the returned Reference to release it.
func Variable(v *variable.Variable) Reference {
	v.Retain()
	return Reference{kind: RootVariable, variable: v}
}

// TailCall returns a suspended-call reference.
func TailCall(p TailCallPayload) Reference { return Reference{kind: RootTailCall, tailCall: p} }

// Kind reports the root's active alternative.
func (r *Reference) Kind() RootKind { return r.kind }

// Dispose releases the strong reference this Reference holds on a
// RootVariable root, if any, and resets it to an uninit root. Callers
// that bind a Reference to a named slot which can go out of scope (a
// Context's dispose_named_references-equivalent) must call this exactly
// once when that binding ends.
func (r *Reference) Dispose() {
	if r.kind == RootVariable {
		r.variable.Release()
	}
	*r = Uninit()
}

// IsConstant reports whether the reference is non-mutable by construction
// (an inline constant payload), per the original's is_constant() (which
// also folded the null default-constructed root into "constant"; this Go
// port keeps Uninit distinct, so only RootConstant qualifies here).
func (r *Reference) IsConstant() bool { return r.kind == RootConstant }

// IsTemporary reports whether the root is an inline temporary.
func (r *Reference) IsTemporary() bool { return r.kind == RootTemporary }

// ZoomIn appends a modifier to the path.
func (r *Reference) ZoomIn(m Modifier) {
	r.mods = append(r.mods, m)
}

// ZoomOut drops the last modifier, or resets the reference to a
// constant null root if the path is already empty, mirroring the
// original's zoom_out().
func (r *Reference) ZoomOut() {
	if len(r.mods) == 0 {
		if r.kind == RootVariable {
			r.variable.Release()
		}
		*r = Constant(value.Null())
		return
	}
	r.mods = r.mods[:len(r.mods)-1]
}

// Swap exchanges the contents of r and other.
func (r *Reference) Swap(other *Reference) {
	*r, *other = *other, *r
}

// rootValueReadonly resolves the root (ignoring modifiers) to a value and
// reports whether the root permits a read at all.
func (r *Reference) rootValueReadonly() (value.Value, error) {
	switch r.kind {
	case RootUninit:
		return value.Value{}, asterror.New(asterror.KindUseUninit,
			"attempt to use a bypassed reference")
	case RootVoid:
		return value.Value{}, asterror.New(asterror.KindUseVoid,
			"attempt to use the result of a call that returned no value")
	case RootTemporary, RootConstant:
		return r.value, nil
	case RootVariable:
		if err := r.variable.CheckInitialized(); err != nil {
			return value.Value{}, err
		}
		return r.variable.Value(), nil
	case RootTailCall:
		return value.Value{}, asterror.New(asterror.KindUseTailCall,
			"tail call wrapper is not directly dereferenceable; call FinishCall first")
	default:
		return value.Value{}, asterror.New(asterror.KindSystemError,
			"invalid reference root kind %d", int(r.kind))
	}
}

// DereferenceReadonly resolves the root and walks the modifier path,
// returning null (not an error) for any missing element.
func (r *Reference) DereferenceReadonly() (value.Value, error) {
	root, err := r.rootValueReadonly()
	if err != nil {
		return value.Value{}, err
	}
	cur := root
	for _, m := range r.mods {
		next, ok, err := applyReadonly(cur, m)
		if err != nil {
			return value.Value{}, err
		}
		if !ok {
			return value.Null(), nil
		}
		cur = next
	}
	return cur, nil
}

// applyReadonly applies one modifier for a read, returning ok=false when
// the element is simply absent (not an error).
func applyReadonly(parent value.Value, m Modifier) (value.Value, bool, error) {
	switch parent.Kind() {
	case value.KindNull:
		return value.Value{}, false, nil
	case value.KindArray:
		if m.Kind != ModArrayIndex {
			return value.Value{}, false, asterror.New(asterror.KindTypeMismatch,
				"object key %q cannot be applied to an array", m.Key)
		}
		arr := parent.Arr()
		idx, ok := wrapIndex(m.Index, int64(len(arr)))
		if !ok {
			return value.Value{}, false, nil
		}
		return arr[idx], true, nil
	case value.KindObject:
		if m.Kind != ModObjectKey {
			return value.Value{}, false, asterror.New(asterror.KindTypeMismatch,
				"array index %d cannot be applied to an object", m.Index)
		}
		v, ok := parent.Obj().Get(m.Key)
		if !ok {
			return value.Value{}, false, nil
		}
		return v, true, nil
	default:
		if m.Kind == ModArrayIndex {
			return value.Value{}, false, asterror.New(asterror.KindTypeMismatch,
				"index %d cannot be applied to a %s", m.Index, parent.Kind())
		}
		return value.Value{}, false, asterror.New(asterror.KindTypeMismatch,
			"key %q cannot be applied to a %s", m.Key, parent.Kind())
	}
}

// wrapIndex maps a possibly-negative script index onto [0,size), per
// spec §4.C: negative indices count from the end; out-of-range (after
// wrapping) reports ok=false.
func wrapIndex(index, size int64) (int64, bool) {
	return WrapIndex(index, size)
}

// WrapIndex applies the same negative-index wrap-around rule array
// element access uses to any other "index into a sequence of size size"
// operation — notably the `__varg` accessor (spec §4.E), which indexes
// the captured variadic arguments with exactly this convention.
func WrapIndex(index, size int64) (int64, bool) {
	i := index
	if i < 0 {
		i += size
	}
	if i < 0 || i >= size {
		return 0, false
	}
	return i, true
}

// DereferenceMutable resolves the root and walks the modifier path,
// auto-vivifying missing containers and extending arrays as needed. It
// fails if the root is constant or temporary (both non-mutable) or any
// other non-writable root.
func (r *Reference) DereferenceMutable() (value.Value, func(value.Value), error) {
	switch r.kind {
	case RootUninit:
		return value.Value{}, nil, asterror.New(asterror.KindUseUninit,
			"attempt to use a bypassed reference")
	case RootVoid:
		return value.Value{}, nil, asterror.New(asterror.KindUseVoid,
			"attempt to use the result of a call that returned no value")
	case RootConstant:
		return value.Value{}, nil, asterror.New(asterror.KindMutateConst,
			"attempt to modify a constant reference")
	case RootTemporary:
		return value.Value{}, nil, asterror.New(asterror.KindMutateTemporary,
			"attempt to modify a temporary reference")
	case RootTailCall:
		return value.Value{}, nil, asterror.New(asterror.KindUseTailCall,
			"tail call wrapper is not directly dereferenceable; call FinishCall first")
	case RootVariable:
		// fall through to modifier walk below
	default:
		return value.Value{}, nil, asterror.New(asterror.KindSystemError,
			"invalid reference root kind %d", int(r.kind))
	}

	if len(r.mods) == 0 {
		return r.variable.OpenValue()
	}

	parent, setParent, err := r.dereferenceMutableUpTo(len(r.mods) - 1)
	if err != nil {
		return value.Value{}, nil, err
	}
	last := r.mods[len(r.mods)-1]
	newParent, child, setChild, err := applyMutable(parent, last, true)
	if err != nil {
		return value.Value{}, nil, err
	}
	// applyMutable may have replaced parent outright (null -> array/object
	// auto-vivification, or an array grown by extendArray); commit that
	// before returning the child setter.
	setParent(newParent)
	return child, setChild, nil
}

// applyMutable applies one modifier for a write, auto-vivifying the
// parent as needed when createNew is true. It returns the (possibly
// replaced, e.g. null -> array/object) parent value, the child value,
// a setter that writes back into the parent's slot for that child, and
// an error on type mismatch. The caller is responsible for committing
// the returned parent into its own storage.
func applyMutable(parent value.Value, m Modifier, createNew bool) (value.Value, value.Value, func(value.Value), error) {
	if parent.Kind() == value.KindNull {
		if !createNew {
			return parent, value.Value{}, func(value.Value) {}, nil
		}
		if m.Kind == ModArrayIndex {
			parent = value.Array(nil)
		} else {
			parent = value.ObjectValue(value.NewObject())
		}
	}
	switch parent.Kind() {
	case value.KindArray:
		if m.Kind != ModArrayIndex {
			return parent, value.Value{}, nil, asterror.New(asterror.KindTypeMismatch,
				"object key %q cannot be applied to an array", m.Key)
		}
		arr := parent.Arr()
		idx, ok := wrapIndex(m.Index, int64(len(arr)))
		if !ok {
			if !createNew {
				return parent, value.Value{}, func(value.Value) {}, nil
			}
			arr, idx = extendArray(arr, m.Index)
			parent = value.Array(arr)
		}
		i := idx
		return parent, arr[i], func(nv value.Value) { arr[i] = nv }, nil
	case value.KindObject:
		if m.Kind != ModObjectKey {
			return parent, value.Value{}, nil, asterror.New(asterror.KindTypeMismatch,
				"array index %d cannot be applied to an object", m.Index)
		}
		obj := parent.Obj()
		v, ok := obj.Get(m.Key)
		if !ok {
			if !createNew {
				return parent, value.Value{}, func(value.Value) {}, nil
			}
			obj.Set(m.Key, value.Null())
			v, _ = obj.Get(m.Key)
		}
		key := m.Key
		return parent, v, func(nv value.Value) { obj.Set(key, nv) }, nil
	default:
		if m.Kind == ModArrayIndex {
			return parent, value.Value{}, nil, asterror.New(asterror.KindTypeMismatch,
				"index %d cannot be applied to a %s", m.Index, parent.Kind())
		}
		return parent, value.Value{}, nil, asterror.New(asterror.KindTypeMismatch,
			"key %q cannot be applied to a %s", m.Key, parent.Kind())
	}
}

// extendArray grows arr so that index (possibly negative) becomes
// addressable, padding with null per spec §4.C: a non-negative
// out-of-range index appends nulls up to it; a negative index whose
// magnitude exceeds the current length prepends nulls so the new
// logical index 0 lands on the requested element.
func extendArray(arr []value.Value, index int64) ([]value.Value, int64) {
	if index >= 0 {
		for int64(len(arr)) <= index {
			arr = append(arr, value.Null())
		}
		return arr, index
	}
	need := -index - int64(len(arr))
	pad := make([]value.Value, need)
	for i := range pad {
		pad[i] = value.Null()
	}
	return append(pad, arr...), 0
}

// DereferenceUnset removes the element named by the last modifier and
// returns its previous value (null if it was absent). It fails if the
// path is empty (there is nothing to unset on a bare root).
func (r *Reference) DereferenceUnset() (value.Value, error) {
	if len(r.mods) == 0 {
		return value.Value{}, asterror.New(asterror.KindTypeMismatch,
			"unset requires at least one modifier")
	}
	parent, setParent, err := r.dereferenceMutableUpTo(len(r.mods) - 1)
	if err != nil {
		return value.Value{}, err
	}
	last := r.mods[len(r.mods)-1]
	removed, newParent := applyUnset(parent, last)
	setParent(newParent)
	return removed, nil
}

// dereferenceMutableUpTo walks the first n modifiers mutably,
// auto-vivifying along the way, and returns the resulting value plus a
// setter that commits a replacement back into its parent slot.
func (r *Reference) dereferenceMutableUpTo(n int) (value.Value, func(value.Value), error) {
	if r.kind != RootVariable {
		return value.Value{}, nil, asterror.New(asterror.KindMutateTemporary,
			"attempt to modify a non-variable reference")
	}
	cur, setCur, err := r.variable.OpenValue()
	if err != nil {
		return value.Value{}, nil, err
	}
	for i := 0; i < n; i++ {
		newCur, next, setNext, err := applyMutable(cur, r.mods[i], true)
		if err != nil {
			return value.Value{}, nil, err
		}
		setCur(newCur)
		cur = next
		setCur = setNext
	}
	return cur, setCur, nil
}

// applyUnset removes the element addressed by m from parent, returning
// its previous value (or null if absent) and the (possibly unchanged)
// parent after removal.
func applyUnset(parent value.Value, m Modifier) (value.Value, value.Value) {
	switch parent.Kind() {
	case value.KindArray:
		if m.Kind != ModArrayIndex {
			return value.Null(), parent
		}
		arr := parent.Arr()
		idx, ok := wrapIndex(m.Index, int64(len(arr)))
		if !ok {
			return value.Null(), parent
		}
		removed := arr[idx]
		arr = append(arr[:idx], arr[idx+1:]...)
		return removed, value.Array(arr)
	case value.KindObject:
		if m.Kind != ModObjectKey {
			return value.Null(), parent
		}
		removed, ok := parent.Obj().Delete(m.Key)
		if !ok {
			return value.Null(), parent
		}
		return removed, parent
	default:
		return value.Null(), parent
	}
}

// EnumerateVariables visits every Variable transitively reachable from
// this reference: the root variable itself (if any) plus anything
// reachable from an inline temporary/constant payload. A suspended tail
// call root visits nothing; its captured arguments are not scanned.
func (r *Reference) EnumerateVariables(visit func(value.VariableRef)) {
	switch r.kind {
	case RootVariable:
		visit(r.variable)
		r.variable.EnumerateVariables(visit)
	case RootTemporary, RootConstant:
		r.value.CollectReachable(visit)
	}
}

// FinishCall resolves a tail-call root by repeatedly invoking the
// suspended trampoline step until the root settles on something other
// than RootTailCall, mirroring the original's do_finish_call_slow loop
// ("while this->m_index == index_ptc_args"). Non-tail-call references
// return immediately unchanged. The modifier path, if any, is preserved
// across resolution (a tail call is never itself modified in place, so
// this only matters when FinishCall is invoked on a freshly-produced
// reference with an empty path, which is always the case in practice).
func (r *Reference) FinishCall() error {
	for r.kind == RootTailCall {
		next, err := r.tailCall.Resolve()
		if err != nil {
			return err
		}
		*r = next
	}
	return nil
}
