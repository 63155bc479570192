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

// Package value implements [VALUE]: the tagged union of the nine
// script-level datatypes, exactly as spec.md §3/§4.A describes it.
package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind is the tag of a Value's active alternative.
type Kind int

const (
	KindNull Kind = iota
	KindBoolean
	KindInteger
	KindReal
	KindString
	KindOpaque
	KindFunction
	KindArray
	KindObject
)

var kindNames = [...]string{
	KindNull:     "null",
	KindBoolean:  "boolean",
	KindInteger:  "integer",
	KindReal:     "real",
	KindString:   "string",
	KindOpaque:   "opaque",
	KindFunction: "function",
	KindArray:    "array",
	KindObject:   "object",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// VariableRef is the minimal surface a GC-tracked Variable must expose so
// that value.Value can traverse it without importing package variable
// (which itself depends on package value). Package variable supplies the
// concrete implementation; CollectReachable only needs identity
// and the ability to recurse into the held Value.
type VariableRef interface {
	// Peek returns the currently-held Value without failing on an
	// uninitialized variable (Collect must never fail).
	Peek() Value
}

// Opaque is the capability set every host-defined opaque object must
// implement (spec §9 "Dynamic dispatch").
type Opaque interface {
	// Describe returns a short human-readable description used by dump().
	Describe() string
	// EnumerateVariables visits every Variable transitively reachable from
	// this opaque object.
	EnumerateVariables(visit func(VariableRef))
}

// Function is the capability set for callable handles: either a native
// Go function or a shared object (e.g. a compiled closure) implementing
// this interface. PTC-aware invocation is handled by package ptc, which
// calls InvokeTailAware with a pre-built argument/self stack.
type Function interface {
	// Describe returns a short human-readable description used by dump().
	Describe() string
	// EnumerateVariables visits every Variable transitively reachable from
	// this function's captured environment (closures, bound arguments).
	EnumerateVariables(visit func(VariableRef))
}

// Value is the immutable-shape tagged union. The zero Value is null.
//
// Scalar kinds (null, boolean, integer, real, string) never contain a
// Variable reference, transitively or otherwise; non-scalar kinds
// (opaque, function, array, object) may.
type Value struct {
	kind Kind
	b    bool
	i    int64
	r    float64
	s    string
	op   Opaque
	fn   Function
	arr  []Value
	obj  *Object
}

// Object is an insertion-ordered string-keyed mapping. Keys are unique;
// iteration order follows first-insertion order, matching spec §3's
// "mapping from string key (unique, insertion-ordered)".
type Object struct {
	keys   []string
	values map[string]Value
}

// NewObject returns an empty, insertion-ordered Object.
func NewObject() *Object {
	return &Object{values: make(map[string]Value)}
}

// Len returns the number of entries.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Get returns the value for key and whether it was present.
func (o *Object) Get(key string) (Value, bool) {
	if o == nil {
		return Null(), false
	}
	v, ok := o.values[key]
	return v, ok
}

// Set inserts or overwrites key, preserving first-insertion order.
func (o *Object) Set(key string, v Value) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Delete removes key, returning its previous value and whether it existed.
func (o *Object) Delete(key string) (Value, bool) {
	v, ok := o.values[key]
	if !ok {
		return Null(), false
	}
	delete(o.values, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
	return v, true
}

// Keys returns the keys in insertion order. The caller must not mutate it.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	return o.keys
}

// Clone returns a shallow copy with its own key/value storage.
func (o *Object) Clone() *Object {
	if o == nil {
		return NewObject()
	}
	n := &Object{
		keys:   append([]string(nil), o.keys...),
		values: make(map[string]Value, len(o.values)),
	}
	for k, v := range o.values {
		n.values[k] = v
	}
	return n
}

// ---- Constructors -----------------------------------------------------

func Null() Value                 { return Value{kind: KindNull} }
func Boolean(b bool) Value        { return Value{kind: KindBoolean, b: b} }
func Integer(i int64) Value       { return Value{kind: KindInteger, i: i} }
func Real(r float64) Value        { return Value{kind: KindReal, r: r} }
func String(s string) Value       { return Value{kind: KindString, s: s} }
func OpaqueValue(o Opaque) Value  { return Value{kind: KindOpaque, op: o} }
func FunctionValue(f Function) Value { return Value{kind: KindFunction, fn: f} }
func Array(elems []Value) Value   { return Value{kind: KindArray, arr: elems} }
func ObjectValue(o *Object) Value {
	if o == nil {
		o = NewObject()
	}
	return Value{kind: KindObject, obj: o}
}

// ---- Accessors ---------------------------------------------------------

func (v Value) Kind() Kind { return v.kind }

func (v Value) Bool() bool         { return v.b }
func (v Value) Int() int64         { return v.i }
func (v Value) Float() float64     { return v.r }
func (v Value) Str() string        { return v.s }
func (v Value) AsOpaque() Opaque   { return v.op }
func (v Value) AsFunction() Function { return v.fn }

// Arr returns the underlying array slice; mutating it mutates the Value's
// array in place, matching the host-language convention that arrays are
// reference-shaped composite values.
func (v Value) Arr() []Value { return v.arr }

// Obj returns the underlying Object pointer.
func (v Value) Obj() *Object { return v.obj }

// ---- §4.A: truthiness, compare, dump, reachable-variable collection --

// Test reports the value's truthiness per spec §4.A / §8's universal
// invariant: false iff null, false, 0, NaN, 0.0, -0.0, "", or [].
func (v Value) Test() bool {
	switch v.kind {
	case KindNull:
		return false
	case KindBoolean:
		return v.b
	case KindInteger:
		return v.i != 0
	case KindReal:
		// "real is-normal (zero/NaN -> false)": any non-finite-zero,
		// non-NaN value (including subnormals and infinities) is truthy.
		return !math.IsNaN(v.r) && v.r != 0
	case KindString:
		return len(v.s) != 0
	case KindArray:
		return len(v.arr) != 0
	case KindOpaque, KindFunction, KindObject:
		return true
	default:
		panic(fmt.Sprintf("value: unknown kind %d", v.kind))
	}
}

// Compare is the result of a three-way comparison.
type Compare int

const (
	CompareLess Compare = iota
	CompareEqual
	CompareGreater
	CompareUnordered
)

func (c Compare) String() string {
	switch c {
	case CompareLess:
		return "less"
	case CompareEqual:
		return "equal"
	case CompareGreater:
		return "greater"
	default:
		return "unordered"
	}
}

// Compare performs a three-way comparison per spec §3/§4.A:
//   - null is less than anything non-null, and equal to null.
//   - differing non-null types compare unordered.
//   - real comparisons involving NaN are unordered.
//   - arrays compare lexicographically; a shorter array that is a strict
//     prefix of a longer one compares less.
//   - opaque, function, and object are unordered except by identity,
//     which this three-way comparison does not expose (use Go's ==
//     on the underlying handle for identity comparisons).
func (v Value) Compare(other Value) Compare {
	if v.kind != other.kind {
		if v.kind == KindNull {
			return CompareLess
		}
		if other.kind == KindNull {
			return CompareGreater
		}
		return CompareUnordered
	}
	switch v.kind {
	case KindNull:
		return CompareEqual
	case KindBoolean:
		if v.b == other.b {
			return CompareEqual
		}
		if !v.b {
			return CompareLess
		}
		return CompareGreater
	case KindInteger:
		return compareOrdered(v.i, other.i)
	case KindReal:
		if math.IsNaN(v.r) || math.IsNaN(other.r) {
			return CompareUnordered
		}
		return compareOrdered(v.r, other.r)
	case KindString:
		return compareOrdered(strings.Compare(v.s, other.s), 0)
	case KindOpaque, KindFunction, KindObject:
		return CompareUnordered
	case KindArray:
		a, b := v.arr, other.arr
		n := len(a)
		if len(b) < n {
			n = len(b)
		}
		for i := 0; i < n; i++ {
			if r := a[i].Compare(b[i]); r != CompareEqual {
				return r
			}
		}
		return compareOrdered(len(a), len(b))
	default:
		panic(fmt.Sprintf("value: unknown kind %d", v.kind))
	}
}

func compareOrdered[T int | int64 | float64](a, b T) Compare {
	switch {
	case a == b:
		return CompareEqual
	case a < b:
		return CompareLess
	default:
		return CompareGreater
	}
}

// Dump renders the value in the spec §8 / original-implementation format,
// e.g. `object(1) { "a" = array(1) [ 0 = string "hi" ] }`.
func (v Value) Dump() string {
	var b strings.Builder
	v.dump(&b)
	return b.String()
}

func (v Value) dump(b *strings.Builder) {
	switch v.kind {
	case KindNull:
		b.WriteString("null")
	case KindBoolean:
		b.WriteString("boolean ")
		b.WriteString(strconv.FormatBool(v.b))
	case KindInteger:
		b.WriteString("integer ")
		b.WriteString(strconv.FormatInt(v.i, 10))
	case KindReal:
		b.WriteString("real ")
		b.WriteString(strconv.FormatFloat(v.r, 'g', -1, 64))
	case KindString:
		fmt.Fprintf(b, "string %s", strconv.Quote(v.s))
	case KindOpaque:
		fmt.Fprintf(b, "opaque %s", strconv.Quote(v.op.Describe()))
	case KindFunction:
		fmt.Fprintf(b, "function %s", strconv.Quote(v.fn.Describe()))
	case KindArray:
		fmt.Fprintf(b, "array(%d) [", len(v.arr))
		for i, e := range v.arr {
			if i > 0 {
				b.WriteByte(',')
			}
			fmt.Fprintf(b, " %d = ", i)
			e.dump(b)
		}
		if len(v.arr) > 0 {
			b.WriteByte(' ')
		}
		b.WriteByte(']')
	case KindObject:
		keys := v.obj.Keys()
		fmt.Fprintf(b, "object(%d) {", len(keys))
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			val, _ := v.obj.Get(k)
			fmt.Fprintf(b, " %s = ", strconv.Quote(k))
			val.dump(b)
		}
		if len(keys) > 0 {
			b.WriteByte(' ')
		}
		b.WriteByte('}')
	default:
		panic(fmt.Sprintf("value: unknown kind %d", v.kind))
	}
}

// CollectReachable recursively visits every Variable transitively
// reachable from v (used by the collector to build its staging set and
// by the reference root's enumerate_variables).
func (v Value) CollectReachable(visit func(VariableRef)) {
	switch v.kind {
	case KindNull, KindBoolean, KindInteger, KindReal, KindString:
		return
	case KindOpaque:
		if v.op != nil {
			v.op.EnumerateVariables(visit)
		}
	case KindFunction:
		if v.fn != nil {
			v.fn.EnumerateVariables(visit)
		}
	case KindArray:
		for _, e := range v.arr {
			e.CollectReachable(visit)
		}
	case KindObject:
		for _, k := range v.obj.Keys() {
			val, _ := v.obj.Get(k)
			val.CollectReachable(visit)
		}
	}
}

// Peek implements VariableRef trivially for a bare Value that isn't backed
// by a Variable cell (used by temporary/constant references).
type plainRef struct{ v Value }

func (p plainRef) Peek() Value { return p.v }

// AsVariableRef wraps a plain Value as a VariableRef for code paths that
// need to treat temporaries and tracked variables uniformly.
func AsVariableRef(v Value) VariableRef { return plainRef{v} }
