// Copyright 2024 The Asteria Authors
// This file is part of Asteria.

package reference

import (
	"errors"
	"testing"

	"github.com/asteria-lang/asteria/asterror"
	"github.com/asteria-lang/asteria/value"
	"github.com/asteria-lang/asteria/variable"
)

func newInitVar(v value.Value) *variable.Variable {
	vr := variable.New()
	vr.Reset(v, false)
	return vr
}

func TestDereferenceReadonlyUninitRoot(t *testing.T) {
	r := Uninit()
	if _, err := r.DereferenceReadonly(); !errors.Is(err, asterror.ErrUseUninit) {
		t.Errorf("expected KindUseUninit, got %v", err)
	}
}

func TestDereferenceReadonlyVoidRoot(t *testing.T) {
	r := Void()
	if _, err := r.DereferenceReadonly(); !errors.Is(err, asterror.ErrUseVoid) {
		t.Errorf("expected KindUseVoid, got %v", err)
	}
}

func TestDereferenceReadonlyMissingElementIsNullNotError(t *testing.T) {
	r := Temporary(value.Array([]value.Value{value.Integer(1)}))
	r.ZoomIn(ArrayIndex(5))
	v, err := r.DereferenceReadonly()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Kind() != value.KindNull {
		t.Errorf("out-of-range readonly index should yield null, got %v", v.Kind())
	}
}

func TestDereferenceReadonlyNegativeIndex(t *testing.T) {
	r := Temporary(value.Array([]value.Value{value.Integer(1), value.Integer(2), value.Integer(3)}))
	r.ZoomIn(ArrayIndex(-1))
	v, err := r.DereferenceReadonly()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Int() != 3 {
		t.Errorf("index -1 should read the last element, got %d", v.Int())
	}
}

func TestDereferenceMutableAutoVivifiesObjectThenArray(t *testing.T) {
	vr := variable.New()
	vr.Reset(value.Null(), false)
	r := Variable(vr)
	r.ZoomIn(ObjectKey("a"))
	r.ZoomIn(ArrayIndex(0))

	cur, set, err := r.DereferenceMutable()
	if err != nil {
		t.Fatalf("DereferenceMutable() error: %v", err)
	}
	if cur.Kind() != value.KindNull {
		t.Fatalf("freshly vivified leaf should be null, got %v", cur.Kind())
	}
	set(value.String("hi"))

	got := vr.Value().Dump()
	want := `object(1) { "a" = array(1) [ 0 = string "hi" ] }`
	if got != want {
		t.Errorf("Dump() = %q, want %q", got, want)
	}
}

func TestDereferenceMutableRejectsConstantAndTemporary(t *testing.T) {
	c := Constant(value.Integer(1))
	if _, _, err := c.DereferenceMutable(); !errors.Is(err, asterror.ErrMutateConst) {
		t.Errorf("expected KindMutateConst, got %v", err)
	}
	tmp := Temporary(value.Integer(1))
	if _, _, err := tmp.DereferenceMutable(); !errors.Is(err, asterror.ErrMutateTemporary) {
		t.Errorf("expected KindMutateTemporary, got %v", err)
	}
}

func TestDereferenceMutableRejectsImmutableVariable(t *testing.T) {
	vr := variable.New()
	vr.Reset(value.Integer(1), true)
	r := Variable(vr)
	if _, _, err := r.DereferenceMutable(); !errors.Is(err, asterror.ErrImmutableWrite) {
		t.Errorf("expected KindImmutableWrite, got %v", err)
	}
}

func TestUnsetScenario(t *testing.T) {
	// Mirrors spec.md §8 scenario 4: x = null; x["a"][0] = "hi"; unset x["a"][0].
	vr := variable.New()
	vr.Reset(value.Null(), false)

	set := func(mods ...Modifier) (value.Value, func(value.Value)) {
		r := Variable(vr)
		for _, m := range mods {
			r.ZoomIn(m)
		}
		cur, setter, err := r.DereferenceMutable()
		if err != nil {
			t.Fatalf("DereferenceMutable() error: %v", err)
		}
		return cur, setter
	}
	_, setter := set(ObjectKey("a"), ArrayIndex(0))
	setter(value.String("hi"))

	if got, want := vr.Value().Dump(), `object(1) { "a" = array(1) [ 0 = string "hi" ] }`; got != want {
		t.Fatalf("Dump() before unset = %q, want %q", got, want)
	}

	r := Variable(vr)
	r.ZoomIn(ObjectKey("a"))
	r.ZoomIn(ArrayIndex(0))
	removed, err := r.DereferenceUnset()
	if err != nil {
		t.Fatalf("DereferenceUnset() error: %v", err)
	}
	if removed.Str() != "hi" {
		t.Errorf("DereferenceUnset() returned %v, want \"hi\"", removed.Dump())
	}

	if got, want := vr.Value().Dump(), `object(1) { "a" = array(0) [] }`; got != want {
		t.Errorf("Dump() after unset = %q, want %q", got, want)
	}
}

func TestZoomOutOnEmptyPathResetsToConstantNull(t *testing.T) {
	r := Temporary(value.Integer(1))
	r.ZoomOut()
	if r.Kind() != RootConstant {
		t.Errorf("ZoomOut() on empty path should yield RootConstant, got %v", r.Kind())
	}
	v, err := r.DereferenceReadonly()
	if err != nil || v.Kind() != value.KindNull {
		t.Errorf("ZoomOut() on empty path should settle to null, got %v, err %v", v.Kind(), err)
	}
}

func TestEnumerateVariablesVisitsRoot(t *testing.T) {
	vr := newInitVar(value.Integer(1))
	r := Variable(vr)
	var seen []value.VariableRef
	r.EnumerateVariables(func(ref value.VariableRef) { seen = append(seen, ref) })
	if len(seen) != 1 {
		t.Fatalf("expected exactly the root variable to be visited, got %d", len(seen))
	}
}
