// Copyright 2024 The Asteria Authors
// This file is part of Asteria.

package variable

import (
	"errors"
	"testing"

	"github.com/asteria-lang/asteria/asterror"
	"github.com/asteria-lang/asteria/value"
)

func TestNewIsUninitialized(t *testing.T) {
	v := New()
	if !v.IsUninitialized() {
		t.Error("New() must return an uninitialized variable")
	}
	if err := v.CheckInitialized(); err == nil {
		t.Error("CheckInitialized() on a fresh variable should fail")
	} else if !errors.Is(err, asterror.ErrUseUninit) {
		t.Errorf("expected KindUseUninit, got %v", err)
	}
}

func TestResetClearsUninitialized(t *testing.T) {
	v := New()
	v.Reset(value.Integer(42), false)
	if v.IsUninitialized() {
		t.Error("Reset must clear the uninitialized flag")
	}
	if got := v.Value().Int(); got != 42 {
		t.Errorf("Value().Int() = %d, want 42", got)
	}
	if err := v.CheckInitialized(); err != nil {
		t.Errorf("CheckInitialized() after Reset = %v, want nil", err)
	}
}

func TestUninitializeRoundtrip(t *testing.T) {
	v := New()
	v.Reset(value.String("x"), false)
	v.Uninitialize()
	if !v.IsUninitialized() {
		t.Error("Uninitialize() must restore the uninitialized flag")
	}
	if v.Value().Kind() != value.KindNull {
		t.Errorf("Value() after Uninitialize() = %v, want null", v.Value().Kind())
	}
}

func TestOpenValueRejectsImmutable(t *testing.T) {
	v := New()
	v.Reset(value.Integer(1), true)
	if !v.IsImmutable() {
		t.Fatal("Reset(_, true) should mark the variable immutable")
	}
	_, _, err := v.OpenValue()
	if err == nil {
		t.Fatal("OpenValue() on an immutable variable should fail")
	}
	if !errors.Is(err, asterror.ErrImmutableWrite) {
		t.Errorf("expected KindImmutableWrite, got %v", err)
	}
}

func TestOpenValueMutatesThroughSetter(t *testing.T) {
	v := New()
	v.Reset(value.Integer(1), false)
	_, set, err := v.OpenValue()
	if err != nil {
		t.Fatalf("OpenValue() = %v, want nil error", err)
	}
	set(value.Integer(99))
	if got := v.Value().Int(); got != 99 {
		t.Errorf("Value().Int() after set = %d, want 99", got)
	}
}

func TestGCRefAccessors(t *testing.T) {
	v := New()
	if got := v.AddGCRef(1); got != 1 {
		t.Errorf("AddGCRef(1) = %d, want 1", got)
	}
	if got := v.AddGCRef(2); got != 3 {
		t.Errorf("AddGCRef(2) = %d, want 3", got)
	}
	v.SetGCRef(0)
	if v.GCRef() != 0 {
		t.Errorf("GCRef() after SetGCRef(0) = %d, want 0", v.GCRef())
	}
}

func TestEnumerateVariablesRecursesIntoArray(t *testing.T) {
	inner := New()
	inner.Reset(value.Integer(7), false)

	outer := New()
	outer.Reset(value.Array([]value.Value{value.AsVariableRef(inner.Value()).Peek()}), false)

	// An array element that is itself a bare scalar value (not wrapped in
	// a Variable) contributes no further reachable variables; this test
	// documents that CollectReachable only recurses into opaque/function
	// payloads and nested containers, never synthesizes a Variable for a
	// scalar array element.
	var visited int
	outer.EnumerateVariables(func(value.VariableRef) { visited++ })
	if visited != 0 {
		t.Errorf("expected 0 reachable variables through a scalar array element, got %d", visited)
	}
}
