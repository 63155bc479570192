// Copyright 2024 The Asteria Authors
// This file is part of Asteria.
//
// Asteria is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package value

import (
	"math"
	"testing"
)

func TestTest(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		want bool
	}{
		{"null", Null(), false},
		{"false", Boolean(false), false},
		{"true", Boolean(true), true},
		{"zero int", Integer(0), false},
		{"nonzero int", Integer(-1), true},
		{"zero real", Real(0), false},
		{"neg zero real", Real(math.Copysign(0, -1)), false},
		{"nan real", Real(math.NaN()), false},
		{"normal real", Real(1.5), true},
		{"empty string", String(""), false},
		{"nonempty string", String("x"), true},
		{"empty array", Array(nil), false},
		{"nonempty array", Array([]Value{Null()}), true},
		{"object always true", ObjectValue(NewObject()), true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.v.Test(); got != c.want {
				t.Errorf("Test() = %v, want %v", got, c.want)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	cases := []struct {
		name string
		a, b Value
		want Compare
	}{
		{"null vs null", Null(), Null(), CompareEqual},
		{"null vs int", Null(), Integer(1), CompareLess},
		{"int vs null", Integer(1), Null(), CompareGreater},
		{"int vs string unordered", Integer(1), String("1"), CompareUnordered},
		{"int less", Integer(1), Integer(2), CompareLess},
		{"int equal", Integer(2), Integer(2), CompareEqual},
		{"int greater", Integer(3), Integer(2), CompareGreater},
		{"nan unordered", Real(math.NaN()), Real(1), CompareUnordered},
		{"string less", String("a"), String("b"), CompareLess},
		{"array prefix less", Array([]Value{Integer(1)}), Array([]Value{Integer(1), Integer(2)}), CompareLess},
		{"array lexicographic", Array([]Value{Integer(1), Integer(5)}), Array([]Value{Integer(1), Integer(2)}), CompareGreater},
		{"object unordered", ObjectValue(NewObject()), ObjectValue(NewObject()), CompareUnordered},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.a.Compare(c.b); got != c.want {
				t.Errorf("Compare() = %v, want %v", got, c.want)
			}
		})
	}
}

func TestDumpScalars(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{Null(), "null"},
		{Boolean(true), "boolean true"},
		{Integer(42), "integer 42"},
		{String("hello"), `string "hello"`},
	}
	for _, c := range cases {
		if got := c.v.Dump(); got != c.want {
			t.Errorf("Dump() = %q, want %q", got, c.want)
		}
	}
}

func TestDumpNestedScenario(t *testing.T) {
	obj := NewObject()
	obj.Set("a", Array([]Value{String("hi")}))
	v := ObjectValue(obj)
	want := `object(1) { "a" = array(1) [ 0 = string "hi" ] }`
	if got := v.Dump(); got != want {
		t.Errorf("Dump() = %q, want %q", got, want)
	}

	obj.Set("a", Array(nil))
	want2 := `object(1) { "a" = array(0) [] }`
	if got := v.Dump(); got != want2 {
		t.Errorf("Dump() after unset = %q, want %q", got, want2)
	}
}

func TestObjectOrdering(t *testing.T) {
	o := NewObject()
	o.Set("z", Integer(1))
	o.Set("a", Integer(2))
	o.Set("z", Integer(3))
	keys := o.Keys()
	if len(keys) != 2 || keys[0] != "z" || keys[1] != "a" {
		t.Errorf("Keys() = %v, want [z a] (insertion order preserved on overwrite)", keys)
	}
	if v, _ := o.Get("z"); v.Int() != 3 {
		t.Errorf("Get(z) = %d, want 3", v.Int())
	}
}

func TestCollectReachableScalarsNoop(t *testing.T) {
	var visited int
	Integer(5).CollectReachable(func(VariableRef) { visited++ })
	String("x").CollectReachable(func(VariableRef) { visited++ })
	if visited != 0 {
		t.Errorf("scalars should not report any reachable variables, got %d", visited)
	}
}
