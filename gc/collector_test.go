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

package gc

import (
	"testing"

	"github.com/asteria-lang/asteria/value"
	"github.com/asteria-lang/asteria/variable"
)

// capture is a minimal value.Opaque test double standing in for a closure:
// it holds a single captured *variable.Variable and must Retain it on
// capture and Release it when dropped, exactly like reference.Variable's
// own contract, for the collector's refcount comparison to mean anything.
type capture struct {
	target *variable.Variable
}

func newCapture(target *variable.Variable) *capture {
	target.Retain()
	return &capture{target: target}
}

func (c *capture) drop() { c.target.Release() }

func (c *capture) Describe() string { return "test closure" }

func (c *capture) EnumerateVariables(visit func(value.VariableRef)) {
	visit(c.target)
}

func newTrackedVariable(t *testing.T, c *Collector, v value.Value) *variable.Variable {
	t.Helper()
	va := variable.New()
	va.Reset(v, false)
	c.track(va)
	return va
}

func TestCollectReapsUnreferencedCycle(t *testing.T) {
	pool, err := NewPool(8)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	c := newCollector(pool)

	a := newTrackedVariable(t, c, value.Null())
	b := newTrackedVariable(t, c, value.Null())

	capA := newCapture(a)
	capB := newCapture(b)
	a.Reset(value.OpaqueValue(capB), false)
	b.Reset(value.OpaqueValue(capA), false)

	if c.CountTrackedVariables() != 2 {
		t.Fatalf("expected 2 tracked variables before collection, got %d", c.CountTrackedVariables())
	}

	c.Collect()

	if c.CountTrackedVariables() != 0 {
		t.Fatalf("expected the cycle to be fully reaped, got %d still tracked", c.CountTrackedVariables())
	}
	if !a.IsUninitialized() || !b.IsUninitialized() {
		t.Fatalf("reaped variables must be uninitialized")
	}
	if pool.Len() != 2 {
		t.Fatalf("expected both carriers returned to the pool, got %d", pool.Len())
	}
}

func TestCollectSurvivesExternallyHeldCycle(t *testing.T) {
	pool, err := NewPool(8)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	c := newCollector(pool)

	a := newTrackedVariable(t, c, value.Null())
	b := newTrackedVariable(t, c, value.Null())

	capA := newCapture(a)
	capB := newCapture(b)
	a.Reset(value.OpaqueValue(capB), false)
	b.Reset(value.OpaqueValue(capA), false)

	// An external holder keeps a retain on a, simulating a live
	// reference.Reference bound to it from outside this generation.
	a.Retain()
	defer a.Release()

	c.Collect()

	if !c.tracked.has(a) || !c.tracked.has(b) {
		t.Fatalf("externally-held cycle must survive collection")
	}
	if a.IsUninitialized() || b.IsUninitialized() {
		t.Fatalf("survivors must not be uninitialized")
	}
	capA.drop()
	capB.drop()
}

func TestCollectPromotesSurvivorsToTiedGeneration(t *testing.T) {
	pool, err := NewPool(8)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	older := newCollector(pool)
	younger := newCollector(pool)
	younger.tied = older

	v := newTrackedVariable(t, younger, value.Integer(42))
	v.Retain()
	defer v.Release()

	younger.Collect()

	if younger.CountTrackedVariables() != 0 {
		t.Fatalf("survivor should have moved out of the younger generation")
	}
	if !older.tracked.has(v) {
		t.Fatalf("survivor should have been promoted into the tied generation")
	}
}

func TestCollectReusesPooledCarrier(t *testing.T) {
	pool, err := NewPool(8)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	c := newCollector(pool)

	v := newTrackedVariable(t, c, value.String("garbage"))
	c.Collect()

	if pool.Len() != 1 {
		t.Fatalf("expected the reaped carrier in the pool, got %d", pool.Len())
	}
	recycled := pool.Get()
	if recycled != v {
		t.Fatalf("expected Get to hand back the exact reaped carrier")
	}
	if !recycled.IsUninitialized() {
		t.Fatalf("recycled carrier must be uninitialized")
	}
}

func TestThresholdClamping(t *testing.T) {
	c := newCollector(nil)
	c.SetThreshold(-5)
	if c.Threshold() != 0 {
		t.Fatalf("negative threshold should clamp to 0, got %d", c.Threshold())
	}
	c.SetThreshold(1 << 40)
	if c.Threshold() != 1<<31-1 {
		t.Fatalf("oversized threshold should clamp to math.MaxInt32, got %d", c.Threshold())
	}
}
