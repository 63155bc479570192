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
)

func TestGenerationString(t *testing.T) {
	cases := map[Generation]string{GenNewest: "newest", GenMiddle: "middle", GenOldest: "oldest"}
	for gen, want := range cases {
		if got := gen.String(); got != want {
			t.Errorf("Generation(%d).String() = %q, want %q", gen, got, want)
		}
	}
}

func TestCreateVariableTracksInNamedGeneration(t *testing.T) {
	g, err := NewGenCollector(8)
	if err != nil {
		t.Fatalf("NewGenCollector: %v", err)
	}
	v := g.CreateVariable(GenMiddle)
	if !v.IsUninitialized() {
		t.Fatalf("newly created variable must be uninitialized")
	}
	if g.Collector(GenMiddle).CountTrackedVariables() != 1 {
		t.Fatalf("expected variable tracked in the requested generation")
	}
	if g.Collector(GenNewest).CountTrackedVariables() != 0 {
		t.Fatalf("variable must not leak into an unrelated generation")
	}
}

func TestCreateVariableTriggersThresholdCollection(t *testing.T) {
	g, err := NewGenCollector(64)
	if err != nil {
		t.Fatalf("NewGenCollector: %v", err)
	}
	g.Collector(GenNewest).SetThreshold(2)

	// Three unreferenced scalars in a row should trip the threshold and
	// sweep the newest generation clean before the fourth is created.
	for i := 0; i < 3; i++ {
		v := g.CreateVariable(GenNewest)
		v.Reset(value.Integer(int64(i)), false)
	}
	v := g.CreateVariable(GenNewest)
	v.Reset(value.Integer(99), false)

	if got := g.Collector(GenNewest).CountTrackedVariables(); got != 1 {
		t.Fatalf("expected the threshold sweep to reap the unreferenced prior allocations, got %d tracked", got)
	}
}

func TestFinalizeUninitializesEveryGeneration(t *testing.T) {
	g, err := NewGenCollector(8)
	if err != nil {
		t.Fatalf("NewGenCollector: %v", err)
	}
	a := g.CreateVariable(GenNewest)
	a.Reset(value.String("alive"), false)
	b := g.CreateVariable(GenOldest)
	b.Reset(value.Integer(7), false)

	g.Finalize()

	if !a.IsUninitialized() || !b.IsUninitialized() {
		t.Fatalf("finalize must uninitialize every tracked variable")
	}
	for gen := GenNewest; gen <= GenOldest; gen++ {
		if n := g.Collector(gen).CountTrackedVariables(); n != 0 {
			t.Fatalf("generation %s should be empty after finalize, got %d", gen, n)
		}
	}
}
