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
	"github.com/asteria-lang/asteria/internal/asterialog"
	"github.com/asteria-lang/asteria/variable"
)

// Generation names one of the three tiers, ordered from the one
// collected most often to the one collected least often.
type Generation int

const (
	GenNewest Generation = iota
	GenMiddle
	GenOldest

	generationCount = int(GenOldest) + 1
)

func (g Generation) String() string {
	switch g {
	case GenNewest:
		return "newest"
	case GenMiddle:
		return "middle"
	case GenOldest:
		return "oldest"
	default:
		return "unknown generation"
	}
}

// GenCollector is the three-tier allocator and collection scheduler spec
// §4.D describes: one Collector per generation, tied newest-to-oldest so
// a surviving Variable is promoted one tier at a time, and a single
// shared carrier Pool every tier draws from and returns to.
type GenCollector struct {
	tiers [generationCount]*Collector
	pool  *Pool
}

// NewGenCollector builds the three tied generations sharing one carrier
// pool bounded to poolCapacity reusable Variables.
func NewGenCollector(poolCapacity int) (*GenCollector, error) {
	pool, err := NewPool(poolCapacity)
	if err != nil {
		return nil, err
	}
	oldest := newCollector(pool)
	middle := newCollector(pool)
	newest := newCollector(pool)
	middle.tied = oldest
	newest.tied = middle
	return &GenCollector{
		tiers: [generationCount]*Collector{GenNewest: newest, GenMiddle: middle, GenOldest: oldest},
		pool:  pool,
	}, nil
}

// Collector returns the underlying per-generation Collector, used by
// callers that need direct access to Threshold/SetThreshold/
// CountTrackedVariables for one tier.
func (g *GenCollector) Collector(gen Generation) *Collector { return g.tiers[gen] }

// CreateVariable implements create_variable(hint): pulls a carrier from
// the pool (or allocates fresh), tracks it in the named generation, and
// returns it uninitialized. The threshold check and any resulting sweep
// run before the new carrier is tracked, so a brand new Variable — which
// the caller has not yet bound to a Reference and therefore holds no
// explicit retain on — is never itself a candidate for the very
// collection its own allocation triggered.
func (g *GenCollector) CreateVariable(hint Generation) *variable.Variable {
	c := g.tiers[hint]
	if c.counter > c.threshold {
		g.Collect(hint)
	}
	v := g.pool.Get()
	c.track(v)
	return v
}

// Collect forces a sweep of every generation from newest through upTo
// inclusive, implementing both the explicit collect(up_to_generation)
// operation and the allocation-triggered "collect that generation and
// all younger ones" rule.
func (g *GenCollector) Collect(upTo Generation) {
	for gen := GenNewest; gen <= upTo; gen++ {
		g.tiers[gen].Collect()
	}
}

// Finalize uninitializes every variable tracked by every generation and
// drops the pool, intended to run exactly once at interpreter shutdown.
// Each variable's Uninitialize runs under a recover that logs any panic,
// so one misbehaving variable cannot abort shutdown partway through.
func (g *GenCollector) Finalize() {
	for _, c := range g.tiers {
		c.tracked.forEach(func(v *variable.Variable) {
			finalizeOne(v)
		})
		c.tracked.clear()
		c.counter = 0
	}
	g.pool = nil
}

func finalizeOne(v *variable.Variable) {
	defer func() {
		if r := recover(); r != nil {
			asterialog.Warn("recovered panic while finalizing variable", "recover", r)
		}
	}()
	v.Uninitialize()
}
