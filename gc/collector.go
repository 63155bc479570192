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

// Package gc implements [COLLECTOR]: a three-generation tracing garbage
// collector adapted from CPython's cycle-detection algorithm, operating
// over variable.Variable cells.
package gc

import (
	"math"

	"github.com/asteria-lang/asteria/internal/asterialog"
	"github.com/asteria-lang/asteria/value"
	"github.com/asteria-lang/asteria/variable"
)

const defaultThreshold = 100

// Collector tracks one generation's live Variables and can run a full
// mark-and-reap pass over them.
type Collector struct {
	tracked   variableSet
	staging   variableSet
	threshold int64
	counter   int64
	recur     int64
	tied      *Collector // next-older generation; nil for the oldest
	pool      *Pool
}

func newCollector(pool *Pool) *Collector {
	return &Collector{
		tracked:   newVariableSet(),
		staging:   newVariableSet(),
		threshold: defaultThreshold,
		pool:      pool,
	}
}

// Threshold returns the allocation-count threshold that triggers an
// automatic collection of this generation.
func (c *Collector) Threshold() int64 { return c.threshold }

// SetThreshold sets the threshold, clamped to [0, math.MaxInt32] per
// spec §4.D.
func (c *Collector) SetThreshold(n int64) {
	switch {
	case n < 0:
		n = 0
	case n > math.MaxInt32:
		n = math.MaxInt32
	}
	c.threshold = n
}

// CountTrackedVariables reports the number of Variables currently tracked
// by this generation (not including younger or older generations).
func (c *Collector) CountTrackedVariables() int { return c.tracked.len() }

// track inserts var into this generation, retaining it for the
// collector's reference-count bookkeeping, and returns false if it was
// already tracked here.
func (c *Collector) track(v *variable.Variable) bool {
	if !c.tracked.insert(v) {
		return false
	}
	v.Retain()
	v.MarkCollectable(true)
	c.counter++
	return true
}

// untrack removes var from this generation's tracked set.
func (c *Collector) untrack(v *variable.Variable) bool {
	if !c.tracked.erase(v) {
		return false
	}
	v.Release()
	v.MarkCollectable(false)
	c.counter--
	return true
}

// Collect runs one collection pass over this generation, adapted from
// CPython's trial-deletion cycle detector:
//
//  1. Stage every tracked Variable and everything transitively reachable
//     from it; a direct root's gc_ref starts at 2 (one for the tracked
//     set's own retain, one for staging itself), an indirectly-reached
//     Variable starts at 1 (staging only).
//  2. For each staged Variable, walk its Value and increment the gc_ref
//     of every Variable reachable from it by one — this "subtracts"
//     internal references so gc_ref converges to the count of references
//     originating from outside the staged closure.
//  3. Any Variable whose gc_ref ends up strictly less than its real
//     (explicit) reference count has an external holder; mark it, and
//     everything reachable from it, as reachable.
//  4. Anything left unmarked is provably unreachable: uninitialize it and
//     return its carrier to the pool. Anything marked reachable is
//     promoted to the tied (next-older) generation, if one exists.
//
// A recursion guard makes re-entrant calls (e.g. from a destructor that
// happens to allocate during step 4) a no-op, mirroring the original's
// Recursion_sentry.
func (c *Collector) Collect() {
	c.recur++
	defer func() { c.recur-- }()
	if c.recur > 1 {
		return
	}

	asterialog.Debug("generation garbage collection begins", "tracked", c.tracked.len())
	c.staging.clear()

	// Phase 1: stage roots and their transitive closure. Staging itself
	// takes a temporary retain on every member for the duration of the
	// pass, matching the "one from staging" contribution spec §4.D credits
	// each gc_ref baseline with below — without it, gc_ref could never be
	// compared meaningfully against RefCount, since RefCount would be
	// missing the hold staging conceptually represents.
	c.tracked.forEach(func(root *variable.Variable) {
		root.SetGCRef(2)
		if !c.staging.insert(root) {
			return
		}
		root.Retain()
		stageReachable(root, c.staging)
	})
	asterialog.Debug("variables staged", "count", c.staging.len())

	// Phase 2: subtract internal references.
	c.staging.forEach(func(root *variable.Variable) {
		root.EnumerateVariables(func(ref value.VariableRef) {
			if target, ok := ref.(*variable.Variable); ok {
				target.AddGCRef(1)
			}
		})
	})

	// Phase 3: mark anything with an external reference as reachable.
	// gc_ref strictly less than the real reference count means some
	// holder outside the staged closure still points at it.
	c.staging.forEach(func(root *variable.Variable) {
		if root.GCRef() < root.RefCount() {
			markReachable(root)
		}
	})

	// Phase 4: reap or promote. gc_ref == 0 means step 3 marked the
	// variable reachable; any other value means it was never marked and
	// is provably unreachable. Only variables this generation actually
	// owns (present in c.tracked) are erased or moved here — a Variable
	// staged only because it was transitively reachable from one of this
	// generation's roots, but tracked by a different generation, is left
	// for its owning generation's own pass to decide.
	var promoteTied bool
	c.staging.forEach(func(root *variable.Variable) {
		if !c.tracked.has(root) {
			return
		}
		if root.GCRef() != 0 {
			asterialog.Debug("collecting unreachable variable", "value", root.Value().Dump())
			c.untrack(root)
			root.Uninitialize()
			if c.pool != nil {
				c.pool.Put(root)
			}
			return
		}
		if c.tied != nil {
			asterialog.Debug("promoting variable to next generation", "value", root.Value().Dump())
			c.untrack(root)
			c.tied.track(root)
			if c.tied.counter > c.tied.threshold {
				promoteTied = true
			}
		}
	})
	if promoteTied {
		c.tied.Collect()
	}

	// Release every staging-phase temporary hold taken in phase 1. This
	// must run after promote/reap above: reaped Variables already had
	// their tracked-set retain released by untrack, so this is the last
	// reference they held and it is safe to return them to the pool
	// before this point; surviving ones simply drop back to their
	// steady-state refcount.
	c.staging.forEach(func(v *variable.Variable) { v.Release() })

	c.counter = 0
	c.staging.clear()
	asterialog.Debug("generation garbage collection ends")
}

// stageReachable adds every Variable transitively reachable from root
// (not including root itself) to staging, with gc_ref initialized to 1.
func stageReachable(root *variable.Variable, staging variableSet) {
	root.EnumerateVariables(func(ref value.VariableRef) {
		v, ok := ref.(*variable.Variable)
		if !ok {
			return
		}
		if !staging.insert(v) {
			return
		}
		v.SetGCRef(1)
		v.Retain()
		stageReachable(v, staging)
	})
}

// markReachable marks root (and everything transitively reachable from
// it) as externally reachable by setting gc_ref to zero, stopping
// recursion as soon as it encounters an already-marked node (gc_ref
// already 0) to avoid looping on a cycle.
func markReachable(root *variable.Variable) {
	if root.GCRef() == 0 {
		return
	}
	root.SetGCRef(0)
	root.EnumerateVariables(func(ref value.VariableRef) {
		v, ok := ref.(*variable.Variable)
		if !ok {
			return
		}
		markReachable(v)
	})
}
