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

// Package runtime implements the embedding-facing Global_Context
// surface spec §6 describes: the single owner of per-interpreter
// singleton facilities (the generational collector, a random-number
// source, the `std` library root object, and optional host hooks), a
// handle on the process-wide loader lock, plus the Config a host loads
// to tune them.
package runtime

import (
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/asteria-lang/asteria/air"
	"github.com/asteria-lang/asteria/context"
	"github.com/asteria-lang/asteria/gc"
	"github.com/asteria-lang/asteria/internal/asterialog"
	"github.com/asteria-lang/asteria/ptc"
	"github.com/asteria-lang/asteria/value"
)

// Global is one embedded interpreter instance: every facility a script
// execution needs that must not be duplicated per call frame.
type Global struct {
	// ID disambiguates this instance's log lines when a host embeds
	// more than one interpreter in the same process.
	ID uuid.UUID

	Collector *gc.GenCollector
	Loader    *LoaderLock
	Config    Config

	rng   *rand.Rand
	std   *value.Object
	hooks Hooks
}

// processLoaderLock is the one LoaderLock every Global in the process
// shares, so loads of the same file from different instances are
// deduplicated together.
var processLoaderLock = NewLoaderLock()

// New constructs a Global ready to compile and run scripts. hooks may
// be nil to disable all observation.
func New(cfg Config, hooks Hooks) (*Global, error) {
	pool, err := gc.NewGenCollector(cfg.PoolCapacity)
	if err != nil {
		return nil, err
	}
	pool.Collector(gc.GenNewest).SetThreshold(cfg.GenerationThresholds[gc.GenNewest])
	pool.Collector(gc.GenMiddle).SetThreshold(cfg.GenerationThresholds[gc.GenMiddle])
	pool.Collector(gc.GenOldest).SetThreshold(cfg.GenerationThresholds[gc.GenOldest])

	id := uuid.New()
	g := &Global{
		ID:        id,
		Collector: pool,
		Loader:    processLoaderLock,
		Config:    cfg,
		rng:       rand.New(rand.NewPCG(seedFromUUID(id), 0x9e3779b97f4a7c15)),
		std:       value.NewObject(),
		hooks:     hooks,
	}
	asterialog.Named("global").Debug("interpreter instance created", "id", id)
	return g, nil
}

func seedFromUUID(id uuid.UUID) uint64 {
	var seed uint64
	for i, b := range id {
		seed ^= uint64(b) << (8 * uint(i%8))
	}
	return seed
}

// Random returns the per-instance random-number source, the Go
// stand-in for the original's ISAAC-derived generator: any stdlib
// binding that needs randomness (out of this module's scope) draws
// from here instead of seeding its own source.
func (g *Global) Random() *rand.Rand { return g.rng }

// Std returns the mutable root of the `std` standard-library object
// namespace. Populating it with actual bindings is out of this
// module's scope; Global only owns the slot bindings are installed
// into.
func (g *Global) Std() *value.Object { return g.std }

// Hooks returns the host-installed observer, or nil if none was given
// to New.
func (g *Global) Hooks() Hooks { return g.hooks }

// NewDriver returns an air.Driver for a fresh top-level executive scope
// wired to this instance's collector and hooks, ready to run a
// compiled AIR queue.
func (g *Global) NewDriver() *air.Driver {
	var h ptc.Hooks
	if g.hooks != nil {
		h = &ptcAdapter{inner: g.hooks}
	}
	return air.NewDriver(g.Collector, context.NewExecutive(nil), h)
}

// Close finalizes every tracked Variable across all three generations.
// A Global must not be used after Close returns.
func (g *Global) Close() {
	g.Collector.Finalize()
}
