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
	lru "github.com/hashicorp/golang-lru"

	"github.com/asteria-lang/asteria/variable"
)

// Pool is the free list of reaped Variable carriers that create_variable
// draws from before allocating fresh, bounded by an LRU cache so a
// long-running interpreter that briefly spikes its live-variable count
// doesn't retain an unbounded number of stale carriers forever.
type Pool struct {
	cache *lru.Cache
	seq   uint64
}

// NewPool returns a Pool that retains at most capacity reusable carriers.
func NewPool(capacity int) (*Pool, error) {
	cache, err := lru.New(capacity)
	if err != nil {
		return nil, err
	}
	return &Pool{cache: cache}, nil
}

// Put returns a carrier to the pool. v must already be uninitialized and
// no longer referenced by any tracked generation.
func (p *Pool) Put(v *variable.Variable) {
	p.seq++
	p.cache.Add(p.seq, v)
}

// Get returns a recycled carrier if one is available, otherwise a freshly
// allocated one. Either way the returned Variable is uninitialized.
func (p *Pool) Get() *variable.Variable {
	if p.cache.Len() == 0 {
		return variable.New()
	}
	_, val, ok := p.cache.RemoveOldest()
	if !ok {
		return variable.New()
	}
	v := val.(*variable.Variable)
	v.Uninitialize()
	return v
}

// Len reports the number of carriers currently held in the free list.
func (p *Pool) Len() int {
	return p.cache.Len()
}
