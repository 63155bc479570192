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

import "github.com/asteria-lang/asteria/variable"

// variableSet is the Go-idiomatic stand-in for the original's open-
// addressed, pointer-identity-keyed Variable_HashSet: a native map keyed
// by pointer identity already gives O(1) insert/erase/has with none of
// the bucket-list bookkeeping the C++ implementation needs to hand-roll.
// Iteration order is unspecified, which the collector does not depend on
// (every phase below is order-independent by construction).
type variableSet map[*variable.Variable]struct{}

func newVariableSet() variableSet {
	return make(variableSet)
}

// insert adds v, reporting true if it was not already present (used by
// the collector to detect and skip re-visiting a variable within one
// staging pass, i.e. "deduplicated by pointer identity").
func (s variableSet) insert(v *variable.Variable) bool {
	if _, ok := s[v]; ok {
		return false
	}
	s[v] = struct{}{}
	return true
}

func (s variableSet) has(v *variable.Variable) bool {
	_, ok := s[v]
	return ok
}

func (s variableSet) erase(v *variable.Variable) bool {
	if _, ok := s[v]; !ok {
		return false
	}
	delete(s, v)
	return true
}

func (s variableSet) clear() {
	for k := range s {
		delete(s, k)
	}
}

func (s variableSet) len() int { return len(s) }

// forEach visits every member. The callback must not insert into s.
func (s variableSet) forEach(f func(*variable.Variable)) {
	for v := range s {
		f(v)
	}
}
