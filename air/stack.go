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

package air

import "github.com/asteria-lang/asteria/reference"

// Stack is the evaluation-time reference stack a Driver pushes onto and
// pops from as it runs a Queue, the Go analog of the original
// evaluator's reference_stack.
type Stack struct {
	refs []reference.Reference
}

// NewStack returns an empty Stack.
func NewStack() *Stack {
	return &Stack{}
}

// Push appends r to the top of the stack.
func (s *Stack) Push(r reference.Reference) {
	s.refs = append(s.refs, r)
}

// Pop removes and returns the top Reference, reporting false on an
// empty stack instead of panicking.
func (s *Stack) Pop() (reference.Reference, bool) {
	if len(s.refs) == 0 {
		return reference.Reference{}, false
	}
	r := s.refs[len(s.refs)-1]
	s.refs = s.refs[:len(s.refs)-1]
	return r, true
}

// Top returns a pointer to the top Reference for in-place mutation
// (e.g. zooming in a modifier), without popping it.
func (s *Stack) Top() (*reference.Reference, bool) {
	if len(s.refs) == 0 {
		return nil, false
	}
	return &s.refs[len(s.refs)-1], true
}

// Len reports the current stack depth.
func (s *Stack) Len() int { return len(s.refs) }

// Clear empties the stack, calling Dispose on every Reference it held so
// that Variable-rooted entries release their retain.
func (s *Stack) Clear() {
	for i := range s.refs {
		s.refs[i].Dispose()
	}
	s.refs = s.refs[:0]
}
