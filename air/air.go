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

// Package air names the collaborator interfaces a compiled bytecode
// ("AIR") front-end plugs into: a Node knows how to execute itself
// against a Driver, and a Queue is the flattened, linear sequence a
// compiler emits from one expression or block. Individual opcode
// semantics (arithmetic, indexing, control flow) belong to that
// front-end and are not defined here; this package only supplies the
// scaffold the evaluation driver described in spec §2 runs them through.
package air

import "github.com/asteria-lang/asteria/reference"

// Node is one instruction in an AIR queue.
type Node interface {
	// Execute performs this node's effect against d and returns the
	// Reference it leaves on top of the evaluation stack.
	Execute(d *Driver) (reference.Reference, error)
	// Describe returns a short human-readable label for backtraces and
	// disassembly listings.
	Describe() string
}

// Queue is a pre-flattened, linear sequence of Nodes.
type Queue []Node

// Execute runs every node in order, threading each node's produced
// Reference through as the queue's running result; the last node run
// determines the queue's overall result, matching a straight-line AIR
// queue's single-result evaluation.
func (q Queue) Execute(d *Driver) (reference.Reference, error) {
	result := reference.Void()
	for _, n := range q {
		r, err := n.Execute(d)
		if err != nil {
			return reference.Reference{}, err
		}
		result = r
	}
	return result, nil
}
