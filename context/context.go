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

// Package context implements [CONTEXT]: the analytic (compile-time) and
// executive (run-time) lexical scopes every function body nests inside,
// plus the deferred-expression list every scope exit drains.
package context

import (
	"strings"

	"github.com/asteria-lang/asteria/asterror"
	"github.com/asteria-lang/asteria/reference"
)

// predefinedNames is the fixed set of reserved identifiers every function
// scope binds itself, kept sorted to match the teacher-derived source's
// own "keep these sorted" convention for its predefined-reference table.
var predefinedNames = [...]string{"__file", "__func", "__line", "__this", "__varg"}

func isPredefined(name string) bool {
	for _, p := range predefinedNames {
		if p == name {
			return true
		}
	}
	return false
}

// IsNameReserved reports whether name matches the `__*` reserved pattern.
// Only the five predefined names above may use it.
func IsNameReserved(name string) bool {
	return strings.HasPrefix(name, "__")
}

// Deferred is a single deferred expression a scope registers for
// execution on exit. Running an AIR queue is out of this module's scope,
// so the caller supplies whatever closure or compiled-node adapter knows
// how to execute it; Context only owns registration order and unwind
// timing, not node semantics.
type Deferred interface {
	Run() error
}

// Context is one lexical scope: an ordered dictionary of named
// References plus a link to its enclosing scope. An analytic Context is
// built by the compiler to resolve identifiers before evaluation begins
// and never actually holds live References (SetNamed is a no-op key
// registration only); an executive Context is built when a function
// frame is entered and holds the live bindings evaluation reads from.
type Context struct {
	parent   *Context
	analytic bool
	names    map[string]reference.Reference
	order    []string
	deferred []deferredEntry
}

type deferredEntry struct {
	loc asterror.SourceLocation
	d   Deferred
}

// NewAnalytic returns an empty analytic scope nested inside parent (nil
// for a top-level scope).
func NewAnalytic(parent *Context) *Context {
	return &Context{parent: parent, analytic: true, names: make(map[string]reference.Reference)}
}

// NewExecutive returns an empty executive scope nested inside parent.
func NewExecutive(parent *Context) *Context {
	return &Context{parent: parent, names: make(map[string]reference.Reference)}
}

// Parent returns the enclosing scope, or nil at the top level.
func (c *Context) Parent() *Context { return c.parent }

// IsAnalytic reports whether this is a compile-time (name-resolution
// only) scope as opposed to a run-time executive scope.
func (c *Context) IsAnalytic() bool { return c.analytic }

// GetNamed looks up name in this scope only (callers walk Parent()
// themselves to implement shadowing/outer lookups, matching the
// original's per-scope dictionary lookup that the resolver chains).
func (c *Context) GetNamed(name string) (reference.Reference, bool) {
	r, ok := c.names[name]
	return r, ok
}

// SetNamed binds name to ref in this scope, registering the name for
// resolution purposes even in an analytic context (where ref is
// discarded immediately, since analytic scopes never evaluate). Rebinding
// an already-bound name overwrites it, matching shadowing-by-reassignment
// within one scope (e.g. `var x = 1; var x = 2;` inside the same block).
func (c *Context) SetNamed(name string, ref reference.Reference) {
	if _, existed := c.names[name]; !existed {
		c.order = append(c.order, name)
	}
	if c.analytic {
		c.names[name] = reference.Reference{}
		return
	}
	c.names[name] = ref
}

// bindParam validates and binds one function parameter name as a local
// variable, used by InitializeAnalyticFunction.
func (c *Context) bindParam(name string) error {
	if name == "" {
		return nil
	}
	if IsNameReserved(name) {
		return asterror.New(asterror.KindReservedName,
			"the function parameter name `%s` is reserved and cannot be used", name)
	}
	if _, dup := c.names[name]; dup {
		return asterror.New(asterror.KindDuplicateParam,
			"the function parameter name `%s` is declared more than once", name)
	}
	c.SetNamed(name, reference.Uninit())
	return nil
}

// InitializeAnalyticFunction records each parameter name for resolution,
// rejecting a reserved name or a duplicate within the same parameter
// list. Parameter contents are not evaluated in an analytic context.
func (c *Context) InitializeAnalyticFunction(params []string) error {
	for _, p := range params {
		if err := c.bindParam(p); err != nil {
			return err
		}
	}
	return nil
}

// Defer registers a deferred expression to run, in reverse registration
// order, on any exit from this scope (normal, break, continue, or
// exception). Only meaningful on an executive context; analytic contexts
// never run anything.
func (c *Context) Defer(loc asterror.SourceLocation, d Deferred) {
	c.deferred = append(c.deferred, deferredEntry{loc: loc, d: d})
}

// RunDeferred executes every deferred expression registered on this
// scope in reverse order, regardless of cause. cause is the error (if
// any) that triggered the exit; a deferred expression that itself raises
// supersedes cause as the propagating error, with cause appended to its
// backtrace as an enclosing frame so the original failure is not lost.
func (c *Context) RunDeferred(cause error) error {
	for i := len(c.deferred) - 1; i >= 0; i-- {
		entry := c.deferred[i]
		if err := entry.d.Run(); err != nil {
			if re, ok := err.(*asterror.RuntimeError); ok {
				re.PushFramePlain(entry.loc, "[deferred expression]")
				if cause != nil {
					re.PushFramePlain(entry.loc, "[during unwind of] "+cause.Error())
				}
			}
			cause = err
		}
	}
	return cause
}
