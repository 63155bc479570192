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

package runtime

import (
	"github.com/asteria-lang/asteria/asterror"
	"github.com/asteria-lang/asteria/ptc"
	"github.com/asteria-lang/asteria/value"
)

// Hooks is the full embedding-facing observer surface a host installs
// on a Global, covering every callback spec §6 names: variable
// declaration, function call/return/exception, and the single-step
// interrupt trap. It is a strict superset of ptc.Hooks, which only
// needs the subset the tail-call trampoline itself drives.
type Hooks interface {
	VariableDeclare(loc asterror.SourceLocation, name string)
	FunctionCall(loc asterror.SourceLocation, target string)
	FunctionReturn(loc asterror.SourceLocation, target string, result value.Value)
	FunctionExcept(loc asterror.SourceLocation, target string, err error)
	SingleStepTrap(loc asterror.SourceLocation) error
}

// ptcAdapter narrows a full Hooks down to the three-method ptc.Hooks
// shape the trampoline drives. FunctionReturn's result and
// FunctionExcept's error aren't available at the point the trampoline
// fires its return hook (it has already unwound past them), so the
// adapter reports a null result; a host that needs the settled value
// should read it from the Reference FinishCall produces instead of
// relying on this hook.
type ptcAdapter struct {
	inner Hooks
}

var _ ptc.Hooks = (*ptcAdapter)(nil)

func (a *ptcAdapter) SingleStepTrap() error {
	return a.inner.SingleStepTrap(asterror.SourceLocation{})
}

func (a *ptcAdapter) OnFunctionCall(loc asterror.SourceLocation, name string) {
	a.inner.FunctionCall(loc, name)
}

func (a *ptcAdapter) OnFunctionReturn(loc asterror.SourceLocation, name string) {
	a.inner.FunctionReturn(loc, name, value.Null())
}
