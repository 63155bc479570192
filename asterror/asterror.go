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

// Package asterror defines the runtime error taxonomy shared by every
// core component (value, reference, gc, context, ptc). Every failure that
// surfaces across a package boundary is a *RuntimeError carrying one of the
// Kind values below, never a bare string or ad-hoc type.
package asterror

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a runtime failure per spec §7's error taxonomy table.
// UserThrow is intentionally excluded: a script-level `throw` propagates the
// thrown Value unchanged and is not a RuntimeError at all.
type Kind int

const (
	// KindUseUninit is a read of an uninitialized variable or reference.
	KindUseUninit Kind = iota
	// KindUseVoid is a read of a reference whose root is void.
	KindUseVoid
	// KindMutateConst is a write through a constant root.
	KindMutateConst
	// KindMutateTemporary is a write through a temporary root.
	KindMutateTemporary
	// KindImmutableWrite is a write to a Variable with its immutable flag set.
	KindImmutableWrite
	// KindTypeMismatch is applying the wrong modifier kind to a container.
	KindTypeMismatch
	// KindUseTailCall is dereferencing a reference without first finishing it.
	KindUseTailCall
	// KindArgArity is a native binding invoked with the wrong argument count.
	KindArgArity
	// KindArgType is a native binding invoked with an argument of the wrong type.
	KindArgType
	// KindRecursiveImport is a loader-lock collision (re-entrant source load).
	KindRecursiveImport
	// KindSystemError is a host I/O or syscall failure.
	KindSystemError
	// KindResourceFault covers VM-level resource lifecycle violations
	// (double-drop, use-after-move) surfaced from an embedded native object.
	KindResourceFault
	// KindReservedName is binding a parameter or named reference matching
	// the reserved `__*` pattern (outside the five predefined names).
	KindReservedName
	// KindDuplicateParam is an analytic context detecting the same
	// parameter name declared twice in one parameter list.
	KindDuplicateParam
)

var kindNames = [...]string{
	KindUseUninit:       "use-uninit",
	KindUseVoid:         "use-void",
	KindMutateConst:     "mutate-const",
	KindMutateTemporary: "mutate-temporary",
	KindImmutableWrite:  "immutable-write",
	KindTypeMismatch:    "type-mismatch",
	KindUseTailCall:     "use-tail-call",
	KindArgArity:        "arg-arity",
	KindArgType:         "arg-type",
	KindRecursiveImport: "recursive-import",
	KindSystemError:     "system-error",
	KindResourceFault:   "resource-fault",
	KindReservedName:    "reserved-name",
	KindDuplicateParam:  "duplicate-param",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("error-kind(%d)", int(k))
}

// SourceLocation identifies a point in script source, supplied by the
// compiler front-end (out of scope for this module; carried opaquely here).
type SourceLocation struct {
	File string
	Line int
}

func (s SourceLocation) String() string {
	if s.File == "" {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d", s.File, s.Line)
}

// FrameKind distinguishes the two backtrace frame shapes the original
// unwinder produces: a plain marker frame (used for the synthetic
// "[proper tail call]" entries) and a function frame naming the enclosing
// callable. See original_source/asteria/src/runtime/reference.cpp's
// do_finish_call_slow, which pushes one of each kind per unwound PTC frame.
type FrameKind int

const (
	// FramePlain is a marker frame with only a location and a label.
	FramePlain FrameKind = iota
	// FrameFunc names the enclosing function at a call site.
	FrameFunc
)

// Frame is a single backtrace entry.
type Frame struct {
	Kind FrameKind
	Loc  SourceLocation
	// Label is the marker text for FramePlain (e.g. "[proper tail call]"),
	// or the function name/signature for FrameFunc.
	Label string
}

func (f Frame) String() string {
	if f.Kind == FramePlain {
		return fmt.Sprintf("  at %s: %s", f.Loc, f.Label)
	}
	return fmt.Sprintf("  at %s: in %s", f.Loc, f.Label)
}

// RuntimeError is the concrete error type for every Kind above. It
// accumulates a Backtrace as it unwinds the context stack and the tail-call
// trampoline, mirroring spec §7's propagation policy.
type RuntimeError struct {
	Kind      Kind
	Message   string
	Backtrace []Frame
	cause     error
}

// New creates a RuntimeError with no backtrace frames yet.
func New(kind Kind, format string, args ...any) *RuntimeError {
	return &RuntimeError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a RuntimeError of the given kind that chains cause via errors.Unwrap.
func Wrap(kind Kind, cause error, format string, args ...any) *RuntimeError {
	return &RuntimeError{Kind: kind, Message: fmt.Sprintf(format, args...), cause: cause}
}

func (e *RuntimeError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Kind, e.Message)
	for _, f := range e.Backtrace {
		b.WriteByte('\n')
		b.WriteString(f.String())
	}
	return b.String()
}

func (e *RuntimeError) Unwrap() error { return e.cause }

// PushFramePlain appends a marker frame, used by the tail-call engine to
// record "[proper tail call]" entries without hiding the collapsed chain.
func (e *RuntimeError) PushFramePlain(loc SourceLocation, label string) {
	e.Backtrace = append(e.Backtrace, Frame{Kind: FramePlain, Loc: loc, Label: label})
}

// PushFrameFunc appends a function frame, used by the tail-call engine's
// error unwind to name the calling function.
func (e *RuntimeError) PushFrameFunc(loc SourceLocation, name string) {
	e.Backtrace = append(e.Backtrace, Frame{Kind: FrameFunc, Loc: loc, Label: name})
}

// Is supports errors.Is comparisons against the bare Kind sentinels below.
func (e *RuntimeError) Is(target error) bool {
	var other *RuntimeError
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

// Sentinel, kind-only errors for use with errors.Is at call sites that only
// care about the failure category, not the message or backtrace.
var (
	ErrUseUninit       = &RuntimeError{Kind: KindUseUninit}
	ErrUseVoid         = &RuntimeError{Kind: KindUseVoid}
	ErrMutateConst     = &RuntimeError{Kind: KindMutateConst}
	ErrMutateTemporary = &RuntimeError{Kind: KindMutateTemporary}
	ErrImmutableWrite  = &RuntimeError{Kind: KindImmutableWrite}
	ErrTypeMismatch    = &RuntimeError{Kind: KindTypeMismatch}
	ErrUseTailCall     = &RuntimeError{Kind: KindUseTailCall}
	ErrArgArity        = &RuntimeError{Kind: KindArgArity}
	ErrArgType         = &RuntimeError{Kind: KindArgType}
	ErrRecursiveImport = &RuntimeError{Kind: KindRecursiveImport}
	ErrSystemError     = &RuntimeError{Kind: KindSystemError}
	ErrResourceFault   = &RuntimeError{Kind: KindResourceFault}
	ErrReservedName    = &RuntimeError{Kind: KindReservedName}
	ErrDuplicateParam  = &RuntimeError{Kind: KindDuplicateParam}
)
