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

package main

import (
	"errors"
	"testing"
)

func TestParseArgsDefaults(t *testing.T) {
	o, err := parseArgs(nil)
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if o.optimize != 2 {
		t.Errorf("optimize = %d, want 2", o.optimize)
	}
	if o.interactive != nil {
		t.Errorf("interactive = %v, want nil", *o.interactive)
	}
	if o.path != "" {
		t.Errorf("path = %q, want empty", o.path)
	}
}

func TestParseArgsOptimizeLevels(t *testing.T) {
	cases := []struct {
		args []string
		want int
	}{
		{[]string{}, 2},
		{[]string{"-O"}, 1},
		{[]string{"-O0"}, 0},
		{[]string{"-O37"}, 37},
	}
	for _, c := range cases {
		o, err := parseArgs(c.args)
		if err != nil {
			t.Fatalf("parseArgs(%v): %v", c.args, err)
		}
		if o.optimize != c.want {
			t.Errorf("parseArgs(%v).optimize = %d, want %d", c.args, o.optimize, c.want)
		}
	}
}

func TestParseArgsRejectsOutOfRangeOptimizeLevel(t *testing.T) {
	_, err := parseArgs([]string{"-O100"})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestParseArgsRejectsUnknownFlag(t *testing.T) {
	_, err := parseArgs([]string{"-z"})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestParseArgsCombinedShortFlags(t *testing.T) {
	o, err := parseArgs([]string{"-vi"})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if !o.verbose {
		t.Error("verbose = false, want true")
	}
	if o.interactive == nil || !*o.interactive {
		t.Error("interactive = false or nil, want true")
	}
}

func TestParseArgsInteractiveFlagsOverrideEachOther(t *testing.T) {
	o, err := parseArgs([]string{"-i", "-I"})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if o.interactive == nil || *o.interactive {
		t.Error("interactive = true or nil, want false")
	}
}

func TestParseArgsPositionalPathAndScriptArgs(t *testing.T) {
	o, err := parseArgs([]string{"-v", "script.asteria", "one", "two"})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if o.path != "script.asteria" {
		t.Errorf("path = %q, want script.asteria", o.path)
	}
	if len(o.scriptArgs) != 2 || o.scriptArgs[0] != "one" || o.scriptArgs[1] != "two" {
		t.Errorf("scriptArgs = %v, want [one two]", o.scriptArgs)
	}
}

func TestParseArgsStopsOptionScanningAtBareDash(t *testing.T) {
	o, err := parseArgs([]string{"-v", "-", "arg"})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if o.path != "-" {
		t.Errorf("path = %q, want -", o.path)
	}
	if len(o.scriptArgs) != 1 || o.scriptArgs[0] != "arg" {
		t.Errorf("scriptArgs = %v, want [arg]", o.scriptArgs)
	}
}

func TestParseArgsDoubleDashEndsOptions(t *testing.T) {
	o, err := parseArgs([]string{"--", "-v"})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if o.verbose {
		t.Error("verbose = true, want false (should be treated as positional)")
	}
	if o.path != "-v" {
		t.Errorf("path = %q, want -v", o.path)
	}
}
