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

// Command asteria-repl is the interoperability front-end spec.md §6
// names: a getopt-compatible CLI surface and an interactive REPL loop
// wired to the runtime.Global embedding API. It does not itself lex,
// parse, or compile scripts (the Frontend it is given does that); it
// exists to exercise the core (value/variable/reference/gc/context/ptc)
// the rest of this module implements, exactly the way the upstream
// reference REPL exercises the C++ core.
package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync/atomic"

	"github.com/mattn/go-isatty"

	"github.com/asteria-lang/asteria/internal/asterialog"
	"github.com/asteria-lang/asteria/reference"
	"github.com/asteria-lang/asteria/runtime"
	"github.com/asteria-lang/asteria/value"
)

const (
	exitSuccess          = 0
	exitSystemError      = 1
	exitInvalidArgument  = 2
	exitCompilerError    = 3
	exitRuntimeError     = 4
	exitNonIntegerReturn = 5
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr,
		isatty.IsTerminal(os.Stdin.Fd()), noFrontend{}))
}

func run(argv []string, stdin io.Reader, stdout, stderr io.Writer, stdinIsTerminal bool, fe Frontend) int {
	rewritten := append([]string(nil), argv...)
	if len(rewritten) > 0 {
		switch rewritten[0] {
		case "--help":
			rewritten[0] = "-h"
		case "--version":
			rewritten[0] = "-V"
		}
	}

	opts, err := parseArgs(rewritten)
	if err != nil {
		fmt.Fprintf(stderr, "asteria-repl: %s\n", err)
		fmt.Fprintln(stderr, "Try `asteria-repl -h` for help.")
		return exitInvalidArgument
	}
	if opts.help {
		printHelp(stdout)
		return exitSuccess
	}
	if opts.version {
		printVersion(stdout)
		return exitSuccess
	}

	asterialog.SetDebug(opts.verbose)

	interactive := opts.path == "" && stdinIsTerminal
	if opts.interactive != nil {
		interactive = *opts.interactive
	}

	var interrupted int32
	hooks := newREPLHooks(stderr, opts.verbose, &interrupted)

	g, err := runtime.New(runtime.DefaultConfig(), hooks)
	if err != nil {
		fmt.Fprintf(stderr, "! %s\n", err)
		return exitSystemError
	}
	defer g.Close()

	if interactive {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt)
		defer signal.Stop(sigCh)
		go func() {
			for range sigCh {
				atomic.StoreInt32(&interrupted, 1)
			}
		}()
		return runREPL(g, fe, opts.scriptArgs, opts.optimize, stdout, stderr)
	}

	return runBatch(g, fe, opts, stdin, stderr)
}

// runBatch is the non-interactive path: compile the named file (or
// stdin, for "-" or an unset path) once, execute it, and translate the
// result into spec.md §6's exit-code contract.
func runBatch(g *runtime.Global, fe Frontend, opts options, stdin io.Reader, stderr io.Writer) int {
	path := opts.path
	if path == "" {
		path = "-"
	}

	var source []byte
	var err error
	if path == "-" {
		source, err = io.ReadAll(stdin)
	} else {
		source, err = os.ReadFile(path)
	}
	if err != nil {
		fmt.Fprintf(stderr, "! %s\n", err)
		return exitSystemError
	}

	queue, err := fe.Compile(path, source, opts.optimize)
	if err != nil {
		fmt.Fprintf(stderr, "! %s\n", err)
		return exitCompilerError
	}

	d := g.NewDriver()
	ref, err := executeQueue(d, queue, opts.scriptArgs)
	if err != nil {
		fmt.Fprintf(stderr, "! %s\n", err)
		return exitRuntimeError
	}

	if ref.Kind() == reference.RootVoid {
		return exitSuccess
	}
	v, err := ref.DereferenceReadonly()
	if err != nil {
		fmt.Fprintf(stderr, "! %s\n", err)
		return exitRuntimeError
	}
	if v.Kind() != value.KindInteger {
		return exitNonIntegerReturn
	}
	return int(v.Int() & 0xFF)
}

func printHelp(out io.Writer) {
	fmt.Fprint(out, `Usage: asteria-repl [OPTIONS] [[--] FILE [ARGUMENTS]...]

  -h      show help message then exit
  -I      suppress interactive mode [default = auto]
  -i      force interactive mode [default = auto]
  -O      equivalent to -O1
  -O[nn]  set optimization level to nn [default = 2]
  -V      show version information then exit
  -v      print execution details to standard error

Source code is read from standard input if no FILE is specified or "-" is
given as FILE, and from FILE otherwise. ARGUMENTS following FILE are passed
to the script as strings verbatim, retrievable via __varg.

If neither -I nor -i is set, interactive mode is enabled when no FILE is
specified and standard input is connected to a terminal, and is disabled
otherwise. Specifying "-" explicitly disables interactive mode.
`)
}

func printVersion(out io.Writer) {
	fmt.Fprintln(out, "asteria-repl (asteria-lang/asteria)")
}
