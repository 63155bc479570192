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
	"fmt"
	"io"
	"strings"

	"github.com/peterh/liner"

	"github.com/asteria-lang/asteria/runtime"
)

// runREPL drives the interactive read-eval-print loop. Snippet numbering,
// trailing-backslash line continuation, and the `:`-prefixed command
// dispatch follow original_source/asteria/src/repl.cpp's do_REP_single
// closely enough that a reference-implementation user would feel at
// home, though this module has no compiler to feed the result to.
//
// TODO: the reference REPL also supports heredoc-style `<<TERM` snippets
// spanning multiple lines without per-line backslashes; only trailing-
// backslash continuation is implemented here.
func runREPL(g *runtime.Global, fe Frontend, scriptArgs []string, optimize int, out, errOut io.Writer) int {
	lr := liner.NewLiner()
	defer lr.Close()
	lr.SetCtrlCAborts(true)

	fmt.Fprintln(errOut, "asteria [interactive]")
	fmt.Fprintln(errOut)
	fmt.Fprintln(errOut, "  All REPL commands start with a `:`. Type `:help` for instructions.")
	fmt.Fprintln(errOut, "  Multiple lines may be joined together using trailing backslashes.")

	for index := 1; ; index++ {
		snippet, more := readSnippet(lr, index)
		if !more {
			fmt.Fprintln(errOut, "* have a nice day :)")
			return exitSuccess
		}
		if snippet == "" {
			continue
		}
		if strings.HasPrefix(snippet, ":") {
			handleREPLCommand(strings.TrimPrefix(snippet, ":"), errOut)
			continue
		}
		runSnippet(g, fe, snippet, index, scriptArgs, optimize, out, errOut)
	}
}

// readSnippet prompts for and assembles one snippet, joining consecutive
// lines that end in a backslash (the backslash itself is dropped). The
// second return is false, the REPL's signal to exit, when the user hit EOF
// with nothing pending or when the prompt fails with any error other than
// an abort.
func readSnippet(lr *liner.State, index int) (string, bool) {
	var b strings.Builder
	lineNo := 1
	indent := fmt.Sprintf("#%d:", index)

	for {
		var prompt string
		if b.Len() == 0 {
			prompt = fmt.Sprintf("%s%d> ", indent, lineNo)
		} else {
			prompt = fmt.Sprintf("%*d> ", len(indent), lineNo)
		}

		text, err := lr.Prompt(prompt)
		switch {
		case err == liner.ErrPromptAborted:
			return "", true
		case err == io.EOF:
			return b.String(), b.Len() > 0
		case err != nil:
			return "", false
		}
		lr.AppendHistory(text)

		if strings.HasSuffix(text, `\`) {
			b.WriteString(strings.TrimSuffix(text, `\`))
			b.WriteByte('\n')
			lineNo++
			continue
		}
		b.WriteString(text)
		return b.String(), true
	}
}

func handleREPLCommand(cmd string, errOut io.Writer) {
	switch cmd {
	case "help":
		fmt.Fprintln(errOut, "* commands:")
		fmt.Fprintln(errOut, "  :help    show this message")
	default:
		fmt.Fprintf(errOut, "! unknown command: %s\n", cmd)
	}
}

func runSnippet(g *runtime.Global, fe Frontend, snippet string, index int, scriptArgs []string, optimize int, out, errOut io.Writer) {
	name := fmt.Sprintf("snippet #%d", index)
	queue, err := fe.Compile(name, []byte(snippet), optimize)
	if err != nil {
		fmt.Fprintf(errOut, "! %s\n", err)
		return
	}

	d := g.NewDriver()
	ref, err := executeQueue(d, queue, scriptArgs)
	if err != nil {
		fmt.Fprintf(errOut, "! %s\n", err)
		return
	}
	fmt.Fprintf(errOut, "* result #%d: %s\n", index, stringifyReference(&ref))
}
