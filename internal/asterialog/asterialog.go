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

// Package asterialog is the structured-logging shim every core component
// uses, modeled on the "log.Warn(msg, key, val)" call shape used
// throughout the teacher codebase's node configuration and state layers.
package asterialog

import (
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"
)

var (
	mu   sync.Mutex
	base = log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false})
)

// SetOutput redirects all subsequent log output, used by tests and by
// cmd/asteria-repl's -v flag to route debug logs to stderr explicitly.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	base.SetOutput(w)
}

// SetDebug toggles debug-level verbosity, used by the -v REPL flag.
func SetDebug(on bool) {
	mu.Lock()
	defer mu.Unlock()
	if on {
		base.SetLevel(log.DebugLevel)
	} else {
		base.SetLevel(log.InfoLevel)
	}
}

// Named returns a sub-logger tagged with a component field, e.g.
// asterialog.Named("collector") or asterialog.Named("loader").
func Named(component string) *log.Logger {
	mu.Lock()
	defer mu.Unlock()
	return base.With("component", component)
}

// Debug logs at debug level on the root logger, used for one-off calls
// that don't warrant a named sub-logger.
func Debug(msg string, kv ...any) {
	base.Debug(msg, kv...)
}

// Warn logs at warn level on the root logger.
func Warn(msg string, kv ...any) {
	base.Warn(msg, kv...)
}
