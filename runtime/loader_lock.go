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
	"context"
	"fmt"
	"os"
	"syscall"

	"golang.org/x/sync/singleflight"

	"github.com/asteria-lang/asteria/asterror"
)

// LoaderLock guards against loading the same script file twice at once;
// every Global shares the one process-wide instance runtime.New hands out. Two distinct failure modes are both named
// "recursive import" in the original, but need different handling here:
// a synchronous self-import (the very call chain loading path tries to
// load path again, directly or through a chain of further imports) is
// rejected outright; an unrelated, truly concurrent import of the same
// file from another goroutine instead shares the first caller's result.
type LoaderLock struct {
	group singleflight.Group
}

// NewLoaderLock returns an empty LoaderLock.
func NewLoaderLock() *LoaderLock {
	return &LoaderLock{}
}

type chainKey struct{}

// fileKey identifies path by device and inode number, exactly the
// "dev:<device>/ino:<inode>" identity the original loader lock keys its
// open-stream table on, so two different paths naming the same inode
// (e.g. via a symlink) are recognized as one file.
func fileKey(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", asterror.Wrap(asterror.KindSystemError, err,
			"could not stat script file '%s'", path)
	}
	sys, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return "", asterror.New(asterror.KindSystemError,
			"could not determine device/inode identity of '%s'", path)
	}
	return fmt.Sprintf("dev:%d/ino:%d", sys.Dev, sys.Ino), nil
}

// Load runs compile exactly once per concurrently-overlapping load of
// path. ctx carries the chain of files already being loaded by this
// call's own ancestry (an import statement's compile callback must pass
// the context Load hands it to any further Load call it makes); when
// path already appears in that chain, Load fails fast with
// KindRecursiveImport instead of deadlocking inside singleflight, which
// cannot detect a single call chain re-entering its own in-flight key.
// A second, unrelated goroutine loading the same path concurrently is
// not on this ancestry chain and is instead deduplicated by
// singleflight.Group, sharing the first caller's result.
func (l *LoaderLock) Load(ctx context.Context, path string, compile func(context.Context) (any, error)) (any, error) {
	key, err := fileKey(path)
	if err != nil {
		return nil, err
	}

	chain, _ := ctx.Value(chainKey{}).(map[string]struct{})
	if _, seen := chain[key]; seen {
		return nil, asterror.New(asterror.KindRecursiveImport,
			"recursive import denied (loading '%s', file id %s)", path, key)
	}

	next := make(map[string]struct{}, len(chain)+1)
	for k := range chain {
		next[k] = struct{}{}
	}
	next[key] = struct{}{}
	childCtx := context.WithValue(ctx, chainKey{}, next)

	v, err, _ := l.group.Do(key, func() (any, error) {
		return compile(childCtx)
	})
	return v, err
}
