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
	"bufio"
	"fmt"
	"io"
	"reflect"

	"github.com/naoina/toml"
)

// tomlSettings keeps TOML keys identical to the Go struct field names,
// the same convention cmd/gprobe's own config loader uses.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string { return key },
	FieldToKey:    func(rt reflect.Type, field string) string { return field },
}

// Config tunes the embedding host's interpreter instance: generation
// thresholds for the three-tier collector, the recycled-carrier pool's
// LRU capacity, and a polling interval for the single-step interrupt hook.
type Config struct {
	// GenerationThresholds holds the promotion/collection threshold for
	// each of gc.GenNewest, gc.GenMiddle, gc.GenOldest in that order.
	GenerationThresholds [3]int64
	// PoolCapacity bounds the number of reaped Variable carriers the
	// collector's free list retains.
	PoolCapacity int
	// InterruptPollNodes is a single-step hook polling interval counted in
	// AIR nodes. Nothing in this module reads it: the tail-call trampoline
	// polls the hook on every hop regardless of this value.
	InterruptPollNodes int
}

// DefaultConfig returns the values a freshly embedded interpreter uses
// absent any host-supplied configuration.
func DefaultConfig() Config {
	return Config{
		GenerationThresholds: [3]int64{100, 50, 25},
		PoolCapacity:         256,
		InterruptPollNodes:   1,
	}
}

// LoadConfig decodes TOML configuration from r into a copy of
// DefaultConfig, so a host's file only needs to specify the fields it
// wants to override.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	err := tomlSettings.NewDecoder(bufio.NewReader(r)).Decode(&cfg)
	if _, ok := err.(*toml.LineError); ok {
		return cfg, fmt.Errorf("asteria config: %w", err)
	}
	return cfg, err
}
