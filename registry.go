// Copyright 2025 The packetd Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rediscore

import "strings"

// CommandFactory builds a CommandDescription from caller-supplied arguments
type CommandFactory func(args ...[]byte) CommandDescription

// registryKey identifies one entry of the Command Registry: a (version, name) pair
type registryKey struct {
	version string
	name    string
}

// Registry is the `(version, command name) -> factory` table that replaces
// the hundreds of thin per-command typed methods the source composed via
// mixed-in command-group classes (see DESIGN.md, resolved Open Question)
type Registry struct {
	entries map[registryKey]CommandFactory
}

// NewRegistry creates a Registry pre-populated with the representative
// command set needed to exercise every Response Parser and every
// Dispatcher path: PING, GET, SET, DEL, HGETALL, CLUSTER SLOTS, INFO,
// AUTH, SELECT, ASKING, SUBSCRIBE, UNSUBSCRIBE
func NewRegistry() *Registry {
	r := &Registry{entries: make(map[registryKey]CommandFactory)}
	r.registerDefaults()
	return r
}

// Register adds (or overrides) one (version, name) -> factory entry
func (r *Registry) Register(version, name string, factory CommandFactory) {
	r.entries[registryKey{version: version, name: strings.ToUpper(name)}] = factory
}

// Lookup finds the factory registered for (version, name)
//
// Falls back to the "*" wildcard version when no version-specific entry exists,
// so a command registered once is available to every configured version
func (r *Registry) Lookup(version, name string) (CommandFactory, bool) {
	name = strings.ToUpper(name)
	if f, ok := r.entries[registryKey{version: version, name: name}]; ok {
		return f, true
	}
	f, ok := r.entries[registryKey{version: "*", name: name}]
	return f, ok
}

func (r *Registry) registerDefaults() {
	r.Register("*", "PING", func(args ...[]byte) CommandDescription {
		return NewCommandDescription(append([][]byte{[]byte("PING")}, args...)...)
	})

	r.Register("*", "GET", func(args ...[]byte) CommandDescription {
		cmd := NewCommandDescription([]byte("GET"))
		cmd.Params = toParams(args)
		if len(args) > 0 {
			cmd = cmd.WithKeys(args[0])
		}
		return cmd
	})

	r.Register("*", "SET", func(args ...[]byte) CommandDescription {
		cmd := NewCommandDescription([]byte("SET"))
		cmd.Params = toParams(args)
		if len(args) > 0 {
			cmd = cmd.WithKeys(args[0])
		}
		return cmd
	})

	r.Register("*", "DEL", func(args ...[]byte) CommandDescription {
		cmd := NewCommandDescription([]byte("DEL")).WithParser(ParserInteger)
		cmd.Params = toParams(args)
		if len(args) > 0 {
			cmd = cmd.WithKeys(args[0])
		}
		return cmd
	})

	r.Register("*", "HGETALL", func(args ...[]byte) CommandDescription {
		cmd := NewCommandDescription([]byte("HGETALL")).WithParser(ParserStringPairs)
		cmd.Params = toParams(args)
		if len(args) > 0 {
			cmd = cmd.WithKeys(args[0])
		}
		return cmd
	})

	r.Register("*", "CLUSTER SLOTS", func(args ...[]byte) CommandDescription {
		return NewCommandDescription([]byte("CLUSTER"), []byte("SLOTS")).WithParser(ParserClusterSlots)
	})

	r.Register("*", "INFO", func(args ...[]byte) CommandDescription {
		cmd := NewCommandDescription([]byte("INFO")).WithParser(ParserInfo)
		cmd.Params = toParams(args)
		return cmd
	})

	r.Register("*", "AUTH", func(args ...[]byte) CommandDescription {
		cmd := NewCommandDescription([]byte("AUTH"))
		cmd.Params = toParams(args)
		return cmd
	})

	r.Register("*", "SELECT", func(args ...[]byte) CommandDescription {
		cmd := NewCommandDescription([]byte("SELECT"))
		cmd.Params = toParams(args)
		return cmd
	})

	r.Register("*", "ASKING", func(args ...[]byte) CommandDescription {
		return NewCommandDescription([]byte("ASKING"))
	})

	r.Register("*", "SUBSCRIBE", func(args ...[]byte) CommandDescription {
		cmd := NewCommandDescription([]byte("SUBSCRIBE"))
		cmd.Params = toParams(args)
		return cmd
	})

	r.Register("*", "UNSUBSCRIBE", func(args ...[]byte) CommandDescription {
		cmd := NewCommandDescription([]byte("UNSUBSCRIBE"))
		cmd.Params = toParams(args)
		return cmd
	})
}

func toParams(args [][]byte) []any {
	out := make([]any, len(args))
	for i, a := range args {
		out[i] = a
	}
	return out
}
