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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLookupDefaults(t *testing.T) {
	r := NewRegistry()

	for _, name := range []string{"PING", "GET", "SET", "DEL", "HGETALL", "CLUSTER SLOTS", "INFO", "AUTH", "SELECT", "ASKING", "SUBSCRIBE", "UNSUBSCRIBE"} {
		t.Run(name, func(t *testing.T) {
			_, ok := r.Lookup("2.8", name)
			assert.True(t, ok, "expected %s to be registered", name)
		})
	}

	_, ok := r.Lookup("2.8", "NOPE")
	assert.False(t, ok)
}

func TestRegistrySetBuildsKeyedCommand(t *testing.T) {
	r := NewRegistry()
	factory, ok := r.Lookup("2.8", "set")
	require.True(t, ok)

	cmd := factory([]byte("foo"), []byte("bar"))
	assert.Equal(t, [][]byte{[]byte("SET"), []byte("foo"), []byte("bar")}, cmd.WireForm())
	key, ok := cmd.FirstKey()
	require.True(t, ok)
	assert.Equal(t, []byte("foo"), key)
}

func TestRegistryVersionSpecificOverride(t *testing.T) {
	r := NewRegistry()
	r.Register("3.2", "GET", func(args ...[]byte) CommandDescription {
		return NewCommandDescription([]byte("GET")).WithKeys(args[0]).WithParser(ParserInteger)
	})

	f28, ok := r.Lookup("2.8", "GET")
	require.True(t, ok)
	assert.Equal(t, ParserNone, f28([]byte("k")).ParserID)

	f32, ok := r.Lookup("3.2", "GET")
	require.True(t, ok)
	assert.Equal(t, ParserInteger, f32([]byte("k")).ParserID)
}

func TestRegistryClusterSlotsFactory(t *testing.T) {
	r := NewRegistry()
	factory, ok := r.Lookup("2.8", "CLUSTER SLOTS")
	require.True(t, ok)
	cmd := factory()
	assert.Equal(t, [][]byte{[]byte("CLUSTER"), []byte("SLOTS")}, cmd.WireForm())
	assert.Equal(t, ParserClusterSlots, cmd.ParserID)
}
