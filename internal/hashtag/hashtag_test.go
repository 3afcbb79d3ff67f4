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

package hashtag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTag(t *testing.T) {
	cases := []struct {
		name string
		key  string
		want string
	}{
		{"no braces", "user1000", "user1000"},
		{"simple tag", "{user1000}.following", "user1000"},
		{"empty tag falls back", "{}.following", "{}.following"},
		{"unmatched open brace", "{user1000.following", "{user1000.following"},
		{"first tag wins", "foo{bar}{baz}", "bar"},
		{"nested braces use first close", "{a{b}c}", "a{b"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, string(Tag([]byte(c.key))))
		})
	}
}

func TestSlot(t *testing.T) {
	cases := []struct {
		name string
		key  string
	}{
		{"plain", "user1000"},
		{"tagged following", "{user1000}.following"},
		{"tagged followers", "{user1000}.followers"},
	}
	want := Slot([]byte("user1000"))
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, want, Slot([]byte(c.key)))
		})
	}
	assert.Equal(t, 5474, want)
}

func TestSlotRange(t *testing.T) {
	for _, k := range []string{"a", "b", "foo", "{tag}bar", ""} {
		s := Slot([]byte(k))
		assert.GreaterOrEqual(t, s, 0)
		assert.Less(t, s, SlotNumber)
	}
}
