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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRawString(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "scenario 5 from the testable properties",
			in:   `set  foo  "hello \"world\""`,
			want: []string{"set", "foo", `hello "world"`},
		},
		{"simple", "PING", []string{"PING"}},
		{"collapsed whitespace", "a    b   c", []string{"a", "b", "c"}},
		{"empty quoted span", `a "" b`, []string{"a", "", "b"}},
		{"only whitespace", "   ", nil},
		{"empty input", "", nil},
		{"unbalanced trailing quote", `a "b`, []string{"a", "b"}},
		{"quoted preserves spaces", `"a  b"`, []string{"a  b"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, ParseRawString(c.in))
		})
	}
}

func TestParseRawStringReemissionIdempotence(t *testing.T) {
	cases := []string{
		`set  foo  "hello \"world\""`,
		"PING",
		`a "" b`,
		`quote"inside"token`,
		"no spaces here",
	}
	for _, in := range cases {
		t.Run(in, func(t *testing.T) {
			first := ParseRawString(in)

			quoted := make([]string, len(first))
			for i, tok := range first {
				quoted[i] = QuoteToken(tok)
			}
			reemitted := strings.Join(quoted, " ")

			second := ParseRawString(reemitted)
			assert.Equal(t, first, second)
		})
	}
}
