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

	"github.com/packetd/rediscore/internal/resp"
)

func TestApplyParserIdentity(t *testing.T) {
	v := resp.SimpleString("OK")
	got, err := ApplyParser(ParserNone, v)
	require.NoError(t, err)
	assert.Equal(t, v, got)
}

func TestApplyParserInteger(t *testing.T) {
	got, err := ApplyParser(ParserInteger, resp.Integer(42))
	require.NoError(t, err)
	assert.EqualValues(t, 42, got)

	_, err = ApplyParser(ParserInteger, resp.SimpleString("OK"))
	assert.Error(t, err)
}

func TestApplyParserBool(t *testing.T) {
	got, err := ApplyParser(ParserBool, resp.Integer(1))
	require.NoError(t, err)
	assert.Equal(t, true, got)

	got, err = ApplyParser(ParserBool, resp.Integer(0))
	require.NoError(t, err)
	assert.Equal(t, false, got)
}

func TestApplyParserStringPairs(t *testing.T) {
	v := resp.Array(
		resp.BulkString([]byte("field1")), resp.BulkString([]byte("value1")),
		resp.BulkString([]byte("field2")), resp.BulkString([]byte("value2")),
	)
	got, err := ApplyParser(ParserStringPairs, v)
	require.NoError(t, err)
	assert.Equal(t, [][2]string{{"field1", "value1"}, {"field2", "value2"}}, got)
}

func TestApplyParserStringPairsOddLength(t *testing.T) {
	v := resp.Array(resp.BulkString([]byte("field1")))
	_, err := ApplyParser(ParserStringPairs, v)
	assert.Error(t, err)
}

func TestApplyParserClusterSlots(t *testing.T) {
	v := resp.Array(
		resp.Array(
			resp.Integer(0), resp.Integer(5460),
			resp.Array(resp.BulkString([]byte("127.0.0.1")), resp.Integer(7000)),
		),
		resp.Array(
			resp.Integer(5461), resp.Integer(10922),
			resp.Array(resp.BulkString([]byte("127.0.0.1")), resp.Integer(7001)),
		),
	)
	got, err := ApplyParser(ParserClusterSlots, v)
	require.NoError(t, err)
	want := []SlotRange{
		{Start: 0, End: 5460, Endpoint: "127.0.0.1:7000"},
		{Start: 5461, End: 10922, Endpoint: "127.0.0.1:7001"},
	}
	assert.Equal(t, want, got)
}

func TestApplyParserInfo(t *testing.T) {
	raw := "# Server\r\nredis_version:7.0.0\r\nos:Linux\r\n# Clients\r\nconnected_clients:1\r\n"
	got, err := ApplyParser(ParserInfo, resp.BulkString([]byte(raw)))
	require.NoError(t, err)

	sections, ok := got.(map[string]InfoSection)
	require.True(t, ok)
	assert.Equal(t, "7.0.0", sections["Server"]["redis_version"])
	assert.Equal(t, "Linux", sections["Server"]["os"])
	assert.Equal(t, "1", sections["Clients"]["connected_clients"])
}

func TestApplyParserUnknown(t *testing.T) {
	_, err := ApplyParser(ParserID(999), resp.SimpleString("x"))
	assert.Error(t, err)
}
