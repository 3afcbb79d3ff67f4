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
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientHandshakeAuthAndSelect(t *testing.T) {
	ep, cleanup := scriptedServer(t, [][]byte{
		[]byte("+OK\r\n"),   // AUTH
		[]byte("+OK\r\n"),   // SELECT
		[]byte("+PONG\r\n"), // PING
	})
	defer cleanup()

	c := New(Config{
		Server:   ep.Address,
		Timeout:  time.Second,
		Password: "hunter2",
		Database: 3,
	})
	defer c.Close()

	v, err := c.ExecuteRaw([]byte("PING"))
	require.NoError(t, err)
	assert.Equal(t, sessionReady, c.state)
	_ = v
}

func TestClientExecuteRawStringUsesRegistry(t *testing.T) {
	ep, cleanup := scriptedServer(t, [][]byte{[]byte("+OK\r\n")})
	defer cleanup()

	c := New(Config{Server: ep.Address, Timeout: time.Second})
	defer c.Close()

	v, err := c.ExecuteRawString(`set foo "hello world"`)
	require.NoError(t, err)
	assert.Equal(t, "OK", v.(interface{ String() string }).String())
}

func TestClientPipelineWithBuilder(t *testing.T) {
	ep, cleanup := scriptedServer(t, [][]byte{
		[]byte("+OK\r\n"),
		[]byte(":2\r\n"),
		[]byte("-WRONGTYPE Operation against a key holding the wrong kind of value\r\n"),
	})
	defer cleanup()

	c := New(Config{Server: ep.Address, Timeout: time.Second})
	defer c.Close()

	_, results, err := c.Pipeline(func(p *Pipeline) {
		p.Append(NewCommandDescription([]byte("SET"), []byte("a"), []byte("1")))
		p.Append(NewCommandDescription([]byte("INCR"), []byte("a")).WithParser(ParserInteger))
		p.Append(NewCommandDescription([]byte("LPUSH"), []byte("a"), []byte("x")))
	})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.EqualValues(t, 2, results[1])

	replyErr, ok := results[2].(*ReplyError)
	require.True(t, ok)
	assert.Equal(t, KindWrongType, replyErr.Kind)
}

func TestClientPipelineEmptyBuilderReturnsEmptyPipeline(t *testing.T) {
	c := New(Config{Server: "127.0.0.1:1", Timeout: time.Second})
	defer c.Close()

	p, results, err := c.Pipeline()
	require.NoError(t, err)
	assert.Nil(t, results)
	assert.Equal(t, 0, p.Len())
}

func TestClientVersionReporting(t *testing.T) {
	c := New(Config{Server: "127.0.0.1:1", Version: "3.2"})
	defer c.Close()
	assert.Equal(t, "3.2", c.Version())
}
