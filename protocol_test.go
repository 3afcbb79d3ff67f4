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
	"bufio"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packetd/rediscore/internal/transport"
)

// scriptedServer starts a TCP listener that accepts a single connection and
// writes the given raw reply chunks on it in order (one per inbound command it
// reads a line for), ignoring the actual command bytes beyond framing. It
// mimics a real Redis node closely enough to exercise Protocol/Dispatcher
// without requiring an actual Redis server.
func scriptedServer(t *testing.T, replies [][]byte) (transport.Endpoint, func()) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		r := bufio.NewReader(conn)
		for _, reply := range replies {
			if _, err := readRESPCommand(r); err != nil {
				return
			}
			if _, err := conn.Write(reply); err != nil {
				return
			}
		}
	}()

	ep := transport.Endpoint{Network: "tcp", Address: ln.Addr().String()}
	return ep, func() { _ = ln.Close() }
}

// scriptedServerFunc behaves like scriptedServer but computes each reply
// lazily (useful when a reply must embed the server's own address, which
// isn't known until after net.Listen has picked a port).
func scriptedServerFunc(t *testing.T, reply func() string, count int) (transport.Endpoint, func()) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		r := bufio.NewReader(conn)
		for i := 0; i < count; i++ {
			if _, err := readRESPCommand(r); err != nil {
				return
			}
			if _, err := conn.Write([]byte(reply())); err != nil {
				return
			}
		}
	}()

	ep := transport.Endpoint{Network: "tcp", Address: ln.Addr().String()}
	return ep, func() { _ = ln.Close() }
}

// readRESPCommand consumes exactly one multi-bulk request from r, returning
// its tokens; used only to keep the scripted server's read/write pairing
// aligned with the client's request boundaries.
func readRESPCommand(r *bufio.Reader) ([]string, error) {
	header, err := r.ReadString('\n')
	if err != nil {
		return nil, err
	}
	n := 0
	_, err = parseIntPrefix(header, '*', &n)
	if err != nil {
		return nil, err
	}

	tokens := make([]string, 0, n)
	for i := 0; i < n; i++ {
		lenLine, err := r.ReadString('\n')
		if err != nil {
			return nil, err
		}
		l := 0
		if _, err := parseIntPrefix(lenLine, '$', &l); err != nil {
			return nil, err
		}
		buf := make([]byte, l+2)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		tokens = append(tokens, string(buf[:l]))
	}
	return tokens, nil
}

func parseIntPrefix(line string, prefix byte, out *int) (int, error) {
	line = line[:len(line)-2] // strip CRLF
	if len(line) == 0 || line[0] != prefix {
		return 0, errNotPrefixed
	}
	n := 0
	neg := false
	for _, c := range line[1:] {
		if c == '-' {
			neg = true
			continue
		}
		n = n*10 + int(c-'0')
	}
	if neg {
		n = -n
	}
	*out = n
	return n, nil
}

var errNotPrefixed = assertErr("malformed test fixture line")

type assertErr string

func (e assertErr) Error() string { return string(e) }

func TestProtocolSend(t *testing.T) {
	ep, cleanup := scriptedServer(t, [][]byte{[]byte("+PONG\r\n")})
	defer cleanup()

	conn := transport.NewConnection(ep, time.Second)
	p := NewProtocol(conn, time.Second)

	v, err := p.Send([][]byte{[]byte("PING")})
	require.NoError(t, err)
	assert.Equal(t, "PONG", v.Str)
}

func TestProtocolSendMany(t *testing.T) {
	ep, cleanup := scriptedServer(t, [][]byte{
		[]byte("+OK\r\n"),
		[]byte(":2\r\n"),
		[]byte("-WRONGTYPE Operation against a key holding the wrong kind of value\r\n"),
	})
	defer cleanup()

	conn := transport.NewConnection(ep, time.Second)
	p := NewProtocol(conn, time.Second)

	values, err := p.SendMany([][][]byte{
		{[]byte("SET"), []byte("a"), []byte("1")},
		{[]byte("INCR"), []byte("a")},
		{[]byte("LPUSH"), []byte("a"), []byte("x")},
	})
	require.NoError(t, err)
	require.Len(t, values, 3)
	assert.Equal(t, "OK", values[0].Str)
	assert.EqualValues(t, 2, values[1].Int)
	assert.True(t, values[2].IsError())
}
