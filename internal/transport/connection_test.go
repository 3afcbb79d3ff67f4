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

package transport

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoListener starts a TCP listener that accepts connections until the
// returned cleanup closes it, echoing back whatever each connection receives.
func echoListener(t *testing.T) (Endpoint, func()) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				buf := make([]byte, 4096)
				for {
					n, err := c.Read(buf)
					if n > 0 {
						_, _ = c.Write(buf[:n])
					}
					if err != nil {
						return
					}
				}
			}(conn)
		}
	}()

	return Endpoint{Network: "tcp", Address: ln.Addr().String()}, func() { _ = ln.Close() }
}

func TestConnectionLazyDialAndEcho(t *testing.T) {
	ep, cleanup := echoListener(t)
	defer cleanup()

	c := NewConnection(ep, time.Second)
	assert.Equal(t, StateFresh, c.State())

	require.NoError(t, c.WriteAll([]byte("PING\r\n")))
	assert.Equal(t, StateOpen, c.State())

	b, err := c.ReadSome(time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "PING\r\n", string(b))
}

func TestConnectionReconnectsAfterClose(t *testing.T) {
	ep, cleanup := echoListener(t)
	defer cleanup()

	c := NewConnection(ep, time.Second)
	require.NoError(t, c.WriteAll([]byte("a")))
	_, err := c.ReadSome(time.Time{})
	require.NoError(t, err)

	c.Reconnect()
	assert.Equal(t, StateBroken, c.State())

	require.NoError(t, c.WriteAll([]byte("b")))
	assert.Equal(t, StateOpen, c.State())
}

func TestConnectionDialFailureMarksBroken(t *testing.T) {
	c := NewConnection(Endpoint{Network: "tcp", Address: "127.0.0.1:1"}, 50*time.Millisecond)
	err := c.WriteAll([]byte("x"))
	assert.Error(t, err)
	assert.Equal(t, StateBroken, c.State())
}
