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

// Package transport implements the outbound connection layer: dialing,
// keeping, and lazily reconnecting a single TCP (or unix socket) connection
// to one Redis node, and framing reads/writes around it.
package transport

import (
	"strings"

	"github.com/pkg/errors"
)

// Endpoint 描述一个 Redis 节点的拨号地址
type Endpoint struct {
	// Network 为 "tcp" 或 "unix"
	Network string
	// Address 对 tcp 是 "host:port" 对 unix 是 socket 文件路径
	Address string
}

// String 返回 Endpoint 的规范化字符串表示 格式与 CLUSTER SLOTS 返回的 host:port 一致
func (e Endpoint) String() string {
	if e.Network == "unix" {
		return "unix://" + e.Address
	}
	return e.Address
}

// ParseEndpoint 解析节点地址
//
// 支持三种输入形式：裸 "host:port"（默认 tcp）、"tcp://host:port"、"unix:///path"
func ParseEndpoint(s string) (Endpoint, error) {
	switch {
	case strings.HasPrefix(s, "unix://"):
		addr := strings.TrimPrefix(s, "unix://")
		if addr == "" {
			return Endpoint{}, errors.Errorf("transport: empty unix socket path in %q", s)
		}
		return Endpoint{Network: "unix", Address: addr}, nil
	case strings.HasPrefix(s, "tcp://"):
		addr := strings.TrimPrefix(s, "tcp://")
		if addr == "" {
			return Endpoint{}, errors.Errorf("transport: empty tcp address in %q", s)
		}
		return Endpoint{Network: "tcp", Address: addr}, nil
	default:
		if s == "" {
			return Endpoint{}, errors.New("transport: empty endpoint")
		}
		return Endpoint{Network: "tcp", Address: s}, nil
	}
}
