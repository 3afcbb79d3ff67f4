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
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/packetd/rediscore/common"
	"github.com/packetd/rediscore/internal/fasttime"
)

// State 描述 Connection 的生命周期阶段
type State int

const (
	// StateFresh 尚未建立底层连接
	StateFresh State = iota
	// StateOpen 底层连接已建立且可用
	StateOpen
	// StateBroken 底层连接曾经建立但已经失效 需要在下次使用前重连
	StateBroken
)

func (s State) String() string {
	switch s {
	case StateFresh:
		return "fresh"
	case StateOpen:
		return "open"
	case StateBroken:
		return "broken"
	default:
		return "unknown"
	}
}

// Connection 管理到单个 Redis 节点的一条 TCP/unix 连接
//
// Connection 不做连接池化：每个 Connection 对应一个 Endpoint 一条底层 socket
// 状态机为 Fresh -> Open -> Broken -> Open（重连）-> ...
// 重连是惰性的：只有在下一次 WriteAll/ReadSome 被调用时才会发生 不在后台自动重连
type Connection struct {
	endpoint Endpoint
	timeout  time.Duration

	mu       sync.Mutex
	state    State
	conn     net.Conn
	activeAt int64
}

// NewConnection 创建一个处于 StateFresh 的 Connection 不会立即拨号
func NewConnection(ep Endpoint, timeout time.Duration) *Connection {
	if timeout <= 0 {
		timeout = time.Duration(common.DefaultTimeoutSeconds) * time.Second
	}
	return &Connection{
		endpoint: ep,
		timeout:  timeout,
		state:    StateFresh,
	}
}

// Endpoint 返回此连接对应的节点地址
func (c *Connection) Endpoint() Endpoint {
	return c.endpoint
}

// State 返回当前状态
func (c *Connection) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ActiveAt 返回最后一次成功读写的 unix 时间戳
func (c *Connection) ActiveAt() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeAt
}

// ensureOpen 在 Fresh 或 Broken 状态下建立（或重新建立）底层连接
func (c *Connection) ensureOpen() error {
	if c.state == StateOpen {
		return nil
	}

	network := c.endpoint.Network
	if network == "" {
		network = "tcp"
	}
	conn, err := net.DialTimeout(network, c.endpoint.Address, c.timeout)
	if err != nil {
		c.state = StateBroken
		return errors.Wrapf(err, "transport: dial %s", c.endpoint)
	}

	c.conn = conn
	c.state = StateOpen
	c.activeAt = fasttime.UnixTimestamp()
	return nil
}

// WriteAll 向连接写入 p 的全部字节 若连接处于 Broken/Fresh 状态会先尝试重连
func (c *Connection) WriteAll(p []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureOpen(); err != nil {
		return err
	}

	if err := c.conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		c.state = StateBroken
		return errors.Wrap(err, "transport: set write deadline")
	}

	for written := 0; written < len(p); {
		n, err := c.conn.Write(p[written:])
		if err != nil {
			c.state = StateBroken
			return errors.Wrap(err, "transport: write")
		}
		written += n
	}
	c.activeAt = fasttime.UnixTimestamp()
	return nil
}

// ReadSome 从连接读取至多 common.ReadWriteBlockSize 字节 deadline 为零值时沿用配置超时
//
// 每次调用都分配一块新的缓冲区 返回的切片不会被后续的 ReadSome 覆盖
func (c *Connection) ReadSome(deadline time.Time) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureOpen(); err != nil {
		return nil, err
	}

	if deadline.IsZero() {
		deadline = time.Now().Add(c.timeout)
	}
	if err := c.conn.SetReadDeadline(deadline); err != nil {
		c.state = StateBroken
		return nil, errors.Wrap(err, "transport: set read deadline")
	}

	buf := make([]byte, common.ReadWriteBlockSize)
	n, err := c.conn.Read(buf)
	if err != nil {
		c.state = StateBroken
		return nil, errors.Wrap(err, "transport: read")
	}
	c.activeAt = fasttime.UnixTimestamp()
	return buf[:n], nil
}

// Close 关闭底层连接并将状态置为 Broken 以便下次使用时惰性重连
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		c.state = StateBroken
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	c.state = StateBroken
	return err
}

// Reconnect 强制将当前连接标记为 Broken 下一次操作会重新拨号
//
// Dispatcher 处理 MOVED 时不调用它：而是通过 Protocol.SetConnection 切换到目标节点的 Connection
func (c *Connection) Reconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.state = StateBroken
}
