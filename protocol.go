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
	"time"

	"github.com/pkg/errors"

	"github.com/packetd/rediscore/internal/resp"
	"github.com/packetd/rediscore/internal/transport"
)

// StopSubscription 是 Subscribe 回调函数返回的哨兵 用于表示 "停止订阅循环"
var StopSubscription = errors.New("rediscore: stop subscription")

// Protocol 将 Wire Codec 与一条 Connection 配对
//
// Send/SendMany 是阻塞的：按照单线程逐条命令的并发模型 同一时刻只应有一次调用在途
type Protocol struct {
	conn    *transport.Connection
	dec     *resp.Decoder
	timeout time.Duration
}

// NewProtocol 创建一个绑定到给定 Connection 的 Protocol
func NewProtocol(conn *transport.Connection, timeout time.Duration) *Protocol {
	return &Protocol{
		conn:    conn,
		dec:     resp.NewDecoder(),
		timeout: timeout,
	}
}

// SetConnection 热替换底层 Connection 用于 Dispatcher 在 MOVED 时切换节点
//
// 切换时丢弃尚未消费的解码缓冲：旧连接的残留字节属于旧连接的回复流
func (p *Protocol) SetConnection(conn *transport.Connection) {
	p.conn = conn
	p.dec = resp.NewDecoder()
}

// Connection 返回当前绑定的 Connection
func (p *Protocol) Connection() *transport.Connection {
	return p.conn
}

// Send 编码并发送一条命令 阻塞直到恰好解码出一个完整的 RESP Value
func (p *Protocol) Send(tokens [][]byte) (resp.Value, error) {
	if err := p.conn.WriteAll(resp.EncodeRequest(tokens)); err != nil {
		return resp.Value{}, err
	}
	return p.readOne()
}

// SendMany 将多条命令编码为一段连续字节一次性写出 然后按顺序解码出等量的回复
//
// Redis 保证同一连接上请求与响应顺序一致 因此无需额外的关联标识
func (p *Protocol) SendMany(commands [][][]byte) ([]resp.Value, error) {
	buf := make([]byte, 0, 256*len(commands))
	for _, tokens := range commands {
		buf = append(buf, resp.EncodeRequest(tokens)...)
	}
	if err := p.conn.WriteAll(buf); err != nil {
		return nil, err
	}

	out := make([]resp.Value, 0, len(commands))
	for range commands {
		v, err := p.readOne()
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Subscribe 发送一条命令 然后循环解码回复并调用 cb
//
// cb 返回 StopSubscription 时循环退出：随后发送 unsubscribeTokens 并消费其回复
func (p *Protocol) Subscribe(tokens [][]byte, unsubscribeTokens [][]byte, cb func(resp.Value) error) error {
	if _, err := p.Send(tokens); err != nil {
		return err
	}

	for {
		v, err := p.readOne()
		if err != nil {
			return err
		}
		if err := cb(v); err != nil {
			if errors.Is(err, StopSubscription) {
				break
			}
			return err
		}
	}

	_, err := p.Send(unsubscribeTokens)
	return err
}

// readOne 反复 read_some + decode 直到产出恰好一个 RESP Value
func (p *Protocol) readOne() (resp.Value, error) {
	for {
		v, err := p.dec.Decode()
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, resp.ErrNeedMore) {
			return resp.Value{}, err
		}

		b, readErr := p.conn.ReadSome(deadlineFrom(p.timeout))
		if readErr != nil {
			return resp.Value{}, readErr
		}
		p.dec.Feed(b)
	}
}

func deadlineFrom(timeout time.Duration) time.Time {
	if timeout <= 0 {
		return time.Time{}
	}
	return time.Now().Add(timeout)
}
