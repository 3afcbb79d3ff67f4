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

// Package rediscore implements the core of a Redis client: the command
// dispatcher, cluster routing, pipelining, response parsing and the
// handshake-driven client facade, built on internal/resp and
// internal/transport.
package rediscore

// ParserID names a post-processor applied to a raw RESP Value
type ParserID int

const (
	// ParserNone 不做任何后处理 返回原始 resp.Value
	ParserNone ParserID = iota
	// ParserIdentity 与 ParserNone 等价 显式声明意图
	ParserIdentity
	// ParserInteger 要求回复为 Integer 返回其 int64 值
	ParserInteger
	// ParserBool 将 Integer 回复解释为布尔值 (0/1)
	ParserBool
	// ParserStringPairs 将 flat 数组 [k1,v1,k2,v2,...] 解析为有序键值对
	ParserStringPairs
	// ParserClusterSlots 解析 CLUSTER SLOTS 回复
	ParserClusterSlots
	// ParserInfo 解析 INFO 回复
	ParserInfo
)

// CommandDescription 是调用方提交给 Dispatcher 的命令记录
//
// wire form 是 Tokens 之后拼接 Params 展开后的结果 (Invariant)
type CommandDescription struct {
	// Tokens 命令名及固定参数 例如 ["SET", "foo", "bar"]
	Tokens [][]byte
	// Keys 用于槽位路由的 key 列表 第一个 key 决定路由
	Keys [][]byte
	// Params 追加参数 每个元素可以是单个 []byte 也可以是 [][]byte（会被展开）
	Params []any
	// ParserID 回复后处理器标识 ParserNone 表示不处理
	ParserID ParserID
}

// NewCommandDescription 构造一个只有 Tokens 的 CommandDescription
func NewCommandDescription(tokens ...[]byte) CommandDescription {
	return CommandDescription{Tokens: tokens}
}

// WithKeys 返回一个追加了路由 key 的副本
func (c CommandDescription) WithKeys(keys ...[]byte) CommandDescription {
	c.Keys = keys
	return c
}

// WithParser 返回一个指定了 parser 的副本
func (c CommandDescription) WithParser(id ParserID) CommandDescription {
	c.ParserID = id
	return c
}

// WithParams 返回一个追加了 params 的副本
func (c CommandDescription) WithParams(params ...any) CommandDescription {
	c.Params = params
	return c
}

// FirstKey 返回用于槽位路由的首个 key 不存在时返回 nil,false
func (c CommandDescription) FirstKey() ([]byte, bool) {
	if len(c.Keys) == 0 {
		return nil, false
	}
	return c.Keys[0], true
}

// WireForm 按 Invariant 将 Tokens 与展开后的 Params 拼接为最终的 token 序列
func (c CommandDescription) WireForm() [][]byte {
	out := make([][]byte, 0, len(c.Tokens)+len(c.Params))
	out = append(out, c.Tokens...)
	for _, p := range c.Params {
		switch v := p.(type) {
		case []byte:
			out = append(out, v)
		case [][]byte:
			out = append(out, v...)
		case string:
			out = append(out, []byte(v))
		case []string:
			for _, s := range v {
				out = append(out, []byte(s))
			}
		}
	}
	return out
}

// Name 返回命令名（Tokens 的第一个元素） 不存在时返回空串
func (c CommandDescription) Name() string {
	if len(c.Tokens) == 0 {
		return ""
	}
	return string(c.Tokens[0])
}
