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

// Package resp implements the RESP (REdis Serialization Protocol) wire
// codec: encoding outbound commands as RESP multi-bulk requests, and
// decoding inbound replies from a byte stream that may arrive in arbitrary
// fragments across one or more socket reads.
//
// Grounded on the teacher's protocol/predis decoder (the type-byte switch
// and line-splitting approach), adapted to fix a correctness gap: the
// teacher's line scanner treats an unterminated trailing fragment as a
// complete line (it only reports "no more input" once the cursor reaches
// the end of the buffer, not when no line terminator has been found yet).
// A streaming RESP decoder must instead report NeedMore and leave the
// cursor untouched so the caller can Feed more bytes and retry the same
// decode from scratch, so this package re-implements line scanning with
// cursor rollback on short input.
package resp

import (
	"strconv"

	"github.com/pkg/errors"
)

// Type 标识 RESP 回复值的种类
type Type byte

const (
	// TypeSimpleString 对应 `+`
	TypeSimpleString Type = '+'
	// TypeError 对应 `-`
	TypeError Type = '-'
	// TypeInteger 对应 `:`
	TypeInteger Type = ':'
	// TypeBulkString 对应 `$`
	TypeBulkString Type = '$'
	// TypeArray 对应 `*`
	TypeArray Type = '*'
)

// Value 是解码后的 RESP 值的统一表示
//
// 同一时刻只有与 Type 对应的字段有效：
//   - TypeSimpleString/TypeError: Str
//   - TypeInteger: Int
//   - TypeBulkString: Null 为 true 时代表 `$-1\r\n`，否则内容在 Bulk 中
//   - TypeArray: Null 为 true 时代表 `*-1\r\n`，否则子元素在 Array 中
type Value struct {
	Type  Type
	Str   string
	Int   int64
	Bulk  []byte
	Array []Value
	Null  bool
}

// IsError 判断此值是否为 RESP 错误回复
func (v Value) IsError() bool {
	return v.Type == TypeError
}

// String 返回该值对外展示用的字符串表达
//
// BulkString/Array 为 Null 时返回 "(nil)"，与常见 redis-cli 的输出习惯一致
func (v Value) String() string {
	switch v.Type {
	case TypeSimpleString, TypeError:
		return v.Str
	case TypeInteger:
		return strconv.FormatInt(v.Int, 10)
	case TypeBulkString:
		if v.Null {
			return "(nil)"
		}
		return string(v.Bulk)
	case TypeArray:
		if v.Null {
			return "(nil)"
		}
		out := make([]string, 0, len(v.Array))
		for _, e := range v.Array {
			out = append(out, e.String())
		}
		s := ""
		for i, o := range out {
			if i > 0 {
				s += " "
			}
			s += o
		}
		return s
	default:
		return ""
	}
}

// NullBulkString 返回 `$-1\r\n` 对应的值
func NullBulkString() Value {
	return Value{Type: TypeBulkString, Null: true}
}

// NullArray 返回 `*-1\r\n` 对应的值
func NullArray() Value {
	return Value{Type: TypeArray, Null: true}
}

// SimpleString 构造一个 SimpleString 值
func SimpleString(s string) Value {
	return Value{Type: TypeSimpleString, Str: s}
}

// ErrorReply 构造一个 Error 值
func ErrorReply(s string) Value {
	return Value{Type: TypeError, Str: s}
}

// Integer 构造一个 Integer 值
func Integer(n int64) Value {
	return Value{Type: TypeInteger, Int: n}
}

// BulkString 构造一个 BulkString 值
func BulkString(b []byte) Value {
	return Value{Type: TypeBulkString, Bulk: b}
}

// Array 构造一个 Array 值
func Array(vs ...Value) Value {
	return Value{Type: TypeArray, Array: vs}
}

// ErrProtocol 表示在解析过程中遇到了不符合 RESP 语法的数据
//
// 与 ErrNeedMore 不同 此错误不可通过补充更多字节来恢复
var ErrProtocol = errors.New("resp: protocol error")

// ProtocolError 包装一个具体的协议错误详情
func ProtocolError(format string, args ...any) error {
	return errors.Wrapf(ErrProtocol, format, args...)
}
