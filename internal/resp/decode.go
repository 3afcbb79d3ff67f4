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

package resp

import (
	"bytes"
	"strconv"

	"github.com/pkg/errors"
)

// ErrNeedMore 表示当前缓冲区内的数据不足以解析出一个完整的 Value
//
// 调用方应保留已写入的数据 等待下一次 Feed 后重新调用 Decode
// Decoder 在返回此错误时不会移动内部读游标 也不会产生任何副作用
var ErrNeedMore = errors.New("resp: need more data")

// Decoder 从一段可能分片到达的字节流中 增量解析出 RESP Value
//
// Decoder 本身不做任何 I/O：数据通过 Feed 写入 通过 Decode 取出
// 每次 Decode 都从游标位置重新尝试解析完整的一个顶层 Value
// 若数据不足 返回 ErrNeedMore 且不消费任何字节 由调用方 Feed 更多数据后重试
type Decoder struct {
	buf []byte
}

// NewDecoder 创建一个空的 Decoder
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Feed 向 Decoder 中追加字节 p 的内容会被拷贝进内部缓冲区
//
// Feed 返回后调用方可以自由复用或修改传入的切片
func (d *Decoder) Feed(p []byte) {
	d.buf = append(d.buf, p...)
}

// Buffered 返回尚未成功解析出完整 Value 的字节数
func (d *Decoder) Buffered() int {
	return len(d.buf)
}

// Decode 尝试从当前缓冲区解析出一个顶层 Value
//
// 返回 ErrNeedMore 时 缓冲区内容原封不动 可以安全地多次调用
// 返回非 ErrNeedMore 的 error 时代表遇到了不可恢复的协议错误
func (d *Decoder) Decode() (Value, error) {
	v, n, err := decodeValue(d.buf)
	if err != nil {
		return Value{}, err
	}
	d.buf = d.buf[n:]
	return v, nil
}

// decodeValue 尝试从 buf 开头解析出一个完整的 Value
//
// 返回值 n 为成功解析时消费的字节数 解析失败 (ErrNeedMore 或协议错误) 时 n 无意义
func decodeValue(buf []byte) (Value, int, error) {
	if len(buf) == 0 {
		return Value{}, 0, ErrNeedMore
	}

	typ := Type(buf[0])
	line, n, ok := readLine(buf[1:])
	if !ok {
		return Value{}, 0, ErrNeedMore
	}
	head := 1 + n

	switch typ {
	case TypeSimpleString:
		return SimpleString(string(line)), head, nil

	case TypeError:
		return ErrorReply(string(line)), head, nil

	case TypeInteger:
		i, err := strconv.ParseInt(string(line), 10, 64)
		if err != nil {
			return Value{}, 0, ProtocolError("invalid integer reply %q", line)
		}
		return Integer(i), head, nil

	case TypeBulkString:
		return decodeBulkString(buf, line, head)

	case TypeArray:
		return decodeArray(buf, line, head)

	default:
		return Value{}, 0, ProtocolError("unknown RESP type byte %q", buf[0])
	}
}

func decodeBulkString(buf, line []byte, head int) (Value, int, error) {
	length, err := strconv.ParseInt(string(line), 10, 64)
	if err != nil {
		return Value{}, 0, ProtocolError("invalid bulk length %q", line)
	}
	if length == -1 {
		return NullBulkString(), head, nil
	}
	if length < 0 {
		return Value{}, 0, ProtocolError("negative bulk length %d", length)
	}

	total := head + int(length) + 2
	if len(buf) < total {
		return Value{}, 0, ErrNeedMore
	}
	data := buf[head : head+int(length)]
	if buf[head+int(length)] != '\r' || buf[head+int(length)+1] != '\n' {
		return Value{}, 0, ProtocolError("bulk string missing trailing CRLF")
	}

	out := make([]byte, len(data))
	copy(out, data)
	return BulkString(out), total, nil
}

func decodeArray(buf, line []byte, head int) (Value, int, error) {
	count, err := strconv.ParseInt(string(line), 10, 64)
	if err != nil {
		return Value{}, 0, ProtocolError("invalid array length %q", line)
	}
	if count == -1 {
		return NullArray(), head, nil
	}
	if count < 0 {
		return Value{}, 0, ProtocolError("negative array length %d", count)
	}

	elems := make([]Value, 0, count)
	offset := head
	for i := int64(0); i < count; i++ {
		v, n, err := decodeValue(buf[offset:])
		if err != nil {
			return Value{}, 0, err
		}
		elems = append(elems, v)
		offset += n
	}
	return Array(elems...), offset, nil
}

// readLine 在 buf 中查找第一个 CRLF 并返回其前的内容及总消费字节数 (含 CRLF)
//
// 找不到 CRLF 时返回 ok=false 而不是把剩余字节当作一行返回：流式解码下
// "剩余字节不含换行符" 必须被当作数据不完整处理
func readLine(buf []byte) (line []byte, consumed int, ok bool) {
	idx := bytes.Index(buf, crlf)
	if idx == -1 {
		return nil, 0, false
	}
	return buf[:idx], idx + 2, true
}
