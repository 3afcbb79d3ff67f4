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
	"strconv"

	"github.com/valyala/bytebufferpool"
)

// EncodeRequest 将一条命令的 token 序列编码为 RESP multi-bulk 请求
//
// 出站请求始终使用 multi-bulk 数组形式编码 即使命令本身没有参数
// 这是 Redis 客户端的通用约定：服务端据此区分 inline 命令与二进制安全命令
func EncodeRequest(tokens [][]byte) []byte {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	buf.WriteByte('*')
	buf.WriteString(strconv.Itoa(len(tokens)))
	buf.Write(crlf)
	for _, tok := range tokens {
		buf.WriteByte('$')
		buf.WriteString(strconv.Itoa(len(tok)))
		buf.Write(crlf)
		buf.Write(tok)
		buf.Write(crlf)
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out
}

var crlf = []byte("\r\n")
