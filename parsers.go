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
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/packetd/rediscore/internal/resp"
)

// SlotRange 是 CLUSTER SLOTS 回复中的一条记录
type SlotRange struct {
	Start    int
	End      int
	Endpoint string
}

// InfoSection 是 INFO 回复按 `#` 分段后 一个分段内的键值对
type InfoSection map[string]string

// ApplyParser 对一个原始 resp.Value 应用指定的后处理器
//
// 只应在确认 v 不是 Error 回复之后调用：Error 回复由 Dispatcher 在应用 parser 之前处理
func ApplyParser(id ParserID, v resp.Value) (any, error) {
	switch id {
	case ParserNone, ParserIdentity:
		return v, nil
	case ParserInteger:
		return parseInteger(v)
	case ParserBool:
		return parseBool(v)
	case ParserStringPairs:
		return parseStringPairs(v)
	case ParserClusterSlots:
		return parseClusterSlots(v)
	case ParserInfo:
		return parseInfo(v)
	default:
		return nil, errors.Errorf("rediscore: unknown parser id %d", id)
	}
}

func parseInteger(v resp.Value) (int64, error) {
	if v.Type != resp.TypeInteger {
		return 0, errors.Errorf("rediscore: expected Integer reply, got %v", v.Type)
	}
	return v.Int, nil
}

func parseBool(v resp.Value) (bool, error) {
	n, err := parseInteger(v)
	if err != nil {
		return false, err
	}
	return n != 0, nil
}

// parseStringPairs 把 flat 数组 [k1,v1,k2,v2,...] 解析为有序键值对
//
// 使用 slice 而非 map 保留原始顺序 调用方可按需转换为 map
func parseStringPairs(v resp.Value) ([][2]string, error) {
	if v.Type != resp.TypeArray || v.Null {
		return nil, errors.Errorf("rediscore: expected non-null Array reply for key/value pairs")
	}
	if len(v.Array)%2 != 0 {
		return nil, errors.Errorf("rediscore: odd number of elements in key/value pair reply")
	}

	out := make([][2]string, 0, len(v.Array)/2)
	for i := 0; i < len(v.Array); i += 2 {
		out = append(out, [2]string{v.Array[i].String(), v.Array[i+1].String()})
	}
	return out, nil
}

// parseClusterSlots 解析 CLUSTER SLOTS 回复
//
// 回复形状为 Array of [start, end, [host, port, ...], ...] 只取第一个节点（master）
func parseClusterSlots(v resp.Value) ([]SlotRange, error) {
	if v.Type != resp.TypeArray || v.Null {
		return nil, errors.Errorf("rediscore: expected non-null Array reply for CLUSTER SLOTS")
	}

	out := make([]SlotRange, 0, len(v.Array))
	for _, entry := range v.Array {
		if entry.Type != resp.TypeArray || len(entry.Array) < 3 {
			return nil, errors.Errorf("rediscore: malformed CLUSTER SLOTS entry")
		}
		start := entry.Array[0].Int
		end := entry.Array[1].Int
		node := entry.Array[2]
		if node.Type != resp.TypeArray || len(node.Array) < 2 {
			return nil, errors.Errorf("rediscore: malformed CLUSTER SLOTS node entry")
		}
		host := string(node.Array[0].Bulk)
		port := node.Array[1].Int
		out = append(out, SlotRange{
			Start:    int(start),
			End:      int(end),
			Endpoint: host + ":" + strconv.FormatInt(port, 10),
		})
	}
	return out, nil
}

// parseInfo 解析 INFO 回复：以 `#` 开头的行划分分段 分段内按 `:` 切分键值
func parseInfo(v resp.Value) (map[string]InfoSection, error) {
	if v.Type != resp.TypeBulkString {
		return nil, errors.Errorf("rediscore: expected BulkString reply for INFO")
	}

	out := make(map[string]InfoSection)
	section := "default"
	out[section] = InfoSection{}

	for _, line := range strings.Split(string(v.Bulk), "\r\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			section = strings.TrimSpace(strings.TrimPrefix(line, "#"))
			if _, ok := out[section]; !ok {
				out[section] = InfoSection{}
			}
			continue
		}
		idx := strings.Index(line, ":")
		if idx == -1 {
			continue
		}
		out[section][line[:idx]] = line[idx+1:]
	}
	return out, nil
}
