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
)

// Kind 对 RESP Error 回复按首个空白分隔词进行分类
type Kind string

const (
	KindGeneric    Kind = "GENERIC"
	KindMoved      Kind = "MOVED"
	KindAsk        Kind = "ASK"
	KindClusterDown Kind = "CLUSTERDOWN"
	KindLoading    Kind = "LOADING"
	KindNoAuth     Kind = "NOAUTH"
	KindWrongType  Kind = "WRONGTYPE"
	KindBusy       Kind = "BUSY"
	KindOom        Kind = "OOM"
	KindNoScript   Kind = "NOSCRIPT"
	KindReadOnly   Kind = "READONLY"
	KindExecAbort  Kind = "EXECABORT"
)

var knownKinds = map[string]Kind{
	string(KindMoved):       KindMoved,
	string(KindAsk):         KindAsk,
	string(KindClusterDown): KindClusterDown,
	string(KindLoading):     KindLoading,
	string(KindNoAuth):      KindNoAuth,
	string(KindWrongType):   KindWrongType,
	string(KindBusy):        KindBusy,
	string(KindOom):         KindOom,
	string(KindNoScript):    KindNoScript,
	string(KindReadOnly):    KindReadOnly,
	string(KindExecAbort):   KindExecAbort,
}

// ReplyError 是一个已分类的 RESP Error 回复
//
// Moved/Ask 两种分类携带额外的路由信息 (Slot, Target) 其余分类只携带原始消息
type ReplyError struct {
	Kind    Kind
	Message string
	Slot    int
	Target  string
}

func (e *ReplyError) Error() string {
	return e.Message
}

// ClassifyReply 按 RESP Error payload 的首个空白分隔词分类
//
// 未知前缀归为 Generic 与源协议的 "first whitespace-delimited word" 规则一致
func ClassifyReply(msg string) *ReplyError {
	fields := strings.Fields(msg)
	if len(fields) == 0 {
		return &ReplyError{Kind: KindGeneric, Message: msg}
	}

	kind, ok := knownKinds[strings.ToUpper(fields[0])]
	if !ok {
		return &ReplyError{Kind: KindGeneric, Message: msg}
	}

	e := &ReplyError{Kind: kind, Message: msg}
	if kind == KindMoved || kind == KindAsk {
		if len(fields) >= 3 {
			if slot, err := strconv.Atoi(fields[1]); err == nil {
				e.Slot = slot
			}
			e.Target = fields[2]
		}
	}
	return e
}

// IsRedirect 判断该回复是否为 MOVED 或 ASK 重定向 (这两种分类由 Dispatcher 内部处理 不上抛给调用方)
func (e *ReplyError) IsRedirect() bool {
	return e.Kind == KindMoved || e.Kind == KindAsk
}

// ErrUsage 标记 Facade 上的使用错误：例如空命令行 或向 Pipeline 传入多个 builder
//
// ExecuteRawString 遇到未注册的命令名时回退到 ExecuteRaw 不产生此错误
var ErrUsage = errors.New("rediscore: usage error")

// UsageError 包装一条带上下文的使用错误
func UsageError(format string, args ...any) error {
	return errors.Wrapf(ErrUsage, format, args...)
}

// ErrTooManyRedirects 表示 MOVED/ASK 递归超过了配置的重试上限
var ErrTooManyRedirects = errors.New("rediscore: too many cluster redirects")
