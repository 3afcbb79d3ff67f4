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
	"github.com/hashicorp/go-multierror"

	"github.com/packetd/rediscore/telemetry"
)

// Pipeline 记录一组待批量执行的 CommandDescription
//
// 调用方通过 Append 累积命令 由 Dispatcher 持有的 Execute 一次性发出并按顺序解析
type Pipeline struct {
	commands []CommandDescription
}

// NewPipeline 创建一个空 Pipeline
func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// Append 记录一条命令 返回自身以便链式调用
func (p *Pipeline) Append(cmd CommandDescription) *Pipeline {
	p.commands = append(p.commands, cmd)
	return p
}

// Len 返回已记录的命令数
func (p *Pipeline) Len() int {
	return len(p.commands)
}

// Keys 返回每条命令的首个路由 key 的有序列表（未声明 key 的命令被跳过）
//
// 用于路由：cross-slot pipeline 的正确性是调用方的责任 此实现只按第一条命令的 key 路由
func (p *Pipeline) Keys() [][]byte {
	out := make([][]byte, 0, len(p.commands))
	for _, c := range p.commands {
		if k, ok := c.FirstKey(); ok {
			out = append(out, k)
		}
	}
	return out
}

// Execute 通过给定 Dispatcher 的 Protocol 一次性发送所有命令 并按记录顺序应用各自的 parser
//
// 带内 (in-band) 错误回复占据其在结果列表中的位置而不中止整批；
// parser 失败的位置填 nil 并计入返回的错误；批量传输失败且一个回复都未读到时直接返回该错误，
// 否则返回已解码的部分结果 以及用 go-multierror 聚合的全部失败。整批只发送一次 不做重定向或重试
func (p *Pipeline) Execute(d *Dispatcher) ([]any, error) {
	if len(p.commands) == 0 {
		return nil, nil
	}

	if d.clusterEnabled {
		if key, ok := p.commands[0].FirstKey(); ok {
			conn := d.cluster.ConnectionForKey(key)
			d.protocol.SetConnection(conn)
		}
	}

	target := "default"
	if d.protocol.Connection() != nil {
		target = d.protocol.Connection().Endpoint().String()
	}
	span := telemetry.StartSpan("PIPELINE", target)

	wireForms := make([][][]byte, 0, len(p.commands))
	for _, c := range p.commands {
		wireForms = append(wireForms, c.WireForm())
	}

	values, sendErr := d.protocol.SendMany(wireForms)
	if sendErr != nil && len(values) == 0 {
		span.End(telemetry.OutcomeError)
		return nil, sendErr
	}

	var merr *multierror.Error
	out := make([]any, 0, len(p.commands))
	for i, v := range values {
		if v.IsError() {
			out = append(out, ClassifyReply(v.Str))
			continue
		}
		if p.commands[i].ParserID == ParserNone {
			out = append(out, v)
			continue
		}
		parsed, err := ApplyParser(p.commands[i].ParserID, v)
		if err != nil {
			merr = multierror.Append(merr, err)
			out = append(out, nil)
			continue
		}
		out = append(out, parsed)
	}

	if sendErr != nil {
		merr = multierror.Append(merr, sendErr)
	}

	if merr != nil {
		span.End(telemetry.OutcomeError)
		return out, merr.ErrorOrNil()
	}

	span.End(telemetry.OutcomeOK)
	return out, nil
}
