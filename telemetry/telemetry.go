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

// Package telemetry instruments command dispatch with per-command
// Prometheus metrics and OpenTelemetry-shaped trace spans, logged at debug
// level rather than exported to a remote collector.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/trace"

	"github.com/packetd/rediscore/common"
	"github.com/packetd/rediscore/internal/labels"
	"github.com/packetd/rediscore/internal/tracekit"
	"github.com/packetd/rediscore/logger"
)

// Outcome 描述一次命令执行的最终结果 用于 Prometheus 的 outcome label
type Outcome string

const (
	OutcomeOK    Outcome = "ok"
	OutcomeMoved Outcome = "moved"
	OutcomeAsk   Outcome = "ask"
	OutcomeError Outcome = "error"
)

var (
	commandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: common.App,
			Name:      "command_duration_seconds",
			Help:      "Command execution latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"command", "outcome"},
	)

	commandTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: common.App,
			Name:      "commands_total",
			Help:      "Commands executed total",
		},
		[]string{"command", "outcome"},
	)
)

// Span 携带一次命令执行的追踪上下文
type Span struct {
	TraceID trace.TraceID
	SpanID  trace.SpanID
	Command string
	Target  string
	start   time.Time
}

// StartSpan 开启一个新的命令执行 Span 生成随机的 trace/span ID
func StartSpan(command, target string) *Span {
	return &Span{
		TraceID: trace.TraceID(tracekit.RandomTraceID()),
		SpanID:  trace.SpanID(tracekit.RandomSpanID()),
		Command: command,
		Target:  target,
		start:   time.Now(),
	}
}

// End 记录 Prometheus 指标并在 debug 级别输出一条结构化日志
//
// 不做远程导出：库被嵌入调用方进程 不应自带一条遥测上报管道
func (s *Span) End(outcome Outcome) {
	duration := time.Since(s.start)

	ls := labels.Labels{
		{Name: "command", Value: s.Command},
		{Name: "target", Value: s.Target},
		{Name: "outcome", Value: string(outcome)},
	}
	aggregationKey := ls.Hash()

	commandDuration.WithLabelValues(s.Command, string(outcome)).Observe(duration.Seconds())
	commandTotal.WithLabelValues(s.Command, string(outcome)).Inc()

	logger.Debugf("rediscore: trace_id=%s span_id=%s command=%s target=%s outcome=%s duration=%s agg=%x",
		s.TraceID, s.SpanID, s.Command, s.Target, outcome, duration, aggregationKey)
}

// RecordRedirect 记录一次 MOVED/ASK 重定向事件：只计入 outcome 维度的计数器
// 不影响外层 Span 的 duration 统计 —— 一次 Execute 调用可能触发多次重定向
// 但只产生一个最终的 ok/error 结果 由 Span.End 记录
func RecordRedirect(command, target string, outcome Outcome) {
	ls := labels.Labels{
		{Name: "command", Value: command},
		{Name: "target", Value: target},
		{Name: "outcome", Value: string(outcome)},
	}
	aggregationKey := ls.Hash()

	commandTotal.WithLabelValues(command, string(outcome)).Inc()

	logger.Debugf("rediscore: command=%s target=%s outcome=%s agg=%x", command, target, outcome, aggregationKey)
}
