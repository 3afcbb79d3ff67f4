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

	"github.com/packetd/rediscore/common"
	"github.com/packetd/rediscore/internal/resp"
	"github.com/packetd/rediscore/logger"
	"github.com/packetd/rediscore/telemetry"
)

// Dispatcher routes a single command through a Protocol handling MOVED/ASK redirection
type Dispatcher struct {
	protocol *Protocol
	cluster  *ClusterMap

	clusterEnabled bool
	initOnError    bool
	timeout        time.Duration
	maxRedirects   int
}

// DispatcherOptions 配置 Dispatcher 的集群行为
type DispatcherOptions struct {
	ClusterEnabled bool
	InitOnError    bool
	Timeout        time.Duration
	MaxRedirects   int
}

// NewDispatcher 创建一个绑定默认 Protocol 与 ClusterMap 的 Dispatcher
func NewDispatcher(protocol *Protocol, cluster *ClusterMap, opt DispatcherOptions) *Dispatcher {
	if opt.MaxRedirects <= 0 {
		opt.MaxRedirects = common.MaxRedirects
	}
	return &Dispatcher{
		protocol:       protocol,
		cluster:        cluster,
		clusterEnabled: opt.ClusterEnabled,
		initOnError:    opt.InitOnError,
		timeout:        opt.Timeout,
		maxRedirects:   opt.MaxRedirects,
	}
}

// Execute 路由并执行一条命令 处理 MOVED/ASK 重定向 应用 parser 返回最终结果
func (d *Dispatcher) Execute(cmd CommandDescription) (any, error) {
	target := "default"
	if d.protocol.Connection() != nil {
		target = d.protocol.Connection().Endpoint().String()
	}
	span := telemetry.StartSpan(cmd.Name(), target)

	v, err := d.execute(cmd, 0)
	if err != nil {
		span.End(telemetry.OutcomeError)
		return nil, err
	}

	if v.IsError() {
		span.End(telemetry.OutcomeError)
		return nil, ClassifyReply(v.Str)
	}
	span.End(telemetry.OutcomeOK)
	if cmd.ParserID == ParserNone {
		return v, nil
	}
	return ApplyParser(cmd.ParserID, v)
}

// execute 是 Execute 的递归核心 depth 统计到目前为止发生过的重定向次数
func (d *Dispatcher) execute(cmd CommandDescription, depth int) (resp.Value, error) {
	if depth > d.maxRedirects {
		return resp.Value{}, ErrTooManyRedirects
	}

	if d.clusterEnabled {
		if key, ok := cmd.FirstKey(); ok {
			conn := d.cluster.ConnectionForKey(key)
			d.protocol.SetConnection(conn)
		}
	}

	v, err := d.protocol.Send(cmd.WireForm())
	if err != nil {
		return resp.Value{}, err
	}

	if !v.IsError() {
		return v, nil
	}

	re := ClassifyReply(v.Str)
	switch re.Kind {
	case KindMoved:
		return d.handleMoved(cmd, re, depth)
	case KindAsk:
		return d.handleAsk(cmd, re)
	default:
		return v, nil
	}
}

// handleMoved 按 spec §4.6 处理 MOVED：视 initOnError 决定整表刷新或单条更新 然后递归重试
func (d *Dispatcher) handleMoved(cmd CommandDescription, re *ReplyError, depth int) (resp.Value, error) {
	logger.Warnf("rediscore: MOVED slot=%d target=%s command=%s", re.Slot, re.Target, cmd.Name())
	telemetry.RecordRedirect(cmd.Name(), re.Target, telemetry.OutcomeMoved)

	if d.initOnError {
		if err := d.RefreshClusterSlots(); err != nil {
			logger.Errorf("rediscore: refresh cluster slots after MOVED failed: %v", err)
		}
	} else {
		d.cluster.AddCluster(re.Slot, re.Target)
	}

	conn := d.cluster.ConnectionForEndpoint(re.Target)
	d.protocol.SetConnection(conn)

	return d.execute(cmd, depth+1)
}

// handleAsk 按 spec §4.6 处理 ASK：临时 Protocol 发送 ASKING 后重发原命令 不更新永久槽表
func (d *Dispatcher) handleAsk(cmd CommandDescription, re *ReplyError) (resp.Value, error) {
	logger.Warnf("rediscore: ASK slot=%d target=%s command=%s", re.Slot, re.Target, cmd.Name())
	telemetry.RecordRedirect(cmd.Name(), re.Target, telemetry.OutcomeAsk)

	conn := d.cluster.ConnectionForEndpoint(re.Target)
	tmp := NewProtocol(conn, d.timeout)

	if _, err := tmp.Send([][]byte{[]byte("ASKING")}); err != nil {
		return resp.Value{}, err
	}
	return tmp.Send(cmd.WireForm())
}

// RefreshClusterSlots 发出 CLUSTER SLOTS 并用结果替换整张槽表
func (d *Dispatcher) RefreshClusterSlots() error {
	v, err := d.protocol.Send([][]byte{[]byte("CLUSTER"), []byte("SLOTS")})
	if err != nil {
		return err
	}
	if v.IsError() {
		return ClassifyReply(v.Str)
	}

	ranges, err := parseClusterSlots(v)
	if err != nil {
		return err
	}
	d.cluster.SetClusters(ranges)
	return nil
}
