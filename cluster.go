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
	"sync"
	"time"

	"github.com/packetd/rediscore/internal/hashtag"
	"github.com/packetd/rediscore/internal/transport"
)

// ClusterMap 维护 slot -> endpoint 的映射 以及 endpoint -> Connection 的缓存
//
// 路由查找始终经过 SlotOf(key) 然后 slot -> endpoint；endpoint -> connection
// 在整个 Map 内至多一条 每个 endpoint 的 Connection 懒创建并缓存
// 缺失的 slot 条目回退到配置的默认 endpoint
type ClusterMap struct {
	mu      sync.RWMutex
	slots   map[int]string // slot -> endpoint string
	conns   map[string]*transport.Connection
	timeout time.Duration
	def     string
}

// NewClusterMap 创建一个空的 ClusterMap 缺省路由到 defaultEndpoint
func NewClusterMap(defaultEndpoint string, timeout time.Duration) *ClusterMap {
	return &ClusterMap{
		slots:   make(map[int]string),
		conns:   make(map[string]*transport.Connection),
		timeout: timeout,
		def:     defaultEndpoint,
	}
}

// SlotOf 返回 key 所属的槽位
func (m *ClusterMap) SlotOf(key []byte) int {
	return hashtag.Slot(key)
}

// ConnectionForKey 按 key 所属槽位查找（或懒创建）对应的 Connection
func (m *ClusterMap) ConnectionForKey(key []byte) *transport.Connection {
	slot := m.SlotOf(key)

	m.mu.RLock()
	endpoint, ok := m.slots[slot]
	m.mu.RUnlock()
	if !ok {
		endpoint = m.def
	}

	return m.ConnectionForEndpoint(endpoint)
}

// ConnectionForEndpoint 返回（懒创建并缓存）给定 endpoint 字符串对应的 Connection
func (m *ClusterMap) ConnectionForEndpoint(endpoint string) *transport.Connection {
	m.mu.RLock()
	conn, ok := m.conns[endpoint]
	m.mu.RUnlock()
	if ok {
		return conn
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if conn, ok := m.conns[endpoint]; ok {
		return conn
	}

	ep, err := transport.ParseEndpoint(endpoint)
	if err != nil {
		ep = transport.Endpoint{Network: "tcp", Address: endpoint}
	}
	conn = transport.NewConnection(ep, m.timeout)
	m.conns[endpoint] = conn
	return conn
}

// SetClusters 用一组 (start, end, endpoint) 区间替换整张槽表
//
// 用于 RefreshClusterSlots：CLUSTER SLOTS 的返回即是这种区间形式
func (m *ClusterMap) SetClusters(ranges []SlotRange) {
	slots := make(map[int]string, hashtag.SlotNumber)
	for _, r := range ranges {
		for s := r.Start; s <= r.End; s++ {
			slots[s] = r.Endpoint
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots = slots
}

// AddCluster 设置单个槽位条目 用于 MOVED 且未开启整表刷新时的局部更新
func (m *ClusterMap) AddCluster(slot int, endpoint string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[slot] = endpoint
}

// Close 关闭 Map 持有的所有 Connection
func (m *ClusterMap) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var firstErr error
	for _, conn := range m.conns {
		if err := conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
