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

package common

const (
	// App 应用程序名称
	App = "rediscore"

	// Version 应用程序版本
	Version = "v0.0.1"

	// ReadWriteBlockSize 单次 socket 读取的字节数上限
	//
	// 过小会增加系统调用次数 过大则会让单个命令的超时粒度变得粗糙
	// 取一个折中值 由 Connection.ReadSome 在每次读取时使用
	ReadWriteBlockSize = 4096

	// DefaultEndpoint 默认连接的节点地址
	DefaultEndpoint = "127.0.0.1:6379"

	// DefaultTimeoutSeconds 默认的读写超时时间
	DefaultTimeoutSeconds = 1

	// ClusterSlots 集群槽位总数 对应 spec 中的 `Slot 16384 为模数`
	ClusterSlots = 16384

	// MaxRedirects MOVED/ASK 递归重试的上限
	//
	// 源协议未规定上限 集群拓扑持续抖动时没有这个上限会死循环
	MaxRedirects = 5
)
