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
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/packetd/rediscore/common"
	"github.com/packetd/rediscore/internal/pubsub"
	"github.com/packetd/rediscore/internal/resp"
	"github.com/packetd/rediscore/internal/transport"
	"github.com/packetd/rediscore/logger"
)

// sessionState 是单个 Protocol 会话的握手阶段 (spec §4.9)
//
// Fresh -> Authenticated -> DbSelected -> Ready -> ClusterPrimed（集群模式下）
// 任何传输错误都会把会话打回 Fresh：下一次使用会重放整个握手
type sessionState int

const (
	sessionFresh sessionState = iota
	sessionAuthenticated
	sessionDbSelected
	sessionReady
	sessionClusterPrimed
)

// ClusterRange 是调用方在配置中声明的初始槽位区间 对应 `cluster.clusters` 配置项
type ClusterRange struct {
	Start    int    `config:"start"`
	End      int    `config:"end"`
	Endpoint string `config:"endpoint"`
}

// Config 汇集 Facade 的全部可配置项 (spec §6)
//
// 零值经 withDefaults 补全为 spec 表格中列出的默认值；结构体 tag 采用 go-ucfg 的
// `config:"..."` 约定 使其可以直接通过 confengine.Config.Unpack 从 YAML 解出
type Config struct {
	Server   string        `config:"server"`
	Timeout  time.Duration `config:"timeout"`
	Database int           `config:"database"`
	Password string        `config:"password"`
	Version  string        `config:"version"`

	ClusterEnabled   bool           `config:"cluster.enabled"`
	ClusterClusters  []ClusterRange `config:"cluster.clusters"`
	ClusterInitStart bool           `config:"cluster.init_on_start"`
	ClusterInitError bool           `config:"cluster.init_on_error"`
}

func (c Config) withDefaults() Config {
	if c.Server == "" {
		c.Server = common.DefaultEndpoint
	}
	if c.Timeout <= 0 {
		c.Timeout = time.Duration(common.DefaultTimeoutSeconds) * time.Second
	}
	if c.Version == "" {
		c.Version = "*"
	}
	return c
}

// Client 是库的入口 Facade：持有配置 握手状态 Dispatcher ClusterMap 与 Registry
//
// 单个 Client 实例是单线程阻塞模型 (spec §5)：调用方需要自行做互斥才能跨 goroutine 共享
type Client struct {
	config Config

	mu         sync.Mutex
	state      sessionState
	protocol   *Protocol
	dispatcher *Dispatcher
	cluster    *ClusterMap
	registry   *Registry
	pubsub     *pubsub.PubSub
}

// New 按给定 Config 构造一个 Client 尚未建立任何连接（连接是惰性的 §4.2）
func New(config Config) *Client {
	config = config.withDefaults()

	var cluster *ClusterMap
	if config.ClusterEnabled {
		cluster = NewClusterMap(config.Server, config.Timeout)
		if len(config.ClusterClusters) > 0 {
			ranges := make([]SlotRange, 0, len(config.ClusterClusters))
			for _, r := range config.ClusterClusters {
				ranges = append(ranges, SlotRange{Start: r.Start, End: r.End, Endpoint: r.Endpoint})
			}
			cluster.SetClusters(ranges)
		}
	}

	ep, err := transport.ParseEndpoint(config.Server)
	if err != nil {
		logger.Errorf("rediscore: invalid server endpoint %q: %v", config.Server, err)
		ep = transport.Endpoint{Network: "tcp", Address: config.Server}
	}
	conn := transport.NewConnection(ep, config.Timeout)
	protocol := NewProtocol(conn, config.Timeout)

	c := &Client{
		config:   config,
		protocol: protocol,
		cluster:  cluster,
		registry: NewRegistry(),
		pubsub:   pubsub.New(),
	}
	c.dispatcher = NewDispatcher(protocol, cluster, DispatcherOptions{
		ClusterEnabled: config.ClusterEnabled,
		InitOnError:    config.ClusterInitError,
		Timeout:        config.Timeout,
	})
	return c
}

// NewFromOptions 从一个松散的 common.Options（例如由 confengine 解出的 map）构造 Client
//
// 以 cast 做类型强转 供 CLI/配置文件驱动的场景使用 和 New(Config{}) 等价的程序化入口互补
func NewFromOptions(opt common.Options) *Client {
	config := Config{
		Server:           opt.GetStringOr("server", common.DefaultEndpoint),
		Timeout:          time.Duration(opt.GetIntOr("timeout", common.DefaultTimeoutSeconds)) * time.Second,
		Database:         opt.GetIntOr("database", 0),
		Password:         opt.GetStringOr("password", ""),
		Version:          opt.GetStringOr("version", "*"),
		ClusterEnabled:   opt.GetBoolOr("cluster.enabled", false),
		ClusterInitStart: opt.GetBoolOr("cluster.init_on_start", false),
		ClusterInitError: opt.GetBoolOr("cluster.init_on_error", false),
	}
	return New(config)
}

// Version 返回所配置的命令集版本号 (spec §4.9 "version reporting")
func (c *Client) Version() string {
	return c.config.Version
}

// Registry 返回底层 Command Registry 允许调用方 Register 自定义命令
func (c *Client) Registry() *Registry {
	return c.registry
}

// handshake 在首次使用 Protocol 前执行：AUTH（若配置了密码） SELECT（若 database>0）
// 集群模式下在 init_on_start 时执行 CLUSTER SLOTS 预热槽表
//
// 每个 Protocol 实例的握手是幂等的：状态机只前进不重放 (spec §4.9)
func (c *Client) handshake() error {
	if c.state >= sessionReady {
		if !c.config.ClusterEnabled || c.state == sessionClusterPrimed {
			return nil
		}
	}

	if c.state < sessionAuthenticated {
		if c.config.Password != "" {
			if _, err := c.dispatcher.Execute(NewCommandDescription([]byte("AUTH"), []byte(c.config.Password))); err != nil {
				return errors.Wrap(err, "rediscore: AUTH handshake failed")
			}
		}
		c.state = sessionAuthenticated
	}

	if c.state < sessionDbSelected {
		if c.config.Database > 0 {
			db := []byte(strconv.Itoa(c.config.Database))
			if _, err := c.dispatcher.Execute(NewCommandDescription([]byte("SELECT"), db)); err != nil {
				return errors.Wrap(err, "rediscore: SELECT handshake failed")
			}
		}
		c.state = sessionDbSelected
	}

	if c.state < sessionReady {
		c.state = sessionReady
	}

	if c.config.ClusterEnabled && c.config.ClusterInitStart && c.state != sessionClusterPrimed {
		if err := c.dispatcher.RefreshClusterSlots(); err != nil {
			return errors.Wrap(err, "rediscore: CLUSTER SLOTS priming failed")
		}
		c.state = sessionClusterPrimed
	}

	return nil
}

// resetSession 把会话状态打回 Fresh 供传输错误之后的下一次调用重放握手
func (c *Client) resetSession() {
	c.state = sessionFresh
}

// ExecuteRaw 执行一条由 token 列表直接描述的命令 不经过 Registry
func (c *Client) ExecuteRaw(tokens ...[]byte) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.handshake(); err != nil {
		c.resetSession()
		return nil, err
	}

	cmd := NewCommandDescription(tokens...)
	if c.config.ClusterEnabled && len(tokens) > 1 {
		cmd = cmd.WithKeys(tokens[1])
	}

	v, err := c.dispatcher.Execute(cmd)
	if err != nil {
		c.resetSession()
		return nil, err
	}
	return v, nil
}

// ExecuteRawString 解析一行人类输入的命令文本（引号/转义规则见 rawparser.go）后执行
func (c *Client) ExecuteRawString(line string) (any, error) {
	tokens := ParseRawString(line)
	if len(tokens) == 0 {
		return nil, UsageError("rediscore: empty command line")
	}

	raw := make([][]byte, len(tokens))
	for i, t := range tokens {
		raw[i] = []byte(t)
	}

	name := tokens[0]
	if factory, ok := c.registry.Lookup(c.config.Version, name); ok {
		args := make([][]byte, len(raw)-1)
		copy(args, raw[1:])
		c.mu.Lock()
		defer c.mu.Unlock()

		if err := c.handshake(); err != nil {
			c.resetSession()
			return nil, err
		}

		cmd := factory(args...)
		v, err := c.dispatcher.Execute(cmd)
		if err != nil {
			c.resetSession()
			return nil, err
		}
		return v, nil
	}

	return c.ExecuteRaw(raw...)
}

// PipelineBuilder 接收一个新建的 Pipeline 并在其上记录命令
type PipelineBuilder func(p *Pipeline)

// Pipeline 执行一批命令：不传 builder 时返回一个空 Pipeline 供调用方自行 Append 和 Execute；
// 传入 builder 时立即在新 Pipeline 上调用它 随后通过 Dispatcher 执行并返回结果列表
//
// 传入既非 nil 也非 PipelineBuilder 可调用类型的值是使用错误 (spec §7 usage errors)
func (c *Client) Pipeline(builder ...PipelineBuilder) (*Pipeline, []any, error) {
	p := NewPipeline()
	if len(builder) == 0 || builder[0] == nil {
		return p, nil, nil
	}
	if len(builder) > 1 {
		return nil, nil, UsageError("rediscore: Pipeline accepts at most one builder")
	}

	builder[0](p)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.handshake(); err != nil {
		c.resetSession()
		return p, nil, err
	}

	out, err := p.Execute(c.dispatcher)
	if err != nil {
		c.resetSession()
		return p, out, err
	}
	return p, out, nil
}

// Subscribe 订阅一个频道：底层复用 Protocol.Subscribe 把每条收到的消息推入一个
// internal/pubsub 队列 供调用方用 Queue.PopTimeout 拉取；返回的 pubsub.Queue 由调用方负责 Close
func (c *Client) Subscribe(channel string) (pubsub.Queue, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.handshake(); err != nil {
		c.resetSession()
		return nil, err
	}

	q := c.pubsub.Subscribe(common.Concurrency())
	go func() {
		sub := []byte("SUBSCRIBE")
		unsub := []byte("UNSUBSCRIBE")
		err := c.protocol.Subscribe(
			[][]byte{sub, []byte(channel)},
			[][]byte{unsub, []byte(channel)},
			func(v resp.Value) error {
				q.Push(v)
				return nil
			},
		)
		if err != nil {
			logger.Warnf("rediscore: subscribe loop for channel %q ended: %v", channel, err)
		}
		c.pubsub.Unsubscribe(q)
	}()
	return q, nil
}

// Close 关闭默认 Protocol 的连接以及（集群模式下）ClusterMap 持有的所有连接
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var err error
	if conn := c.protocol.Connection(); conn != nil {
		err = conn.Close()
	}
	if c.cluster != nil {
		if cerr := c.cluster.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
