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

package cmd

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/packetd/rediscore"
	"github.com/packetd/rediscore/confengine"
	"github.com/packetd/rediscore/internal/rescue"
	"github.com/packetd/rediscore/internal/sigs"
	"github.com/packetd/rediscore/logger"
	"github.com/packetd/rediscore/server"
)

// cliYAMLConfig mirrors the subset of rediscore.Config that is driven by a
// YAML file, with `timeout` expressed in seconds as spec §6 requires
// (rediscore.Config itself carries a time.Duration, which is the Go-idiomatic
// in-process type; this struct is the wire/file shape).
type cliYAMLConfig struct {
	Server   string `config:"server"`
	Timeout  int    `config:"timeout"`
	Database int    `config:"database"`
	Password string `config:"password"`
	Version  string `config:"version"`

	Cluster struct {
		Enabled     bool `config:"enabled"`
		InitOnStart bool `config:"init_on_start"`
		InitOnError bool `config:"init_on_error"`
		Clusters    []struct {
			Start    int    `config:"start"`
			End      int    `config:"end"`
			Endpoint string `config:"endpoint"`
		} `config:"clusters"`
	} `config:"cluster"`

	Logger     logger.Options `config:"log"`
	ServerHTTP server.Config  `config:"server_http"`
}

func (c cliYAMLConfig) toClientConfig() rediscore.Config {
	ranges := make([]rediscore.ClusterRange, 0, len(c.Cluster.Clusters))
	for _, r := range c.Cluster.Clusters {
		ranges = append(ranges, rediscore.ClusterRange{Start: r.Start, End: r.End, Endpoint: r.Endpoint})
	}
	return rediscore.Config{
		Server:           c.Server,
		Timeout:          time.Duration(c.Timeout) * time.Second,
		Database:         c.Database,
		Password:         c.Password,
		Version:          c.Version,
		ClusterEnabled:   c.Cluster.Enabled,
		ClusterClusters:  ranges,
		ClusterInitStart: c.Cluster.InitOnStart,
		ClusterInitError: c.Cluster.InitOnError,
	}
}

var (
	cliConfigPath string
	cliServer     string
	cliPassword   string
	cliDatabase   int
	cliTimeout    time.Duration
	cliCluster    bool
)

var cliCmd = &cobra.Command{
	Use:   "cli",
	Short: "Start an interactive redis-cli-like shell against a rediscore Client",
	Example: "# rediscore cli --server 127.0.0.1:6379\n" +
		"# rediscore cli --config rediscore.yaml",
	Run: runCLI,
}

func init() {
	cliCmd.Flags().StringVar(&cliConfigPath, "config", "", "YAML configuration file path (overrides the flags below when set)")
	cliCmd.Flags().StringVar(&cliServer, "server", "127.0.0.1:6379", "Endpoint to connect to: host:port, tcp://host:port, or unix:///path")
	cliCmd.Flags().StringVar(&cliPassword, "password", "", "Password for the AUTH handshake")
	cliCmd.Flags().IntVar(&cliDatabase, "database", 0, "Database index for the SELECT handshake")
	cliCmd.Flags().DurationVar(&cliTimeout, "timeout", time.Second, "Socket read/write timeout")
	cliCmd.Flags().BoolVar(&cliCluster, "cluster", false, "Enable cluster mode (MOVED/ASK routing)")
	rootCmd.AddCommand(cliCmd)
}

func runCLI(cmd *cobra.Command, args []string) {
	defer rescue.HandleCrash()

	clientConfig := rediscore.Config{
		Server:         cliServer,
		Timeout:        cliTimeout,
		Database:       cliDatabase,
		Password:       cliPassword,
		ClusterEnabled: cliCluster,
	}
	var srvConfig server.Config

	if cliConfigPath != "" {
		conf, err := confengine.LoadConfigPath(cliConfigPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
			os.Exit(1)
		}
		var yc cliYAMLConfig
		if err := conf.Unpack(&yc); err != nil {
			fmt.Fprintf(os.Stderr, "failed to parse config: %v\n", err)
			os.Exit(1)
		}
		clientConfig = yc.toClientConfig()
		srvConfig = yc.ServerHTTP
		logger.SetOptions(yc.Logger)
	}

	client := rediscore.New(clientConfig)
	defer client.Close()

	if srvConfig.Enabled {
		srv, err := server.NewFromConfig(srvConfig)
		if err != nil || srv == nil {
			logger.Warnf("debug/metrics HTTP server not started: %v", err)
		} else {
			go func() {
				if err := srv.ListenAndServe(); err != nil {
					logger.Errorf("debug/metrics HTTP server stopped: %v", err)
				}
			}()
		}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		scanner := bufio.NewScanner(os.Stdin)
		fmt.Printf("rediscore %s> ", clientConfig.Server)
		for scanner.Scan() {
			line := scanner.Text()
			if line == "" {
				fmt.Printf("rediscore %s> ", clientConfig.Server)
				continue
			}

			v, err := client.ExecuteRawString(line)
			if err != nil {
				fmt.Printf("(error) %v\n", err)
			} else if s, ok := v.(fmt.Stringer); ok {
				fmt.Println(s.String())
			} else {
				fmt.Printf("%v\n", v)
			}
			fmt.Printf("rediscore %s> ", clientConfig.Server)
		}
	}()

	select {
	case <-done:
	case <-sigs.Terminate():
		fmt.Println()
	}
}
