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

// Package cmd implements the rediscore command-line entry points: a
// redis-cli-like interactive shell and a version reporter, following this
// codebase's existing cobra command-tree conventions (see agent.go/log.go
// in the packetd lineage this package is adapted from).
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/packetd/rediscore/logger"
)

// version/gitHash/buildTime are overridden at build time via -ldflags, the
// same way the wider packetd lineage stamps its binaries.
var (
	version   = "dev"
	gitHash   = "none"
	buildTime = "unknown"
)

var (
	logLevel    string
	logStdout   bool
	logFilename string
)

var rootCmd = &cobra.Command{
	Use:   "rediscore",
	Short: "rediscore is a Redis client protocol engine: RESP codec, cluster routing and pipelining",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetOptions(logger.Options{
			Stdout:   logStdout,
			Level:    logLevel,
			Filename: logFilename,
		})
		if _, err := maxprocs.Set(maxprocs.Logger(logger.Infof)); err != nil {
			logger.Warnf("failed to set GOMAXPROCS: %v", err)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log.level", "info", "Logging level [debug|info|warn|error]")
	rootCmd.PersistentFlags().BoolVar(&logStdout, "log.stdout", true, "Log to stdout instead of a rotating file")
	rootCmd.PersistentFlags().StringVar(&logFilename, "log.filename", "", "Log file path, used when --log.stdout=false")
}

// Execute runs the rediscore command tree, exiting the process on failure
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
