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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/packetd/rediscore/common"
)

var commandVersion string

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build info and the configured command-surface version",
	Run: func(cmd *cobra.Command, args []string) {
		info := common.BuildInfo{Version: version, GitHash: gitHash, Time: buildTime}
		fmt.Printf("rediscore %s (git=%s built=%s)\n", info.Version, info.GitHash, info.Time)
		fmt.Printf("command surface: %s\n", commandVersion)
	},
}

func init() {
	versionCmd.Flags().StringVar(&commandVersion, "version", "*", "Command-surface version to report (e.g. 2.6, 2.8, 3.0, 3.2)")
	rootCmd.AddCommand(versionCmd)
}
