// Copyright 2026 gorse Project Authors
//
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

package main

import (
	"fmt"

	"github.com/gorse-io/reviewsim/base/log"
	"github.com/gorse-io/reviewsim/cmd/version"
	"github.com/gorse-io/reviewsim/config"
	"github.com/juju/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCommand = &cobra.Command{
	Use:   "reviewsim",
	Short: "Recommend items by the similarity of their reviews.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// setup logger
		debug, _ := cmd.Flags().GetBool("debug")
		log.SetLogger(cmd.Flags(), debug)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		// export metrics
		if metricsPath, _ := cmd.Flags().GetString("metrics"); metricsPath != "" {
			if err := writeMetrics(metricsPath); err != nil {
				log.Logger().Fatal("failed to write metrics", zap.Error(err))
			}
			log.Logger().Info("write metrics", zap.String("path", metricsPath))
		}
	},
}

var versionCommand = &cobra.Command{
	Use:   "version",
	Short: "Show version of reviewsim",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print(version.BuildInfo())
	},
}

func loadConfig(cmd *cobra.Command) *config.Config {
	configPath, _ := cmd.Flags().GetString("config")
	log.Logger().Info("load config", zap.String("config", configPath))
	conf, err := config.LoadConfig(configPath)
	if err != nil {
		log.Logger().Fatal("failed to load config", zap.Error(err))
	}
	return conf
}

// writeMetrics writes all registered metrics to a file in the Prometheus text format.
func writeMetrics(path string) error {
	return errors.Trace(prometheus.WriteToTextfile(path, prometheus.DefaultGatherer))
}

func init() {
	log.AddFlags(rootCommand.PersistentFlags())
	rootCommand.PersistentFlags().Bool("debug", false, "use debug log mode")
	rootCommand.PersistentFlags().StringP("config", "c", "", "configuration file path")
	rootCommand.PersistentFlags().StringP("model", "m", "reviewsim.model", "path of fitted model")
	rootCommand.PersistentFlags().String("metrics", "", "write metrics to this file after the command")
	rootCommand.AddCommand(versionCommand)
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		log.Logger().Fatal("failed to execute", zap.Error(err))
	}
}
