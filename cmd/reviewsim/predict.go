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
	"os"
	"strconv"

	"github.com/gorse-io/reviewsim/base/log"
	"github.com/gorse-io/reviewsim/logics"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var predictCommand = &cobra.Command{
	Use:   "predict <user> <item>...",
	Short: "Predict scores of items for a user",
	Args:  cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		predictor := mustLoadPredictor(cmd)
		scores := predictor.PredictForUser(args[0], args[1:])
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Item", "Score")
		for i, itemId := range args[1:] {
			_ = table.Append([]string{itemId, formatScore(scores[i])})
		}
		_ = table.Render()
	},
}

var recommendCommand = &cobra.Command{
	Use:   "recommend <user>",
	Short: "Recommend items for a user",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		predictor := mustLoadPredictor(cmd)
		n, _ := cmd.Flags().GetInt("n")
		includeHistory, _ := cmd.Flags().GetBool("include-history")
		renderScores(predictor.Recommend(args[0], n, !includeHistory))
	},
}

var similarCommand = &cobra.Command{
	Use:   "similar <item>",
	Short: "Find items similar to an item",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		predictor := mustLoadPredictor(cmd)
		n, _ := cmd.Flags().GetInt("n")
		renderScores(predictor.SimilarItems(args[0], n))
	},
}

func mustLoadPredictor(cmd *cobra.Command) *logics.Predictor {
	modelPath, _ := cmd.Flags().GetString("model")
	predictor, err := loadSnapshot(modelPath)
	if err != nil {
		log.Logger().Fatal("failed to load model", zap.String("path", modelPath), zap.Error(err))
	}
	return predictor
}

func renderScores(scores []logics.Score) {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Rank", "Item", "Score")
	for i, score := range scores {
		_ = table.Append([]string{strconv.Itoa(i + 1), score.ItemId, formatScore(score.Score)})
	}
	_ = table.Render()
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', 6, 64)
}

func init() {
	recommendCommand.Flags().IntP("n", "n", 10, "number of items")
	recommendCommand.Flags().Bool("include-history", false, "include items reviewed by the user")
	similarCommand.Flags().IntP("n", "n", 10, "number of items")
	rootCommand.AddCommand(predictCommand, recommendCommand, similarCommand)
}
