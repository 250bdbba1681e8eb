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
	"bufio"
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/gorse-io/reviewsim/base/log"
	"github.com/gorse-io/reviewsim/logics"
	"github.com/gorse-io/reviewsim/storage"
	"github.com/juju/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const importBatchSize = 1000

var fitCommand = &cobra.Command{
	Use:   "fit",
	Short: "Fit a model from reviews and save it",
	Run: func(cmd *cobra.Command, args []string) {
		conf := loadConfig(cmd)
		if source, _ := cmd.Flags().GetString("source"); source != "" {
			conf.DataSource.Path = source
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		// load reviews
		start := time.Now()
		log.Logger().Info("load reviews", zap.String("source", log.RedactDBURL(conf.DataSource.Path)))
		source, err := storage.Open(conf.DataSource.Path, conf.DataSource.TablePrefix)
		if err != nil {
			log.Logger().Fatal("failed to open review source", zap.Error(err))
		}
		defer source.Close()
		reviews, err := source.LoadReviews(ctx)
		if err != nil {
			log.Logger().Fatal("failed to load reviews", zap.Error(err))
		}
		log.Logger().Info("load reviews complete",
			zap.Int("n_reviews", len(reviews)),
			zap.String("load_time", time.Since(start).String()))
		// fit model
		predictor, err := logics.Fit(ctx, reviews, conf)
		if err != nil {
			log.Logger().Fatal("failed to fit model", zap.Error(err))
		}
		// save model
		modelPath, _ := cmd.Flags().GetString("model")
		if err = saveSnapshot(modelPath, predictor.Snapshot()); err != nil {
			log.Logger().Fatal("failed to save model", zap.Error(err))
		}
		log.Logger().Info("save model", zap.String("path", modelPath),
			zap.String("algorithm", predictor.Algorithm()),
			zap.String("fit_time", time.Since(start).String()))
	},
}

var importCommand = &cobra.Command{
	Use:   "import <csv file>",
	Short: "Import reviews from a CSV file (user,item,review) into the review source",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		conf := loadConfig(cmd)
		if source, _ := cmd.Flags().GetString("source"); source != "" {
			conf.DataSource.Path = source
		}
		ctx := context.Background()
		reviews, err := storage.NewCSV(args[0]).LoadReviews(ctx)
		if err != nil {
			log.Logger().Fatal("failed to read reviews", zap.Error(err))
		}
		source, err := storage.Open(conf.DataSource.Path, conf.DataSource.TablePrefix)
		if err != nil {
			log.Logger().Fatal("failed to open review source", zap.Error(err))
		}
		defer source.Close()
		if err = source.Init(); err != nil {
			log.Logger().Fatal("failed to init review source", zap.Error(err))
		}
		bar := progressbar.Default(int64(len(reviews)), "Importing reviews")
		for begin := 0; begin < len(reviews); begin += importBatchSize {
			end := min(begin+importBatchSize, len(reviews))
			if err = source.BatchInsertReviews(ctx, reviews[begin:end]); err != nil {
				log.Logger().Fatal("failed to insert reviews", zap.Error(err))
			}
			_ = bar.Add(end - begin)
		}
		_ = bar.Finish()
		log.Logger().Info("import reviews complete", zap.Int("n_reviews", len(reviews)))
	},
}

func saveSnapshot(path string, snapshot *logics.Snapshot) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Trace(err)
	}
	w := bufio.NewWriter(file)
	if err = snapshot.Marshal(w); err != nil {
		_ = file.Close()
		return errors.Trace(err)
	}
	if err = w.Flush(); err != nil {
		_ = file.Close()
		return errors.Trace(err)
	}
	return file.Close()
}

func loadSnapshot(path string) (*logics.Predictor, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFoundf("model %s", path)
		}
		return nil, errors.Trace(err)
	}
	defer file.Close()
	snapshot, err := logics.UnmarshalSnapshot(bufio.NewReader(file))
	if err != nil {
		return nil, errors.Trace(err)
	}
	return logics.NewPredictor(snapshot)
}

func init() {
	fitCommand.Flags().String("source", "", "review source, overrides data_source.path")
	importCommand.Flags().String("source", "", "review source, overrides data_source.path")
	rootCommand.AddCommand(fitCommand, importCommand)
}
