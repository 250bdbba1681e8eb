// Copyright 2020 gorse Project Authors
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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gorse-io/reviewsim/model"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshal(t *testing.T) {
	config, err := LoadConfig("config.toml")
	require.NoError(t, err)
	assert.Equal(t, AlgorithmTopic, config.Algorithm)
	assert.Equal(t, 4, config.FitJobs)
	assert.Equal(t, 5, config.FitVerbose)
	// [normalizer]
	assert.True(t, config.Normalizer.Tokenize)
	assert.True(t, config.Normalizer.Lower)
	assert.True(t, config.Normalizer.RemoveStopWords)
	assert.True(t, config.Normalizer.Stem)
	assert.Equal(t, "english", config.Normalizer.Language)
	// [topic]
	assert.Equal(t, 20, config.Topic.NumTopics)
	assert.Equal(t, int64(42), config.Topic.RandomState)
	assert.Equal(t, 10, config.Topic.MaxIter)
	assert.Equal(t, 100, config.Topic.MaxDocUpdateIter)
	assert.Equal(t, 0.001, config.Topic.MeanChangeTol)
	// [data_source]
	assert.Equal(t, "csv://reviews.csv", config.DataSource.Path)
	assert.Empty(t, config.DataSource.TablePrefix)
	assert.Equal(t, " ", config.DataSource.Separator)
	assert.Empty(t, config.DataSource.ReviewFilter)
}

func TestSetDefault(t *testing.T) {
	config, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, GetDefaultConfig(), config)
}

func TestPartialConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	err := os.WriteFile(path, []byte("algorithm = \"weight\"\n[topic]\nnum_topics = 5\n"), 0644)
	require.NoError(t, err)
	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, AlgorithmWeight, config.Algorithm)
	assert.Equal(t, 5, config.Topic.NumTopics)
	assert.Equal(t, 10, config.Topic.MaxIter)
	assert.Equal(t, "english", config.Normalizer.Language)
}

func TestBindEnv(t *testing.T) {
	t.Setenv("REVIEWSIM_ALGORITHM", "weight")
	t.Setenv("REVIEWSIM_FIT_JOBS", "8")
	t.Setenv("REVIEWSIM_FIT_VERBOSE", "2")
	t.Setenv("REVIEWSIM_NUM_TOPICS", "7")
	t.Setenv("REVIEWSIM_DATA_SOURCE", "sqlite://reviews.db")
	t.Setenv("REVIEWSIM_TABLE_PREFIX", "shop_")
	t.Setenv("REVIEWSIM_REVIEW_FILTER", "review.Text != ''")
	config, err := LoadConfig("config.toml")
	require.NoError(t, err)
	assert.Equal(t, AlgorithmWeight, config.Algorithm)
	assert.Equal(t, 8, config.FitJobs)
	assert.Equal(t, 2, config.FitVerbose)
	assert.Equal(t, 7, config.Topic.NumTopics)
	assert.Equal(t, "sqlite://reviews.db", config.DataSource.Path)
	assert.Equal(t, "shop_", config.DataSource.TablePrefix)
	assert.Equal(t, "review.Text != ''", config.DataSource.ReviewFilter)
	// check values from file
	assert.Equal(t, int64(42), config.Topic.RandomState)
}

func TestValidate(t *testing.T) {
	config := GetDefaultConfig()
	assert.NoError(t, config.Validate())

	config = GetDefaultConfig()
	config.Algorithm = "bm25"
	err := config.Validate()
	assert.True(t, errors.Is(err, errors.NotValid))
	assert.Contains(t, err.Error(), "Algorithm")

	config = GetDefaultConfig()
	config.Topic.NumTopics = 0
	assert.True(t, errors.Is(config.Validate(), errors.NotValid))

	config = GetDefaultConfig()
	config.FitJobs = 0
	assert.True(t, errors.Is(config.Validate(), errors.NotValid))

	config = GetDefaultConfig()
	config.FitVerbose = 0
	assert.True(t, errors.Is(config.Validate(), errors.NotValid))

	config = GetDefaultConfig()
	config.Normalizer.Language = ""
	assert.True(t, errors.Is(config.Validate(), errors.NotValid))

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[topic]\nnum_topics = -1\n"), 0644))
	_, err = LoadConfig(path)
	assert.True(t, errors.Is(err, errors.NotValid))
}

func TestGetParams(t *testing.T) {
	config := GetDefaultConfig()
	params := config.Topic.GetParams()
	assert.Equal(t, 20, params.GetInt(model.NTopics, 0))
	assert.Equal(t, int64(0), params.GetInt64(model.RandomState, -1))
	assert.Equal(t, 10, params.GetInt(model.NEpochs, 0))
	assert.Equal(t, 100, params.GetInt(model.NDocEpochs, 0))
	assert.Equal(t, 1e-3, params.GetFloat64(model.MeanChangeTol, 0))
	assert.Equal(t, 1, config.GetFitConfig().Jobs)
	assert.Equal(t, 10, config.GetFitConfig().Verbose)
}

func TestGetAggregateOptions(t *testing.T) {
	config := GetDefaultConfig()
	opts, err := config.DataSource.GetAggregateOptions()
	require.NoError(t, err)
	assert.Nil(t, opts.Filter)
	assert.Equal(t, " ", opts.Separator)

	config.DataSource.ReviewFilter = "len(review.Text) > 3"
	opts, err = config.DataSource.GetAggregateOptions()
	require.NoError(t, err)
	assert.NotNil(t, opts.Filter)

	config.DataSource.ReviewFilter = "review.Rating > 3"
	_, err = config.DataSource.GetAggregateOptions()
	assert.True(t, errors.Is(err, errors.NotValid))
}
