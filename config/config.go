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
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/gorse-io/reviewsim/dataset"
	"github.com/gorse-io/reviewsim/model"
	"github.com/gorse-io/reviewsim/text"
	"github.com/juju/errors"
	"github.com/spf13/viper"
)

const (
	AlgorithmTopic  = "topic"
	AlgorithmWeight = "weight"
)

// Config is the configuration for fitting a review similarity model.
type Config struct {
	Algorithm  string           `mapstructure:"algorithm" validate:"oneof=topic weight"`
	FitJobs    int              `mapstructure:"fit_jobs" validate:"gte=1"`
	FitVerbose int              `mapstructure:"fit_verbose" validate:"gte=1"`
	Normalizer text.Options     `mapstructure:"normalizer"`
	Topic      TopicConfig      `mapstructure:"topic"`
	DataSource DataSourceConfig `mapstructure:"data_source"`
}

// TopicConfig is the configuration of the topic model.
type TopicConfig struct {
	NumTopics        int     `mapstructure:"num_topics" validate:"gt=0"`
	RandomState      int64   `mapstructure:"random_state"`
	MaxIter          int     `mapstructure:"max_iter" validate:"gte=0"`
	MaxDocUpdateIter int     `mapstructure:"max_doc_update_iter" validate:"gt=0"`
	MeanChangeTol    float64 `mapstructure:"mean_change_tol" validate:"gte=0"`
}

// DataSourceConfig is the configuration of review loading and aggregation.
type DataSourceConfig struct {
	Path         string `mapstructure:"path"`
	TablePrefix  string `mapstructure:"table_prefix"`
	Separator    string `mapstructure:"separator"`
	ReviewFilter string `mapstructure:"review_filter"`
}

func GetDefaultConfig() *Config {
	return &Config{
		Algorithm:  AlgorithmTopic,
		FitJobs:    1,
		FitVerbose: 10,
		Normalizer: text.DefaultOptions(),
		Topic: TopicConfig{
			NumTopics:        20,
			RandomState:      0,
			MaxIter:          10,
			MaxDocUpdateIter: 100,
			MeanChangeTol:    1e-3,
		},
		DataSource: DataSourceConfig{
			Separator: dataset.DefaultSeparator,
		},
	}
}

// GetParams returns hyper-parameters of the topic model.
func (config *TopicConfig) GetParams() model.Params {
	return model.Params{
		model.NTopics:       config.NumTopics,
		model.RandomState:   config.RandomState,
		model.NEpochs:       config.MaxIter,
		model.NDocEpochs:    config.MaxDocUpdateIter,
		model.MeanChangeTol: config.MeanChangeTol,
	}
}

// GetFitConfig returns options of fitting.
func (config *Config) GetFitConfig() *model.FitConfig {
	return model.NewFitConfig().
		SetJobs(config.FitJobs).
		SetVerbose(config.FitVerbose)
}

// GetAggregateOptions compiles the review filter and returns options of aggregation.
func (config *DataSourceConfig) GetAggregateOptions() (dataset.AggregateOptions, error) {
	filter, err := dataset.CompileFilter(config.ReviewFilter)
	if err != nil {
		return dataset.AggregateOptions{}, errors.Trace(err)
	}
	return dataset.AggregateOptions{
		Separator: config.Separator,
		Filter:    filter,
	}, nil
}

// Validate checks the configuration. Errors are NotValid.
func (config *Config) Validate() error {
	validate := validator.New()
	err := validate.Struct(config)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return errors.NewNotValid(err, "invalid config")
	}
	// translate errors
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return errors.Trace(err)
	}
	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, e.Translate(trans))
	}
	return errors.NotValidf("config: %s", strings.Join(messages, "; "))
}

func setDefault(v *viper.Viper) {
	defaultConfig := GetDefaultConfig()
	v.SetDefault("algorithm", defaultConfig.Algorithm)
	v.SetDefault("fit_jobs", defaultConfig.FitJobs)
	v.SetDefault("fit_verbose", defaultConfig.FitVerbose)
	// [normalizer]
	v.SetDefault("normalizer.tokenize", defaultConfig.Normalizer.Tokenize)
	v.SetDefault("normalizer.lower", defaultConfig.Normalizer.Lower)
	v.SetDefault("normalizer.remove_stop_words", defaultConfig.Normalizer.RemoveStopWords)
	v.SetDefault("normalizer.stem", defaultConfig.Normalizer.Stem)
	v.SetDefault("normalizer.language", defaultConfig.Normalizer.Language)
	// [topic]
	v.SetDefault("topic.num_topics", defaultConfig.Topic.NumTopics)
	v.SetDefault("topic.random_state", defaultConfig.Topic.RandomState)
	v.SetDefault("topic.max_iter", defaultConfig.Topic.MaxIter)
	v.SetDefault("topic.max_doc_update_iter", defaultConfig.Topic.MaxDocUpdateIter)
	v.SetDefault("topic.mean_change_tol", defaultConfig.Topic.MeanChangeTol)
	// [data_source]
	v.SetDefault("data_source.path", defaultConfig.DataSource.Path)
	v.SetDefault("data_source.table_prefix", defaultConfig.DataSource.TablePrefix)
	v.SetDefault("data_source.separator", defaultConfig.DataSource.Separator)
	v.SetDefault("data_source.review_filter", defaultConfig.DataSource.ReviewFilter)
}

type configBinding struct {
	key string
	env string
}

func bindEnv(v *viper.Viper) error {
	bindings := []configBinding{
		{"algorithm", "REVIEWSIM_ALGORITHM"},
		{"fit_jobs", "REVIEWSIM_FIT_JOBS"},
		{"fit_verbose", "REVIEWSIM_FIT_VERBOSE"},
		{"normalizer.language", "REVIEWSIM_LANGUAGE"},
		{"topic.num_topics", "REVIEWSIM_NUM_TOPICS"},
		{"topic.random_state", "REVIEWSIM_RANDOM_STATE"},
		{"data_source.path", "REVIEWSIM_DATA_SOURCE"},
		{"data_source.table_prefix", "REVIEWSIM_TABLE_PREFIX"},
		{"data_source.review_filter", "REVIEWSIM_REVIEW_FILTER"},
	}
	for _, binding := range bindings {
		if err := v.BindEnv(binding.key, binding.env); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

// LoadConfig loads configuration from a TOML file. Environment variables override the file
// and missing values fall back to defaults. An empty path loads defaults and environment
// variables only.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefault(v)
	if err := bindEnv(v); err != nil {
		return nil, errors.Trace(err)
	}
	if path != "" {
		v.SetConfigType("toml")
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Trace(err)
		}
	}
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Trace(err)
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &config, nil
}
