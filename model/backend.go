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

package model

import (
	"context"

	"gonum.org/v1/gonum/mat"
)

// Backend turns an ordered corpus of item documents into a non-negative feature matrix.
// Row i of the matrix describes documents[i].
type Backend interface {
	// Fit the backend on documents and returns the feature matrix.
	Fit(ctx context.Context, documents []string, config *FitConfig) (*mat.Dense, error)
}

// FitConfig holds options that do not change the result of fitting.
type FitConfig struct {
	Jobs    int // number of goroutines
	Verbose int // log every Verbose epochs
}

func NewFitConfig() *FitConfig {
	return &FitConfig{
		Jobs:    1,
		Verbose: 10,
	}
}

func (config *FitConfig) SetVerbose(verbose int) *FitConfig {
	config.Verbose = verbose
	return config
}

func (config *FitConfig) SetJobs(jobs int) *FitConfig {
	config.Jobs = jobs
	return config
}

func (config *FitConfig) jobs() int {
	if config == nil || config.Jobs < 1 {
		return 1
	}
	return config.Jobs
}

func (config *FitConfig) verbose() int {
	if config == nil || config.Verbose < 1 {
		return 10
	}
	return config.Verbose
}
