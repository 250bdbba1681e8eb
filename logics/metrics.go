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

package logics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	LabelAlgorithm = "algorithm"
	LabelKind      = "kind"
	LabelStep      = "step"
)

var (
	PredictTotalVec = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "reviewsim",
		Subsystem: "predictor",
		Name:      "predict_total",
	}, []string{LabelAlgorithm})
	LookupMissTotalVec = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "reviewsim",
		Subsystem: "predictor",
		Name:      "lookup_miss_total",
	}, []string{LabelKind})
	FitSecondsVec = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "reviewsim",
		Subsystem: "predictor",
		Name:      "fit_seconds",
	}, []string{LabelStep})
)
