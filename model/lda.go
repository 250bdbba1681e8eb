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
	"fmt"
	"math"
	"time"

	"github.com/gorse-io/reviewsim/base"
	"github.com/gorse-io/reviewsim/base/log"
	"github.com/gorse-io/reviewsim/common/parallel"
	"github.com/gorse-io/reviewsim/text"
	"github.com/juju/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/mathext"
)

// machine epsilon of float64
var epsilon = math.Nextafter(1, 2) - 1

// LDA is latent Dirichlet allocation fitted by batch variational Bayes. The feature of a document
// is its normalized topic distribution.
type LDA struct {
	Params     Params
	vectorizer *CountVectorizer
	// Hyper-parameters
	nTopics        int
	randomState    int64
	nEpochs        int
	nDocEpochs     int
	meanChangeTol  float64
	docTopicPrior  float64
	topicWordPrior float64
	// Fitted topic word parameters
	components *mat.Dense
}

func NewLDA(normalizer *text.Normalizer, params Params) *LDA {
	lda := &LDA{vectorizer: NewCountVectorizer(normalizer)}
	lda.SetParams(params)
	return lda
}

// SetParams sets hyper-parameters of the LDA model.
func (lda *LDA) SetParams(params Params) {
	lda.Params = params
	lda.nTopics = lda.Params.GetInt(NTopics, 20)
	lda.randomState = lda.Params.GetInt64(RandomState, 0)
	lda.nEpochs = lda.Params.GetInt(NEpochs, 10)
	lda.nDocEpochs = lda.Params.GetInt(NDocEpochs, 100)
	lda.meanChangeTol = lda.Params.GetFloat64(MeanChangeTol, 1e-3)
	prior := 0.0
	if lda.nTopics > 0 {
		prior = 1 / float64(lda.nTopics)
	}
	lda.docTopicPrior = lda.Params.GetFloat64(DocTopicPrior, prior)
	lda.topicWordPrior = lda.Params.GetFloat64(TopicWordPrior, prior)
}

// GetParams returns all hyper-parameters.
func (lda *LDA) GetParams() Params {
	return lda.Params.Copy()
}

// Components returns the fitted K × V topic word parameters. It is nil before Fit.
func (lda *LDA) Components() *mat.Dense {
	return lda.components
}

func (lda *LDA) validate() error {
	if lda.nTopics <= 0 {
		return errors.NotValidf("number of topics %d", lda.nTopics)
	}
	if lda.nEpochs < 0 || lda.nDocEpochs <= 0 {
		return errors.NotValidf("number of epochs %d/%d", lda.nEpochs, lda.nDocEpochs)
	}
	if lda.docTopicPrior <= 0 || lda.topicWordPrior <= 0 {
		return errors.NotValidf("priors %v/%v", lda.docTopicPrior, lda.topicWordPrior)
	}
	return nil
}

// docState is the variational state of a document after an E-step.
type docState struct {
	gamma        []float64
	expElogTheta []float64
	ratio        []float64 // count / phinorm per term of the document
}

// Fit topic distributions of documents. Results only depend on documents and
// hyper-parameters, not on the number of jobs.
func (lda *LDA) Fit(ctx context.Context, documents []string, config *FitConfig) (*mat.Dense, error) {
	if err := lda.validate(); err != nil {
		return nil, errors.Trace(err)
	}
	start := time.Now()
	bow, err := lda.vectorizer.FitTransform(ctx, documents, config.jobs())
	if err != nil {
		return nil, errors.Trace(err)
	}
	log.Logger().Info("fit lda",
		zap.Int("n_documents", bow.CountDocuments()),
		zap.Int("n_terms", bow.CountTerms()),
		zap.String("params", lda.GetParams().ToString()),
		zap.Int("n_jobs", config.jobs()))
	// Initialize topic word parameters
	rng := base.NewRandomGenerator(lda.randomState)
	lda.components = mat.NewDense(lda.nTopics, bow.CountTerms(), nil)
	for k, row := range rng.NormalMatrix64(lda.nTopics, bow.CountTerms(), 1, 0.1) {
		for w := range row {
			row[w] = math.Max(row[w], 1e-2)
		}
		lda.components.SetRow(k, row)
	}
	// Training
	expElogBeta := mat.NewDense(lda.nTopics, bow.CountTerms(), nil)
	for epoch := 1; epoch <= lda.nEpochs; epoch++ {
		epochStart := time.Now()
		expDirichletExpectation(lda.components, expElogBeta)
		states, err := lda.eStep(ctx, bow, expElogBeta, config.jobs())
		if err != nil {
			return nil, errors.Trace(err)
		}
		change := lda.mStep(bow, states, expElogBeta)
		if epoch%config.verbose() == 0 || epoch == lda.nEpochs {
			log.Logger().Debug(fmt.Sprintf("fit lda %v/%v", epoch, lda.nEpochs),
				zap.Float64("mean_change", change),
				zap.String("epoch_time", time.Since(epochStart).String()))
		}
	}
	// Infer topic distributions
	expDirichletExpectation(lda.components, expElogBeta)
	states, err := lda.eStep(ctx, bow, expElogBeta, config.jobs())
	if err != nil {
		return nil, errors.Trace(err)
	}
	features := mat.NewDense(bow.CountDocuments(), lda.nTopics, nil)
	for d, state := range states {
		row := features.RawRowView(d)
		sum := 0.0
		for _, g := range state.gamma {
			sum += g
		}
		for k, g := range state.gamma {
			row[k] = g / sum
		}
	}
	log.Logger().Info("fit lda complete",
		zap.Int("n_topics", lda.nTopics),
		zap.String("fit_time", time.Since(start).String()))
	return features, nil
}

// eStep infers variational parameters of every document.
func (lda *LDA) eStep(ctx context.Context, bow *BagOfWords, expElogBeta *mat.Dense, jobs int) ([]docState, error) {
	states := make([]docState, bow.CountDocuments())
	err := parallel.Parallel(ctx, bow.CountDocuments(), jobs, func(_, jobId int) error {
		states[jobId] = lda.inferDocument(bow.Documents[jobId], expElogBeta)
		return nil
	})
	return states, err
}

func (lda *LDA) inferDocument(doc Document, expElogBeta *mat.Dense) docState {
	state := docState{
		gamma:        make([]float64, lda.nTopics),
		expElogTheta: make([]float64, lda.nTopics),
		ratio:        make([]float64, len(doc.Terms)),
	}
	for k := range state.gamma {
		state.gamma[k] = 1
	}
	expDirichletExpectationVec(state.gamma, state.expElogTheta)
	phiNorm := make([]float64, len(doc.Terms))
	lda.phiNorm(doc, state.expElogTheta, expElogBeta, phiNorm)
	last := make([]float64, lda.nTopics)
	for iter := 0; iter < lda.nDocEpochs; iter++ {
		copy(last, state.gamma)
		for k := range state.gamma {
			beta := expElogBeta.RawRowView(k)
			sum := 0.0
			for j, term := range doc.Terms {
				sum += doc.Counts[j] / phiNorm[j] * beta[term]
			}
			state.gamma[k] = lda.docTopicPrior + state.expElogTheta[k]*sum
		}
		expDirichletExpectationVec(state.gamma, state.expElogTheta)
		lda.phiNorm(doc, state.expElogTheta, expElogBeta, phiNorm)
		if meanChange(last, state.gamma) < lda.meanChangeTol {
			break
		}
	}
	for j := range doc.Terms {
		state.ratio[j] = doc.Counts[j] / phiNorm[j]
	}
	return state
}

func (lda *LDA) phiNorm(doc Document, expElogTheta []float64, expElogBeta *mat.Dense, dst []float64) {
	for j := range dst {
		dst[j] = epsilon
	}
	for k, theta := range expElogTheta {
		beta := expElogBeta.RawRowView(k)
		for j, term := range doc.Terms {
			dst[j] += theta * beta[term]
		}
	}
}

// mStep accumulates sufficient statistics in document order and updates topic word parameters.
// It returns the mean absolute change of the parameters.
func (lda *LDA) mStep(bow *BagOfWords, states []docState, expElogBeta *mat.Dense) float64 {
	sstats := mat.NewDense(lda.nTopics, bow.CountTerms(), nil)
	for d, state := range states {
		doc := bow.Documents[d]
		for k, theta := range state.expElogTheta {
			row := sstats.RawRowView(k)
			for j, term := range doc.Terms {
				row[term] += theta * state.ratio[j]
			}
		}
	}
	change := 0.0
	for k := 0; k < lda.nTopics; k++ {
		lambda := lda.components.RawRowView(k)
		beta := expElogBeta.RawRowView(k)
		stats := sstats.RawRowView(k)
		for w := range lambda {
			updated := lda.topicWordPrior + stats[w]*beta[w]
			change += math.Abs(updated - lambda[w])
			lambda[w] = updated
		}
	}
	return change / float64(lda.nTopics*bow.CountTerms())
}

// expDirichletExpectation computes exp(E[log x]) for each row x ~ Dir(alpha) of alpha.
func expDirichletExpectation(alpha, dst *mat.Dense) {
	rows, _ := alpha.Dims()
	for i := 0; i < rows; i++ {
		expDirichletExpectationVec(alpha.RawRowView(i), dst.RawRowView(i))
	}
}

func expDirichletExpectationVec(alpha, dst []float64) {
	sum := 0.0
	for _, a := range alpha {
		sum += a
	}
	psiSum := mathext.Digamma(sum)
	for i, a := range alpha {
		dst[i] = math.Exp(mathext.Digamma(a) - psiSum)
	}
}

func meanChange(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += math.Abs(a[i] - b[i])
	}
	return sum / float64(len(a))
}
