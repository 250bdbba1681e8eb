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

package text

import (
	"regexp"
	"strings"

	"github.com/juju/errors"
	"github.com/kljensen/snowball"
)

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Options controls how a Normalizer turns raw review text into tokens.
type Options struct {
	Tokenize        bool   `mapstructure:"tokenize"`          // split on word boundaries, otherwise on whitespace
	Lower           bool   `mapstructure:"lower"`             // case folding
	RemoveStopWords bool   `mapstructure:"remove_stop_words"` // drop stopwords
	Stem            bool   `mapstructure:"stem"`              // reduce tokens to stems
	Language        string `mapstructure:"language" validate:"required"`
}

// DefaultOptions enables every step for English text.
func DefaultOptions() Options {
	return Options{
		Tokenize:        true,
		Lower:           true,
		RemoveStopWords: true,
		Stem:            true,
		Language:        "english",
	}
}

// Normalizer turns raw text into a token sequence. The steps are always applied in the
// order tokenize, lower, stopword removal and stemming. A Normalizer is immutable and
// safe for concurrent use.
type Normalizer struct {
	options   Options
	stopWords map[string]struct{}
}

// NewNormalizer creates a Normalizer. It fails if the stemmer does not support the
// language or stopwords are requested for a language without a stopword list.
func NewNormalizer(options Options) (*Normalizer, error) {
	n := &Normalizer{options: options}
	if options.RemoveStopWords {
		words, ok := stopWords[options.Language]
		if !ok {
			return nil, errors.NotValidf("stopwords for language %q", options.Language)
		}
		n.stopWords = words
	}
	if options.Stem {
		if _, err := snowball.Stem("running", options.Language, true); err != nil {
			return nil, errors.NewNotValid(err, "stemmer")
		}
	}
	return n, nil
}

// Options returns the options of the normalizer.
func (n *Normalizer) Options() Options {
	return n.options
}

// Normalize converts text into tokens.
func (n *Normalizer) Normalize(text string) []string {
	var tokens []string
	if n.options.Tokenize {
		tokens = wordPattern.FindAllString(text, -1)
	} else {
		tokens = strings.Fields(text)
	}
	if n.options.Lower {
		for i := range tokens {
			tokens[i] = strings.ToLower(tokens[i])
		}
	}
	if n.options.RemoveStopWords {
		kept := tokens[:0]
		for _, token := range tokens {
			if _, stop := n.stopWords[token]; !stop {
				kept = append(kept, token)
			}
		}
		tokens = kept
	}
	if n.options.Stem {
		for i := range tokens {
			// The language has been checked in NewNormalizer.
			if stemmed, err := snowball.Stem(tokens[i], n.options.Language, true); err == nil {
				tokens[i] = stemmed
			}
		}
	}
	return tokens
}
