// Copyright 2021 Optakt Labs OÜ
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

package forest

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/optakt/lsh-forest/models/ann"
)

// Config holds the construction parameters of a forest.
type Config struct {
	NBits     int    `validate:"gt=0"`
	Dim       int    `validate:"gt=0"`
	NumTables int    `validate:"gt=0"`
	Metric    string `validate:"required"`
}

// validate checks the configuration parameters against their allowed ranges.
func (c Config) validate() error {
	err := validator.New().Struct(c)
	if err != nil {
		return fmt.Errorf("%w: %v", ann.ErrInvalidConfiguration, err)
	}

	return nil
}

// Option is a functional option to configure optional forest behavior.
type Option func(*options)

type options struct {
	seed    uint64
	metrics ann.Metrics
	hashers func(index int) (ann.Hasher, error)
}

// defaultOptions are the options used when none are given.
var defaultOptions = options{
	seed:    1,
	metrics: ann.NopMetrics{},
}

// WithSeed sets the base seed from which the independent random state of
// each hash table is derived. Two forests built with the same seed and
// configuration over the same corpus are identical.
func WithSeed(seed uint64) Option {
	return func(opts *options) {
		opts.seed = seed
	}
}

// WithMetrics sets the sink for the forest's operational counters.
func WithMetrics(metrics ann.Metrics) Option {
	return func(opts *options) {
		opts.metrics = metrics
	}
}

// WithHashers sets the factory that creates the hasher for each table,
// replacing the default random projection family. Hashers produced by the
// factory must have independent random state per table index and must
// produce signatures of the configured number of bits.
func WithHashers(factory func(index int) (ann.Hasher, error)) Option {
	return func(opts *options) {
		opts.hashers = factory
	}
}
