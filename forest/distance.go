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

	"gonum.org/v1/gonum/floats"

	"github.com/optakt/lsh-forest/models/ann"
)

// Metrics supported by the forest.
const (
	MetricCosine    = "cosine"
	MetricEuclidean = "euclidean"
)

// policy pairs a scoring function with its sort direction. The score of a
// candidate is either a similarity, where higher is better, or a distance,
// where lower is better; worse orders two scores so that candidate lists can
// be kept sorted with the best element last.
type policy struct {
	score func(u []float64, v []float64) float64
	worse func(a float64, b float64) bool
}

func newPolicy(metric string) (policy, error) {
	switch metric {
	case MetricCosine:
		p := policy{
			score: cosineSimilarity,
			worse: func(a float64, b float64) bool { return a < b },
		}
		return p, nil
	case MetricEuclidean:
		p := policy{
			score: euclideanDistance,
			worse: func(a float64, b float64) bool { return a > b },
		}
		return p, nil
	default:
		return policy{}, fmt.Errorf("%w (have: %s)", ann.ErrUnknownMetric, metric)
	}
}

func cosineSimilarity(u []float64, v []float64) float64 {
	return floats.Dot(u, v) / (floats.Norm(u, 2) * floats.Norm(v, 2))
}

func euclideanDistance(u []float64, v []float64) float64 {
	return floats.Distance(u, v, 2)
}
