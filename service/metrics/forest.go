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

// Package metrics exposes the forest's operational counters as Prometheus
// collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespaceForest = "lsh_forest"

// Forest counts index and query activity and exposes this information as
// Prometheus counters. It implements the metrics capability consumed by the
// forest.
type Forest struct {
	vectors    prometheus.Counter
	queries    prometheus.Counter
	expansions prometheus.Counter
	candidates prometheus.Counter
}

// NewForest creates and registers the forest counters on the default
// Prometheus registry.
func NewForest() *Forest {
	vectorOpts := prometheus.CounterOpts{
		Name:      "indexed_vectors",
		Namespace: namespaceForest,
		Help:      "number of vector insertions across all hash tables",
	}
	vectors := promauto.NewCounter(vectorOpts)

	queryOpts := prometheus.CounterOpts{
		Name:      "queries_started",
		Namespace: namespaceForest,
		Help:      "number of query iterators created",
	}
	queries := promauto.NewCounter(queryOpts)

	expansionOpts := prometheus.CounterOpts{
		Name:      "buckets_expanded",
		Namespace: namespaceForest,
		Help:      "number of buckets merged into query frontiers after the first bucket of each table",
	}
	expansions := promauto.NewCounter(expansionOpts)

	candidateOpts := prometheus.CounterOpts{
		Name:      "candidates_emitted",
		Namespace: namespaceForest,
		Help:      "number of scored candidates emitted by queries",
	}
	candidates := promauto.NewCounter(candidateOpts)

	f := Forest{
		vectors:    vectors,
		queries:    queries,
		expansions: expansions,
		candidates: candidates,
	}

	return &f
}

func (f *Forest) VectorsIndexed(count int) {
	f.vectors.Add(float64(count))
}

func (f *Forest) QueryStarted() {
	f.queries.Inc()
}

func (f *Forest) BucketsExpanded(count int) {
	f.expansions.Add(float64(count))
}

func (f *Forest) CandidatesEmitted(count int) {
	f.candidates.Add(float64(count))
}
