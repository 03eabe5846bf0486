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
	"errors"
	"fmt"
	"sort"

	"github.com/optakt/lsh-forest/models/ann"
)

// Candidate is one result of a query: a vector identifier and its score
// against the query vector. For similarity metrics higher scores are better,
// for distance metrics lower scores are.
type Candidate struct {
	VecID uint32
	Score float64
}

// QueryIter streams indexed vectors for a single query, approximately
// ordered from best to worst. It pulls buckets from every table in order of
// signature-prefix agreement with the query, keeps one accumulating frontier
// of candidate identifiers per table, and emits an identifier once it
// appears in every frontier. When no identifier does, it extends the
// smallest frontier, which maximizes the chance of a new intersection while
// keeping the total frontier size low.
//
// Emitted batches are internally ordered by score, but the stream as a whole
// is not globally monotonic; that is intrinsic to approximate retrieval.
// Every identifier is emitted at most once per query.
//
// A QueryIter holds per-query state only and leaves the forest untouched,
// so any number of them can be live at the same time. A single QueryIter
// must not be shared across goroutines. Dropping it is the only cleanup.
type QueryIter struct {
	forest    *Forest
	vector    []float64
	iters     []*bucketIter
	frontiers []map[uint32]struct{}
	pending   []Candidate
	done      bool
}

func newQueryIter(f *Forest, vector []float64) *QueryIter {

	iters := make([]*bucketIter, 0, len(f.tables))
	frontiers := make([]map[uint32]struct{}, 0, len(f.tables))
	for _, tbl := range f.tables {
		it := tbl.bucketIter(vector)
		frontier := make(map[uint32]struct{})

		// Prime the frontier with the bucket closest to the query. An
		// exhausted iterator here means the table is empty; the frontier
		// then stays empty and the first expansion ends the query.
		bucket, err := it.next()
		if err == nil {
			for _, id := range bucket {
				frontier[id] = struct{}{}
			}
		}

		iters = append(iters, it)
		frontiers = append(frontiers, frontier)
	}

	q := QueryIter{
		forest:    f,
		vector:    vector,
		iters:     iters,
		frontiers: frontiers,
	}

	return &q
}

// Next returns the next candidate. It fails with ErrFinished once the
// search space is exhausted; that is the normal terminal condition. One call
// performs bounded work unless many frontier extensions are needed before a
// new intersection appears.
func (q *QueryIter) Next() (Candidate, error) {

	if len(q.pending) > 0 {
		return q.pop(), nil
	}

	if q.done {
		return Candidate{}, ann.ErrFinished
	}

	for {
		intersection := q.intersect()
		if len(intersection) > 0 {

			// Subtract the intersection from every frontier, so that no
			// identifier is ever scored twice within one query.
			for _, frontier := range q.frontiers {
				for _, id := range intersection {
					delete(frontier, id)
				}
			}

			for _, id := range intersection {
				candidate := Candidate{
					VecID: id,
					Score: q.forest.policy.score(q.forest.corpus.Vector(id), q.vector),
				}
				q.pending = append(q.pending, candidate)
			}

			// Keep the best candidate at the end, where pop takes it.
			sort.Slice(q.pending, func(i int, j int) bool {
				return q.forest.policy.worse(q.pending[i].Score, q.pending[j].Score)
			})

			q.forest.metrics.CandidatesEmitted(len(intersection))

			return q.pop(), nil
		}

		// No intersection: extend the smallest frontier to maximize the
		// marginal probability of one appearing. Once the chosen table has
		// no buckets left, the search is over.
		smallest := q.smallest()
		bucket, err := q.iters[smallest].next()
		if errors.Is(err, ann.ErrFinished) {
			q.done = true
			return Candidate{}, ann.ErrFinished
		}
		if err != nil {
			return Candidate{}, fmt.Errorf("could not extend frontier for table %d: %w", smallest, err)
		}

		for _, id := range bucket {
			q.frontiers[smallest][id] = struct{}{}
		}

		q.forest.metrics.BucketsExpanded(1)
	}
}

// pop removes and returns the best pending candidate.
func (q *QueryIter) pop() Candidate {
	candidate := q.pending[len(q.pending)-1]
	q.pending = q.pending[:len(q.pending)-1]

	return candidate
}

// intersect returns the identifiers present in every frontier.
func (q *QueryIter) intersect() []uint32 {

	pivot := q.smallest()
	if len(q.frontiers[pivot]) == 0 {
		return nil
	}

	var intersection []uint32
Candidates:
	for id := range q.frontiers[pivot] {
		for t, frontier := range q.frontiers {
			if t == pivot {
				continue
			}
			_, ok := frontier[id]
			if !ok {
				continue Candidates
			}
		}
		intersection = append(intersection, id)
	}

	return intersection
}

// smallest returns the index of the smallest frontier, preferring the lowest
// index on ties.
func (q *QueryIter) smallest() int {
	smallest := 0
	for t, frontier := range q.frontiers {
		if len(frontier) < len(q.frontiers[smallest]) {
			smallest = t
		}
	}

	return smallest
}
