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

// Package forest implements an approximate-nearest-neighbor index for dense
// real-valued vectors, built on a forest of locality-sensitive hash tables.
// Each table hashes every corpus vector to a bit-string signature and stores
// the resulting buckets in a PATRICIA trie. A query streams buckets from
// each table in order of signature-prefix agreement and merges them into a
// single candidate stream, approximately ordered from best to worst under
// the configured metric, without ever scanning the whole corpus.
package forest

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/optakt/lsh-forest/hasher"
	"github.com/optakt/lsh-forest/models/ann"
)

// progressInterval is the number of vectors between two progress log lines
// during an index build.
const progressInterval = 100_000

// Forest is an ensemble of independent locality-sensitive hash tables over
// one corpus of vectors. It is created unpopulated; IndexData builds the
// tables, after which the forest is frozen and safe for concurrent queries.
type Forest struct {
	log     zerolog.Logger
	cfg     Config
	corpus  ann.Corpus
	policy  policy
	metrics ann.Metrics
	tables  []*table
}

// New creates a forest over the given corpus with the given configuration.
// Each table receives its own hasher with independent random state, derived
// from the base seed.
func New(log zerolog.Logger, corpus ann.Corpus, cfg Config, options ...Option) (*Forest, error) {

	err := cfg.validate()
	if err != nil {
		return nil, err
	}

	pol, err := newPolicy(cfg.Metric)
	if err != nil {
		return nil, err
	}

	if corpus.Dim() != cfg.Dim {
		return nil, fmt.Errorf("corpus does not match configuration: %w (want: %d, have: %d)", ann.ErrDimensionMismatch, cfg.Dim, corpus.Dim())
	}

	opts := defaultOptions
	for _, option := range options {
		option(&opts)
	}

	factory := opts.hashers
	if factory == nil {
		factory = func(index int) (ann.Hasher, error) {
			return hasher.NewRandomProjection(cfg.NBits, cfg.Dim, opts.seed+uint64(index))
		}
	}

	tables := make([]*table, 0, cfg.NumTables)
	for i := 0; i < cfg.NumTables; i++ {
		hash, err := factory(i)
		if err != nil {
			return nil, fmt.Errorf("could not create hasher for table %d: %w", i, err)
		}
		if hash.Bits() != cfg.NBits {
			return nil, fmt.Errorf("%w: hasher signature length does not match configuration (want: %d, have: %d)", ann.ErrInvalidConfiguration, cfg.NBits, hash.Bits())
		}
		tables = append(tables, newTable(hash))
	}

	f := Forest{
		log:     log.With().Str("component", "forest").Logger(),
		cfg:     cfg,
		corpus:  corpus,
		policy:  pol,
		metrics: opts.metrics,
		tables:  tables,
	}

	return &f, nil
}

// IndexData clears all hash tables and indexes the full corpus into each of
// them. Tables are independent, so they build in parallel; inserts within
// one table are serialized. The call is idempotent and can be repeated to
// rebuild the index from the current corpus contents.
func (f *Forest) IndexData() error {

	start := time.Now()

	var g errgroup.Group
	errs := make([]error, len(f.tables))
	for i := range f.tables {
		i := i
		g.Go(func() error {
			errs[i] = f.indexTable(i)
			return nil
		})
	}
	_ = g.Wait()

	var combined error
	for i, err := range errs {
		if err != nil {
			combined = multierror.Append(combined, fmt.Errorf("could not index table %d: %w", i, err))
		}
	}
	if combined != nil {
		return combined
	}

	f.metrics.VectorsIndexed(int(f.corpus.Count()) * len(f.tables))

	f.log.Info().
		Int("num_tables", len(f.tables)).
		Uint32("num_vectors", f.corpus.Count()).
		Str("duration", time.Since(start).Round(time.Millisecond).String()).
		Msg("index build complete")

	return nil
}

// indexTable clears and rebuilds a single hash table from the corpus.
func (f *Forest) indexTable(index int) error {

	tbl := f.tables[index]
	tbl.clear()

	count := f.corpus.Count()
	for id := uint32(0); id < count; id++ {

		vector := f.corpus.Vector(id)
		if len(vector) != f.cfg.Dim {
			return fmt.Errorf("corpus vector has wrong dimension: %w (id: %d, want: %d, have: %d)", ann.ErrDimensionMismatch, id, f.cfg.Dim, len(vector))
		}

		tbl.insert(vector, id)

		if (id+1)%progressInterval == 0 {
			f.log.Debug().
				Int("table", index).
				Uint32("indexed", id+1).
				Uint32("total", count).
				Msg("indexing progress")
		}
	}

	f.log.Debug().
		Int("table", index).
		Int("signatures", tbl.trie.Leaves()).
		Uint32("vectors", count).
		Msg("table indexed")

	return nil
}

// QueryIter returns an iterator over the indexed vectors, approximately
// ordered from best to worst with respect to the query vector under the
// forest's metric. The forest must be frozen: no IndexData call may run
// while query iterators are live. Iterators are independent, so many queries
// can run concurrently.
func (f *Forest) QueryIter(vector []float64) (*QueryIter, error) {
	if len(vector) != f.cfg.Dim {
		return nil, fmt.Errorf("invalid query vector: %w (want: %d, have: %d)", ann.ErrDimensionMismatch, f.cfg.Dim, len(vector))
	}

	f.metrics.QueryStarted()

	return newQueryIter(f, vector), nil
}
