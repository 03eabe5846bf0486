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

package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/optakt/lsh-forest/forest"
	"github.com/optakt/lsh-forest/models/ann"
	"github.com/optakt/lsh-forest/service/loader"
	"github.com/optakt/lsh-forest/service/metrics"
)

func main() {

	// Signal catching for clean shutdown.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)

	// Command line parameter initialization.
	var (
		flagCorpus  string
		flagQueries string
		flagNBits   int
		flagTables  int
		flagMetric  string
		flagSeed    uint64
		flagTopK    int
		flagLog     string
		flagMetrics string
	)

	pflag.StringVarP(&flagCorpus, "corpus", "c", "", "fvecs file with the vectors to index")
	pflag.StringVarP(&flagQueries, "queries", "q", "", "fvecs file with the query vectors")
	pflag.IntVarP(&flagNBits, "nbits", "b", 16, "signature length in bits")
	pflag.IntVarP(&flagTables, "tables", "t", 8, "number of hash tables")
	pflag.StringVarP(&flagMetric, "metric", "m", forest.MetricCosine, "distance metric, cosine or euclidean")
	pflag.Uint64VarP(&flagSeed, "seed", "s", 1, "base seed for hasher random state")
	pflag.IntVarP(&flagTopK, "top", "k", 10, "number of candidates to report per query")
	pflag.StringVarP(&flagLog, "log", "l", "info", "log output level")
	pflag.StringVarP(&flagMetrics, "metrics", "e", "", "address to expose Prometheus metrics on, empty to disable")

	pflag.Parse()

	// Logger initialization.
	zerolog.TimestampFunc = func() time.Time { return time.Now().UTC() }
	log := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zerolog.DebugLevel)
	level, err := zerolog.ParseLevel(flagLog)
	if err != nil {
		log.Fatal().Err(err).Msg("could not parse log level")
	}
	log = log.Level(level)

	// Optional metrics endpoint.
	if flagMetrics != "" {
		go func() {
			http.Handle("/metrics", promhttp.Handler())
			err := http.ListenAndServe(flagMetrics, nil)
			if err != nil {
				log.Error().Err(err).Str("address", flagMetrics).Msg("metrics server failed")
			}
		}()
	}

	// Load the corpus and initialize the forest.
	corpus, err := loader.FromFvecs(log, flagCorpus)
	if err != nil {
		log.Fatal().Err(err).Str("corpus", flagCorpus).Msg("could not load corpus")
	}

	cfg := forest.Config{
		NBits:     flagNBits,
		Dim:       corpus.Dim(),
		NumTables: flagTables,
		Metric:    flagMetric,
	}
	index, err := forest.New(log, corpus, cfg,
		forest.WithSeed(flagSeed),
		forest.WithMetrics(metrics.NewForest()),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("could not initialize forest")
	}

	// This section launches the index build and the query run in their own
	// goroutine, so we can keep catching interrupts while they execute.
	done := make(chan struct{})
	go func() {
		defer close(done)

		start := time.Now()
		log.Info().Time("start", start).Msg("LSH forest search starting")

		err := index.IndexData()
		if err != nil {
			log.Error().Err(err).Msg("could not build index")
			return
		}

		queries, err := loader.FromFvecs(log, flagQueries)
		if err != nil {
			log.Error().Err(err).Str("queries", flagQueries).Msg("could not load queries")
			return
		}

		for id := uint32(0); id < queries.Count(); id++ {
			err := runQuery(index, queries.Vector(id), id, flagTopK)
			if err != nil {
				log.Error().Err(err).Uint32("query", id).Msg("could not run query")
				return
			}
		}

		finish := time.Now()
		duration := finish.Sub(start)
		log.Info().Time("finish", finish).Str("duration", duration.Round(time.Millisecond).String()).Msg("LSH forest search done")
	}()

	select {
	case <-sig:
		log.Info().Msg("LSH forest search stopping")
	case <-done:
	}
	go func() {
		<-sig
		log.Warn().Msg("forcing exit")
		os.Exit(1)
	}()
}

// runQuery drains up to k candidates for one query vector and prints them.
func runQuery(index *forest.Forest, vector []float64, id uint32, k int) error {

	it, err := index.QueryIter(vector)
	if err != nil {
		return fmt.Errorf("could not create query iterator: %w", err)
	}

	for rank := 0; rank < k; rank++ {
		candidate, err := it.Next()
		if errors.Is(err, ann.ErrFinished) {
			break
		}
		if err != nil {
			return fmt.Errorf("could not advance query iterator: %w", err)
		}
		fmt.Printf("query %d rank %d: vector %d score %f\n", id, rank, candidate.VecID, candidate.Score)
	}

	return nil
}
