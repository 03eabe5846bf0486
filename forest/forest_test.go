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

package forest_test

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optakt/lsh-forest/bitstring"
	"github.com/optakt/lsh-forest/forest"
	"github.com/optakt/lsh-forest/models/ann"
	"github.com/optakt/lsh-forest/testing/mocks"
)

// unitVector returns the two-dimensional unit vector at the given angle in
// degrees.
func unitVector(degrees float64) []float64 {
	radians := degrees * math.Pi / 180
	return []float64{math.Cos(radians), math.Sin(radians)}
}

// angleCorpus is a corpus of unit vectors at 0, 10, 90 and 180 degrees.
func angleCorpus() *ann.VectorSet {
	set := ann.NewVectorSet(2)
	for _, degrees := range []float64{0, 10, 90, 180} {
		_, _ = set.Append(unitVector(degrees))
	}

	return set
}

// angleHasher buckets two-dimensional vectors into three fixed signatures by
// quadrant, so that the near-zero-degree vectors share one bucket, the
// ninety-degree vector shares its first bit with them, and the opposite
// vector shares nothing.
func angleHasher(t *testing.T) *mocks.Hasher {
	t.Helper()

	parse := func(text string) bitstring.Bits {
		bits, err := bitstring.Parse(text)
		require.NoError(t, err)
		return bits
	}

	h := mocks.Hasher{
		BitsFunc: func() int {
			return 4
		},
		HashFunc: func(vector []float64) bitstring.Bits {
			degrees := math.Atan2(vector[1], vector[0]) * 180 / math.Pi
			switch {
			case degrees > -45 && degrees < 45:
				return parse("1100")
			case degrees >= 45 && degrees <= 135:
				return parse("1000")
			default:
				return parse("0011")
			}
		},
	}

	return &h
}

func drain(t *testing.T, it *forest.QueryIter) []forest.Candidate {
	t.Helper()

	var candidates []forest.Candidate
	for {
		candidate, err := it.Next()
		if errors.Is(err, ann.ErrFinished) {
			return candidates
		}
		require.NoError(t, err)
		candidates = append(candidates, candidate)
	}
}

func TestNew_ValidatesConfiguration(t *testing.T) {
	log := zerolog.Nop()
	corpus := angleCorpus()

	tests := []struct {
		name string
		cfg  forest.Config
		want error
	}{
		{
			name: "zero bits",
			cfg:  forest.Config{NBits: 0, Dim: 2, NumTables: 1, Metric: forest.MetricCosine},
			want: ann.ErrInvalidConfiguration,
		},
		{
			name: "negative dimension",
			cfg:  forest.Config{NBits: 4, Dim: -2, NumTables: 1, Metric: forest.MetricCosine},
			want: ann.ErrInvalidConfiguration,
		},
		{
			name: "zero tables",
			cfg:  forest.Config{NBits: 4, Dim: 2, NumTables: 0, Metric: forest.MetricCosine},
			want: ann.ErrInvalidConfiguration,
		},
		{
			name: "unknown metric",
			cfg:  forest.Config{NBits: 4, Dim: 2, NumTables: 1, Metric: "manhattan"},
			want: ann.ErrUnknownMetric,
		},
		{
			name: "corpus dimension mismatch",
			cfg:  forest.Config{NBits: 4, Dim: 3, NumTables: 1, Metric: forest.MetricCosine},
			want: ann.ErrDimensionMismatch,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := forest.New(log, corpus, test.cfg)
			assert.ErrorIs(t, err, test.want)
		})
	}
}

func TestQueryIter_RejectsWrongDimension(t *testing.T) {
	log := zerolog.Nop()

	cfg := forest.Config{NBits: 4, Dim: 2, NumTables: 1, Metric: forest.MetricCosine}
	f, err := forest.New(log, angleCorpus(), cfg)
	require.NoError(t, err)

	require.NoError(t, f.IndexData())

	_, err = f.QueryIter([]float64{1, 2, 3})
	assert.ErrorIs(t, err, ann.ErrDimensionMismatch)

	// The forest stays usable after a rejected query.
	_, err = f.QueryIter([]float64{1, 0})
	assert.NoError(t, err)
}

func TestForest_SingleTableCosine(t *testing.T) {
	log := zerolog.Nop()

	cfg := forest.Config{NBits: 4, Dim: 2, NumTables: 1, Metric: forest.MetricCosine}
	f, err := forest.New(log, angleCorpus(), cfg,
		forest.WithHashers(func(int) (ann.Hasher, error) {
			return angleHasher(t), nil
		}),
	)
	require.NoError(t, err)
	require.NoError(t, f.IndexData())

	// Query close to the ten-degree vector, inside the near-zero bucket.
	it, err := f.QueryIter(unitVector(7))
	require.NoError(t, err)

	candidates := drain(t, it)
	require.Len(t, candidates, 4)

	// The first bucket holds the vectors at zero and ten degrees, with the
	// ten-degree one more similar to the query; the vector at ninety
	// degrees follows from the neighboring bucket, and the opposite vector
	// is the last one out.
	assert.EqualValues(t, 1, candidates[0].VecID)
	assert.EqualValues(t, 0, candidates[1].VecID)
	assert.EqualValues(t, 2, candidates[2].VecID)
	assert.EqualValues(t, 3, candidates[3].VecID)

	// Scores are cosine similarities against the query.
	assert.InDelta(t, math.Cos(3*math.Pi/180), candidates[0].Score, 1e-9)
	assert.InDelta(t, math.Cos(7*math.Pi/180), candidates[1].Score, 1e-9)

	// A drained iterator keeps reporting the end of the stream.
	_, err = it.Next()
	assert.ErrorIs(t, err, ann.ErrFinished)
}

func TestForest_SingleTableEuclidean(t *testing.T) {
	log := zerolog.Nop()

	cfg := forest.Config{NBits: 4, Dim: 2, NumTables: 1, Metric: forest.MetricEuclidean}
	f, err := forest.New(log, angleCorpus(), cfg,
		forest.WithHashers(func(int) (ann.Hasher, error) {
			return angleHasher(t), nil
		}),
	)
	require.NoError(t, err)
	require.NoError(t, f.IndexData())

	it, err := f.QueryIter(unitVector(7))
	require.NoError(t, err)

	candidates := drain(t, it)
	require.Len(t, candidates, 4)

	// Lower distance ranks better under the euclidean metric.
	assert.EqualValues(t, 1, candidates[0].VecID)
	assert.EqualValues(t, 0, candidates[1].VecID)
	assert.Less(t, candidates[0].Score, candidates[1].Score)
}

func TestForest_EmptyCorpus(t *testing.T) {
	log := zerolog.Nop()

	empty := ann.NewVectorSet(2)
	cfg := forest.Config{NBits: 4, Dim: 2, NumTables: 2, Metric: forest.MetricCosine}
	f, err := forest.New(log, empty, cfg)
	require.NoError(t, err)
	require.NoError(t, f.IndexData())

	it, err := f.QueryIter([]float64{1, 0})
	require.NoError(t, err)

	_, err = it.Next()
	assert.ErrorIs(t, err, ann.ErrFinished)
}

func TestIndexData_ReportsBrokenVectors(t *testing.T) {
	log := zerolog.Nop()

	corpus := mocks.BaselineCorpus()
	corpus.VectorFunc = func(id uint32) []float64 {
		if id == 2 {
			return []float64{1}
		}
		return []float64{1, 0}
	}

	cfg := forest.Config{NBits: 4, Dim: 2, NumTables: 2, Metric: forest.MetricCosine}
	f, err := forest.New(log, corpus, cfg)
	require.NoError(t, err)

	err = f.IndexData()
	assert.ErrorIs(t, err, ann.ErrDimensionMismatch)
}

func TestIndexData_IsIdempotent(t *testing.T) {
	log := zerolog.Nop()

	cfg := forest.Config{NBits: 8, Dim: 2, NumTables: 3, Metric: forest.MetricCosine}
	f, err := forest.New(log, angleCorpus(), cfg)
	require.NoError(t, err)

	require.NoError(t, f.IndexData())
	require.NoError(t, f.IndexData())

	it, err := f.QueryIter(unitVector(7))
	require.NoError(t, err)

	candidates := drain(t, it)

	// A rebuilt index holds every vector exactly once.
	seen := make(map[uint32]struct{})
	for _, candidate := range candidates {
		_, duplicate := seen[candidate.VecID]
		assert.False(t, duplicate, "vector %d emitted twice", candidate.VecID)
		seen[candidate.VecID] = struct{}{}
	}
	assert.Len(t, seen, 4)
}

func TestForest_ExhaustionCoversWholeCorpus(t *testing.T) {
	log := zerolog.Nop()
	random := rand.New(rand.NewSource(11))

	const count = 60
	const dim = 8

	corpus := ann.NewVectorSet(dim)
	for i := 0; i < count; i++ {
		vector := make([]float64, dim)
		for j := range vector {
			vector[j] = random.NormFloat64()
		}
		_, err := corpus.Append(vector)
		require.NoError(t, err)
	}

	cfg := forest.Config{NBits: 6, Dim: dim, NumTables: 3, Metric: forest.MetricCosine}
	f, err := forest.New(log, corpus, cfg, forest.WithSeed(3))
	require.NoError(t, err)
	require.NoError(t, f.IndexData())

	it, err := f.QueryIter(corpus.Vector(0))
	require.NoError(t, err)

	candidates := drain(t, it)

	seen := make(map[uint32]struct{})
	for _, candidate := range candidates {
		_, duplicate := seen[candidate.VecID]
		require.False(t, duplicate, "vector %d emitted twice", candidate.VecID)
		seen[candidate.VecID] = struct{}{}
	}
	assert.Len(t, seen, count)
}

func TestForest_RankingBeatsRandomBaseline(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping statistical ranking test in short mode")
	}

	log := zerolog.Nop()
	random := rand.New(rand.NewSource(21))

	const count = 1000
	const dim = 64
	const queries = 100
	const topK = 10

	normalized := func() []float64 {
		vector := make([]float64, dim)
		norm := 0.0
		for j := range vector {
			vector[j] = random.NormFloat64()
			norm += vector[j] * vector[j]
		}
		norm = math.Sqrt(norm)
		for j := range vector {
			vector[j] /= norm
		}
		return vector
	}

	corpus := ann.NewVectorSet(dim)
	for i := 0; i < count; i++ {
		_, err := corpus.Append(normalized())
		require.NoError(t, err)
	}

	cfg := forest.Config{NBits: 16, Dim: dim, NumTables: 3, Metric: forest.MetricCosine}
	f, err := forest.New(log, corpus, cfg, forest.WithSeed(7))
	require.NoError(t, err)
	require.NoError(t, f.IndexData())

	cosine := func(u []float64, v []float64) float64 {
		dot := 0.0
		for i := range u {
			dot += u[i] * v[i]
		}
		return dot
	}

	var retrieved, baseline float64
	var samples int
	for q := 0; q < queries; q++ {
		query := normalized()

		it, err := f.QueryIter(query)
		require.NoError(t, err)

		for k := 0; k < topK; k++ {
			candidate, err := it.Next()
			if errors.Is(err, ann.ErrFinished) {
				break
			}
			require.NoError(t, err)

			retrieved += cosine(corpus.Vector(candidate.VecID), query)
			baseline += cosine(corpus.Vector(uint32(random.Intn(count))), query)
			samples++
		}
	}

	require.NotZero(t, samples)

	// Retrieval has to beat randomly picked corpus vectors on average; this
	// is a statistical property, so it is checked over the aggregate, not
	// per query.
	assert.Greater(t, retrieved/float64(samples), baseline/float64(samples))
}
