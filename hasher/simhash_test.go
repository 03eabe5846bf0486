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

package hasher_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optakt/lsh-forest/hasher"
	"github.com/optakt/lsh-forest/models/ann"
)

func TestRandomProjection_Deterministic(t *testing.T) {
	h, err := hasher.NewRandomProjection(8, 4, 42)
	require.NoError(t, err)

	assert.Equal(t, 8, h.Bits())

	vector := []float64{0.3, -1.2, 0.7, 2.1}

	first := h.Hash(vector)
	second := h.Hash(vector)

	assert.Equal(t, 8, first.Len())
	assert.Equal(t, first.Bytes(), second.Bytes())

	// The same seed reproduces the same hasher.
	clone, err := hasher.NewRandomProjection(8, 4, 42)
	require.NoError(t, err)
	assert.Equal(t, first.Bytes(), clone.Hash(vector).Bytes())
}

func TestRandomProjection_OppositeVectorsComplement(t *testing.T) {
	h, err := hasher.NewRandomProjection(8, 4, 42)
	require.NoError(t, err)

	vector := []float64{0.3, -1.2, 0.7, 2.1}
	opposite := []float64{-0.3, 1.2, -0.7, -2.1}

	signature := h.Hash(vector)
	complement := h.Hash(opposite)

	require.Equal(t, signature.Len(), complement.Len())
	for i := 0; i < signature.Len(); i++ {
		assert.NotEqual(t, signature.Bit(i), complement.Bit(i), "bit %d", i)
	}
}

func TestRandomProjection_SeedsAreIndependent(t *testing.T) {
	first, err := hasher.NewRandomProjection(64, 8, 1)
	require.NoError(t, err)
	second, err := hasher.NewRandomProjection(64, 8, 2)
	require.NoError(t, err)

	vector := []float64{1, 2, 3, 4, 5, 6, 7, 8}

	assert.NotEqual(t, first.Hash(vector).Bytes(), second.Hash(vector).Bytes())
}

func TestRandomProjection_InvalidConfiguration(t *testing.T) {
	_, err := hasher.NewRandomProjection(0, 4, 1)
	assert.ErrorIs(t, err, ann.ErrInvalidConfiguration)

	_, err = hasher.NewRandomProjection(8, -1, 1)
	assert.ErrorIs(t, err, ann.ErrInvalidConfiguration)
}
