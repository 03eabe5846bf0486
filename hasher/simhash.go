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

// Package hasher implements locality-sensitive hash functions that map dense
// real-valued vectors to fixed-length bit-string signatures.
package hasher

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/optakt/lsh-forest/bitstring"
	"github.com/optakt/lsh-forest/models/ann"
)

// RandomProjection hashes vectors with random hyperplanes, following the
// rounding scheme of Charikar's similarity estimation techniques. At
// construction it draws one standard-normal plane normal per signature bit;
// bit i of a signature is set when the vector lies on the positive side of
// plane i. Bit zero is the most significant, so signatures compare
// left-to-right. Two vectors collide on a bit with probability 1 - θ/π,
// where θ is the angle between them, which makes this a hash family for
// cosine similarity.
type RandomProjection struct {
	nbits  int
	dim    int
	planes [][]float64
}

// NewRandomProjection creates a random projection hasher producing
// signatures of nbits bits for vectors of the given dimension, drawing its
// plane normals deterministically from the given seed.
func NewRandomProjection(nbits int, dim int, seed uint64) (*RandomProjection, error) {
	if nbits <= 0 {
		return nil, fmt.Errorf("%w: number of bits must be positive (have: %d)", ann.ErrInvalidConfiguration, nbits)
	}
	if dim <= 0 {
		return nil, fmt.Errorf("%w: dimension must be positive (have: %d)", ann.ErrInvalidConfiguration, dim)
	}

	normal := distuv.Normal{
		Mu:    0,
		Sigma: 1,
		Src:   rand.NewSource(seed),
	}

	planes := make([][]float64, nbits)
	for i := range planes {
		plane := make([]float64, dim)
		for j := range plane {
			plane[j] = normal.Rand()
		}
		planes[i] = plane
	}

	h := RandomProjection{
		nbits:  nbits,
		dim:    dim,
		planes: planes,
	}

	return &h, nil
}

// Bits returns the signature length in bits.
func (h *RandomProjection) Bits() int {
	return h.nbits
}

// Hash returns the signature of the given vector. The vector must have the
// dimension the hasher was created for.
func (h *RandomProjection) Hash(vector []float64) bitstring.Bits {
	signs := make([]bool, h.nbits)
	for i, plane := range h.planes {
		signs[i] = floats.Dot(plane, vector) > 0
	}

	return bitstring.FromBools(signs)
}
