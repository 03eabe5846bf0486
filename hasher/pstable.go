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

package hasher

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/optakt/lsh-forest/bitstring"
	"github.com/optakt/lsh-forest/models/ann"
)

// Distributions available for the p-stable hasher. A Cauchy distribution is
// 1-stable and targets the Manhattan distance; a normal distribution is
// 2-stable and targets the Euclidean distance.
const (
	DistributionCauchy = "cauchy"
	DistributionNormal = "normal"
)

// quantizationWidth is the bucket width proposed by Datar et al. in their
// p-stable distributions scheme.
const quantizationWidth = 4

// PStable hashes vectors by projecting them onto a single direction drawn
// from a p-stable distribution and quantizing the projection into buckets of
// fixed width, following Datar et al.'s LSH scheme for Minkowski distances.
// The low nbits bits of the bucket index form the signature, most
// significant bit first.
type PStable struct {
	nbits  int
	dim    int
	shift  float64
	coeffs []float64
}

// NewPStable creates a p-stable hasher producing signatures of nbits bits
// for vectors of the given dimension, drawing its projection coefficients
// deterministically from the given seed and distribution.
func NewPStable(nbits int, dim int, distribution string, seed uint64) (*PStable, error) {
	if nbits <= 0 {
		return nil, fmt.Errorf("%w: number of bits must be positive (have: %d)", ann.ErrInvalidConfiguration, nbits)
	}
	if dim <= 0 {
		return nil, fmt.Errorf("%w: dimension must be positive (have: %d)", ann.ErrInvalidConfiguration, dim)
	}

	src := rand.NewSource(seed)

	var sample func() float64
	switch distribution {
	case DistributionCauchy:
		cauchy := distuv.Cauchy{X0: 0, Gamma: 1, Src: src}
		sample = cauchy.Rand
	case DistributionNormal:
		normal := distuv.Normal{Mu: 0, Sigma: 1, Src: src}
		sample = normal.Rand
	default:
		return nil, fmt.Errorf("%w: unknown distribution (have: %s)", ann.ErrInvalidConfiguration, distribution)
	}

	coeffs := make([]float64, dim)
	for i := range coeffs {
		coeffs[i] = sample()
	}

	h := PStable{
		nbits:  nbits,
		dim:    dim,
		shift:  rand.New(src).Float64() * quantizationWidth,
		coeffs: coeffs,
	}

	return &h, nil
}

// Bits returns the signature length in bits.
func (h *PStable) Bits() int {
	return h.nbits
}

// Hash returns the signature of the given vector. The vector must have the
// dimension the hasher was created for.
func (h *PStable) Hash(vector []float64) bitstring.Bits {
	projection := floats.Dot(h.coeffs, vector)
	bucket := int64(math.Floor((projection + h.shift) / quantizationWidth))

	return bitstring.FromUint(uint64(bucket), h.nbits)
}
