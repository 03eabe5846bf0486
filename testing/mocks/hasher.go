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

package mocks

import (
	"github.com/optakt/lsh-forest/bitstring"
)

// Hasher is a test double for the hasher capability.
type Hasher struct {
	BitsFunc func() int
	HashFunc func(vector []float64) bitstring.Bits
}

// BaselineHasher returns a hasher that produces 8-bit signatures from the
// sign of the first vector component.
func BaselineHasher() *Hasher {
	h := Hasher{
		BitsFunc: func() int {
			return 8
		},
		HashFunc: func(vector []float64) bitstring.Bits {
			if len(vector) > 0 && vector[0] > 0 {
				return bitstring.FromUint(0xff, 8)
			}
			return bitstring.FromUint(0x00, 8)
		},
	}

	return &h
}

func (h *Hasher) Bits() int {
	return h.BitsFunc()
}

func (h *Hasher) Hash(vector []float64) bitstring.Bits {
	return h.HashFunc(vector)
}
