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

package ann

import (
	"github.com/optakt/lsh-forest/bitstring"
)

// Hasher represents a locality-sensitive hash function. Hash maps a vector to
// a signature of exactly Bits bits, deterministically for a given hasher:
// hashing the same vector twice yields the same signature. Vectors that are
// close under the hasher's target metric collide with a probability that
// grows with their closeness.
type Hasher interface {
	Bits() int
	Hash(vector []float64) bitstring.Bits
}
