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

// Corpus is a test double for read-only vector collections.
type Corpus struct {
	VectorFunc func(id uint32) []float64
	CountFunc  func() uint32
	DimFunc    func() int
}

// BaselineCorpus returns a corpus of four two-dimensional unit vectors.
func BaselineCorpus() *Corpus {
	vectors := [][]float64{
		{1, 0},
		{0, 1},
		{-1, 0},
		{0, -1},
	}

	c := Corpus{
		VectorFunc: func(id uint32) []float64 {
			return vectors[id]
		},
		CountFunc: func() uint32 {
			return uint32(len(vectors))
		},
		DimFunc: func() int {
			return 2
		},
	}

	return &c
}

func (c *Corpus) Vector(id uint32) []float64 {
	return c.VectorFunc(id)
}

func (c *Corpus) Count() uint32 {
	return c.CountFunc()
}

func (c *Corpus) Dim() int {
	return c.DimFunc()
}
