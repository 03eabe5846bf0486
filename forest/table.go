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
	"fmt"

	"github.com/optakt/lsh-forest/models/ann"
	"github.com/optakt/lsh-forest/trie"
)

// table is a single locality-sensitive hash table. It owns one hasher and
// one trie keyed by the hasher's signatures. Buckets of vector identifiers
// live in a table-owned slice; both the trie leaf and the signature map
// refer to a bucket by its index in that slice, so exactly one bucket exists
// per signature. Buckets are frozen once the build finishes; queries work on
// their own copies.
type table struct {
	hasher     ann.Hasher
	trie       *trie.Trie
	buckets    [][]uint32
	signatures map[string]int
}

func newTable(hasher ann.Hasher) *table {
	t := table{
		hasher:     hasher,
		trie:       trie.New(),
		signatures: make(map[string]int),
	}

	return &t
}

// insert hashes the vector and adds its identifier to the bucket of the
// resulting signature, creating and registering the bucket if the signature
// is new.
func (t *table) insert(vector []float64, id uint32) {
	signature := t.hasher.Hash(vector)
	key := string(signature.Bytes())

	index, ok := t.signatures[key]
	if !ok {
		index = len(t.buckets)
		t.buckets = append(t.buckets, nil)
		t.signatures[key] = index
		t.trie.Insert(signature, index)
	}

	t.buckets[index] = append(t.buckets[index], id)
}

// clear drops the trie, the buckets and the signature map.
func (t *table) clear() {
	t.trie = trie.New()
	t.buckets = nil
	t.signatures = make(map[string]int)
}

// bucketIter returns an iterator over the table's buckets, ordered by the
// length of the prefix their signature shares with the hash of the given
// vector.
func (t *table) bucketIter(vector []float64) *bucketIter {
	signature := t.hasher.Hash(vector)

	it := bucketIter{
		table:  t,
		leaves: t.trie.PrefixIter(signature),
	}

	return &it
}

// bucketIter projects the trie's prefix-ordered leaf iterator onto the
// buckets the leaves refer to.
type bucketIter struct {
	table  *table
	leaves *trie.PrefixIterator
}

// next returns the vector identifiers of the next bucket. It fails with
// ErrFinished once all buckets have been yielded.
func (it *bucketIter) next() ([]uint32, error) {
	leaf, err := it.leaves.Next()
	if err != nil {
		return nil, err
	}

	index, ok := leaf.Value.(int)
	if !ok {
		return nil, fmt.Errorf("invalid payload type in signature trie (have: %T)", leaf.Value)
	}

	return it.table.buckets[index], nil
}
