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

// Package trie implements a PATRICIA trie keyed by bit strings. Edges carry
// compressed multi-bit labels, which keeps the trie depth proportional to the
// number of distinct keys rather than the key length. On top of the usual
// insert and lookup, the trie can descend to the leaf sharing the longest
// prefix with a probe and enumerate all leaves outward from there, in
// non-increasing order of shared prefix length. That traversal is what makes
// the trie usable as a locality-sensitive hash table: leaves close to the
// probe in prefix distance come out first.
package trie

import (
	"fmt"
	"io"

	"github.com/optakt/lsh-forest/bitstring"
	"github.com/optakt/lsh-forest/models/ann"
)

// Trie is a PATRICIA trie mapping bit strings to payloads. It supports a
// single writer during population; once no more writes happen, it is safe
// for concurrent readers.
type Trie struct {
	root   *node
	leaves int
}

// New creates an empty trie.
func New() *Trie {
	t := Trie{
		root: &node{},
	}

	return &t
}

// Leaves returns the number of keys stored in the trie.
func (t *Trie) Leaves() int {
	return t.leaves
}

// Insert stores the payload under the given key, overwriting any payload
// previously stored under the same key. Empty keys and nil payloads are not
// stored. Inserting splits compressed edges as needed, so that no two edges
// out of a node share a prefix and every pure internal node keeps at least
// two children.
func (t *Trie) Insert(key bitstring.Bits, payload interface{}) {
	if key.Len() == 0 || payload == nil {
		return
	}

	t.insert(t.root, key, payload)
}

func (t *Trie) insert(current *node, key bitstring.Bits, payload interface{}) {

	child := current.children[key.Bit(0)]

	// No edge shares a bit with the key, so a fresh leaf holds the whole
	// remainder as its edge label.
	if child == nil {
		leaf := &node{
			parent:  current,
			label:   key,
			payload: payload,
		}
		current.children[key.Bit(0)] = leaf
		t.leaves++
		return
	}

	shared := bitstring.CommonPrefixLen(child.label, key)

	if shared == child.label.Len() {
		// The edge label equals the key: this is an overwrite of an
		// existing node, which may or may not have carried a payload so
		// far.
		if shared == key.Len() {
			if !child.leaf() {
				t.leaves++
			}
			child.payload = payload
			return
		}

		// The edge label is a strict prefix of the key: consume it and
		// continue below.
		t.insert(child, key.Suffix(shared), payload)
		return
	}

	// The key diverges inside the edge: split the edge at the end of the
	// shared prefix and reattach the existing child under the new
	// intermediate node.
	mid := &node{
		parent: current,
		label:  key.Prefix(shared),
	}
	current.children[key.Bit(0)] = mid

	child.label = child.label.Suffix(shared)
	child.parent = mid
	mid.children[child.label.Bit(0)] = child

	if shared == key.Len() {
		// The key ends exactly at the split point, so the intermediate
		// node itself becomes a leaf-bearing node.
		mid.payload = payload
		t.leaves++
		return
	}

	remainder := key.Suffix(shared)
	leaf := &node{
		parent:  mid,
		label:   remainder,
		payload: payload,
	}
	mid.children[remainder.Bit(0)] = leaf
	t.leaves++
}

// Get returns the payload stored under the given key. It fails with
// ErrNotFound if the key is not present.
func (t *Trie) Get(key bitstring.Bits) (interface{}, error) {
	if key.Len() == 0 {
		return nil, fmt.Errorf("could not look up key %s: %w", key, ann.ErrNotFound)
	}

	current := t.root
	rest := key
	for {
		child := current.children[rest.Bit(0)]
		if child == nil {
			return nil, fmt.Errorf("could not look up key %s: %w", key, ann.ErrNotFound)
		}

		shared := bitstring.CommonPrefixLen(child.label, rest)
		if shared < child.label.Len() {
			return nil, fmt.Errorf("could not look up key %s: %w", key, ann.ErrNotFound)
		}

		if shared == rest.Len() {
			if !child.leaf() {
				return nil, fmt.Errorf("could not look up key %s: %w", key, ann.ErrNotFound)
			}
			return child.payload, nil
		}

		current = child
		rest = rest.Suffix(shared)
	}
}

// descend locates the leaf whose key shares the longest prefix with the
// probe. It follows edges as long as they fully match the remaining probe;
// when the probe is exhausted or diverges, it settles on a representative
// leaf of the subtree reached so far. Returns nil on an empty trie.
func (t *Trie) descend(probe bitstring.Bits) *node {
	if t.root.children[0] == nil && t.root.children[1] == nil {
		return nil
	}

	current := t.root
	rest := probe
	for {
		if rest.Len() == 0 {
			return current.representative()
		}

		child := current.children[rest.Bit(0)]
		if child == nil {
			return current.representative()
		}

		shared := bitstring.CommonPrefixLen(child.label, rest)
		if shared == child.label.Len() && shared < rest.Len() {
			current = child
			rest = rest.Suffix(shared)
			continue
		}

		// The probe ends within the edge or diverges from it; either way
		// the subtree below the edge is the closest match.
		return child.representative()
	}
}

// PrefixIter returns an iterator over all leaves of the trie, ordered by
// non-increasing length of the prefix they share with the probe.
func (t *Trie) PrefixIter(probe bitstring.Bits) *PrefixIterator {
	return newPrefixIterator(t, probe)
}

// Dump writes a human-readable description of the trie to the given writer.
func (t *Trie) Dump(w io.Writer) {
	t.root.dump(w, 0)
}
