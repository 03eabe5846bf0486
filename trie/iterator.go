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

package trie

import (
	"github.com/optakt/lsh-forest/bitstring"
	"github.com/optakt/lsh-forest/models/ann"
)

// Leaf is a leaf of the trie as seen by an iterator, pairing the full key
// with the payload stored under it.
type Leaf struct {
	Key   bitstring.Bits
	Value interface{}
}

// PrefixIterator yields every leaf of the trie in non-increasing order of
// the prefix length shared with the probe. It starts at the leaf with the
// longest shared prefix and walks up towards the root, emitting the subtrees
// of the siblings passed along the way. Within one sibling subtree the order
// is unspecified.
//
// The iterator is a single-consumer state machine over a frozen trie; it
// must not be shared across goroutines and the trie must not be mutated
// while iteration is in progress.
type PrefixIterator struct {
	current *node
	work    *stack
}

// step is a unit of pending iterator work: a node to emit, and optionally
// the subtree below it.
type step struct {
	node    *node
	subtree bool
}

func newPrefixIterator(t *Trie, probe bitstring.Bits) *PrefixIterator {
	it := PrefixIterator{
		work: newStack(),
	}

	descended := t.descend(probe)
	if descended != nil {
		it.current = descended
		it.work.push(step{node: descended})
	}

	return &it
}

// Next returns the next leaf. It fails with ErrFinished once all leaves have
// been yielded, or immediately on an empty trie.
func (it *PrefixIterator) Next() (Leaf, error) {
	for {
		// Drain pending work first: emissions scheduled at the current
		// level, including depth-first expansion of sibling subtrees.
		for it.work.len() > 0 {
			next := it.work.pop()

			if next.subtree {
				if next.node.children[1] != nil {
					it.work.push(step{node: next.node.children[1], subtree: true})
				}
				if next.node.children[0] != nil {
					it.work.push(step{node: next.node.children[0], subtree: true})
				}
			}

			if next.node.leaf() {
				leaf := Leaf{
					Key:   next.node.key(),
					Value: next.node.payload,
				}
				return leaf, nil
			}
		}

		// All work at this level is done; move one level up and schedule
		// the sibling subtrees, followed by the parent itself in case it
		// is a leaf-bearing node.
		if it.current == nil || it.current.parent == nil {
			return Leaf{}, ann.ErrFinished
		}

		parent := it.current.parent
		it.work.push(step{node: parent})
		for _, sibling := range parent.children {
			if sibling != nil && sibling != it.current {
				it.work.push(step{node: sibling, subtree: true})
			}
		}
		it.current = parent
	}
}
