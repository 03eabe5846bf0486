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
	"fmt"
	"io"

	"github.com/optakt/lsh-forest/bitstring"
)

// node is a trie node. Edges are bit-granular, so a node has at most two
// children, distinguished by the first bit of the edge label that leads to
// them. The label holds the full compressed edge from the parent, which can
// span many bits.
//
// A node carries a payload if and only if the concatenation of edge labels
// from the root down to it is a key that was inserted. Such a node can still
// have children, when its key is a proper prefix of another key.
type node struct {
	parent   *node
	label    bitstring.Bits
	children [2]*node
	payload  interface{}
}

// leaf returns whether the node carries a payload.
func (n *node) leaf() bool {
	return n.payload != nil
}

// key returns the full key of the node, which is the concatenation of the
// edge labels from the root down to the node.
func (n *node) key() bitstring.Bits {
	if n.parent == nil {
		return n.label
	}

	return bitstring.Concat(n.parent.key(), n.label)
}

// representative returns the deepest node reached from n by always taking
// the first available edge. Nodes without children always carry a payload,
// so the result is a leaf.
func (n *node) representative() *node {
	current := n
	for {
		switch {
		case current.children[0] != nil:
			current = current.children[0]
		case current.children[1] != nil:
			current = current.children[1]
		default:
			return current
		}
	}
}

// dump writes a human-readable description of the subtree to the given
// writer.
func (n *node) dump(w io.Writer, indent int) {
	for _, child := range n.children {
		if child == nil {
			continue
		}
		line := fmt.Sprintf("%*s%s", indent, "", child.label.String())
		if child.leaf() {
			line += fmt.Sprintf(" (%v)", child.payload)
		}
		_, _ = io.WriteString(w, line+"\n")
		child.dump(w, indent+4)
	}
}
