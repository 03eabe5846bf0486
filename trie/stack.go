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
	"github.com/gammazero/deque"
)

type stack struct {
	steps *deque.Deque
}

func newStack() *stack {
	s := stack{
		steps: deque.New(64),
	}

	return &s
}

func (s *stack) push(st step) {
	s.steps.PushFront(st)
}

func (s *stack) pop() step {
	st := s.steps.PopFront().(step)

	return st
}

func (s *stack) len() int {
	return s.steps.Len()
}
