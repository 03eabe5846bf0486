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
	"errors"
)

var (
	// ErrNotFound is returned when looking up a key that is not present.
	ErrNotFound = errors.New("not found")

	// ErrFinished is returned by iterators once they are exhausted. It marks
	// a normal terminal condition, not a failure.
	ErrFinished = errors.New("finished")

	// ErrDimensionMismatch is returned when a vector does not have the
	// dimension the component was configured for.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrUnknownMetric is returned when an unsupported distance metric is
	// requested.
	ErrUnknownMetric = errors.New("unknown metric")

	// ErrInvalidConfiguration is returned when construction parameters are
	// out of range.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)
