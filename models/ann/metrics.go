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

// Metrics represents a sink for operational counters of an index. A metrics
// implementation must be safe for concurrent use, as queries can run
// concurrently once an index is built.
type Metrics interface {
	VectorsIndexed(count int)
	QueryStarted()
	BucketsExpanded(count int)
	CandidatesEmitted(count int)
}

// NopMetrics is a metrics sink that discards everything.
type NopMetrics struct{}

func (NopMetrics) VectorsIndexed(int)    {}
func (NopMetrics) QueryStarted()         {}
func (NopMetrics) BucketsExpanded(int)   {}
func (NopMetrics) CandidatesEmitted(int) {}
