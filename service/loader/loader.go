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

// Package loader reads vector corpora from disk. The supported format is
// fvecs, the de-facto exchange format of nearest-neighbor benchmarks: a
// sequence of records, each a little-endian uint32 dimension followed by
// that many little-endian float32 components.
package loader

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/OneOfOne/xxhash"
	"github.com/rs/zerolog"

	"github.com/optakt/lsh-forest/models/ann"
)

// FromFvecs loads the fvecs file at the given path into a vector set. The
// dimension of the first record sets the dimension of the set; records with
// a different dimension fail the load. The checksum of the raw file is
// logged, so separate runs can confirm they worked on identical data.
func FromFvecs(log zerolog.Logger, path string) (*ann.VectorSet, error) {

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open file: %w", err)
	}
	defer file.Close()

	checksum := xxhash.New64()
	reader := bufio.NewReader(io.TeeReader(file, checksum))

	var set *ann.VectorSet
	for {
		vector, err := readRecord(reader)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("could not read record: %w", err)
		}

		if set == nil {
			set = ann.NewVectorSet(len(vector))
		}

		_, err = set.Append(vector)
		if err != nil {
			return nil, fmt.Errorf("could not append record: %w", err)
		}
	}

	if set == nil {
		return nil, fmt.Errorf("file contains no records (path: %s)", path)
	}

	log.Info().
		Str("path", path).
		Uint32("vectors", set.Count()).
		Int("dim", set.Dim()).
		Str("checksum", fmt.Sprintf("%016x", checksum.Sum64())).
		Msg("corpus loaded")

	return set, nil
}

// readRecord reads one dimension-prefixed vector. A clean EOF before the
// dimension prefix signals the end of the file.
func readRecord(reader io.Reader) ([]float64, error) {

	var dim uint32
	err := binary.Read(reader, binary.LittleEndian, &dim)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("could not read dimension prefix: %w", err)
	}

	components := make([]float32, dim)
	err = binary.Read(reader, binary.LittleEndian, components)
	if err != nil {
		return nil, fmt.Errorf("could not read components (dim: %d): %w", dim, err)
	}

	vector := make([]float64, dim)
	for i, component := range components {
		vector[i] = float64(component)
	}

	return vector, nil
}
