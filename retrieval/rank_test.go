// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/groundit/core"
)

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 2, 3}, []float32{1, 2, 3}), 1e-6)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-6)
	assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-6)

	// Magnitude does not matter, only direction.
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 1}, []float32{10, 10}), 1e-6)

	// Degenerate inputs score zero instead of NaN.
	assert.Zero(t, CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3}))
	assert.Zero(t, CosineSimilarity([]float32{0, 0}, []float32{1, 2}))
	assert.Zero(t, CosineSimilarity(nil, nil))
}

func record(key string, index int, vector []float32) *core.VectorRecord {
	return &core.VectorRecord{
		DocumentKey: key,
		ChunkIndex:  index,
		Vector:      vector,
		Text:        "text",
	}
}

func TestRankTopKOrdersByScore(t *testing.T) {
	records := []*core.VectorRecord{
		record("far.txt", 0, []float32{0, 1}),
		record("near.txt", 0, []float32{1, 0.1}),
		record("exact.txt", 0, []float32{1, 0}),
	}

	top := RankTopK(records, []float32{1, 0}, 2)
	require.Len(t, top, 2)
	assert.Equal(t, "exact.txt", top[0].Record.DocumentKey)
	assert.Equal(t, "near.txt", top[1].Record.DocumentKey)
	assert.Greater(t, top[0].Score, top[1].Score)
}

func TestRankTopKTieBreak(t *testing.T) {
	// All four records are identical directions, so every score ties and
	// ordering falls to document key, then chunk index.
	records := []*core.VectorRecord{
		record("b.txt", 1, []float32{1, 0}),
		record("b.txt", 0, []float32{2, 0}),
		record("a.txt", 2, []float32{3, 0}),
		record("a.txt", 0, []float32{4, 0}),
	}

	top := RankTopK(records, []float32{1, 0}, 4)
	require.Len(t, top, 4)

	got := make([]string, len(top))
	for i, hit := range top {
		got[i] = hit.Record.Key()
	}
	assert.Equal(t, []string{"a.txt#0", "a.txt#2", "b.txt#0", "b.txt#1"}, got)
}

func TestRankTopKBounds(t *testing.T) {
	records := []*core.VectorRecord{record("a.txt", 0, []float32{1, 0})}

	assert.Len(t, RankTopK(records, []float32{1, 0}, 10), 1)
	assert.Empty(t, RankTopK(records, []float32{1, 0}, 0))
	assert.Empty(t, RankTopK(nil, []float32{1, 0}, 5))
}
