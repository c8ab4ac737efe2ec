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
	"math"
	"sort"

	"github.com/poiesic/groundit/core"
)

// CosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched dimensions or a zero-magnitude vector score 0.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

// RankTopK scores every record against the query vector and returns the k
// best matches, highest score first. Equal scores order by document key and
// then chunk index, so ranking is a pure function of its inputs.
func RankTopK(records []*core.VectorRecord, query []float32, k int) []core.ScoredRecord {
	if k <= 0 || len(records) == 0 {
		return []core.ScoredRecord{}
	}

	scored := make([]core.ScoredRecord, 0, len(records))
	for _, record := range records {
		scored = append(scored, core.ScoredRecord{
			Record: record,
			Score:  CosineSimilarity(query, record.Vector),
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		ri, rj := scored[i].Record, scored[j].Record
		if ri.DocumentKey != rj.DocumentKey {
			return ri.DocumentKey < rj.DocumentKey
		}
		return ri.ChunkIndex < rj.ChunkIndex
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored
}
