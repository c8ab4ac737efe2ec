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

package reindex

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/groundit/ai/mock"
	"github.com/poiesic/groundit/core"
	"github.com/poiesic/groundit/storage/fs"
	"github.com/poiesic/groundit/vectorindex"
)

func newTestVectors(t *testing.T) *vectorindex.Store {
	t.Helper()
	objects, err := fs.New(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { objects.Close() })

	vectors, err := vectorindex.New(objects)
	require.NoError(t, err)
	return vectors
}

func commitDocument(t *testing.T, vectors *vectorindex.Store, key string, texts ...string) {
	t.Helper()
	records := make([]*core.VectorRecord, len(texts))
	for i, text := range texts {
		records[i] = &core.VectorRecord{
			DocumentKey: key,
			ChunkIndex:  i,
			Vector:      []float32{1, 0, 0},
			Text:        text,
		}
	}
	require.NoError(t, vectors.WriteIndex(context.Background(), records, "etag-"+key))
}

func fastConfig() *Config {
	return &Config{
		ReportInterval: 1,
		MaxRetries:     3,
		RetryDelay:     time.Millisecond,
	}
}

func TestRunReplacesVectors(t *testing.T) {
	vectors := newTestVectors(t)
	ctx := context.Background()

	commitDocument(t, vectors, "a.txt", "first chunk", "second chunk")
	commitDocument(t, vectors, "b.txt", "other document")

	var progress bytes.Buffer
	reindexer, err := NewReindexer(vectors, mock.NewMockEmbedder(), fastConfig(), &progress)
	require.NoError(t, err)

	require.NoError(t, reindexer.Run(ctx))

	records, err := vectors.Records(ctx, "a.txt")
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, record := range records {
		assert.Equal(t, mock.DeterministicVector(record.Text, 384), record.Vector)
		assert.NotEqual(t, []float32{1, 0, 0}, record.Vector)
	}

	// Texts and the commit ETag survive the rewrite untouched.
	assert.Equal(t, "first chunk", records[0].Text)
	manifest, err := vectors.Manifest(ctx, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "etag-a.txt", manifest.ETag)

	assert.Contains(t, progress.String(), "Reindex complete")
}

func TestRunEmptyCorpus(t *testing.T) {
	vectors := newTestVectors(t)

	var progress bytes.Buffer
	reindexer, err := NewReindexer(vectors, mock.NewMockEmbedder(), fastConfig(), &progress)
	require.NoError(t, err)

	require.NoError(t, reindexer.Run(context.Background()))
	assert.Contains(t, progress.String(), "0 documents")
}

func TestRunRetriesTransientFailures(t *testing.T) {
	vectors := newTestVectors(t)
	ctx := context.Background()

	commitDocument(t, vectors, "doc.txt", "contents")

	embedder := mock.NewMockEmbedder()
	failures := 2
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		if failures > 0 {
			failures--
			return nil, errors.New("transient")
		}
		out := make([][]float32, len(texts))
		for i, text := range texts {
			out[i] = mock.DeterministicVector(text, 8)
		}
		return out, nil
	}

	reindexer, err := NewReindexer(vectors, embedder, fastConfig(), nil)
	require.NoError(t, err)
	require.NoError(t, reindexer.Run(ctx))

	records, err := vectors.Records(ctx, "doc.txt")
	require.NoError(t, err)
	assert.Equal(t, mock.DeterministicVector("contents", 8), records[0].Vector)
}

func TestRunPersistentFailureAborts(t *testing.T) {
	vectors := newTestVectors(t)
	ctx := context.Background()

	commitDocument(t, vectors, "doc.txt", "contents")

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("backend down")
	}

	reindexer, err := NewReindexer(vectors, embedder, fastConfig(), nil)
	require.NoError(t, err)
	require.Error(t, reindexer.Run(ctx))

	// The old vectors are still there: failure never leaves a document
	// half-written.
	records, err := vectors.Records(ctx, "doc.txt")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0, 0}, records[0].Vector)
}

func TestNewReindexerValidation(t *testing.T) {
	vectors := newTestVectors(t)

	_, err := NewReindexer(nil, mock.NewMockEmbedder(), nil, nil)
	assert.ErrorIs(t, err, ErrVectorStoreRequired)
	_, err = NewReindexer(vectors, nil, nil, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)
}
