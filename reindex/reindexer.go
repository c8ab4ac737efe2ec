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
	"context"
	"fmt"
	"io"
	"time"

	"github.com/poiesic/groundit/ai"
	"github.com/poiesic/groundit/core"
	"github.com/poiesic/groundit/vectorindex"
)

// Config holds configuration for a reindexing run.
type Config struct {
	// ReportInterval is how often to report progress (number of documents)
	ReportInterval int

	// MaxRetries is the maximum number of attempts for each embedding call
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		ReportInterval: 10,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reindexer rewrites every committed record set with fresh embeddings.
type Reindexer struct {
	vectors  *vectorindex.Store
	embedder ai.Embedder
	config   *Config
	progress io.Writer
}

// NewReindexer creates a reindexer.
// progress: where to write progress output (typically os.Stderr)
func NewReindexer(vectors *vectorindex.Store, embedder ai.Embedder, config *Config, progress io.Writer) (*Reindexer, error) {
	if vectors == nil {
		return nil, ErrVectorStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}

	return &Reindexer{
		vectors:  vectors,
		embedder: embedder,
		config:   config,
		progress: progress,
	}, nil
}

// Run re-embeds every committed document. Each document commits through
// its own manifest write, so an interrupted run leaves a prefix of the
// corpus on the new model and the rest on the old one; rerunning converges.
func (r *Reindexer) Run(ctx context.Context) error {
	documents, err := r.vectors.Documents(ctx)
	if err != nil {
		return fmt.Errorf("listing committed documents: %w", err)
	}

	if len(documents) == 0 {
		fmt.Fprintf(r.progress, "No committed documents found (0 documents)\n")
		return nil
	}

	fmt.Fprintf(r.progress, "Starting reindex of %d documents\n", len(documents))

	tracker := NewProgressTracker(r.progress, len(documents), r.config.ReportInterval)
	tracker.Start()

	for i, documentKey := range documents {
		if err := r.reindexDocument(ctx, documentKey); err != nil {
			return fmt.Errorf("reindexing %s: %w", documentKey, err)
		}
		tracker.Update(i + 1)
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reindex complete. Processed %d documents in %v (%.1f docs/sec)\n",
		len(documents), elapsed.Round(time.Second), float64(len(documents))/elapsed.Seconds())

	return nil
}

// reindexDocument re-embeds one document's chunk texts and rewrites its
// record set.
func (r *Reindexer) reindexDocument(ctx context.Context, documentKey string) error {
	records, err := r.vectors.Records(ctx, documentKey)
	if err != nil {
		return err
	}

	manifest, err := r.vectors.Manifest(ctx, documentKey)
	if err != nil {
		return err
	}

	texts := make([]string, len(records))
	for i, record := range records {
		texts[i] = record.Text
	}

	var embeddings [][]float32
	err = RetryWithBackoff(ctx, func() error {
		var embedErr error
		embeddings, embedErr = r.embedder.EmbedTexts(ctx, texts)
		return embedErr
	}, r.config.MaxRetries, r.config.RetryDelay)
	if err != nil {
		return fmt.Errorf("embedding: %w", err)
	}
	if len(embeddings) != len(records) {
		return fmt.Errorf("embedding result mismatch: %d texts, %d vectors", len(texts), len(embeddings))
	}

	fresh := make([]*core.VectorRecord, len(records))
	for i, record := range records {
		fresh[i] = &core.VectorRecord{
			DocumentKey: record.DocumentKey,
			ChunkIndex:  record.ChunkIndex,
			Vector:      embeddings[i],
			Text:        record.Text,
			Meta:        record.Meta,
		}
	}

	// The ETag carries over: the document bytes have not changed, only
	// the embedding model.
	return r.vectors.WriteIndex(ctx, fresh, manifest.ETag)
}
