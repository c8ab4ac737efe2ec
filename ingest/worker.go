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

package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/groundit/ai"
	"github.com/poiesic/groundit/core"
	"github.com/poiesic/groundit/queue"
	"github.com/poiesic/groundit/storage"
	"github.com/poiesic/groundit/vectorindex"
)

const (
	defaultPollInterval = 500 * time.Millisecond
	defaultChunkSize    = 512
	defaultChunkOverlap = 64
)

// Worker consumes the ingestion queue and indexes documents.
type Worker struct {
	documents    storage.ObjectStore
	vectors      *vectorindex.Store
	queue        queue.IngestionQueue
	embedder     ai.Embedder
	pool         *ants.Pool
	extractor    extractor
	pollInterval time.Duration
	chunkSize    int
	chunkOverlap int
	logger       *slog.Logger
}

// Option configures a Worker.
type Option func(*Worker) error

// WithPollInterval sets how long the run loop sleeps when the queue is
// empty. Default is 500ms.
func WithPollInterval(interval time.Duration) Option {
	return func(w *Worker) error {
		if interval <= 0 {
			return errors.New("poll interval must be positive")
		}
		w.pollInterval = interval
		return nil
	}
}

// WithChunkSize sets the target chunk size in characters. Default is 512.
func WithChunkSize(size int) Option {
	return func(w *Worker) error {
		if size < 1 {
			return errors.New("chunk size must be positive")
		}
		w.chunkSize = size
		return nil
	}
}

// WithChunkOverlap sets the overlap between adjacent chunks. Default is 64.
func WithChunkOverlap(overlap int) Option {
	return func(w *Worker) error {
		if overlap < 0 {
			return errors.New("chunk overlap cannot be negative")
		}
		w.chunkOverlap = overlap
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) error {
		if logger == nil {
			logger = slog.Default()
		}
		w.logger = logger
		return nil
	}
}

// NewWorker creates an ingestion worker.
func NewWorker(
	documents storage.ObjectStore,
	vectors *vectorindex.Store,
	q queue.IngestionQueue,
	embedder ai.Embedder,
	opts ...Option,
) (*Worker, error) {
	if documents == nil {
		return nil, ErrDocumentStoreRequired
	}
	if vectors == nil {
		return nil, ErrVectorStoreRequired
	}
	if q == nil {
		return nil, ErrQueueRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	w := &Worker{
		documents:    documents,
		vectors:      vectors,
		queue:        q,
		embedder:     embedder,
		pollInterval: defaultPollInterval,
		chunkSize:    defaultChunkSize,
		chunkOverlap: defaultChunkOverlap,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(w); err != nil {
			return nil, err
		}
	}
	w.logger = w.logger.With("component", "ingest-worker")
	w.extractor = newExtractor(w.chunkSize, w.chunkOverlap)

	// One slot, always. Embedding throughput is the bottleneck of the whole
	// pipeline and the backing model serves one request well; the pool is
	// the admission gate that serializes every submitter.
	pool, err := ants.NewPool(1)
	if err != nil {
		return nil, err
	}
	w.pool = pool

	return w, nil
}

// ProcessOne indexes the document named by one ingestion message. It does
// not touch the queue; callers own the lease.
func (w *Worker) ProcessOne(ctx context.Context, msg *core.IngestionMessage) error {
	log := w.logger.With("documentKey", msg.DocumentKey, "attempt", msg.DeliveryAttempt)

	data, err := w.documents.Get(ctx, msg.DocumentKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Deleted between upload and processing. Nothing to index,
			// and redelivery would not change that.
			log.Warn("document gone before processing, skipping")
			return nil
		}
		return fmt.Errorf("loading document: %w", err)
	}
	etag := core.ETagFromBytes(data)

	chunks, err := w.extractor.extract(ctx, data)
	if err != nil {
		return fmt.Errorf("extracting %s: %w", msg.DocumentKey, err)
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	embeddings, err := w.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding %s: %w", msg.DocumentKey, err)
	}
	if len(embeddings) != len(chunks) {
		return fmt.Errorf("%w: %d texts, %d vectors", ErrEmbeddingMismatch, len(chunks), len(embeddings))
	}

	records := make([]*core.VectorRecord, len(chunks))
	for i, c := range chunks {
		records[i] = &core.VectorRecord{
			DocumentKey: msg.DocumentKey,
			ChunkIndex:  i,
			Vector:      embeddings[i],
			Text:        c.Text,
			Meta:        c.Meta,
		}
	}

	if err := w.vectors.WriteIndex(ctx, records, etag); err != nil {
		return fmt.Errorf("indexing %s: %w", msg.DocumentKey, err)
	}

	log.Info("document indexed", "chunks", len(records), "etag", etag)
	return nil
}

// ProcessNext receives one message and processes it through the worker's
// single slot, acking on success. A processing failure is logged and the
// message is left leased: the queue redelivers or dead-letters it when the
// lease lapses. Returns queue.ErrNoMessages when the queue is empty.
func (w *Worker) ProcessNext(ctx context.Context) error {
	msg, lease, err := w.queue.Receive(ctx)
	if err != nil {
		return err
	}

	done := make(chan struct{})
	if err := w.pool.Submit(func() {
		defer close(done)
		w.handle(ctx, msg, lease)
	}); err != nil {
		return err
	}
	<-done
	return nil
}

func (w *Worker) handle(ctx context.Context, msg *core.IngestionMessage, lease queue.Lease) {
	if err := w.ProcessOne(ctx, msg); err != nil {
		w.logger.Error("processing failed, leaving message for redelivery",
			"documentKey", msg.DocumentKey,
			"attempt", msg.DeliveryAttempt,
			"err", err)
		return
	}
	if err := w.queue.Ack(ctx, lease); err != nil {
		// Lease lapsed during processing. The index write already
		// committed, so the redelivery will rewrite the same records.
		w.logger.Warn("ack failed after indexing",
			"documentKey", msg.DocumentKey,
			"err", err)
	}
}

// Run polls the queue until ctx is canceled or the queue is closed.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("ingestion worker started", "pollInterval", w.pollInterval)
	defer w.logger.Info("ingestion worker stopped")

	for {
		err := w.ProcessNext(ctx)
		switch {
		case err == nil:
			continue
		case errors.Is(err, queue.ErrQueueClosed), errors.Is(err, context.Canceled):
			return nil
		case errors.Is(err, queue.ErrNoMessages):
			// Idle. Fall through to the wait below.
		default:
			w.logger.Error("receive failed", "err", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(w.pollInterval):
		}
	}
}

// Release frees the worker pool. The worker must not be used afterwards.
func (w *Worker) Release() {
	w.pool.Release()
}
