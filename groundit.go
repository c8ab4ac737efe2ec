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

// Package groundit is a database-less retrieval-augmented answering
// pipeline: documents go into a plain object store, an asynchronous worker
// embeds them into flat vector objects, and questions are answered by a
// linear scan over the committed vectors.
//
// The System type wires the pieces together on a single data directory:
//
//	sys, err := groundit.Open("/var/lib/groundit")
//	...
//	etag, err := sys.Upload(ctx, "manual.pdf", pdfBytes)
//	worker, err := sys.NewWorker()
//	go worker.Run(ctx)
//	answerer, err := sys.NewAnswerer()
//	answer := answerer.Answer(ctx, "how do I reset the device?")
package groundit

import (
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"context"

	"github.com/poiesic/groundit/ai"
	"github.com/poiesic/groundit/ai/openai"
	"github.com/poiesic/groundit/core"
	"github.com/poiesic/groundit/ingest"
	"github.com/poiesic/groundit/queue"
	badgerqueue "github.com/poiesic/groundit/queue/badger"
	"github.com/poiesic/groundit/reindex"
	"github.com/poiesic/groundit/retrieval"
	"github.com/poiesic/groundit/storage"
	"github.com/poiesic/groundit/storage/fs"
	"github.com/poiesic/groundit/vectorindex"
)

// Bucket directory names under the data directory.
const (
	documentsBucket = "documents"
	vectorsBucket   = "vectors"
	queueDir        = "queue"
)

// System bundles the stores, the queue, and the AI provider for one data
// directory.
type System struct {
	documents     storage.ObjectStore
	vectorObjects storage.ObjectStore
	vectors       *vectorindex.Store
	backend   *badgerqueue.Backend
	queue     queue.IngestionQueue
	provider  ai.Provider
	logger    *slog.Logger
}

// SystemOption configures a System.
type SystemOption func(*systemOptions)

type systemOptions struct {
	aiConfig  *ai.Config
	provider  ai.Provider
	queueOpts []badgerqueue.Option
}

// WithAIConfig sets the AI service configuration used to build the default
// OpenAI-compatible provider.
func WithAIConfig(config *ai.Config) SystemOption {
	return func(o *systemOptions) {
		o.aiConfig = config
	}
}

// WithProvider injects a prebuilt AI provider instead of constructing one
// from config. Useful for tests.
func WithProvider(provider ai.Provider) SystemOption {
	return func(o *systemOptions) {
		o.provider = provider
	}
}

// WithQueueOptions passes options through to the ingestion queue.
func WithQueueOptions(opts ...badgerqueue.Option) SystemOption {
	return func(o *systemOptions) {
		o.queueOpts = append(o.queueOpts, opts...)
	}
}

// Open initializes a System on the given data directory, creating the
// bucket directories and queue store as needed.
func Open(dataDir string, opts ...SystemOption) (*System, error) {
	options := &systemOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	documents, err := fs.New(filepath.Join(dataDir, documentsBucket))
	if err != nil {
		return nil, err
	}

	vectorObjects, err := fs.New(filepath.Join(dataDir, vectorsBucket))
	if err != nil {
		documents.Close()
		return nil, err
	}

	vectors, err := vectorindex.New(vectorObjects)
	if err != nil {
		vectorObjects.Close()
		documents.Close()
		return nil, err
	}

	backend, err := badgerqueue.OpenBackend(filepath.Join(dataDir, queueDir), false)
	if err != nil {
		vectorObjects.Close()
		documents.Close()
		return nil, err
	}

	q, err := badgerqueue.NewQueue(backend, options.queueOpts...)
	if err != nil {
		backend.Close()
		vectorObjects.Close()
		documents.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			q.Close()
			backend.Close()
			vectorObjects.Close()
			documents.Close()
			return nil, err
		}
	}

	return &System{
		documents:     documents,
		vectorObjects: vectorObjects,
		vectors:       vectors,
		backend:       backend,
		queue:         q,
		provider:      provider,
		logger:        slog.Default(),
	}, nil
}

// Close releases every component. The system must not be used afterwards.
func (s *System) Close() error {
	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing AI provider", "err", err)
	}
	if err := s.queue.Close(); err != nil {
		s.logger.Error("error closing ingestion queue", "err", err)
		return err
	}
	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing queue backend", "err", err)
		return err
	}
	if err := s.vectorObjects.Close(); err != nil {
		s.logger.Error("error closing vector store", "err", err)
		return err
	}
	if err := s.documents.Close(); err != nil {
		s.logger.Error("error closing document store", "err", err)
		return err
	}
	return nil
}

// Upload stores a document and enqueues it for ingestion. Returns the
// content ETag of the stored bytes.
func (s *System) Upload(ctx context.Context, key string, data []byte) (string, error) {
	if err := s.documents.Put(ctx, key, data); err != nil {
		return "", err
	}

	msg := &core.IngestionMessage{
		Bucket:      documentsBucket,
		DocumentKey: key,
		EventTime:   time.Now().UTC(),
	}
	if err := s.queue.Publish(ctx, msg); err != nil {
		return "", err
	}

	return core.ETagFromBytes(data), nil
}

// Documents returns the document object store.
func (s *System) Documents() storage.ObjectStore {
	return s.documents
}

// Vectors returns the vector store.
func (s *System) Vectors() *vectorindex.Store {
	return s.vectors
}

// Queue returns the ingestion queue.
func (s *System) Queue() queue.IngestionQueue {
	return s.queue
}

// Provider returns the AI provider.
func (s *System) Provider() ai.Provider {
	return s.provider
}

// NewWorker creates an ingestion worker over the system's components.
func (s *System) NewWorker(opts ...ingest.Option) (*ingest.Worker, error) {
	return ingest.NewWorker(s.documents, s.vectors, s.queue, s.provider.Embedder(), opts...)
}

// NewAnswerer creates a retrieval answerer over the system's components.
func (s *System) NewAnswerer(opts ...retrieval.Option) (*retrieval.Answerer, error) {
	return retrieval.NewAnswerer(s.vectors, s.provider, opts...)
}

// NewReindexer creates a reindexer over the system's components.
// progress follows reindex.NewReindexer semantics.
func (s *System) NewReindexer(config *reindex.Config, progress io.Writer) (*reindex.Reindexer, error) {
	return reindex.NewReindexer(s.vectors, s.provider.Embedder(), config, progress)
}
