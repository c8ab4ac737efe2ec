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

import "errors"

var (
	// ErrDocumentStoreRequired is returned when a worker is constructed
	// without a document object store.
	ErrDocumentStoreRequired = errors.New("document store required")

	// ErrVectorStoreRequired is returned when a worker is constructed
	// without a vector store.
	ErrVectorStoreRequired = errors.New("vector store required")

	// ErrQueueRequired is returned when a worker is constructed without an
	// ingestion queue.
	ErrQueueRequired = errors.New("ingestion queue required")

	// ErrEmbedderRequired is returned when a worker is constructed without
	// an embedder.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrNoText is returned when a document yields no extractable text.
	ErrNoText = errors.New("document has no extractable text")

	// ErrEmbeddingMismatch is returned when the embedder returns a
	// different number of vectors than texts submitted.
	ErrEmbeddingMismatch = errors.New("embedding result count mismatch")
)
