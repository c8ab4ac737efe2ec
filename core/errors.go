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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidVectorRecord indicates a VectorRecord failed validation.
	ErrInvalidVectorRecord = errors.New("invalid vector record")

	// ErrInvalidMessage indicates an IngestionMessage failed validation.
	ErrInvalidMessage = errors.New("invalid ingestion message")

	// ErrInvalidManifest indicates an IndexManifest failed validation.
	ErrInvalidManifest = errors.New("invalid index manifest")

	// ErrEmptyDocumentKey indicates the DocumentKey field is empty.
	ErrEmptyDocumentKey = errors.New("document key cannot be empty")

	// ErrNegativeChunkIndex indicates a chunk index below zero.
	ErrNegativeChunkIndex = errors.New("chunk index cannot be negative")

	// ErrEmptyVector indicates the embedding vector is empty.
	ErrEmptyVector = errors.New("embedding vector cannot be empty")

	// ErrEmptyText indicates the chunk text is empty.
	ErrEmptyText = errors.New("chunk text cannot be empty")

	// ErrInvalidEventTime indicates an event time in the future.
	ErrInvalidEventTime = errors.New("event time cannot be in the future")

	// ErrNegativeAttempt indicates a delivery attempt count below zero.
	ErrNegativeAttempt = errors.New("delivery attempt cannot be negative")

	// ErrEmptyChunkCount indicates a manifest covering zero chunks.
	ErrEmptyChunkCount = errors.New("manifest must cover at least one chunk")
)
