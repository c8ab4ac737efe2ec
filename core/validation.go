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

import (
	"fmt"
	"time"
)

// ValidateVectorRecord validates a VectorRecord according to domain rules.
//
// Validation rules:
//   - DocumentKey must not be empty
//   - ChunkIndex must not be negative
//   - Vector must not be empty
//   - Text must not be empty
func ValidateVectorRecord(record *VectorRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidVectorRecord)
	}

	if record.DocumentKey == "" {
		return fmt.Errorf("%w: %w", ErrInvalidVectorRecord, ErrEmptyDocumentKey)
	}

	if record.ChunkIndex < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidVectorRecord, ErrNegativeChunkIndex)
	}

	if len(record.Vector) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidVectorRecord, ErrEmptyVector)
	}

	if record.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidVectorRecord, ErrEmptyText)
	}

	return nil
}

// ValidateIngestionMessage validates an IngestionMessage according to domain rules.
//
// Validation rules:
//   - DocumentKey must not be empty
//   - EventTime must not be in the future
//   - DeliveryAttempt must not be negative
//
// Bucket is NOT validated: single-bucket deployments publish messages
// without one and rely on the consumer's configured material bucket.
func ValidateIngestionMessage(msg *IngestionMessage) error {
	if msg == nil {
		return fmt.Errorf("%w: message is nil", ErrInvalidMessage)
	}

	if msg.DocumentKey == "" {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, ErrEmptyDocumentKey)
	}

	if !IsValidTimestamp(msg.EventTime) {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, ErrInvalidEventTime)
	}

	if msg.DeliveryAttempt < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, ErrNegativeAttempt)
	}

	return nil
}

// ValidateManifest validates an IndexManifest according to domain rules.
//
// Validation rules:
//   - DocumentKey must not be empty
//   - ChunkCount must be at least one
func ValidateManifest(manifest *IndexManifest) error {
	if manifest == nil {
		return fmt.Errorf("%w: manifest is nil", ErrInvalidManifest)
	}

	if manifest.DocumentKey == "" {
		return fmt.Errorf("%w: %w", ErrInvalidManifest, ErrEmptyDocumentKey)
	}

	if manifest.ChunkCount < 1 {
		return fmt.Errorf("%w: %w", ErrInvalidManifest, ErrEmptyChunkCount)
	}

	return nil
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
