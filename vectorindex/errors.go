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

package vectorindex

import "errors"

var (
	// ErrObjectStoreRequired is returned when a Store is constructed
	// without a backing object store.
	ErrObjectStoreRequired = errors.New("object store is required")

	// ErrNoRecords is returned when WriteIndex is called with an empty
	// record slice.
	ErrNoRecords = errors.New("no records to write")

	// ErrMixedDocuments is returned when a single WriteIndex call spans
	// more than one document key.
	ErrMixedDocuments = errors.New("records belong to different documents")

	// ErrDuplicateChunk is returned when two records in one WriteIndex
	// call carry the same chunk index.
	ErrDuplicateChunk = errors.New("duplicate chunk index")

	// ErrNotCommitted is returned when a document's records are requested
	// but no manifest exists for it.
	ErrNotCommitted = errors.New("document has no committed index")
)
