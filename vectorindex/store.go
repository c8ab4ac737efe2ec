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

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/poiesic/groundit/core"
	"github.com/poiesic/groundit/storage"
)

const manifestName = "manifest"

// recordKey builds the object key for one chunk. Indexes are zero-padded so
// lexicographic listing order matches chunk order.
func recordKey(documentKey string, chunkIndex int) string {
	return fmt.Sprintf("%s/%06d", documentKey, chunkIndex)
}

func manifestKey(documentKey string) string {
	return documentKey + "/" + manifestName
}

// Store reads and writes vector record sets on top of an object store.
type Store struct {
	objects storage.ObjectStore
	logger  *slog.Logger
}

// Option configures a Store.
type Option func(*Store) error

// WithLogger sets the logger used for scan diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		s.logger = logger
		return nil
	}
}

// New creates a Store backed by the given object store.
func New(objects storage.ObjectStore, opts ...Option) (*Store, error) {
	if objects == nil {
		return nil, ErrObjectStoreRequired
	}
	s := &Store{
		objects: objects,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// WriteIndex stores a document's full record set and commits it.
//
// All records must belong to the same document and carry unique chunk
// indexes. Record objects are written first; the manifest is written last,
// and only a manifest makes the set visible to Scan. Any previous manifest
// for the document is overwritten, so a rewrite replaces the old set
// atomically from a reader's point of view.
func (s *Store) WriteIndex(ctx context.Context, records []*core.VectorRecord, etag string) error {
	if len(records) == 0 {
		return ErrNoRecords
	}

	documentKey := records[0].DocumentKey
	seen := make(map[int]struct{}, len(records))
	for _, record := range records {
		if err := core.ValidateVectorRecord(record); err != nil {
			return err
		}
		if record.DocumentKey != documentKey {
			return fmt.Errorf("%w: %q and %q", ErrMixedDocuments, documentKey, record.DocumentKey)
		}
		if _, dup := seen[record.ChunkIndex]; dup {
			return fmt.Errorf("%w: %d", ErrDuplicateChunk, record.ChunkIndex)
		}
		seen[record.ChunkIndex] = struct{}{}
	}

	for _, record := range records {
		key := recordKey(documentKey, record.ChunkIndex)
		if err := s.objects.Put(ctx, key, storage.MarshalVectorRecord(record)); err != nil {
			return fmt.Errorf("writing record %s: %w", key, err)
		}
	}

	manifest := &core.IndexManifest{
		DocumentKey: documentKey,
		ChunkCount:  len(records),
		ETag:        etag,
		WrittenAt:   time.Now().UTC(),
	}
	if err := s.objects.Put(ctx, manifestKey(documentKey), storage.MarshalManifest(manifest)); err != nil {
		return fmt.Errorf("writing manifest for %s: %w", documentKey, err)
	}

	s.logger.Debug("committed vector index",
		"documentKey", documentKey,
		"chunks", len(records))
	return nil
}

// Manifest returns the commit manifest for a document, or ErrNotCommitted
// if none has been written.
func (s *Store) Manifest(ctx context.Context, documentKey string) (*core.IndexManifest, error) {
	data, err := s.objects.Get(ctx, manifestKey(documentKey))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotCommitted, documentKey)
		}
		return nil, err
	}
	return storage.UnmarshalManifest(data)
}

// Records loads the committed record set for one document, ordered by
// chunk index. Returns ErrNotCommitted if the document has no manifest.
func (s *Store) Records(ctx context.Context, documentKey string) ([]*core.VectorRecord, error) {
	manifest, err := s.Manifest(ctx, documentKey)
	if err != nil {
		return nil, err
	}
	records := make([]*core.VectorRecord, 0, manifest.ChunkCount)
	for i := 0; i < manifest.ChunkCount; i++ {
		data, err := s.objects.Get(ctx, recordKey(documentKey, i))
		if err != nil {
			return nil, fmt.Errorf("reading chunk %d of %s: %w", i, documentKey, err)
		}
		record, err := storage.UnmarshalVectorRecord(data)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// Documents lists the keys of every committed document, sorted.
func (s *Store) Documents(ctx context.Context) ([]string, error) {
	keys, err := s.objects.List(ctx, "")
	if err != nil {
		return nil, err
	}

	committed := make([]string, 0)
	for _, key := range keys {
		if name := key[strings.LastIndex(key, "/")+1:]; name == manifestName {
			committed = append(committed, strings.TrimSuffix(key, "/"+manifestName))
		}
	}
	sort.Strings(committed)
	return committed, nil
}

// Scan loads every committed record in the bucket, ordered by document key
// and then chunk index. Record sets without a manifest are skipped, as are
// committed sets whose objects turn out to be unreadable; a partial or
// corrupt set never fails the whole scan.
func (s *Store) Scan(ctx context.Context) ([]*core.VectorRecord, error) {
	committed, err := s.Documents(ctx)
	if err != nil {
		return nil, err
	}

	var records []*core.VectorRecord
	for _, documentKey := range committed {
		set, err := s.Records(ctx, documentKey)
		if err != nil {
			s.logger.Warn("skipping unreadable record set",
				"documentKey", documentKey,
				"error", err)
			continue
		}
		records = append(records, set...)
	}
	return records, nil
}
