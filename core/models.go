package core

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ETagFromBytes computes a content-based tag for object data using BLAKE2b
// hashing. Identical content always produces the same tag, which lets the
// pipeline detect reprocessing of unchanged documents.
func ETagFromBytes(data []byte) string {
	h, _ := blake2b.New(16, nil)
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Document describes an uploaded source object in the material bucket.
// Documents are immutable: the pipeline never mutates them, it only reads
// their bytes back during embedding.
type Document struct {
	Key         string
	ContentType string
	Size        int64
	UploadedAt  time.Time
}

// IngestionMessage is the queue message published when a document is
// uploaded. DeliveryAttempt counts how many times the message has been
// handed to a worker; the queue owns this field.
type IngestionMessage struct {
	Bucket          string
	DocumentKey     string
	EventTime       time.Time
	DeliveryAttempt int
}

// PageMeta carries source-page metadata extracted while loading a document.
// For non-paginated sources only Page and TotalPages are meaningful (both 1).
type PageMeta struct {
	Page       int
	PageLabel  string
	Title      string
	Author     string
	TotalPages int
}

// VectorRecord is the persisted unit of the vector index: one embedded chunk
// of one document, with the text and metadata needed to ground an answer.
// Records are immutable once written and identified by (DocumentKey, ChunkIndex).
type VectorRecord struct {
	DocumentKey string
	ChunkIndex  int
	Vector      []float32
	Text        string
	Meta        PageMeta
}

// Key returns the record identity as "documentKey#chunkIndex".
func (r *VectorRecord) Key() string {
	return fmt.Sprintf("%s#%d", r.DocumentKey, r.ChunkIndex)
}

// IndexManifest is the commit marker for a document's record set. It is
// written only after every VectorRecord of the set has been persisted, and
// scanners treat record sets without a manifest as invisible.
type IndexManifest struct {
	DocumentKey string
	ChunkCount  int
	ETag        string
	WrittenAt   time.Time
}

// ScoredRecord pairs a vector record with its similarity score for a query.
type ScoredRecord struct {
	Record *VectorRecord
	Score  float32
}

// Reference points an answer back at the source passage it was grounded on.
type Reference struct {
	Source     string  `json:"source"`
	Page       int     `json:"page"`
	Score      float32 `json:"score"`
	Title      string  `json:"title,omitempty"`
	Author     string  `json:"author,omitempty"`
	TotalPages int     `json:"total_pages,omitempty"`
}

// Answer is the retrieval response envelope. Its shape is a hard contract:
// callers always receive both fields, with failures expressed as content.
type Answer struct {
	Result     string      `json:"result"`
	References []Reference `json:"references"`
}

// ErrorAnswer builds a well-formed Answer describing an internal failure.
// References is non-nil so the envelope serializes with an empty array.
func ErrorAnswer(description string) Answer {
	return Answer{
		Result:     description,
		References: []Reference{},
	}
}
