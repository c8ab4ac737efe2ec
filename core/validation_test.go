package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validRecord() *VectorRecord {
	return &VectorRecord{
		DocumentKey: "manual.pdf",
		ChunkIndex:  0,
		Vector:      []float32{0.1, 0.2},
		Text:        "some chunk text",
	}
}

func TestValidateVectorRecord(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*VectorRecord)
		wantErr error
	}{
		{"valid", func(r *VectorRecord) {}, nil},
		{"empty document key", func(r *VectorRecord) { r.DocumentKey = "" }, ErrEmptyDocumentKey},
		{"negative chunk index", func(r *VectorRecord) { r.ChunkIndex = -1 }, ErrNegativeChunkIndex},
		{"empty vector", func(r *VectorRecord) { r.Vector = nil }, ErrEmptyVector},
		{"empty text", func(r *VectorRecord) { r.Text = "" }, ErrEmptyText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := validRecord()
			tt.mutate(record)

			err := ValidateVectorRecord(record)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidVectorRecord)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("nil record", func(t *testing.T) {
		assert.ErrorIs(t, ValidateVectorRecord(nil), ErrInvalidVectorRecord)
	})
}

func TestValidateIngestionMessage(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		msg := &IngestionMessage{DocumentKey: "doc.txt", EventTime: time.Now().Add(-time.Minute)}
		assert.NoError(t, ValidateIngestionMessage(msg))
	})

	t.Run("bucket may be empty", func(t *testing.T) {
		msg := &IngestionMessage{DocumentKey: "doc.txt", EventTime: time.Now().Add(-time.Minute)}
		msg.Bucket = ""
		assert.NoError(t, ValidateIngestionMessage(msg))
	})

	t.Run("empty document key", func(t *testing.T) {
		msg := &IngestionMessage{EventTime: time.Now().Add(-time.Minute)}
		assert.ErrorIs(t, ValidateIngestionMessage(msg), ErrEmptyDocumentKey)
	})

	t.Run("future event time", func(t *testing.T) {
		msg := &IngestionMessage{DocumentKey: "doc.txt", EventTime: time.Now().Add(time.Hour)}
		assert.ErrorIs(t, ValidateIngestionMessage(msg), ErrInvalidEventTime)
	})

	t.Run("negative attempt", func(t *testing.T) {
		msg := &IngestionMessage{DocumentKey: "doc.txt", EventTime: time.Now().Add(-time.Minute), DeliveryAttempt: -1}
		assert.ErrorIs(t, ValidateIngestionMessage(msg), ErrNegativeAttempt)
	})

	t.Run("nil message", func(t *testing.T) {
		assert.ErrorIs(t, ValidateIngestionMessage(nil), ErrInvalidMessage)
	})
}

func TestValidateManifest(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		m := &IndexManifest{DocumentKey: "doc.txt", ChunkCount: 1}
		assert.NoError(t, ValidateManifest(m))
	})

	t.Run("zero chunks", func(t *testing.T) {
		m := &IndexManifest{DocumentKey: "doc.txt"}
		assert.ErrorIs(t, ValidateManifest(m), ErrEmptyChunkCount)
	})

	t.Run("empty key", func(t *testing.T) {
		m := &IndexManifest{ChunkCount: 2}
		assert.ErrorIs(t, ValidateManifest(m), ErrEmptyDocumentKey)
	})
}
