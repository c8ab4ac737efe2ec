package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the persisted domain types. Timestamps are encoded
// as unix microseconds and restored in UTC.

var float32SliceSer = ord.NewSliceSer[float32](raw.Float32)

var PageMetaMUS = pageMetaMUS{}

type pageMetaMUS struct{}

func (s pageMetaMUS) Marshal(v PageMeta, bs []byte) (n int) {
	n = varint.Int.Marshal(v.Page, bs)
	n += ord.String.Marshal(v.PageLabel, bs[n:])
	n += ord.String.Marshal(v.Title, bs[n:])
	n += ord.String.Marshal(v.Author, bs[n:])
	n += varint.Int.Marshal(v.TotalPages, bs[n:])
	return
}

func (s pageMetaMUS) Unmarshal(bs []byte) (v PageMeta, n int, err error) {
	v.Page, n, err = varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.PageLabel, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Title, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Author, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.TotalPages, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	return
}

func (s pageMetaMUS) Size(v PageMeta) (size int) {
	size = varint.Int.Size(v.Page)
	size += ord.String.Size(v.PageLabel)
	size += ord.String.Size(v.Title)
	size += ord.String.Size(v.Author)
	size += varint.Int.Size(v.TotalPages)
	return
}

func (s pageMetaMUS) Skip(bs []byte) (n int, err error) {
	n, err = varint.Int.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	return
}

var VectorRecordMUS = vectorRecordMUS{}

type vectorRecordMUS struct{}

func (s vectorRecordMUS) Marshal(v VectorRecord, bs []byte) (n int) {
	n = ord.String.Marshal(v.DocumentKey, bs)
	n += varint.Int.Marshal(v.ChunkIndex, bs[n:])
	n += float32SliceSer.Marshal(v.Vector, bs[n:])
	n += ord.String.Marshal(v.Text, bs[n:])
	n += PageMetaMUS.Marshal(v.Meta, bs[n:])
	return
}

func (s vectorRecordMUS) Unmarshal(bs []byte) (v VectorRecord, n int, err error) {
	v.DocumentKey, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.ChunkIndex, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Vector, n1, err = float32SliceSer.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Meta, n1, err = PageMetaMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (s vectorRecordMUS) Size(v VectorRecord) (size int) {
	size = ord.String.Size(v.DocumentKey)
	size += varint.Int.Size(v.ChunkIndex)
	size += float32SliceSer.Size(v.Vector)
	size += ord.String.Size(v.Text)
	size += PageMetaMUS.Size(v.Meta)
	return
}

func (s vectorRecordMUS) Skip(bs []byte) (n int, err error) {
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = float32SliceSer.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = PageMetaMUS.Skip(bs[n:])
	n += n1
	return
}

var IndexManifestMUS = indexManifestMUS{}

type indexManifestMUS struct{}

func (s indexManifestMUS) Marshal(v IndexManifest, bs []byte) (n int) {
	n = ord.String.Marshal(v.DocumentKey, bs)
	n += varint.Int.Marshal(v.ChunkCount, bs[n:])
	n += ord.String.Marshal(v.ETag, bs[n:])
	n += varint.Int64.Marshal(v.WrittenAt.UnixMicro(), bs[n:])
	return
}

func (s indexManifestMUS) Unmarshal(bs []byte) (v IndexManifest, n int, err error) {
	v.DocumentKey, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.ChunkCount, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ETag, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var mcs int64
	mcs, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.WrittenAt = time.UnixMicro(mcs).UTC()
	return
}

func (s indexManifestMUS) Size(v IndexManifest) (size int) {
	size = ord.String.Size(v.DocumentKey)
	size += varint.Int.Size(v.ChunkCount)
	size += ord.String.Size(v.ETag)
	size += varint.Int64.Size(v.WrittenAt.UnixMicro())
	return
}

func (s indexManifestMUS) Skip(bs []byte) (n int, err error) {
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int64.Skip(bs[n:])
	n += n1
	return
}

var IngestionMessageMUS = ingestionMessageMUS{}

type ingestionMessageMUS struct{}

func (s ingestionMessageMUS) Marshal(v IngestionMessage, bs []byte) (n int) {
	n = ord.String.Marshal(v.Bucket, bs)
	n += ord.String.Marshal(v.DocumentKey, bs[n:])
	n += varint.Int64.Marshal(v.EventTime.UnixMicro(), bs[n:])
	n += varint.Int.Marshal(v.DeliveryAttempt, bs[n:])
	return
}

func (s ingestionMessageMUS) Unmarshal(bs []byte) (v IngestionMessage, n int, err error) {
	v.Bucket, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.DocumentKey, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var mcs int64
	mcs, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.EventTime = time.UnixMicro(mcs).UTC()
	v.DeliveryAttempt, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	return
}

func (s ingestionMessageMUS) Size(v IngestionMessage) (size int) {
	size = ord.String.Size(v.Bucket)
	size += ord.String.Size(v.DocumentKey)
	size += varint.Int64.Size(v.EventTime.UnixMicro())
	size += varint.Int.Size(v.DeliveryAttempt)
	return
}

func (s ingestionMessageMUS) Skip(bs []byte) (n int, err error) {
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int64.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	return
}
