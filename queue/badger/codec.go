package badger

import (
	"fmt"

	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/groundit/core"
	"github.com/poiesic/groundit/storage"
)

// entry is the stored form of a queued message: the message itself plus the
// lease bookkeeping the queue maintains around it.
type entry struct {
	Msg       core.IngestionMessage
	VisibleAt int64 // unix micros; zero means immediately receivable
	Token     uint64
}

func marshalEntry(e *entry) []byte {
	size := core.IngestionMessageMUS.Size(e.Msg) +
		varint.Int64.Size(e.VisibleAt) +
		varint.Uint64.Size(e.Token)
	buf := make([]byte, size)
	n := core.IngestionMessageMUS.Marshal(e.Msg, buf)
	n += varint.Int64.Marshal(e.VisibleAt, buf[n:])
	varint.Uint64.Marshal(e.Token, buf[n:])
	return buf
}

func unmarshalEntry(data []byte) (*entry, error) {
	var e entry
	msg, n, err := core.IngestionMessageMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
	}
	e.Msg = msg
	var n1 int
	e.VisibleAt, n1, err = varint.Int64.Unmarshal(data[n:])
	n += n1
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
	}
	e.Token, _, err = varint.Uint64.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
	}
	return &e, nil
}
