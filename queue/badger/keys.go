package badger

import "encoding/binary"

// Key prefixes for queue data
const (
	messagePrefix    = "ingmsg"
	deadLetterPrefix = "ingdlq"
	messageIDSeq     = "ingmsgseq"
	leaseTokenSeq    = "ingtokseq"
)

// makeMessageKey generates a key for a queued message by ID.
// The ID is written in BigEndian order so iteration visits oldest first.
func makeMessageKey(id uint64) []byte {
	prefix := messagePrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], id)
	return buf
}

// makeDeadLetterKey generates a key for a dead-lettered message by ID.
func makeDeadLetterKey(id uint64) []byte {
	prefix := deadLetterPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], id)
	return buf
}

// messageIDFromKey extracts the message ID from a message or dead-letter key.
func messageIDFromKey(key []byte) uint64 {
	return binary.BigEndian.Uint64(key[len(key)-8:])
}
