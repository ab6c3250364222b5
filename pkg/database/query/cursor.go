package query

import (
	"encoding/binary"
)

// Cursor is an opaque position in a paged result set, encoded as a big endian
// record id
type Cursor []byte

var EmptyCursor = Cursor([]byte{})

func ToCursor(val uint64) Cursor {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, val)
	return b
}

func (c Cursor) ToUint64() uint64 {
	return binary.BigEndian.Uint64(c)
}
