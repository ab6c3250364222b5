// Package shortvec implements the compact-u16 length prefix used throughout
// the Solana wire format: little endian base 128, at most three bytes.
package shortvec

import (
	"io"
	"math"

	"github.com/pkg/errors"
)

const maxEncodedLen = 3

var (
	ErrLengthOverflow = errors.New("shortvec length exceeds max uint16")
	ErrNonCanonical   = errors.New("shortvec length is not canonically encoded")
)

// EncodeLen writes length to w and returns the number of bytes written
func EncodeLen(w io.ByteWriter, length int) (int, error) {
	if length < 0 || length > math.MaxUint16 {
		return 0, ErrLengthOverflow
	}

	written := 0
	for {
		b := byte(length & 0x7f)
		length >>= 7
		if length != 0 {
			b |= 0x80
		}

		if err := w.WriteByte(b); err != nil {
			return written, err
		}
		written++

		if length == 0 {
			return written, nil
		}
	}
}

// DecodeLen reads a length from r. Encodings with redundant trailing bytes,
// or values beyond uint16, are rejected.
func DecodeLen(r io.ByteReader) (int, error) {
	var length int
	for i := 0; i < maxEncodedLen; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}

		if i > 0 && b == 0 {
			return 0, ErrNonCanonical
		}

		length |= int(b&0x7f) << (7 * i)
		if length > math.MaxUint16 {
			return 0, ErrLengthOverflow
		}

		if b&0x80 == 0 {
			return length, nil
		}
	}
	return 0, ErrLengthOverflow
}
