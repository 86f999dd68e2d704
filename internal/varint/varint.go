// Package varint decodes SQLite's 1-9 byte big-endian variable-length
// integer encoding.
//
// Unlike a protobuf-style varint, the SQLite encoding is big-endian: the
// first byte holds the most significant 7 bits, continuation is signalled
// by the high bit of bytes 1 through 8, and the ninth byte (if reached)
// contributes all 8 of its bits rather than 7.
package varint

import (
	"fmt"

	"github.com/joeandaverde/tinyquery/internal/tqerr"
)

// MaxLen is the longest a SQLite varint can be.
const MaxLen = 9

// Read decodes a varint from the front of b, returning the signed value
// and the number of bytes consumed.
func Read(b []byte) (value int64, consumed int, err error) {
	var acc uint64

	for i := 0; i < MaxLen; i++ {
		if i >= len(b) {
			return 0, 0, tqerr.New(tqerr.VarintTruncated, fmt.Errorf("need %d bytes, have %d", i+1, len(b)))
		}

		c := b[i]
		if i == MaxLen-1 {
			// Ninth byte: all 8 bits contribute, no continuation bit.
			acc = acc<<8 | uint64(c)
			return int64(acc), i + 1, nil
		}

		acc = acc<<7 | uint64(c&0x7f)
		if c&0x80 == 0 {
			return int64(acc), i + 1, nil
		}
	}

	// unreachable: the loop above always returns by i == MaxLen-1
	return int64(acc), MaxLen, nil
}
