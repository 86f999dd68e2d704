// Package record decodes SQLite's record format (spec.md §3, §4.5): a
// varint record header listing one serial type per column, followed by
// the concatenated column bodies.
package record

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/joeandaverde/tinyquery/internal/tqerr"
	"github.com/joeandaverde/tinyquery/internal/varint"
)

// SerialType is a column's type-and-width descriptor, decoded from the
// record header. See spec.md §3's serial type table.
type SerialType int64

const (
	stNull  SerialType = 0
	stInt8  SerialType = 1
	stInt16 SerialType = 2
	stInt24 SerialType = 3
	stInt32 SerialType = 4
	stInt48 SerialType = 5
	stInt64 SerialType = 6
	stFloat SerialType = 7
	stZero  SerialType = 8
	stOne   SerialType = 9
)

func (st SerialType) reserved() bool {
	return st == 10 || st == 11
}

func (st SerialType) isBlob() bool {
	return st >= 12 && st%2 == 0
}

func (st SerialType) isText() bool {
	return st >= 13 && st%2 == 1
}

// width returns the number of body bytes this serial type consumes.
func (st SerialType) width() int {
	switch st {
	case stNull, stZero, stOne:
		return 0
	case stInt8:
		return 1
	case stInt16:
		return 2
	case stInt24:
		return 3
	case stInt32:
		return 4
	case stInt48:
		return 6
	case stInt64:
		return 8
	case stFloat:
		return 8
	default:
		if st.isBlob() {
			return int((st - 12) / 2)
		}
		if st.isText() {
			return int((st - 13) / 2)
		}
		return 0
	}
}

// ValueKind tags the dynamic type of a decoded Value.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindInteger
	KindFloat
	KindText
	KindBlob
)

// Value is a tagged column value, decoded per spec.md §3's "AST values".
type Value struct {
	Kind ValueKind
	Int  int64
	Flt  float64
	Str  string
	Blob []byte
}

func Null() Value                { return Value{Kind: KindNull} }
func Integer(v int64) Value      { return Value{Kind: KindInteger, Int: v} }
func Float(v float64) Value      { return Value{Kind: KindFloat, Flt: v} }
func Text(v string) Value        { return Value{Kind: KindText, Str: v} }
func BlobValue(v []byte) Value   { return Value{Kind: KindBlob, Blob: v} }

// DecodeHeader reads the record header: a leading varint giving the
// header's total length (including its own encoded bytes), followed by
// one serial-type varint per column. It returns the decoded serial types
// and the offset within payload where the column bodies begin.
func DecodeHeader(payload []byte) (types []SerialType, bodyOffset int, err error) {
	headerSize, n, err := varint.Read(payload)
	if err != nil {
		return nil, 0, err
	}
	if headerSize < int64(n) || int(headerSize) > len(payload) {
		return nil, 0, tqerr.Newf(tqerr.RecordInvalid, "record header size %d out of bounds", headerSize)
	}

	pos := n
	for pos < int(headerSize) {
		st, consumed, err := varint.Read(payload[pos:])
		if err != nil {
			return nil, 0, err
		}
		if SerialType(st).reserved() {
			return nil, 0, tqerr.Newf(tqerr.RecordInvalid, "reserved serial type %d", st)
		}
		types = append(types, SerialType(st))
		pos += consumed
	}
	if pos != int(headerSize) {
		return nil, 0, tqerr.Newf(tqerr.RecordInvalid, "record header length mismatch: declared %d, consumed %d", headerSize, pos)
	}

	return types, int(headerSize), nil
}

// DecodeValues decodes one Value per serial type from body, consuming
// exactly each type's declared width in order.
func DecodeValues(types []SerialType, body []byte) ([]Value, error) {
	values := make([]Value, 0, len(types))
	pos := 0

	for _, st := range types {
		w := st.width()
		if pos+w > len(body) {
			return nil, tqerr.Newf(tqerr.RecordInvalid, "record body truncated: need %d more bytes for serial type %d", w, st)
		}
		chunk := body[pos : pos+w]
		pos += w

		switch {
		case st == stNull:
			values = append(values, Null())
		case st == stZero:
			values = append(values, Integer(0))
		case st == stOne:
			values = append(values, Integer(1))
		case st == stFloat:
			bits := beUint64(chunk)
			values = append(values, Float(math.Float64frombits(bits)))
		case st.isBlob():
			values = append(values, BlobValue(chunk))
		case st.isText():
			if !utf8.Valid(chunk) {
				return nil, tqerr.New(tqerr.RecordInvalid, fmt.Errorf("column is not valid UTF-8"))
			}
			values = append(values, Text(string(chunk)))
		default:
			// stInt8 .. stInt64: sign-extend from the declared width.
			values = append(values, Integer(signExtend(chunk)))
		}
	}

	return values, nil
}

func beUint64(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}

// signExtend interprets b as a big-endian two's-complement integer of
// 1..8 bytes and sign-extends it to 64 bits.
func signExtend(b []byte) int64 {
	if len(b) == 0 {
		return 0
	}
	var v int64
	if b[0]&0x80 != 0 {
		v = -1 // all-ones pattern to sign-extend from
	}
	for _, c := range b {
		v = v<<8 | int64(c)
	}
	return v
}
