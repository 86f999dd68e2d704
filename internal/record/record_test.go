package record_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joeandaverde/tinyquery/internal/record"
)

func TestDecodeHeader_AndValues(t *testing.T) {
	r := require.New(t)

	// header: size=4 (1 byte for itself + 3 serial type varints), then
	// types 8 (literal 0), 9 (literal 1), 1 (int8 body = 0x2a).
	payload := []byte{0x04, 0x08, 0x09, 0x01, 0x2a}

	types, bodyOffset, err := record.DecodeHeader(payload)
	r.NoError(err)
	r.Equal(4, bodyOffset)
	r.Len(types, 3)

	values, err := record.DecodeValues(types, payload[bodyOffset:])
	r.NoError(err)
	r.Len(values, 3)

	r.Equal(record.KindInteger, values[0].Kind)
	r.EqualValues(0, values[0].Int)
	r.Equal(record.KindInteger, values[1].Kind)
	r.EqualValues(1, values[1].Int)
	r.Equal(record.KindInteger, values[2].Kind)
	r.EqualValues(42, values[2].Int)
}

func TestDecodeValues_NullAndText(t *testing.T) {
	r := require.New(t)

	text := "hi"
	// serial type for text of length 2: 13 + 2*2 = 17
	payload := []byte{0x03, 0x00, 17}
	payload = append(payload, []byte(text)...)

	types, bodyOffset, err := record.DecodeHeader(payload)
	r.NoError(err)

	values, err := record.DecodeValues(types, payload[bodyOffset:])
	r.NoError(err)
	r.Len(values, 2)
	r.Equal(record.KindNull, values[0].Kind)
	r.Equal(record.KindText, values[1].Kind)
	r.Equal("hi", values[1].Str)
}

func TestDecodeValues_SignedIntegerSignExtends(t *testing.T) {
	r := require.New(t)

	// header size=2 (1 byte for itself + 1 serial type varint), serial
	// type 1 (int8), body byte 0xFF == -1.
	payload := []byte{0x02, 0x01, 0xFF}

	types, bodyOffset, err := record.DecodeHeader(payload)
	r.NoError(err)

	values, err := record.DecodeValues(types, payload[bodyOffset:])
	r.NoError(err)
	r.Len(values, 1)
	r.EqualValues(-1, values[0].Int)
}

func TestDecodeValues_Float(t *testing.T) {
	r := require.New(t)

	// header size=2, serial type 7 (float64), body = 1.5 in IEEE-754.
	payload := []byte{0x02, 0x07, 0x3F, 0xF8, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}

	types, bodyOffset, err := record.DecodeHeader(payload)
	r.NoError(err)

	values, err := record.DecodeValues(types, payload[bodyOffset:])
	r.NoError(err)
	r.Len(values, 1)
	r.Equal(record.KindFloat, values[0].Kind)
	r.InDelta(1.5, values[0].Flt, 0.0001)
}

func TestDecodeHeader_RejectsReservedSerialType(t *testing.T) {
	r := require.New(t)

	payload := []byte{0x02, 10}
	_, _, err := record.DecodeHeader(payload)
	r.Error(err)
}

func TestDecodeHeader_RejectsTruncatedHeader(t *testing.T) {
	r := require.New(t)

	payload := []byte{0x05, 0x01}
	_, _, err := record.DecodeHeader(payload)
	r.Error(err)
}

func TestDecodeValues_RejectsInvalidUTF8(t *testing.T) {
	r := require.New(t)

	// serial type 15: text of length 1, body is an invalid UTF-8 byte.
	payload := []byte{0x02, 15, 0xFF}

	types, bodyOffset, err := record.DecodeHeader(payload)
	r.NoError(err)

	_, err = record.DecodeValues(types, payload[bodyOffset:])
	r.Error(err)
}
