// Package codec implements the binary wire protocol of spec §4.3: the
// row-buffer format (version 1), the parameter buffer format, the
// multi-result stream, the bulk-insert payload, and the metrics snapshot.
//
// All integers are little-endian. Every Encode/Decode pair here must satisfy
// the round-trip property of spec §8: decode(encode(x)) == x.
package codec

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/odbccore/engine/internal/types"
)

const (
	rowBufferMagic   uint32 = 0x4F444243 // "ODBC" read as a big-endian u32; written little-endian, the wire bytes are C,B,D,O
	rowBufferVersion uint16 = 1
	headerSize              = 16
)

// Column describes one result column (spec §4.3 "column metadata").
type Column struct {
	Name     string
	ODBCType int16
}

// RowBuffer is the decoded, in-memory form of a row-buffer payload.
type RowBuffer struct {
	Columns []Column
	Rows    [][]interface{} // each value is nil, string, int32, int64, float64, time.Time, or []byte
}

// Encode serializes rb into the version-1 row-buffer wire format.
func Encode(rb RowBuffer) ([]byte, error) {
	if len(rb.Columns) > 255 {
		return nil, fmt.Errorf("codec: column count %d exceeds u8 name-length-adjacent encoding limit of 255", len(rb.Columns))
	}

	body := make([]byte, 0, 256)

	for _, col := range rb.Columns {
		nameBytes := []byte(col.Name)
		if len(nameBytes) > 255 {
			return nil, fmt.Errorf("codec: column name %q exceeds 255 bytes", col.Name)
		}
		body = append(body, byte(len(nameBytes)))
		body = append(body, nameBytes...)
		body = appendUint16(body, uint16(col.ODBCType))
	}

	for _, row := range rb.Rows {
		if len(row) != len(rb.Columns) {
			return nil, fmt.Errorf("codec: row has %d values, expected %d columns", len(row), len(rb.Columns))
		}
		for i, val := range row {
			var tag types.RowTag
			if len(rb.Columns) > 0 {
				tag = types.RowTagFor(rb.Columns[i].ODBCType)
			}
			var err error
			body, err = appendValue(body, tag, val)
			if err != nil {
				return nil, err
			}
		}
	}

	out := make([]byte, headerSize, headerSize+len(body))
	binary.LittleEndian.PutUint32(out[0:4], rowBufferMagic)
	binary.LittleEndian.PutUint16(out[4:6], rowBufferVersion)
	binary.LittleEndian.PutUint16(out[6:8], uint16(len(rb.Columns)))
	binary.LittleEndian.PutUint32(out[8:12], uint32(len(rb.Rows)))
	binary.LittleEndian.PutUint32(out[12:16], uint32(len(body)))
	out = append(out, body...)
	return out, nil
}

// Decode parses a version-1 row-buffer payload, enforcing every invariant
// from spec §4.3 (magic, version, declared sizes).
func Decode(buf []byte) (RowBuffer, error) {
	if len(buf) < headerSize {
		return RowBuffer{}, fmt.Errorf("codec: buffer shorter than header (%d < %d)", len(buf), headerSize)
	}
	magic := binary.LittleEndian.Uint32(buf[0:4])
	if magic != rowBufferMagic {
		return RowBuffer{}, fmt.Errorf("codec: bad magic 0x%08X", magic)
	}
	version := binary.LittleEndian.Uint16(buf[4:6])
	if version != rowBufferVersion {
		return RowBuffer{}, fmt.Errorf("codec: unsupported row-buffer version %d", version)
	}
	colCount := binary.LittleEndian.Uint16(buf[6:8])
	rowCount := binary.LittleEndian.Uint32(buf[8:12])
	payloadSize := binary.LittleEndian.Uint32(buf[12:16])

	body := buf[headerSize:]
	if uint32(len(body)) != payloadSize {
		return RowBuffer{}, fmt.Errorf("codec: payload size mismatch: header says %d, have %d", payloadSize, len(body))
	}

	rb := RowBuffer{Columns: make([]Column, 0, colCount)}
	off := 0
	for i := uint16(0); i < colCount; i++ {
		if off >= len(body) {
			return RowBuffer{}, fmt.Errorf("codec: truncated column metadata at column %d", i)
		}
		nameLen := int(body[off])
		off++
		if off+nameLen > len(body) {
			return RowBuffer{}, fmt.Errorf("codec: truncated column name at column %d", i)
		}
		name := string(body[off : off+nameLen])
		off += nameLen
		if off+2 > len(body) {
			return RowBuffer{}, fmt.Errorf("codec: truncated column type at column %d", i)
		}
		odbcType := int16(binary.LittleEndian.Uint16(body[off : off+2]))
		off += 2
		rb.Columns = append(rb.Columns, Column{Name: name, ODBCType: odbcType})
	}

	rb.Rows = make([][]interface{}, 0, rowCount)
	for r := uint32(0); r < rowCount; r++ {
		row := make([]interface{}, colCount)
		for c := uint16(0); c < colCount; c++ {
			val, n, err := decodeValue(body[off:])
			if err != nil {
				return RowBuffer{}, fmt.Errorf("codec: row %d column %d: %w", r, c, err)
			}
			row[c] = val
			off += n
		}
		rb.Rows = append(rb.Rows, row)
	}
	if uint32(len(rb.Rows)) != rowCount {
		return RowBuffer{}, fmt.Errorf("codec: decoded %d rows, header declared %d", len(rb.Rows), rowCount)
	}

	return rb, nil
}

func appendValue(body []byte, tag types.RowTag, val interface{}) ([]byte, error) {
	if val == nil {
		body = append(body, 1 /* is_null */, byte(types.TagNull))
		return body, nil
	}

	switch tag {
	case types.TagString:
		s := toString(val)
		body = append(body, 0, byte(types.TagString))
		body = appendUint32(body, uint32(len(s)))
		body = append(body, s...)
	case types.TagInt32:
		i, err := toInt64(val)
		if err != nil {
			return nil, err
		}
		body = append(body, 0, byte(types.TagInt32))
		body = appendUint32(body, 4)
		body = appendInt32(body, int32(i))
	case types.TagInt64:
		i, err := toInt64(val)
		if err != nil {
			return nil, err
		}
		body = append(body, 0, byte(types.TagInt64))
		body = appendUint32(body, 8)
		body = appendInt64(body, i)
	case types.TagNullableDouble:
		f, err := toFloat64(val)
		if err != nil {
			return nil, err
		}
		body = append(body, 0, byte(types.TagNullableDouble))
		body = appendUint32(body, 9)
		body = append(body, 1 /* presence */)
		body = appendFloat64(body, f)
	case types.TagDouble:
		f, err := toFloat64(val)
		if err != nil {
			return nil, err
		}
		body = append(body, 0, byte(types.TagDouble))
		body = appendUint32(body, 8)
		body = appendFloat64(body, f)
	case types.TagNullableDatetime:
		t, err := toTime(val)
		if err != nil {
			return nil, err
		}
		body = append(body, 0, byte(types.TagNullableDatetime))
		body = appendUint32(body, 9)
		body = append(body, 1 /* presence */)
		body = appendUint64(body, uint64(t.UnixMilli()))
	case types.TagBinary:
		b := toBytes(val)
		body = append(body, 0, byte(types.TagBinary))
		body = appendUint32(body, uint32(len(b)))
		body = append(body, b...)
	default:
		s := toString(val)
		body = append(body, 0, byte(types.TagString))
		body = appendUint32(body, uint32(len(s)))
		body = append(body, s...)
	}
	return body, nil
}

func decodeValue(buf []byte) (interface{}, int, error) {
	if len(buf) < 2 {
		return nil, 0, fmt.Errorf("truncated value header")
	}
	isNull := buf[0] == 1
	tag := types.RowTag(buf[1])
	off := 2

	if isNull || tag == types.TagNull {
		return nil, off, nil
	}

	if len(buf[off:]) < 4 {
		return nil, 0, fmt.Errorf("truncated value length")
	}
	length := binary.LittleEndian.Uint32(buf[off : off+4])
	off += 4
	if uint32(len(buf[off:])) < length {
		return nil, 0, fmt.Errorf("truncated value payload: need %d, have %d", length, len(buf[off:]))
	}
	payload := buf[off : off+int(length)]
	off += int(length)

	switch tag {
	case types.TagString:
		return string(payload), off, nil
	case types.TagInt32:
		if length != 4 {
			return nil, 0, fmt.Errorf("int32 value must be length 4, got %d", length)
		}
		return int32(binary.LittleEndian.Uint32(payload)), off, nil
	case types.TagInt64:
		if length != 8 {
			return nil, 0, fmt.Errorf("int64 value must be length 8, got %d", length)
		}
		return int64(binary.LittleEndian.Uint64(payload)), off, nil
	case types.TagNullableDouble:
		if length != 9 {
			return nil, 0, fmt.Errorf("nullable-double value must be length 9, got %d", length)
		}
		presence := payload[0]
		if presence == 0 {
			return nil, off, nil
		}
		bits := binary.LittleEndian.Uint64(payload[1:9])
		return float64FromBits(bits), off, nil
	case types.TagDouble:
		if length != 8 {
			return nil, 0, fmt.Errorf("double value must be length 8, got %d", length)
		}
		return float64FromBits(binary.LittleEndian.Uint64(payload)), off, nil
	case types.TagNullableDatetime:
		if length != 9 {
			return nil, 0, fmt.Errorf("nullable-datetime value must be length 9, got %d", length)
		}
		presence := payload[0]
		if presence == 0 {
			return nil, off, nil
		}
		ms := binary.LittleEndian.Uint64(payload[1:9])
		return time.UnixMilli(int64(ms)).UTC(), off, nil
	case types.TagBinary:
		out := make([]byte, len(payload))
		copy(out, payload)
		return out, off, nil
	default:
		return nil, 0, fmt.Errorf("unknown row type tag %d", tag)
	}
}
