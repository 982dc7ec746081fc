package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/odbccore/engine/internal/types"
)

// Timestamp is the wire representation of the bulk-insert timestamp column
// type (tag 5, spec §4.10): year as i16, month/day/hour/minute/second as
// u16, and a fractional-nanosecond u32.
type Timestamp struct {
	Year       int16
	Month      uint16
	Day        uint16
	Hour       uint16
	Minute     uint16
	Second     uint16
	FractionNs uint32
}

// BulkColumn describes one column of a bulk-insert payload.
type BulkColumn struct {
	Name     string
	Tag      types.BulkColumnTag
	Nullable bool
	MaxLen   uint32
}

// BulkPayload is the decoded form of a bulk-insert payload. Data is stored
// column-major: Data[c][r] is the value for column c, row r, or nil when the
// cell is null (which requires Columns[c].Nullable to be true). EncodeBulk
// rejects a null in a non-nullable column, DecodeBulk only yields nulls for
// nullable columns (from their null bitmap), and internal/bulk rejects such
// a null with a BulkValidation error before executing any INSERT.
type BulkPayload struct {
	Table    string
	Columns  []BulkColumn
	RowCount uint32
	Data     [][]interface{}
}

// EncodeBulk serializes a BulkPayload to the wire format of spec §4.10.
func EncodeBulk(p BulkPayload) ([]byte, error) {
	if len(p.Data) != len(p.Columns) {
		return nil, fmt.Errorf("codec: bulk payload has %d data columns, expected %d", len(p.Data), len(p.Columns))
	}

	out := make([]byte, 0, 256)
	out = appendUint32(out, uint32(len(p.Table)))
	out = append(out, p.Table...)
	out = appendUint32(out, uint32(len(p.Columns)))

	for _, col := range p.Columns {
		out = appendUint32(out, uint32(len(col.Name)))
		out = append(out, col.Name...)
		out = append(out, byte(col.Tag))
		if col.Nullable {
			out = append(out, 1)
		} else {
			out = append(out, 0)
		}
		out = appendUint32(out, col.MaxLen)
	}

	out = appendUint32(out, p.RowCount)

	for ci, col := range p.Columns {
		colData := p.Data[ci]
		if uint32(len(colData)) != p.RowCount {
			return nil, fmt.Errorf("codec: bulk column %q has %d values, expected %d rows", col.Name, len(colData), p.RowCount)
		}
		if col.Nullable {
			out = append(out, bitmapFor(colData)...)
		}
		var err error
		out, err = appendBulkColumn(out, col, colData)
		if err != nil {
			return nil, err
		}
	}

	return out, nil
}

// DecodeBulk parses the wire format of spec §4.10 back into a BulkPayload.
func DecodeBulk(buf []byte) (BulkPayload, error) {
	off := 0
	readU32 := func() (uint32, error) {
		if off+4 > len(buf) {
			return 0, fmt.Errorf("codec: truncated bulk payload at offset %d", off)
		}
		v := binary.LittleEndian.Uint32(buf[off : off+4])
		off += 4
		return v, nil
	}

	tableLen, err := readU32()
	if err != nil {
		return BulkPayload{}, err
	}
	if off+int(tableLen) > len(buf) {
		return BulkPayload{}, fmt.Errorf("codec: truncated table name")
	}
	table := string(buf[off : off+int(tableLen)])
	off += int(tableLen)

	colCount, err := readU32()
	if err != nil {
		return BulkPayload{}, err
	}

	cols := make([]BulkColumn, 0, colCount)
	for i := uint32(0); i < colCount; i++ {
		nameLen, err := readU32()
		if err != nil {
			return BulkPayload{}, err
		}
		if off+int(nameLen) > len(buf) {
			return BulkPayload{}, fmt.Errorf("codec: truncated column %d name", i)
		}
		name := string(buf[off : off+int(nameLen)])
		off += int(nameLen)

		if off+2 > len(buf) {
			return BulkPayload{}, fmt.Errorf("codec: truncated column %d tag/nullable", i)
		}
		tag := types.BulkColumnTag(buf[off])
		nullable := buf[off+1] != 0
		off += 2

		maxLen, err := readU32()
		if err != nil {
			return BulkPayload{}, err
		}
		cols = append(cols, BulkColumn{Name: name, Tag: tag, Nullable: nullable, MaxLen: maxLen})
	}

	rowCount, err := readU32()
	if err != nil {
		return BulkPayload{}, err
	}

	data := make([][]interface{}, len(cols))
	for ci, col := range cols {
		var bitmap []byte
		if col.Nullable {
			bmLen := int((rowCount + 7) / 8)
			if off+bmLen > len(buf) {
				return BulkPayload{}, fmt.Errorf("codec: truncated null bitmap for column %q", col.Name)
			}
			bitmap = buf[off : off+bmLen]
			off += bmLen
		}

		colVals := make([]interface{}, rowCount)
		for r := uint32(0); r < rowCount; r++ {
			if col.Nullable && bitIsSet(bitmap, r) {
				colVals[r] = nil
				continue
			}
			val, n, err := decodeBulkCell(buf[off:], col.Tag)
			if err != nil {
				return BulkPayload{}, fmt.Errorf("codec: column %q row %d: %w", col.Name, r, err)
			}
			colVals[r] = val
			off += n
		}
		data[ci] = colVals
	}

	return BulkPayload{Table: table, Columns: cols, RowCount: rowCount, Data: data}, nil
}

func bitmapFor(colData []interface{}) []byte {
	bm := make([]byte, (len(colData)+7)/8)
	for r, v := range colData {
		if v == nil {
			bm[r/8] |= 1 << (uint(r) % 8)
		}
	}
	return bm
}

func bitIsSet(bitmap []byte, row uint32) bool {
	byteIdx := row / 8
	if int(byteIdx) >= len(bitmap) {
		return false
	}
	return bitmap[byteIdx]&(1<<(row%8)) != 0
}

func appendBulkColumn(out []byte, col BulkColumn, colData []interface{}) ([]byte, error) {
	for r, v := range colData {
		if v == nil {
			if !col.Nullable {
				return nil, fmt.Errorf("codec: column %q row %d is null but column is not nullable", col.Name, r)
			}
			continue // bitmap already recorded the null; no bytes for this cell
		}
		var err error
		out, err = appendBulkCell(out, col.Tag, v)
		if err != nil {
			return nil, fmt.Errorf("codec: column %q row %d: %w", col.Name, r, err)
		}
	}
	return out, nil
}

func appendBulkCell(out []byte, tag types.BulkColumnTag, v interface{}) ([]byte, error) {
	switch tag {
	case types.BulkInt32:
		i, err := toInt64(v)
		if err != nil {
			return nil, err
		}
		return appendInt32(out, int32(i)), nil
	case types.BulkInt64:
		i, err := toInt64(v)
		if err != nil {
			return nil, err
		}
		return appendInt64(out, i), nil
	case types.BulkText, types.BulkDecimal:
		s := toString(v)
		out = appendUint32(out, uint32(len(s)))
		return append(out, s...), nil
	case types.BulkBinary:
		b := toBytes(v)
		out = appendUint32(out, uint32(len(b)))
		return append(out, b...), nil
	case types.BulkTimestamp:
		ts, ok := v.(Timestamp)
		if !ok {
			return nil, fmt.Errorf("expected codec.Timestamp, got %T", v)
		}
		out = appendUint16(out, uint16(ts.Year))
		out = appendUint16(out, ts.Month)
		out = appendUint16(out, ts.Day)
		out = appendUint16(out, ts.Hour)
		out = appendUint16(out, ts.Minute)
		out = appendUint16(out, ts.Second)
		out = appendUint32(out, ts.FractionNs)
		return out, nil
	default:
		return nil, fmt.Errorf("unknown bulk column tag %d", tag)
	}
}

func decodeBulkCell(buf []byte, tag types.BulkColumnTag) (interface{}, int, error) {
	switch tag {
	case types.BulkInt32:
		if len(buf) < 4 {
			return nil, 0, fmt.Errorf("truncated int32 cell")
		}
		return int32(binary.LittleEndian.Uint32(buf[:4])), 4, nil
	case types.BulkInt64:
		if len(buf) < 8 {
			return nil, 0, fmt.Errorf("truncated int64 cell")
		}
		return int64(binary.LittleEndian.Uint64(buf[:8])), 8, nil
	case types.BulkText, types.BulkDecimal:
		if len(buf) < 4 {
			return nil, 0, fmt.Errorf("truncated string length")
		}
		l := binary.LittleEndian.Uint32(buf[:4])
		if uint32(len(buf[4:])) < l {
			return nil, 0, fmt.Errorf("truncated string payload")
		}
		return string(buf[4 : 4+l]), 4 + int(l), nil
	case types.BulkBinary:
		if len(buf) < 4 {
			return nil, 0, fmt.Errorf("truncated binary length")
		}
		l := binary.LittleEndian.Uint32(buf[:4])
		if uint32(len(buf[4:])) < l {
			return nil, 0, fmt.Errorf("truncated binary payload")
		}
		b := make([]byte, l)
		copy(b, buf[4:4+l])
		return b, 4 + int(l), nil
	case types.BulkTimestamp:
		if len(buf) < 16 {
			return nil, 0, fmt.Errorf("truncated timestamp cell")
		}
		ts := Timestamp{
			Year:       int16(binary.LittleEndian.Uint16(buf[0:2])),
			Month:      binary.LittleEndian.Uint16(buf[2:4]),
			Day:        binary.LittleEndian.Uint16(buf[4:6]),
			Hour:       binary.LittleEndian.Uint16(buf[6:8]),
			Minute:     binary.LittleEndian.Uint16(buf[8:10]),
			Second:     binary.LittleEndian.Uint16(buf[10:12]),
			FractionNs: binary.LittleEndian.Uint32(buf[12:16]),
		}
		return ts, 16, nil
	default:
		return nil, 0, fmt.Errorf("unknown bulk column tag %d", tag)
	}
}
