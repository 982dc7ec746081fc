package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/odbccore/engine/internal/types"
)

// Param is a single decoded parameter record from the parameter buffer
// format of spec §4.3 ("Parameter buffer format (input only)").
type Param struct {
	Tag   types.ParamTag
	Value []byte // raw bytes; nil when Tag == ParamNull
}

// EncodeParams serializes a slice of parameters as the concatenation of
// {u8 tag, u32 length, bytes} records.
func EncodeParams(params []Param) []byte {
	out := make([]byte, 0, len(params)*8)
	for _, p := range params {
		out = append(out, byte(p.Tag))
		out = appendUint32(out, uint32(len(p.Value)))
		out = append(out, p.Value...)
	}
	return out
}

// DecodeParams parses the parameter buffer format back into records.
func DecodeParams(buf []byte) ([]Param, error) {
	var out []Param
	off := 0
	for off < len(buf) {
		if off+5 > len(buf) {
			return nil, fmt.Errorf("codec: truncated parameter record at offset %d", off)
		}
		tag := types.ParamTag(buf[off])
		length := binary.LittleEndian.Uint32(buf[off+1 : off+5])
		off += 5
		if uint32(len(buf[off:])) < length {
			return nil, fmt.Errorf("codec: truncated parameter value: need %d, have %d", length, len(buf[off:]))
		}
		var val []byte
		if length > 0 {
			val = make([]byte, length)
			copy(val, buf[off:off+int(length)])
		}
		off += int(length)
		out = append(out, Param{Tag: tag, Value: val})
	}
	return out, nil
}

// ToDriverValue converts a decoded Param into a Go value database/sql can
// bind (string, int32, int64, a shopspring/decimal-validated string, or
// []byte). Nil is returned for ParamNull.
func (p Param) ToDriverValue() (interface{}, error) {
	switch p.Tag {
	case types.ParamNull:
		return nil, nil
	case types.ParamString:
		return string(p.Value), nil
	case types.ParamDecimal:
		// Validated, not converted: the driver still receives the original
		// decimal text so no binary-float rounding sneaks in on the way to
		// the wire, but a malformed literal is rejected here instead of at
		// the driver, where it would surface as an opaque syntax error.
		if _, err := decimal.NewFromString(string(p.Value)); err != nil {
			return nil, fmt.Errorf("codec: invalid decimal parameter %q: %w", p.Value, err)
		}
		return string(p.Value), nil
	case types.ParamInt32:
		if len(p.Value) != 4 {
			return nil, fmt.Errorf("codec: int32 parameter must be 4 bytes, got %d", len(p.Value))
		}
		return int32(binary.LittleEndian.Uint32(p.Value)), nil
	case types.ParamInt64:
		if len(p.Value) != 8 {
			return nil, fmt.Errorf("codec: int64 parameter must be 8 bytes, got %d", len(p.Value))
		}
		return int64(binary.LittleEndian.Uint64(p.Value)), nil
	case types.ParamBinary:
		out := make([]byte, len(p.Value))
		copy(out, p.Value)
		return out, nil
	default:
		return nil, fmt.Errorf("codec: unknown parameter tag %d", p.Tag)
	}
}
