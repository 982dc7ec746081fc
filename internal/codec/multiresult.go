package codec

import (
	"encoding/binary"
	"fmt"
)

// ResultFrame is one element of a multi-result payload (spec §4.3
// "Multi-result payload"): either a full row-buffer or a bare affected-rows
// count, in the order the driver returned them.
type ResultFrame struct {
	IsRowBuffer  bool
	Rows         RowBuffer // valid when IsRowBuffer
	AffectedRows uint32    // valid when !IsRowBuffer
}

const (
	frameTypeRowBuffer    byte = 0
	frameTypeAffectedRows byte = 1
)

// EncodeMultiResult serializes an ordered slice of frames: a u32 frame count
// header followed by, per frame, a type byte and its payload.
func EncodeMultiResult(frames []ResultFrame) ([]byte, error) {
	out := appendUint32(nil, uint32(len(frames)))
	for i, f := range frames {
		if f.IsRowBuffer {
			rowBytes, err := Encode(f.Rows)
			if err != nil {
				return nil, fmt.Errorf("codec: multi-result frame %d: %w", i, err)
			}
			out = append(out, frameTypeRowBuffer)
			out = appendUint32(out, uint32(len(rowBytes)))
			out = append(out, rowBytes...)
		} else {
			out = append(out, frameTypeAffectedRows)
			out = appendUint32(out, f.AffectedRows)
		}
	}
	return out, nil
}

// DecodeMultiResult parses a multi-result payload back into ordered frames.
func DecodeMultiResult(buf []byte) ([]ResultFrame, error) {
	if len(buf) < 4 {
		return nil, fmt.Errorf("codec: multi-result payload shorter than frame count header")
	}
	count := binary.LittleEndian.Uint32(buf[0:4])
	off := 4

	frames := make([]ResultFrame, 0, count)
	for i := uint32(0); i < count; i++ {
		if off+1 > len(buf) {
			return nil, fmt.Errorf("codec: truncated frame %d type byte", i)
		}
		frameType := buf[off]
		off++
		switch frameType {
		case frameTypeRowBuffer:
			if off+4 > len(buf) {
				return nil, fmt.Errorf("codec: truncated frame %d length", i)
			}
			l := binary.LittleEndian.Uint32(buf[off : off+4])
			off += 4
			if uint32(len(buf[off:])) < l {
				return nil, fmt.Errorf("codec: truncated frame %d row-buffer payload", i)
			}
			rb, err := Decode(buf[off : off+int(l)])
			if err != nil {
				return nil, fmt.Errorf("codec: frame %d: %w", i, err)
			}
			off += int(l)
			frames = append(frames, ResultFrame{IsRowBuffer: true, Rows: rb})
		case frameTypeAffectedRows:
			if off+4 > len(buf) {
				return nil, fmt.Errorf("codec: truncated frame %d affected-rows count", i)
			}
			n := binary.LittleEndian.Uint32(buf[off : off+4])
			off += 4
			frames = append(frames, ResultFrame{IsRowBuffer: false, AffectedRows: n})
		default:
			return nil, fmt.Errorf("codec: unknown frame type %d at frame %d", frameType, i)
		}
	}
	if uint32(len(frames)) != count {
		return nil, fmt.Errorf("codec: decoded %d frames, header declared %d", len(frames), count)
	}
	return frames, nil
}
