package codec

// EncodeStructuredError renders the Structured Error Store's per-thread
// record (internal/errs) into the byte layout odbc_get_structured_error
// hands back through the buffer-sizing protocol of spec §4.4. Taking the
// fields directly rather than the errs.Record type keeps this package from
// importing errs, whose only other consumer is the ABI layer itself.
//
// Layout: u8 has_sql_state, [5]byte sql_state (present only if has_sql_state),
// u8 has_native, i32 native_code (present only if has_native), u32 message
// length, message bytes.
func EncodeStructuredError(message, sqlState string, hasSQLState bool, nativeCode int32, hasNative bool) []byte {
	buf := make([]byte, 0, 16+len(message))

	if hasSQLState {
		buf = append(buf, 1)
		sb := [5]byte{}
		copy(sb[:], sqlState)
		buf = append(buf, sb[:]...)
	} else {
		buf = append(buf, 0)
	}

	if hasNative {
		buf = append(buf, 1)
		buf = appendUint32(buf, uint32(nativeCode))
	} else {
		buf = append(buf, 0)
	}

	buf = appendUint32(buf, uint32(len(message)))
	buf = append(buf, message...)
	return buf
}
