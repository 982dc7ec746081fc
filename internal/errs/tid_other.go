//go:build !linux

package errs

import (
	"bytes"
	"fmt"
	"runtime"
	"strconv"
)

// gettid falls back to parsing the goroutine id out of runtime.Stack on
// platforms without a Linux-style thread id. It is only used off Linux,
// where the engine is typically exercised through the test suite rather
// than the production cgo boundary (unixODBC/Windows ODBC both ship their
// own thread model on top of this).
func gettid() int {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i >= 0 {
		b = b[:i]
	}
	id, _ := strconv.Atoi(string(b))
	return id
}

func panicPrefix(v interface{}) string {
	return fmt.Sprintf("internal panic recovered: %v", v)
}
