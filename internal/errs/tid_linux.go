//go:build linux

package errs

import (
	"fmt"

	"golang.org/x/sys/unix"
)

func gettid() int {
	return unix.Gettid()
}

func panicPrefix(v interface{}) string {
	return fmt.Sprintf("internal panic recovered: %v", v)
}
