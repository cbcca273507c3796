//go:build windows

package pipeline

import "syscall"

// listenControl is a no-op on Windows: SO_REUSEADDR has different (and
// generally unwanted) semantics there, and Windows does not leave sockets
// in TIME_WAIT the way BSD-derived stacks do for a server's own listening
// port. Mirrors capture_other.go's pattern of a platform file that
// intentionally does nothing.
func listenControl(_, _ string, _ syscall.RawConn) error {
	return nil
}
