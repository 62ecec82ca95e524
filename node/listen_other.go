//go:build !linux

package node

import (
	"syscall"
)

// listenControl is a no-op outside linux; reusePort is ignored.
func listenControl(reusePort bool) func(network, address string, c syscall.RawConn) error {
	return nil
}
