package netutil

import (
	"net"
)

// TCPAddrAvailable reports whether a TCP listener can be bound on addr right now.
func TCPAddrAvailable(addr string) bool {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return false
	}
	_ = ln.Close()
	return true
}

// Port returns the port part of a listen address, or "" when it has none.
func Port(addr string) string {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return ""
	}
	return port
}
