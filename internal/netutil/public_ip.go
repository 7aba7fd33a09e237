package netutil

import (
	"net"
	"strings"
)

// LANIPs returns the non-loopback unicast addresses of the up interfaces, IPv4 first.
func LANIPs() []net.IP {
	ifaces, _ := net.Interfaces()
	var v4, v6 []net.IP
	for _, iface := range ifaces {
		if (iface.Flags&net.FlagUp) == 0 || (iface.Flags&net.FlagLoopback) != 0 {
			continue
		}
		addrs, _ := iface.Addrs()
		for _, addr := range addrs {
			ip := extractIP(addr)
			if !usableIP(ip) {
				continue
			}
			if ip4 := ip.To4(); ip4 != nil {
				v4 = append(v4, ip4)
			} else {
				v6 = append(v6, ip)
			}
		}
	}
	return append(v4, v6...)
}

// BrowseHost picks the host a phone on the same network should use to reach a
// server listening on addr. Join it with the port via net.JoinHostPort.
func BrowseHost(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err == nil && host != "" && !net.ParseIP(host).IsUnspecified() {
		return host
	}
	if ips := LANIPs(); len(ips) > 0 {
		return ips[0].String()
	}
	return "127.0.0.1"
}

func extractIP(addr net.Addr) net.IP {
	switch v := addr.(type) {
	case *net.IPNet:
		return v.IP
	case *net.IPAddr:
		return v.IP
	default:
		s := addr.String()
		if i := strings.IndexByte(s, '/'); i >= 0 {
			s = s[:i]
		}
		return net.ParseIP(s)
	}
}

func usableIP(ip net.IP) bool {
	if ip == nil {
		return false
	}
	if ip.IsLoopback() || ip.IsLinkLocalMulticast() || ip.IsLinkLocalUnicast() || ip.IsMulticast() || ip.IsUnspecified() {
		return false
	}
	return ip.IsGlobalUnicast()
}
