package clientip

import (
	"net"
	"net/http"
	"strings"
)

// Unknown is reported when the peer address cannot be determined.
const Unknown = "unknown"

// Host returns the address of the directly connected peer for request
// logging, or Unknown. Proxy headers are not consulted.
func Host(r *http.Request) string {
	if ip := peer(r.RemoteAddr); ip != "" {
		return ip
	}
	return Unknown
}

// peer extracts the IP from a RemoteAddr, with or without a port.
func peer(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	ip := net.ParseIP(strings.TrimSpace(host))
	if ip == nil {
		return ""
	}
	return ip.String()
}
