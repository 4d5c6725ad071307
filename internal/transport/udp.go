package transport

import (
	"net"
	"strconv"

	"github.com/onoffswitchrespiratorycenter178/beaconfuzz/internal/ferrors"
)

// dialUDP opens a connected UDP socket. UDP is connectionless at the wire
// level, but connecting the local socket to a single peer lets Send/Receive
// share the exact same streamConn plumbing TCP and TLS use, including the
// same source-bind rule.
func dialUDP(opts Options, fam family) (Conn, error) {
	network := networkFor("udp", fam)
	if fam == familyUnix {
		return nil, &ferrors.NetworkError{Operation: "open socket", Details: "udp transport requires an IPv4 or IPv6 host"}
	}

	var local *net.UDPAddr
	if la := localAddrFor(opts); la != nil {
		local = &net.UDPAddr{IP: la.IP, Port: la.Port}
	}

	remote, err := net.ResolveUDPAddr(network, net.JoinHostPort(opts.Host, strconv.Itoa(opts.Port)))
	if err != nil {
		return nil, &ferrors.NetworkError{Operation: "resolve udp address", Err: err}
	}

	conn, err := net.DialUDP(network, local, remote)
	if err != nil {
		return nil, &ferrors.NetworkError{Operation: "connect", Err: err, Details: remote.String()}
	}
	return &streamConn{conn: conn, timeout: opts.ReceiveTimeout}, nil
}
