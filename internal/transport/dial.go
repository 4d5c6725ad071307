package transport

import (
	"strings"

	"github.com/onoffswitchrespiratorycenter178/beaconfuzz/internal/ferrors"
)

// family is the address family Open selects for a given host string.
type family int

const (
	familyIPv4 family = iota
	familyIPv6
	familyUnix
)

// resolveFamily implements the host-shape dispatch: "localhost" is rewritten
// to the IPv4 loopback address first, then a literal "/" forces UNIX
// regardless of the other checks, then "." selects IPv4, ":" selects IPv6,
// and anything else is treated as a UNIX socket path.
func resolveFamily(host string) (rewrittenHost string, fam family) {
	if host == "localhost" {
		host = "127.0.0.1"
	}
	if strings.Contains(host, "/") {
		return host, familyUnix
	}
	if strings.Contains(host, ".") {
		return host, familyIPv4
	}
	if strings.Contains(host, ":") {
		return host, familyIPv6
	}
	return host, familyUnix
}

// Open selects an address family and socket type per opts.Kind and the
// textual shape of opts.Host, and returns a ready-to-use Conn.
func Open(opts Options) (Conn, error) {
	host, fam := resolveFamily(opts.Host)
	opts.Host = host

	switch opts.Kind {
	case TCP:
		return dialTCP(opts, fam, false)
	case TLS:
		return dialTCP(opts, fam, true)
	case UDP:
		return dialUDP(opts, fam)
	case Unix:
		return dialUnix(opts)
	case RawL3:
		return dialRawL3(opts, fam)
	case RawL2:
		return dialRawL2(opts)
	default:
		return nil, &ferrors.NetworkError{Operation: "open socket", Details: "unknown transport kind"}
	}
}

// networkFor maps a family to the Go network string stream/datagram dialers
// expect ("tcp4"/"tcp6", "udp4"/"udp6").
func networkFor(base string, fam family) string {
	switch fam {
	case familyIPv6:
		return base + "6"
	default:
		return base + "4"
	}
}
