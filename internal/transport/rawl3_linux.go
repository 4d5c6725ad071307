//go:build linux

package transport

import (
	"context"
	"net"
	"strconv"
	"time"

	"golang.org/x/sys/unix"

	"github.com/onoffswitchrespiratorycenter178/beaconfuzz/internal/ferrors"
)

// protoNumbers resolves the handful of protocol names the raw-L3 transport
// accepts by name; anything else is parsed as a decimal protocol number.
var protoNumbers = map[string]int{
	"icmp": unix.IPPROTO_ICMP,
	"tcp":  unix.IPPROTO_TCP,
	"udp":  unix.IPPROTO_UDP,
	"raw":  unix.IPPROTO_RAW,
}

func resolveRawL3Proto(name string) (int, bool, error) {
	if n, ok := protoNumbers[name]; ok {
		return n, name == "raw", nil
	}
	n, err := strconv.Atoi(name)
	if err != nil {
		return 0, false, &ferrors.NetworkError{Operation: "resolve raw-L3 protocol", Err: err, Details: name}
	}
	return n, false, nil
}

// rawL3Conn is an AF_INET SOCK_RAW socket bound to a fixed protocol and
// peer address, per the socket abstraction's raw-L3 behavior: it never
// connects, and it clears IP_HDRINCL (leaving IP-header construction to the
// kernel) unless the protocol was literally "raw".
type rawL3Conn struct {
	fd      int
	dest    unix.Sockaddr
	timeout time.Duration
}

func dialRawL3(opts Options, fam family) (Conn, error) {
	if fam == familyUnix {
		return nil, &ferrors.NetworkError{Operation: "open socket", Details: "raw-L3 transport requires an IPv4 or IPv6 host"}
	}

	protoNum, hdrIncl, err := resolveRawL3Proto(opts.RawL3Proto)
	if err != nil {
		return nil, err
	}

	domain := unix.AF_INET
	if fam == familyIPv6 {
		domain = unix.AF_INET6
	}

	fd, err := unix.Socket(domain, unix.SOCK_RAW, protoNum)
	if err != nil {
		return nil, &ferrors.NetworkError{Operation: "create raw socket", Err: err}
	}

	hdrInclVal := 0
	if hdrIncl {
		hdrInclVal = 1
	}
	if domain == unix.AF_INET {
		if err := unix.SetsockoptInt(fd, unix.IPPROTO_IP, unix.IP_HDRINCL, hdrInclVal); err != nil {
			_ = unix.Close(fd)
			return nil, &ferrors.NetworkError{Operation: "set IP_HDRINCL", Err: err}
		}
	}

	if err := setRecvTimeout(fd, opts.ReceiveTimeout); err != nil {
		_ = unix.Close(fd)
		return nil, err
	}

	ip := net.ParseIP(opts.Host)
	if ip == nil {
		_ = unix.Close(fd)
		return nil, &ferrors.NetworkError{Operation: "parse destination address", Details: opts.Host}
	}

	var dest unix.Sockaddr
	if domain == unix.AF_INET {
		var addr [4]byte
		copy(addr[:], ip.To4())
		dest = &unix.SockaddrInet4{Addr: addr}
	} else {
		var addr [16]byte
		copy(addr[:], ip.To16())
		dest = &unix.SockaddrInet6{Addr: addr}
	}

	return &rawL3Conn{fd: fd, dest: dest, timeout: opts.ReceiveTimeout}, nil
}

func setRecvTimeout(fd int, d time.Duration) error {
	tv := unix.NsecToTimeval(d.Nanoseconds())
	if err := unix.SetsockoptTimeval(fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv); err != nil {
		return &ferrors.NetworkError{Operation: "set receive timeout", Err: err}
	}
	return nil
}

func (c *rawL3Conn) Send(_ context.Context, b []byte) error {
	if err := unix.Sendto(c.fd, b, 0, c.dest); err != nil {
		return &ferrors.NetworkError{Operation: "send", Err: err}
	}
	return nil
}

func (c *rawL3Conn) Receive(_ context.Context, hint int) ([]byte, error) {
	return recvLoopRaw(c.fd, hint)
}

func (c *rawL3Conn) Close() error { return unix.Close(c.fd) }

// recvLoopRaw implements the same chunked-read contract as receiveLoop, for
// a raw file descriptor where SO_RCVTIMEO (set at Open time) already bounds
// each individual unix.Recvfrom call.
func recvLoopRaw(fd int, hint int) ([]byte, error) {
	var out []byte
	for first := true; first || (hint > chunkSize && len(out) < hint); first = false {
		bufPtr := getChunk()
		n, _, err := unix.Recvfrom(fd, *bufPtr, 0)
		if n > 0 {
			out = append(out, (*bufPtr)[:n]...)
		}
		putChunk(bufPtr)

		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				if len(out) > 0 {
					return out, nil
				}
				return nil, &ferrors.NetworkError{Operation: "receive", Err: err, Details: "receive timeout"}
			}
			return out, &ferrors.NetworkError{Operation: "receive", Err: err}
		}
		if n == 0 {
			return nil, ferrors.ErrConnectionClosed
		}
	}
	return out, nil
}
