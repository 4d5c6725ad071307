package transport

import (
	"context"
	"crypto/tls"
	"net"
	"strconv"
	"time"

	"github.com/onoffswitchrespiratorycenter178/beaconfuzz/internal/ferrors"
)

// streamConn wraps any net.Conn-implementing stream socket (plain TCP, TLS,
// or UNIX stream) behind the Conn interface.
type streamConn struct {
	conn    net.Conn
	timeout time.Duration
}

func (c *streamConn) Send(_ context.Context, b []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return &ferrors.NetworkError{Operation: "set write deadline", Err: err}
	}
	if _, err := c.conn.Write(b); err != nil {
		return &ferrors.NetworkError{Operation: "send", Err: err}
	}
	return nil
}

func (c *streamConn) Receive(_ context.Context, hint int) ([]byte, error) {
	return receiveLoop(c.conn, c.timeout, hint)
}

func (c *streamConn) Close() error { return c.conn.Close() }

// localAddrFor builds the *net.TCPAddr to bind from, implementing the
// source-binding rule: a source port binds (sourceIP or 0.0.0.0, sourcePort);
// a source IP alone binds (sourceIP, 0) so the kernel assigns the port; with
// neither set, no bind is performed and the kernel picks everything.
func localAddrFor(opts Options) *net.TCPAddr {
	if opts.SourcePort != 0 {
		ip := opts.SourceIP
		if ip == "" {
			ip = "0.0.0.0"
		}
		return &net.TCPAddr{IP: net.ParseIP(ip), Port: opts.SourcePort}
	}
	if opts.SourceIP != "" {
		return &net.TCPAddr{IP: net.ParseIP(opts.SourceIP), Port: 0}
	}
	return nil
}

func dialTCP(opts Options, fam family, useTLS bool) (Conn, error) {
	network := networkFor("tcp", fam)
	if fam == familyUnix {
		return nil, &ferrors.NetworkError{Operation: "open socket", Details: "tcp/tls transport requires an IPv4 or IPv6 host"}
	}

	dialer := &net.Dialer{LocalAddr: localAddrFor(opts)}
	addr := net.JoinHostPort(opts.Host, strconv.Itoa(opts.Port))

	var conn net.Conn
	var err error
	if useTLS {
		conn, err = tls.DialWithDialer(dialer, network, addr, &tls.Config{InsecureSkipVerify: true}) //nolint:gosec // fuzzing targets rarely present valid certificates
	} else {
		conn, err = dialer.Dial(network, addr)
	}
	if err != nil {
		return nil, &ferrors.NetworkError{Operation: "connect", Err: err, Details: addr}
	}
	return &streamConn{conn: conn, timeout: opts.ReceiveTimeout}, nil
}
