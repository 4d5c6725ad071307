package transport

import (
	"net"

	"github.com/onoffswitchrespiratorycenter178/beaconfuzz/internal/ferrors"
)

// dialUnix connects a UNIX domain stream socket to opts.Host, treated as a
// filesystem path. Port is ignored; no source bind is ever attempted, per
// the UNIX-transport invariant.
func dialUnix(opts Options) (Conn, error) {
	addr := &net.UnixAddr{Name: opts.Host, Net: "unix"}
	conn, err := net.DialUnix("unix", nil, addr)
	if err != nil {
		return nil, &ferrors.NetworkError{Operation: "connect", Err: err, Details: opts.Host}
	}
	return &streamConn{conn: conn, timeout: opts.ReceiveTimeout}, nil
}
