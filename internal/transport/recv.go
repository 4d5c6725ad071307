package transport

import (
	"errors"
	"io"
	"net"
	"time"

	"github.com/onoffswitchrespiratorycenter178/beaconfuzz/internal/ferrors"
)

// receiveLoop is the shared chunked-read implementation used by every
// net.Conn-backed transport (TCP, TLS, UDP, UNIX stream). It sets the read
// deadline to timeout, reads one chunkSize-byte chunk, and — only if
// hint exceeds chunkSize — keeps reading further chunks until at least hint
// bytes have been consumed or the peer closes the connection. hint is a
// sizing hint only: returning fewer bytes than hint is never an error.
func receiveLoop(conn net.Conn, timeout time.Duration, hint int) ([]byte, error) {
	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, &ferrors.NetworkError{Operation: "set read deadline", Err: err}
	}

	var out []byte
	for first := true; first || (hint > chunkSize && len(out) < hint); first = false {
		bufPtr := getChunk()
		n, err := conn.Read(*bufPtr)
		if n > 0 {
			out = append(out, (*bufPtr)[:n]...)
		}
		putChunk(bufPtr)

		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				if len(out) > 0 {
					return out, nil
				}
				return nil, &ferrors.NetworkError{Operation: "receive", Err: err, Details: "receive timeout"}
			}
			if errors.Is(err, io.EOF) {
				if len(out) == 0 {
					return nil, ferrors.ErrConnectionClosed
				}
				return out, nil
			}
			return out, &ferrors.NetworkError{Operation: "receive", Err: err}
		}
		if n == 0 {
			return nil, ferrors.ErrConnectionClosed
		}
	}
	return out, nil
}
