//go:build !linux

package transport

import "github.com/onoffswitchrespiratorycenter178/beaconfuzz/internal/ferrors"

// Raw L3/L2 sockets require AF_PACKET / IP_HDRINCL primitives that only
// golang.org/x/sys/unix exposes on Linux. On other platforms Open fails
// immediately rather than silently degrading to a best-effort emulation.
func dialRawL3(opts Options, fam family) (Conn, error) {
	return nil, &ferrors.NetworkError{Operation: "open socket", Details: "raw-L3 transport is only supported on linux"}
}

func dialRawL2(opts Options) (Conn, error) {
	return nil, &ferrors.NetworkError{Operation: "open socket", Details: "raw-L2 transport is only supported on linux"}
}
