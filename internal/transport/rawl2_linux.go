//go:build linux

package transport

import (
	"context"
	"encoding/binary"
	"net"

	"golang.org/x/sys/unix"

	"github.com/onoffswitchrespiratorycenter178/beaconfuzz/internal/ferrors"
)

func htons(v uint16) uint16 {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, v)
	return binary.LittleEndian.Uint16(b)
}

// rawL2Conn is an AF_PACKET SOCK_RAW socket bound to a single named
// interface, per the socket abstraction's raw-L2 behavior.
type rawL2Conn struct {
	fd      int
	ifindex int
}

func dialRawL2(opts Options) (Conn, error) {
	if opts.Iface == "" {
		return nil, &ferrors.NetworkError{Operation: "open socket", Details: "raw-L2 transport requires an interface name"}
	}

	iface, err := net.InterfaceByName(opts.Iface)
	if err != nil {
		return nil, &ferrors.NetworkError{Operation: "resolve interface", Err: err, Details: opts.Iface}
	}

	proto := htons(unix.ETH_P_ALL)
	fd, err := unix.Socket(unix.AF_PACKET, unix.SOCK_RAW, int(proto))
	if err != nil {
		return nil, &ferrors.NetworkError{Operation: "create raw-L2 socket", Err: err}
	}

	addr := &unix.SockaddrLinklayer{Protocol: proto, Ifindex: iface.Index}
	if err := unix.Bind(fd, addr); err != nil {
		_ = unix.Close(fd)
		return nil, &ferrors.NetworkError{Operation: "bind interface", Err: err, Details: opts.Iface}
	}

	if err := setRecvTimeout(fd, opts.ReceiveTimeout); err != nil {
		_ = unix.Close(fd)
		return nil, err
	}

	return &rawL2Conn{fd: fd, ifindex: iface.Index}, nil
}

func (c *rawL2Conn) Send(_ context.Context, b []byte) error {
	addr := &unix.SockaddrLinklayer{Ifindex: c.ifindex}
	if err := unix.Sendto(c.fd, b, 0, addr); err != nil {
		return &ferrors.NetworkError{Operation: "send", Err: err}
	}
	return nil
}

func (c *rawL2Conn) Receive(_ context.Context, hint int) ([]byte, error) {
	return recvLoopRaw(c.fd, hint)
}

func (c *rawL2Conn) Close() error { return unix.Close(c.fd) }
