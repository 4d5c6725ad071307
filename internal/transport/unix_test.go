package transport

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"
)

func startUnixEcho(t *testing.T) (path string, stop func()) {
	t.Helper()
	path = filepath.Join(t.TempDir(), "echo.sock")
	ln, err := net.Listen("unix", path)
	if err != nil {
		t.Fatalf("listen unix: %v", err)
	}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				buf := make([]byte, 4096)
				n, err := c.Read(buf)
				if err != nil {
					return
				}
				_, _ = c.Write(buf[:n])
			}(conn)
		}
	}()
	return path, func() { _ = ln.Close() }
}

func TestDialUnixSendReceiveRoundTrip(t *testing.T) {
	path, stop := startUnixEcho(t)
	defer stop()

	conn, err := Open(Options{Kind: Unix, Host: path, ReceiveTimeout: time.Second})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer conn.Close()

	if err := conn.Send(context.Background(), []byte("hello")); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	got, err := conn.Receive(context.Background(), 5)
	if err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("Receive() = %q, want %q", got, "hello")
	}
}

func TestDialUnixMissingSocketFails(t *testing.T) {
	_, err := Open(Options{Kind: Unix, Host: filepath.Join(t.TempDir(), "missing.sock"), ReceiveTimeout: time.Second})
	if err == nil {
		t.Fatal("Open() error = nil, want non-nil for a nonexistent socket path")
	}
}
