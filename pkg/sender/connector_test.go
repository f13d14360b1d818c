package sender

import (
	"context"
	"errors"
	"net"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/iberryful/zsend/pkg/config"
)

func listenerConfig(t *testing.T, l net.Listener) config.Config {
	host, port, err := net.SplitHostPort(l.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	p, _ := strconv.Atoi(port)
	return config.Config{Host: host, Port: p, PacketSize: 1}
}

func TestConnectorConnects(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	c := listenerConfig(t, l)
	cn := NewConnector(c)
	if cn.Timeout != DefaultConnectTimeout {
		t.Errorf("timeout = %s", cn.Timeout)
	}
	conn, err := cn.Connect(context.Background(), c)
	if err != nil {
		t.Fatal(err)
	}
	conn.Close()
}

func TestConnectorRefused(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	c := listenerConfig(t, l)
	l.Close()

	_, err = NewConnector(c).Connect(context.Background(), c)
	var ce *ConnectError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want *ConnectError", err)
	}
	if ce.Addr != c.Addr() {
		t.Errorf("addr = %s", ce.Addr)
	}
	if ce.Timeout() {
		t.Errorf("refusal reported as timeout")
	}
}

func TestConnectorHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := config.Config{Host: "127.0.0.1", Port: 9, PacketSize: 1}
	start := time.Now()
	_, err := NewConnector(c).Connect(ctx, c)
	var ce *ConnectError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want *ConnectError", err)
	}
	if time.Since(start) > time.Second {
		t.Errorf("cancelled dial took %s", time.Since(start))
	}
}

func TestConnectorProxyUnavailable(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	proxyAddr := l.Addr().String()
	l.Close()

	c := config.Config{Host: "example.org", Port: 80, PacketSize: 1, Proxy: proxyAddr}
	_, err = NewConnector(c).Connect(context.Background(), c)
	var ce *ConnectError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want *ConnectError", err)
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestConnectErrorTimeout(t *testing.T) {
	e := &ConnectError{Addr: "10.255.255.1:9000", Err: &net.OpError{Op: "dial", Net: "tcp", Err: timeoutErr{}}}
	if !e.Timeout() {
		t.Error("expected timeout")
	}
	if !IsTimeoutError(e) {
		t.Error("expected IsTimeoutError through the wrapper")
	}
}

func TestConnectorTimeoutBoundsDial(t *testing.T) {
	c := config.Config{Host: "10.255.255.1", Port: 9, PacketSize: 1}
	cn := NewConnector(c)
	cn.Timeout = 100 * time.Millisecond

	start := time.Now()
	conn, err := cn.Connect(context.Background(), c)
	elapsed := time.Since(start)
	if err == nil {
		conn.Close()
		t.Skip("black-hole address accepted the connection")
	}
	var ce *ConnectError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want *ConnectError", err)
	}
	if !ce.Timeout() {
		t.Skipf("network refused immediately: %v", err)
	}
	if elapsed > time.Second {
		t.Errorf("dial took %s with a 100ms timeout", elapsed)
	}
	if msg, failed := cn.describe(context.Background(), ce); !failed || !strings.Contains(msg, "timed out after 100ms") {
		t.Errorf("describe = %q, %v", msg, failed)
	}
}

func TestDescribeConnectFailure(t *testing.T) {
	cn := &Connector{}
	refused := &ConnectError{Addr: "127.0.0.1:9", Err: syscall.ECONNREFUSED}

	msg, failed := cn.describe(context.Background(), refused)
	if !failed || !strings.Contains(msg, "connection failed") {
		t.Errorf("refused: %q, %v", msg, failed)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	msg, failed = cn.describe(ctx, refused)
	if failed || !strings.Contains(msg, "abandoned") {
		t.Errorf("cancelled: %q, %v", msg, failed)
	}

	timedOut := &ConnectError{Addr: "10.255.255.1:9", Err: timeoutErr{}}
	msg, failed = cn.describe(context.Background(), timedOut)
	if !failed || !strings.Contains(msg, "timed out after 5s") {
		t.Errorf("timeout: %q, %v", msg, failed)
	}
}
