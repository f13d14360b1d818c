package sender

import (
	"context"
	"fmt"
	"net"
	"time"

	"golang.org/x/net/proxy"

	"github.com/iberryful/zsend/pkg/config"
	"github.com/iberryful/zsend/pkg/log"
)

const DefaultConnectTimeout = 5 * time.Second

// Dialer opens the connection a Sender writes to.
type Dialer interface {
	Connect(ctx context.Context, c config.Config) (net.Conn, error)
}

type contextDialer interface {
	DialContext(ctx context.Context, network, addr string) (net.Conn, error)
}

// Connector dials the target once, directly or through a SOCKS5 proxy.
type Connector struct {
	Timeout time.Duration
	Proxy   string
}

func NewConnector(c config.Config) *Connector {
	return &Connector{
		Timeout: DefaultConnectTimeout,
		Proxy:   c.Proxy,
	}
}

func (cn *Connector) Connect(ctx context.Context, c config.Config) (net.Conn, error) {
	addr := c.Addr()
	t := time.Now()
	if len(cn.Proxy) == 0 {
		log.Infof("connecting to %s", addr)
	} else {
		log.Infof("connecting to %s via SOCKS5 %s", addr, cn.Proxy)
	}

	conn, err := cn.dial(ctx, addr)
	if err != nil {
		ce := &ConnectError{Addr: addr, Err: err}
		if msg, failed := cn.describe(ctx, ce); failed {
			log.Error(msg)
		} else {
			log.Info(msg)
		}
		return nil, ce
	}

	log.Infof("connected to %s from %s in %d ms", addr, conn.LocalAddr(), time.Since(t).Milliseconds())
	return conn, nil
}

func (cn *Connector) dial(ctx context.Context, addr string) (net.Conn, error) {
	timeout := cn.timeout()
	d := &net.Dialer{Timeout: timeout}
	if len(cn.Proxy) == 0 {
		return d.DialContext(ctx, "tcp", addr)
	}

	pd, err := proxy.SOCKS5("tcp", cn.Proxy, nil, d)
	if err != nil {
		return nil, err
	}
	if cd, ok := pd.(contextDialer); ok {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return cd.DialContext(ctx, "tcp", addr)
	}
	return pd.Dial("tcp", addr)
}

func (cn *Connector) timeout() time.Duration {
	if cn.Timeout <= 0 {
		return DefaultConnectTimeout
	}
	return cn.Timeout
}

// describe words a failed attempt. A dial abandoned because ctx ended is not
// a failure.
func (cn *Connector) describe(ctx context.Context, ce *ConnectError) (string, bool) {
	switch {
	case ctx.Err() != nil:
		return fmt.Sprintf("connect to %s abandoned, %v", ce.Addr, ctx.Err()), false
	case ce.Timeout():
		return fmt.Sprintf("connect to %s timed out after %s", ce.Addr, cn.timeout()), true
	}
	return fmt.Sprintf("connection failed, %v", ce), true
}
