package sender

import (
	"errors"
	"fmt"
	"net"
	"syscall"
)

var ErrSenderUsed = errors.New("sender already ran")

// ConnectError is returned when the single connection attempt fails.
type ConnectError struct {
	Addr string
	Err  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connect %s: %v", e.Addr, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// Timeout reports whether the attempt ran out of time.
func (e *ConnectError) Timeout() bool { return IsTimeoutError(e.Err) }

// SendError is a failed write on an established connection. Packet is the
// index the failed write would have had.
type SendError struct {
	Packet int64
	Err    error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("send packet %d: %v", e.Packet, e.Err)
}

func (e *SendError) Unwrap() error { return e.Err }

// IsResetError reports whether err means the peer dropped the connection.
func IsResetError(err error) bool {
	if e, ok := err.(*net.OpError); ok {
		if e.Op != "write" {
			return false
		}
	}
	return errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE)
}

func IsTimeoutError(err error) bool {
	var e net.Error
	if errors.As(err, &e) {
		return e.Timeout()
	}
	return false
}
