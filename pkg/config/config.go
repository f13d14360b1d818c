package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"
)

const (
	DefaultHost       = "127.0.0.1"
	DefaultPort       = 25565
	DefaultPacketSize = 1000000
)

var (
	ErrEmptyHost      = errors.New("host must not be empty")
	ErrPortRange      = errors.New("port must be in 1-65535")
	ErrPacketSize     = errors.New("packet size must be positive")
	ErrNegativeDelay  = errors.New("interval cannot be negative")
	ErrNegativeLimit  = errors.New("rate limit cannot be negative")
	ErrNegativeReport = errors.New("report period cannot be negative")
)

// Config describes one sending run. It is built once at startup and passed by
// value; nothing modifies it afterwards.
type Config struct {
	Host       string
	Port       int
	PacketSize int
	// Interval is the pause after every successful write. Zero sends at
	// maximum speed.
	Interval time.Duration

	// Proxy is an optional SOCKS5 proxy address (host:port).
	Proxy string
	// ReportEvery throttles progress lines. Zero reports every packet.
	ReportEvery time.Duration
	// RateLimit caps throughput in bytes per second. Zero is unlimited.
	RateLimit int64
}

func Default() Config {
	return Config{
		Host:       DefaultHost,
		Port:       DefaultPort,
		PacketSize: DefaultPacketSize,
	}
}

func (c Config) Validate() error {
	if c.Host == "" {
		return ErrEmptyHost
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w, got %d", ErrPortRange, c.Port)
	}
	if c.PacketSize <= 0 {
		return fmt.Errorf("%w, got %d", ErrPacketSize, c.PacketSize)
	}
	if c.Interval < 0 {
		return fmt.Errorf("%w, got %s", ErrNegativeDelay, c.Interval)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("%w, got %d", ErrNegativeLimit, c.RateLimit)
	}
	if c.ReportEvery < 0 {
		return fmt.Errorf("%w, got %s", ErrNegativeReport, c.ReportEvery)
	}
	return nil
}

func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c Config) String() string {
	return fmt.Sprintf("%s, %d bytes/packet, interval %s", c.Addr(), c.PacketSize, c.Interval)
}

// Seconds converts a real number of seconds into a Duration.
func Seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
