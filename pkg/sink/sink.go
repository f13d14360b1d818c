// Package sink is a TCP target that reads and discards whatever it is sent.
package sink

import (
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/iberryful/zsend/pkg/log"
)

const bufSize = 64 * 1024

type SinkOption struct {
	Listen string
	// Delay postpones the first read of every connection.
	Delay time.Duration
	// ResetAfter resets a connection once it has delivered that many bytes.
	// Zero drains until the peer closes.
	ResetAfter int64
}

type Sink struct {
	option   *SinkOption
	l        net.Listener
	received int64

	mu     sync.Mutex
	conns  map[net.Conn]struct{}
	closed bool
	done   chan struct{}
	wg     sync.WaitGroup
}

func NewSink(o *SinkOption) *Sink {
	return &Sink{
		option: o,
		conns:  make(map[net.Conn]struct{}),
		done:   make(chan struct{}),
	}
}

func (s *Sink) Listen() error {
	l, err := net.Listen("tcp", s.option.Listen)
	if err != nil {
		return err
	}
	s.l = l
	log.Infof("listening at %s", l.Addr())
	return nil
}

func (s *Sink) Addr() net.Addr {
	return s.l.Addr()
}

// Received is the number of bytes read across all connections.
func (s *Sink) Received() int64 {
	return atomic.LoadInt64(&s.received)
}

// Serve accepts connections until Close is called.
func (s *Sink) Serve() error {
	if s.l == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}
	for {
		conn, err := s.l.Accept()
		if err != nil {
			if s.isClosed() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			log.Warn(err)
			continue
		}
		if !s.track(conn) {
			conn.Close()
			return nil
		}
		go s.handleConn(conn)
	}
}

func (s *Sink) Close() error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.done)
	}
	for c := range s.conns {
		c.Close()
	}
	s.mu.Unlock()

	var err error
	if s.l != nil {
		err = s.l.Close()
	}
	s.wg.Wait()
	return err
}

func (s *Sink) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Sink) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.conns[conn] = struct{}{}
	s.wg.Add(1)
	return true
}

func (s *Sink) untrack(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
	s.wg.Done()
}

func (s *Sink) handleConn(conn net.Conn) {
	defer s.untrack(conn)
	defer conn.Close()
	log.Infof("[%s] new connection", conn.RemoteAddr())
	if s.option.Delay > 0 {
		t := time.NewTimer(s.option.Delay)
		select {
		case <-t.C:
		case <-s.done:
			t.Stop()
			return
		}
	}

	n, err := s.drain(conn)
	if err != nil && !errors.Is(err, io.EOF) && !s.isClosed() {
		log.Warnf("[%s] read error, %v", conn.RemoteAddr(), err)
	}

	if s.option.ResetAfter > 0 && n >= s.option.ResetAfter {
		if tc, ok := conn.(*net.TCPConn); ok {
			tc.SetLinger(0)
		}
		log.Infof("[%s] reset after %d bytes", conn.RemoteAddr(), n)
		return
	}
	log.Infof("[%s] closed, %d bytes received", conn.RemoteAddr(), n)
}

func (s *Sink) drain(conn net.Conn) (int64, error) {
	buf := make([]byte, bufSize)
	var total int64
	for {
		want := len(buf)
		if s.option.ResetAfter > 0 {
			left := s.option.ResetAfter - total
			if left <= 0 {
				return total, nil
			}
			if left < int64(want) {
				want = int(left)
			}
		}
		n, err := conn.Read(buf[:want])
		total += int64(n)
		atomic.AddInt64(&s.received, int64(n))
		if err != nil {
			return total, err
		}
	}
}
