package sender

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mxk/go-flowrate/flowrate"

	"github.com/iberryful/zsend/pkg/config"
	"github.com/iberryful/zsend/pkg/log"
)

type State int32

const (
	Idle State = iota
	Connecting
	Sending
	Stopping
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Connecting:
		return "connecting"
	case Sending:
		return "sending"
	case Stopping:
		return "stopping"
	case Stopped:
		return "stopped"
	}
	return "unknown"
}

// Reason tells why a run ended.
type Reason int

const (
	Normal Reason = iota
	ConnectFailed
	SendFailed
	Cancelled
)

func (r Reason) String() string {
	switch r {
	case Normal:
		return "normal"
	case ConnectFailed:
		return "connect failed"
	case SendFailed:
		return "send failed"
	case Cancelled:
		return "cancelled"
	}
	return "unknown"
}

type Result struct {
	Reason Reason
	Err    error
	Stats  Snapshot
}

// ExitCode maps the result to a process exit status.
func (r Result) ExitCode() int {
	switch r.Reason {
	case Normal, Cancelled:
		return 0
	}
	return 1
}

type Option func(*Sender)

func WithDialer(d Dialer) Option {
	return func(s *Sender) { s.dialer = d }
}

func WithReporter(r Reporter) Option {
	return func(s *Sender) { s.reporter = r }
}

// Sender writes a zero-filled payload over one connection until stopped,
// cancelled, or the connection fails. A Sender runs at most once.
type Sender struct {
	cfg      config.Config
	dialer   Dialer
	reporter Reporter

	state    int32
	used     int32
	stop     chan struct{}
	stopOnce sync.Once

	// owned by the goroutine calling Run
	conn       net.Conn
	w          *flowrate.Writer
	packets    int64
	start      time.Time
	finishOnce sync.Once
	result     Result
}

// New validates c and returns a Sender for it. Invalid configurations are
// rejected here, before anything is dialed.
func New(c config.Config, opts ...Option) (*Sender, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	s := &Sender{
		cfg:      c,
		dialer:   NewConnector(c),
		reporter: NewLogReporter(c.ReportEvery),
		stop:     make(chan struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

func (s *Sender) State() State {
	return State(atomic.LoadInt32(&s.state))
}

func (s *Sender) setState(st State) {
	atomic.StoreInt32(&s.state, int32(st))
}

// Stop asks a running Sender to finish after the current write. It may be
// called from any goroutine, any number of times.
func (s *Sender) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// Run connects and sends until the run ends. Errors never escape: they are
// reported through the returned Result.
func (s *Sender) Run(ctx context.Context) Result {
	if !atomic.CompareAndSwapInt32(&s.used, 0, 1) {
		return Result{Reason: ConnectFailed, Err: ErrSenderUsed}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-s.stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	s.setState(Connecting)
	conn, err := s.dialer.Connect(ctx, s.cfg)
	if err != nil {
		s.setState(Stopped)
		if ctx.Err() != nil {
			return Result{Reason: s.cancelReason()}
		}
		return Result{Reason: ConnectFailed, Err: err}
	}

	s.conn = conn
	w := flowrate.NewWriter(conn, s.cfg.RateLimit)
	s.w = w
	if s.cfg.RateLimit > 0 {
		// Done releases a write parked in the limiter; the rest of the
		// packet then goes out unthrottled.
		go func() {
			<-ctx.Done()
			w.Done()
		}()
	}
	payload := make([]byte, s.cfg.PacketSize)
	s.packets = 0
	s.start = time.Now()
	s.setState(Sending)

	log.Infof("sending %d byte packets to %s", s.cfg.PacketSize, s.cfg.Addr())
	if s.cfg.Interval > 0 {
		log.Infof("interval: %s", s.cfg.Interval)
	}
	if s.cfg.RateLimit > 0 {
		log.Infof("rate limited to %d bytes/sec", s.cfg.RateLimit)
	}
	if s.cfg.Interval == 0 && s.cfg.RateLimit == 0 {
		log.Info("sending at maximum speed")
	}

	reason, err := s.loop(ctx, payload)
	return s.finish(reason, err)
}

func (s *Sender) loop(ctx context.Context, payload []byte) (Reason, error) {
	for {
		select {
		case <-ctx.Done():
			return s.cancelReason(), nil
		default:
		}

		if _, err := s.w.Write(payload); err != nil {
			return SendFailed, &SendError{Packet: s.packets + 1, Err: err}
		}
		s.packets++
		s.reporter.Progress(s.snapshot())

		if s.cfg.Interval > 0 && !sleep(ctx, s.cfg.Interval) {
			return s.cancelReason(), nil
		}
	}
}

// finish is the only cleanup path. Repeated calls return the first result.
func (s *Sender) finish(reason Reason, err error) Result {
	s.finishOnce.Do(func() {
		s.setState(Stopping)
		if s.conn != nil {
			if cerr := s.conn.Close(); cerr != nil {
				log.Debugf("close %s, %v", s.cfg.Addr(), cerr)
			}
		}
		s.result = Result{Reason: reason, Err: err, Stats: s.snapshot()}
		if s.w != nil {
			s.w.Done()
		}
		s.reporter.Final(s.result)
		s.setState(Stopped)
	})
	return s.result
}

func (s *Sender) snapshot() Snapshot {
	sn := Snapshot{Packets: s.packets, PacketSize: s.cfg.PacketSize}
	if !s.start.IsZero() {
		sn.Elapsed = time.Since(s.start)
	}
	if s.w != nil {
		sn.ByteRate = s.w.Status().AvgRate
	}
	return sn
}

func (s *Sender) cancelReason() Reason {
	select {
	case <-s.stop:
		return Normal
	default:
		return Cancelled
	}
}

// sleep waits for d and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
