package sender

import (
	"fmt"
	"time"

	"github.com/iberryful/zsend/pkg/log"
)

// Snapshot is the run state as of the last completed write.
type Snapshot struct {
	Packets    int64
	PacketSize int
	Elapsed    time.Duration
	// ByteRate is the measured average throughput in bytes per second.
	ByteRate int64
}

func (s Snapshot) Bytes() int64 {
	return s.Packets * int64(s.PacketSize)
}

// Rate is the average packets per second, or 0 when no time has elapsed.
func (s Snapshot) Rate() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Packets) / s.Elapsed.Seconds()
}

// Reporter receives progress after every successful write and the final
// result once per run.
type Reporter interface {
	Progress(s Snapshot)
	Final(r Result)
}

// LogReporter prints statistics through the log package. With Every > 0
// progress lines are throttled to one per period.
type LogReporter struct {
	Every time.Duration
	last  time.Time
}

func NewLogReporter(every time.Duration) *LogReporter {
	return &LogReporter{Every: every}
}

func (r *LogReporter) Progress(s Snapshot) {
	if r.Every > 0 {
		now := time.Now()
		if !r.last.IsZero() && now.Sub(r.last) < r.Every {
			return
		}
		r.last = now
	}
	log.Infof("packet %d: %d bytes total, %.2f packets/sec", s.Packets, s.Bytes(), s.Rate())
}

func (r *LogReporter) Final(res Result) {
	s := res.Stats
	if res.Reason == SendFailed {
		log.Error(stopMessage(res))
	} else {
		log.Info(stopMessage(res))
	}
	log.Infof("total packets sent: %d", s.Packets)
	log.Infof("total data sent: %d bytes", s.Bytes())
	log.Infof("duration: %.2f seconds", s.Elapsed.Seconds())
	log.Infof("average rate: %.2f packets/sec, %d bytes/sec", s.Rate(), s.ByteRate)
}

func stopMessage(res Result) string {
	switch res.Reason {
	case SendFailed:
		if IsResetError(res.Err) {
			return fmt.Sprintf("sending stopped, connection reset by peer (%v)", res.Err)
		}
		return fmt.Sprintf("sending stopped, %v", res.Err)
	case Cancelled:
		return "sending interrupted"
	}
	return "sending stopped"
}
