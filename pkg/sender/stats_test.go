package sender

import (
	"errors"
	"net"
	"os"
	"strings"
	"syscall"
	"testing"
	"time"
)

func TestLogReporterThrottles(t *testing.T) {
	r := NewLogReporter(time.Hour)
	s := Snapshot{Packets: 1, PacketSize: 10, Elapsed: time.Second}
	r.Progress(s)
	first := r.last
	if first.IsZero() {
		t.Fatal("first progress line was not emitted")
	}
	s.Packets = 2
	r.Progress(s)
	if r.last != first {
		t.Error("second progress line was not throttled")
	}
}

func TestLogReporterUnthrottled(t *testing.T) {
	r := NewLogReporter(0)
	r.Progress(Snapshot{Packets: 1, PacketSize: 10})
	if !r.last.IsZero() {
		t.Error("unthrottled reporter should not track emission time")
	}
	r.Final(Result{Reason: Cancelled, Stats: Snapshot{Packets: 1, PacketSize: 10}})
}

func TestStopMessage(t *testing.T) {
	reset := &SendError{Packet: 6, Err: &net.OpError{Op: "write", Net: "tcp", Err: os.NewSyscallError("write", syscall.ECONNRESET)}}
	other := &SendError{Packet: 2, Err: errors.New("broken")}

	cases := []struct {
		res  Result
		want string
	}{
		{Result{Reason: SendFailed, Err: reset}, "connection reset by peer"},
		{Result{Reason: SendFailed, Err: other}, "sending stopped, send packet 2: broken"},
		{Result{Reason: Cancelled}, "sending interrupted"},
		{Result{Reason: Normal}, "sending stopped"},
	}
	for _, tc := range cases {
		if got := stopMessage(tc.res); !strings.Contains(got, tc.want) {
			t.Errorf("%s: got %q, want %q", tc.res.Reason, got, tc.want)
		}
	}
	if strings.Contains(stopMessage(cases[1].res), "reset") {
		t.Error("non-reset error worded as a reset")
	}
}
