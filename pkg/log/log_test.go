package log

import (
	"testing"

	"github.com/gxlog/gxlog/iface"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]iface.Level{
		"error": iface.Error,
		"WARN":  iface.Warn,
		"":      iface.Info,
		"Debug": iface.Debug,
		"trace": iface.Trace,
	}
	for name, want := range cases {
		got, err := ParseLevel(name)
		if err != nil {
			t.Errorf("%q: %v", name, err)
		}
		if got != want {
			t.Errorf("%q: got %v, want %v", name, got, want)
		}
	}
	if l, err := ParseLevel("verbose"); err == nil || l != iface.Info {
		t.Errorf("unknown level: got %v, %v", l, err)
	}
}
