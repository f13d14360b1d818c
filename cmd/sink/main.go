package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/profile"
	flag "github.com/spf13/pflag"

	"github.com/iberryful/zsend/pkg/log"
	"github.com/iberryful/zsend/pkg/sink"
)

var (
	listenAddr    string
	delayTime     time.Duration
	resetAfter    int64
	logLevel      string
	enableProfile bool
)

func init() {
	flag.StringVarP(&listenAddr, "listen", "l", "0.0.0.0:25565", "listen address")
	flag.DurationVarP(&delayTime, "delay", "t", 0, "delay before reading a new connection")
	flag.Int64VarP(&resetAfter, "reset-after", "n", 0, "reset each connection after n bytes, 0 to drain until close")
	flag.StringVarP(&logLevel, "log-level", "v", "info", "log level")
	flag.BoolVarP(&enableProfile, "profile", "p", false, "enable profile")
	flag.Parse()
	if err := log.SetLevel(logLevel); err != nil {
		log.Warn(err)
	}
}

func main() {
	if enableProfile {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	}
	s := sink.NewSink(&sink.SinkOption{
		Listen:     listenAddr,
		Delay:      delayTime,
		ResetAfter: resetAfter,
	})
	if err := s.Listen(); err != nil {
		log.Fatal(err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		log.Infof("shutting down, %d bytes received", s.Received())
		s.Close()
	}()

	if err := s.Serve(); err != nil {
		log.Error(err)
	}
}
