package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/profile"
	flag "github.com/spf13/pflag"

	"github.com/iberryful/zsend/pkg/config"
	"github.com/iberryful/zsend/pkg/log"
	"github.com/iberryful/zsend/pkg/sender"
)

var (
	host          string
	port          int
	packetSize    int
	interval      float64
	proxyAddr     string
	reportEvery   time.Duration
	rateLimit     int64
	interactive   bool
	logLevel      string
	enableProfile bool
)

func init() {
	def := config.Default()
	flag.StringVarP(&host, "host", "H", def.Host, "target host")
	flag.IntVarP(&port, "port", "P", def.Port, "target port")
	flag.IntVarP(&packetSize, "size", "s", def.PacketSize, "packet size in bytes")
	flag.Float64VarP(&interval, "interval", "i", 0, "seconds between packets, 0 for maximum speed")
	flag.StringVarP(&proxyAddr, "proxy", "x", "", "SOCKS5 proxy address")
	flag.DurationVarP(&reportEvery, "report-every", "r", 0, "minimum time between progress lines, 0 reports every packet")
	flag.Int64VarP(&rateLimit, "limit", "l", 0, "rate limit in bytes per second, 0 for unlimited")
	flag.BoolVarP(&interactive, "interactive", "I", false, "prompt for host, port, size and interval")
	flag.StringVarP(&logLevel, "log-level", "v", "info", "log level")
	flag.BoolVarP(&enableProfile, "profile", "p", false, "enable profile")
	flag.Parse()
	if err := log.SetLevel(logLevel); err != nil {
		log.Warn(err)
	}
}

func main() {
	os.Exit(run())
}

func run() int {
	if enableProfile {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	}

	c := config.Default()
	c.Host = host
	c.Port = port
	c.PacketSize = packetSize
	c.Interval = config.Seconds(interval)
	c.Proxy = proxyAddr
	c.ReportEvery = reportEvery
	c.RateLimit = rateLimit

	if interactive {
		var err error
		if c, err = config.Prompt(os.Stdin, os.Stdout, c); err != nil {
			log.Error(err)
			return 1
		}
	}

	s, err := sender.New(c)
	if err != nil {
		log.Errorf("invalid configuration, %v", err)
		return 1
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Info("press Ctrl+C to stop")
	res := s.Run(ctx)
	if res.Reason == sender.ConnectFailed {
		log.Errorf("run aborted, %v", res.Err)
	}
	return res.ExitCode()
}
