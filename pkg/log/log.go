package log

import (
	"fmt"
	"strings"

	"github.com/gxlog/gxlog"
	"github.com/gxlog/gxlog/formatter/text"
	"github.com/gxlog/gxlog/iface"
)

var logger = gxlog.Logger()

func init() {
	gxlog.Formatter().EnableColoring()
	gxlog.Formatter().SetHeader("{{time:time.ms}} [{{level}}] {{msg}}\n")
	gxlog.Formatter().SetColor(iface.Debug, text.BrightBlue)
}

func Error(v ...interface{}) {
	logger.Error(v...)
}

func Errorf(format string, v ...interface{}) {
	logger.Errorf(format, v...)
}

func Warn(v ...interface{}) {
	logger.Warn(v...)
}

func Warnf(format string, v ...interface{}) {
	logger.Warnf(format, v...)
}

func Info(v ...interface{}) {
	logger.Info(v...)
}

func Infof(format string, v ...interface{}) {
	logger.Infof(format, v...)
}

func Debugf(format string, v ...interface{}) {
	logger.Debugf(format, v...)
}

func Fatal(v ...interface{}) {
	logger.Fatal(v...)
}

// ParseLevel maps a level name to a gxlog level. Names are case-insensitive.
func ParseLevel(level string) (iface.Level, error) {
	switch strings.ToLower(level) {
	case "error":
		return iface.Error, nil
	case "warn", "warning":
		return iface.Warn, nil
	case "info", "":
		return iface.Info, nil
	case "debug":
		return iface.Debug, nil
	case "trace":
		return iface.Trace, nil
	}
	return iface.Info, fmt.Errorf("unknown log level %q", level)
}

// SetLevel sets the logger level, falling back to info for unknown names.
func SetLevel(level string) error {
	l, err := ParseLevel(level)
	logger.SetLevel(l)
	return err
}
