package logsvc

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/trezcool/nabha/core"
	"github.com/trezcool/nabha/core/user"
)

// ZerologLogger writes structured log lines.
type ZerologLogger struct {
	zl zerolog.Logger
}

var _ core.Logger = (*ZerologLogger)(nil)

// NewZerologLogger logs to w at level and above; console switches to human readable output.
func NewZerologLogger(w io.Writer, level zerolog.Level, console bool) *ZerologLogger {
	if console {
		w = zerolog.ConsoleWriter{Out: w}
	}
	return &ZerologLogger{zl: zerolog.New(w).Level(level).With().Timestamp().Logger()}
}

// NewConsoleLogger is the client agent's default logger.
func NewConsoleLogger(debug bool) *ZerologLogger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return NewZerologLogger(os.Stderr, level, true)
}

// NewNopLogger discards everything.
func NewNopLogger() *ZerologLogger {
	return &ZerologLogger{zl: zerolog.Nop()}
}

// expected fmt: error, map[string]interface{}, user.User
func (l ZerologLogger) log(ev *zerolog.Event, msg string, args []interface{}) {
	for i, arg := range args {
		switch v := arg.(type) {
		case error:
			ev = ev.Err(v)
		case map[string]interface{}:
			ev = ev.Fields(v)
		case user.User:
			ev = ev.Str("user_id", v.ID).Str("username", v.Username)
		default:
			ev = ev.Interface(fmt.Sprintf("arg%d", i), v)
		}
	}
	ev.Msg(msg)
}

func (l ZerologLogger) Debug(msg string, args ...interface{}) { l.log(l.zl.Debug(), msg, args) }
func (l ZerologLogger) Info(msg string, args ...interface{})  { l.log(l.zl.Info(), msg, args) }
func (l ZerologLogger) Warn(msg string, args ...interface{})  { l.log(l.zl.Warn(), msg, args) }
func (l ZerologLogger) Error(msg string, args ...interface{}) { l.log(l.zl.Error(), msg, args) }

func (l ZerologLogger) Fatal(msg string, args ...interface{}) {
	l.log(l.zl.Fatal(), msg, args)
}
