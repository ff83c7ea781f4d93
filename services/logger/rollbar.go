package logsvc

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/neurolearn/neuro/core"
)

// RollbarLogger prints to a std logger and reports to Rollbar (disabled in debug or without a token).
type RollbarLogger struct {
	std   *log.Logger
	debug bool
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(strings.ToLower(conf.Env))
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	rollbar.SetEnabled(!conf.Debug && conf.RollbarToken != "")
	return &RollbarLogger{std: std, debug: conf.Debug}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// Wait blocks until queued reports are sent.
func (l RollbarLogger) Wait() {
	rollbar.Wait()
}

// prepare merges map args into one set of extras.
// expected fmt: msg | error, map[string]interface{}, any printable value
func (l RollbarLogger) prepare(msg string, args []interface{}) []interface{} {
	var (
		extras map[string]interface{}
		others []interface{}
	)
	for _, arg := range args {
		if m, ok := arg.(map[string]interface{}); ok {
			if extras == nil {
				extras = make(map[string]interface{}, len(m))
			}
			for k, v := range m {
				extras[k] = v
			}
			continue
		}
		others = append(others, arg)
	}

	newArgs := make([]interface{}, 0, len(others)+2)
	newArgs = append(newArgs, msg)
	newArgs = append(newArgs, others...)
	if extras != nil {
		newArgs = append(newArgs, extras)
	}
	return newArgs
}

func (l RollbarLogger) format(level, msg string, args []interface{}) string {
	var b strings.Builder
	b.WriteString(level)
	b.WriteString(" ")
	b.WriteString(msg)

	for _, arg := range args {
		switch v := arg.(type) {
		case map[string]interface{}:
			keys := make([]string, 0, len(v))
			for k := range v {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(&b, " %s=%v", k, v[k])
			}
		case error:
			if l.debug {
				fmt.Fprintf(&b, "\n%+v", v)
			} else {
				fmt.Fprintf(&b, " error=%q", v.Error())
			}
		default:
			fmt.Fprintf(&b, " %v", v)
		}
	}
	return b.String()
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	if !l.debug {
		return
	}
	rollbar.Debug(l.prepare(msg, args)...)
	l.std.Println(l.format("DEBUG", msg, args))
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	rollbar.Info(l.prepare(msg, args)...)
	l.std.Println(l.format("INFO", msg, args))
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	rollbar.Warning(l.prepare(msg, args)...)
	l.std.Println(l.format("WARN", msg, args))
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	rollbar.Error(l.prepare(msg, args)...)
	l.std.Println(l.format("ERROR", msg, args))
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	rollbar.Critical(l.prepare(msg, args)...)
	rollbar.Wait()
	l.std.Fatal(l.format("FATAL", msg, args))
}
