package logger

import (
	"context"
	"log"

	"github.com/rollbar/rollbar-go"
)

type RollbarOptions struct {
	Token       string
	Environment string
	Host        string
	Version     string
	Enabled     bool
}

// RollbarLogger prints to a std logger and reports to Rollbar when enabled.
type RollbarLogger struct {
	std *log.Logger
}

var _ Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, opts RollbarOptions) *RollbarLogger {
	rollbar.SetToken(opts.Token)
	rollbar.SetEnvironment(opts.Environment)
	rollbar.SetServerHost(opts.Host)
	rollbar.SetCodeVersion(opts.Version)
	rollbar.SetEnabled(opts.Enabled && opts.Token != "")
	return &RollbarLogger{std: std}
}

// expected fmt: msg | error, map[string]interface{}, Person
// The person travels with the item as a context value, never as client state.
func (l RollbarLogger) prepare(msg string, args []interface{}) []interface{} {
	var person *rollbar.Person
	newArgs := make([]interface{}, 0, len(args)+1)
	newArgs = append(newArgs, msg)
	for _, arg := range args {
		if p, ok := arg.(Person); ok {
			if person == nil {
				person = &rollbar.Person{Id: p.ID, Username: p.Name, Email: p.Email}
			}
			continue
		}
		newArgs = append(newArgs, arg)
	}
	if person != nil {
		newArgs = append(newArgs, rollbar.NewPersonContext(context.Background(), person))
	}
	return newArgs
}

func (l RollbarLogger) print(level, msg string, args []interface{}) {
	l.std.Printf("[%s] %s", level, msg)
	for _, arg := range args {
		if _, ok := arg.(Person); ok {
			continue
		}
		l.std.Printf("%+v", arg)
	}
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	rollbar.Debug(l.prepare(msg, args)...)
	l.print("DEBUG", msg, args)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	rollbar.Info(l.prepare(msg, args)...)
	l.print("INFO", msg, args)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	rollbar.Warning(l.prepare(msg, args)...)
	l.print("WARN", msg, args)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	rollbar.Error(l.prepare(msg, args)...)
	l.print("ERROR", msg, args)
}

// Flush blocks until queued Rollbar items are sent.
func (l RollbarLogger) Flush() {
	rollbar.Wait()
}
