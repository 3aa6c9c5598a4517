package logger

import (
	"io"
	"log"
	"os"
)

// Logger is the application wide logging contract.
// args may carry errors, maps of extra data, or a Person identifying the user.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// Person identifies the user a log entry is about.
type Person struct {
	ID    string
	Name  string
	Email string
}

// NewStd returns a *log.Logger with the given prefix in the format used across the app.
func NewStd(prefix string) *log.Logger {
	return log.New(os.Stdout, prefix+" : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
}

type nop struct{}

// Nop discards everything.
func Nop() Logger { return nop{} }

func (nop) Debug(string, ...interface{}) {}
func (nop) Info(string, ...interface{})  {}
func (nop) Warn(string, ...interface{})  {}
func (nop) Error(string, ...interface{}) {}

// Discard returns a std logger writing nowhere, handy in tests.
func Discard() *log.Logger {
	return log.New(io.Discard, "", 0)
}
