// Package log2 is a small leveled logger over stdlib *log.Logger.
// nil *Log is a valid silent logger. Sub derives per-device loggers with own
// prefix and level, so one noisy link can log debug while others stay quiet.
// Tests route output into t.Logf() with NewTest.
package log2

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"sync/atomic"
	"testing"
)

type contextKey struct{}

const (
	// type specified here helped against accidentally passing flags as level
	Lmicroseconds     int = log.Lmicroseconds
	Lshortfile        int = log.Lshortfile
	LStdFlags         int = log.Ltime | Lshortfile
	LInteractiveFlags int = log.Ltime | Lshortfile | Lmicroseconds
	LServiceFlags     int = Lshortfile
	LTestFlags        int = Lshortfile | Lmicroseconds
)

type Level int32

const (
	LError Level = iota
	LInfo
	LDebug
	LAll = math.MaxInt32
)

type Log struct {
	l      *log.Logger
	level  Level
	w      io.Writer
	fatalf Func
}

func NewStderr(level Level) *Log { return NewWriter(os.Stderr, level) }
func NewWriter(w io.Writer, level Level) *Log {
	if w == io.Discard {
		return nil
	}
	return &Log{
		l:     log.New(w, "", LStdFlags),
		level: level,
		w:     w,
	}
}

type Func func(format string, args ...interface{})
type FuncWriter struct{ Func }

func NewFunc(f Func, level Level) *Log { return NewWriter(FuncWriter{f}, level) }
func (self FuncWriter) Write(b []byte) (int, error) {
	self.Func("%s", string(b))
	return len(b), nil
}

func NewTest(t testing.TB, level Level) *Log {
	self := NewFunc(t.Logf, level)
	self.SetFlags(LTestFlags)
	self.fatalf = t.Fatalf
	return self
}

func ContextWithLog(ctx context.Context, log *Log) context.Context {
	return context.WithValue(ctx, contextKey{}, log)
}

// ContextValueLogger panics when ctx carries no logger, it is a code error.
// Explicit nil *Log is fine.
func ContextValueLogger(ctx context.Context) *Log {
	log, ok := ctx.Value(contextKey{}).(*Log)
	if !ok {
		panic("code error context has no *log2.Log")
	}
	return log
}

// Sub returns independent logger to same output and flags, prefix appended
// to parent prefix and placed before message. Level changes do not propagate.
func (self *Log) Sub(prefix string, level Level) *Log {
	if self == nil {
		return nil
	}
	l := NewWriter(self.w, level)
	if l == nil {
		return nil
	}
	l.l.SetFlags(self.l.Flags() | log.Lmsgprefix)
	l.l.SetPrefix(self.l.Prefix() + prefix)
	l.fatalf = self.fatalf
	return l
}

func (self *Log) Level() Level {
	if self == nil {
		return LError
	}
	return Level(atomic.LoadInt32((*int32)(&self.level)))
}

func (self *Log) SetLevel(l Level) {
	if self == nil {
		return
	}
	atomic.StoreInt32((*int32)(&self.level), int32(l))
}

func (self *Log) SetFlags(f int) {
	if self == nil {
		return
	}
	self.l.SetFlags(f)
}

func (self *Log) Enabled(level Level) bool {
	if self == nil {
		return false
	}
	return self.Level() >= level
}

func (self *Log) Log(level Level, s string) {
	if self.Enabled(level) {
		_ = self.l.Output(3, s)
	}
}
func (self *Log) Logf(level Level, format string, args ...interface{}) {
	if self.Enabled(level) {
		_ = self.l.Output(3, fmt.Sprintf(format, args...))
	}
}

func (self *Log) Error(args ...interface{}) {
	self.Log(LError, "error: "+fmt.Sprint(args...))
}
func (self *Log) Errorf(format string, args ...interface{}) {
	self.Logf(LError, "error: "+format, args...)
}
func (self *Log) Infof(format string, args ...interface{}) {
	self.Logf(LInfo, format, args...)
}
func (self *Log) Debugf(format string, args ...interface{}) {
	self.Logf(LDebug, "debug: "+format, args...)
}

// Println and Printf satisfy paho mqtt.Logger, messages go at info level.
func (self *Log) Println(args ...interface{}) {
	self.Log(LInfo, fmt.Sprintln(args...))
}
func (self *Log) Printf(format string, args ...interface{}) {
	self.Logf(LInfo, format, args...)
}

func (self *Log) Fatal(args ...interface{}) {
	s := fmt.Sprint(args...)
	if self != nil && self.fatalf != nil {
		self.fatalf("%s", s)
		return
	}
	self.Log(LError, "fatal: "+s)
	os.Exit(1)
}
