/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package logger

import (
	"context"
	"io"
	"log"
	"time"

	jww "github.com/spf13/jwalterweatherman"

	logent "github.com/nabbar/evloop/logger/entry"
	logfld "github.com/nabbar/evloop/logger/fields"
	loglvl "github.com/nabbar/evloop/logger/level"
)

// FuncLog returns a Logger instance. Used for dependency injection and lazy
// initialization of loggers.
type FuncLog func() Logger

// Logger is the main interface for structured logging operations. It extends
// io.WriteCloser so it can be used anywhere a Go writer is expected.
type Logger interface {
	io.WriteCloser

	// SetLevel changes the minimal level of log message.
	SetLevel(lvl loglvl.Level)

	// GetLevel returns the minimal level of log message.
	GetLevel() loglvl.Level

	// SetIOWriterLevel changes the minimal level of log message for the
	// io.Writer interface.
	SetIOWriterLevel(lvl loglvl.Level)

	// GetIOWriterLevel returns the minimal level of log message for the
	// io.Writer interface.
	GetIOWriterLevel() loglvl.Level

	// SetIOWriterFilter replaces the filter pattern list used by the
	// io.Writer interface. A message containing any pattern is dropped.
	SetIOWriterFilter(pattern ...string)

	// AddIOWriterFilter appends patterns to the io.Writer filter list.
	AddIOWriterFilter(pattern ...string)

	// SetOptions sets or updates the logger's options and (re)wires its
	// stdout/stderr hooks accordingly.
	SetOptions(opt *Options) error

	// GetOptions returns the logger's current options.
	GetOptions() *Options

	// SetFields sets or updates the default fields for every entry.
	SetFields(field logfld.Fields)

	// GetFields returns the default fields for every entry.
	GetFields() logfld.Fields

	// Clone duplicates the logger with its own context and fields but the
	// same level and options.
	Clone() (Logger, error)

	// SetSPF13Level attaches the spf13 jwalterweatherman logger (used by
	// Cobra/Viper) to this logger.
	SetSPF13Level(lvl loglvl.Level, log *jww.Notepad)

	// GetStdLogger returns a standard library *log.Logger bridged to this
	// logger at the given level.
	GetStdLogger(lvl loglvl.Level, logFlags int) *log.Logger

	// Debug adds an entry at DebugLevel.
	Debug(message string, data interface{}, args ...interface{})

	// Info adds an entry at InfoLevel.
	Info(message string, data interface{}, args ...interface{})

	// Warning adds an entry at WarnLevel.
	Warning(message string, data interface{}, args ...interface{})

	// Error adds an entry at ErrorLevel.
	Error(message string, data interface{}, args ...interface{})

	// Fatal adds an entry at FatalLevel then calls os.Exit(1).
	Fatal(message string, data interface{}, args ...interface{})

	// Panic adds an entry at PanicLevel then panics.
	Panic(message string, data interface{}, args ...interface{})

	// LogDetails adds an entry giving full control over level, data, errors
	// and fields.
	LogDetails(lvl loglvl.Level, message string, data interface{}, err []error, fields logfld.Fields, args ...interface{})

	// CheckError logs err at lvlKO if not empty, otherwise logs a success
	// entry at lvlOK (skipped if lvlOK is NilLevel). Returns true if an
	// error was logged.
	CheckError(lvlKO, lvlOK loglvl.Level, message string, err ...error) bool

	// Entry returns a log entry the caller can enrich before calling Log().
	Entry(lvl loglvl.Level, message string, args ...interface{}) logent.Entry

	// Access returns a message-only entry formatted as an HTTP access log
	// line.
	Access(remoteAddr, remoteUser string, localtime time.Time, latency time.Duration, method, request, proto string, status int, size int64) logent.Entry

	// RegisterFuncUpdateLogger registers fct to run whenever SetOptions
	// succeeds.
	RegisterFuncUpdateLogger(fct func(log Logger))

	// RegisterFuncUpdateLevel registers fct to run whenever SetLevel runs.
	RegisterFuncUpdateLevel(fct func(log Logger))
}

// New returns a new Logger bound to ctx, at InfoLevel, with no hooks wired.
// Call SetOptions to attach stdout/stderr sinks.
func New(ctx context.Context) Logger {
	if ctx == nil {
		ctx = context.Background()
	}

	l := &lgr{
		ctx: ctx,
		fld: logfld.New(ctx),
	}

	l.SetLevel(loglvl.InfoLevel)

	return l
}

// NewFrom creates a Logger, optionally seeded from the state (level, fields,
// options) of an existing Logger or FuncLog found in other, then applies opt
// on top.
func NewFrom(ctx context.Context, opt *Options, other ...any) (Logger, error) {
	var base *lgr

	for _, i := range other {
		if i == nil {
			continue
		}

		var h Logger

		if f, k := i.(FuncLog); k && f != nil {
			h = f()
		} else if g, c := i.(Logger); c && g != nil {
			h = g
		}

		if h == nil {
			continue
		}

		if g, k := h.(*lgr); k {
			base = g
			break
		}
	}

	n := New(ctx).(*lgr)

	if base != nil {
		n.SetLevel(base.GetLevel())
		n.SetFields(base.GetFields())
	}

	if opt == nil && base == nil {
		return n, nil
	}

	var merged Options
	if base != nil {
		merged = base.GetOptions().Clone()
	}
	merged.Merge(opt)

	return n, n.SetOptions(&merged)
}
