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
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	logfld "github.com/nabbar/evloop/logger/fields"
	loglvl "github.com/nabbar/evloop/logger/level"
)

// Clone creates an independent copy of the logger sharing the same level,
// fields and options but its own logrus instance and hooks.
func (o *lgr) Clone() (Logger, error) {
	if o == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	o.m.RLock()
	ctx := o.ctx
	o.m.RUnlock()

	return NewFrom(ctx, nil, Logger(o))
}

// RegisterFuncUpdateLogger registers fct to run whenever SetOptions succeeds.
func (o *lgr) RegisterFuncUpdateLogger(f func(log Logger)) {
	o.m.Lock()
	defer o.m.Unlock()
	o.fctLog = f
}

func (o *lgr) runFuncUpdateLogger() {
	o.m.RLock()
	f := o.fctLog
	o.m.RUnlock()

	if f != nil {
		f(o)
	}
}

// RegisterFuncUpdateLevel registers fct to run whenever SetLevel runs.
func (o *lgr) RegisterFuncUpdateLevel(f func(log Logger)) {
	o.m.Lock()
	defer o.m.Unlock()
	o.fctLvl = f
}

func (o *lgr) runFuncUpdateLevel() {
	o.m.RLock()
	f := o.fctLvl
	o.m.RUnlock()

	if f != nil {
		f(o)
	}
}

// SetLevel changes the minimum log level for this logger.
func (o *lgr) SetLevel(lvl loglvl.Level) {
	if o == nil {
		return
	}

	o.m.Lock()
	o.opt.Level = lvl
	if o.obj != nil {
		o.obj.SetLevel(lvl.Logrus())
	}
	o.m.Unlock()

	o.runFuncUpdateLevel()
}

// GetLevel returns the current minimum log level for this logger.
func (o *lgr) GetLevel() loglvl.Level {
	if o == nil {
		return loglvl.NilLevel
	}

	o.m.RLock()
	defer o.m.RUnlock()
	return o.opt.Level
}

// SetFields replaces all default fields with the provided fields.
func (o *lgr) SetFields(field logfld.Fields) {
	if o == nil {
		return
	}

	o.m.Lock()
	defer o.m.Unlock()

	if o.fld == nil {
		o.fld = logfld.New(o.ctx)
	}

	o.fld.Clean()
	o.fld.Merge(field)
}

// GetFields returns a copy of the current default fields.
func (o *lgr) GetFields() logfld.Fields {
	if o == nil {
		return logfld.New(context.Background())
	}

	o.m.RLock()
	defer o.m.RUnlock()

	if o.fld == nil {
		return logfld.New(o.ctx)
	}

	return o.fld.Clone()
}

// SetOptions configures the logger's stdout/stderr hooks and formatting.
// The new hooks are wired to a new logrus instance first; the prior set of
// hooks, if any, is then closed and replaced.
func (o *lgr) SetOptions(opt *Options) error {
	if o == nil {
		return fmt.Errorf("logger is nil")
	}

	o.m.Lock()
	defer o.m.Unlock()

	merged := o.opt.Clone()
	merged.Merge(opt)

	obj := logrus.New()
	obj.SetLevel(merged.Level.Logrus())
	obj.SetFormatter(o.formatterFor(merged))
	obj.SetOutput(io.Discard)

	stdoutLvls := []logrus.Level{logrus.InfoLevel, logrus.DebugLevel, logrus.TraceLevel}
	stderrLvls := []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel, logrus.WarnLevel}

	out := NewHookStandard(merged, StdOut, stdoutLvls)
	err := NewHookStandard(merged, StdErr, stderrLvls)

	out.RegisterHook(obj)
	err.RegisterHook(obj)

	clo := _NewCloser()
	clo.Add(out)
	clo.Add(err)

	if o.closer != nil {
		_ = o.closer.Close()
	}

	o.closer = clo
	o.obj = obj
	o.opt = merged

	go o.runFuncUpdateLogger()

	return nil
}

// GetOptions returns a copy of the logger's current options.
func (o *lgr) GetOptions() *Options {
	if o == nil {
		return &Options{}
	}

	o.m.RLock()
	defer o.m.RUnlock()

	c := o.opt.Clone()
	return &c
}
