/*
 * MIT License
 *
 * Copyright (c) 2021 Nicolas JUHEL
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
	loglvl "github.com/nabbar/evloop/logger/level"
)

// FuncCustomConfig is the type of the callbacks an Options value stores.
// The logger keeps and clones them but does not call them.
type FuncCustomConfig func(log Logger)

// Options configures a Logger's stdout/stderr sinks. evloop writes to the
// process's controlling terminal or to whatever supervises it: there is no
// file or syslog sink to configure.
type Options struct {
	// Level sets the minimum level a message must reach to be emitted.
	Level loglvl.Level `json:"level,omitempty" mapstructure:"level,omitempty"`

	// DisableColor forces plain, uncolored output even on a tty.
	DisableColor bool `json:"disableColor,omitempty" mapstructure:"disableColor,omitempty"`

	// DisableStack disables the goroutine id before each message.
	DisableStack bool `json:"disableStack,omitempty" mapstructure:"disableStack,omitempty"`

	// DisableTimestamp disables the timestamp before each message.
	DisableTimestamp bool `json:"disableTimestamp,omitempty" mapstructure:"disableTimestamp,omitempty"`

	// EnableTrace adds the origin caller/file/line of each message.
	EnableTrace bool `json:"enableTrace,omitempty" mapstructure:"enableTrace,omitempty"`

	// EnableAccessLog allows access-style entries through regardless of Level.
	EnableAccessLog bool `json:"enableAccessLog,omitempty" mapstructure:"enableAccessLog,omitempty"`

	// custom function handlers, not cloned by value copy.
	init   FuncCustomConfig
	change FuncCustomConfig
}

// Clone returns a value copy of o, including its registered callbacks.
func (o Options) Clone() Options {
	return Options{
		Level:            o.Level,
		DisableColor:     o.DisableColor,
		DisableStack:     o.DisableStack,
		DisableTimestamp: o.DisableTimestamp,
		EnableTrace:      o.EnableTrace,
		EnableAccessLog:  o.EnableAccessLog,
		init:             o.init,
		change:           o.change,
	}
}

// Merge overlays non-zero fields of other onto o. A nil other is a no-op.
// Level is copied unless it is PanicLevel (its zero value) or NilLevel;
// boolean flags are set when true in either.
func (o *Options) Merge(other *Options) {
	if other == nil {
		return
	}

	if other.Level != loglvl.NilLevel && other.Level != loglvl.PanicLevel {
		o.Level = other.Level
	}

	o.DisableColor = o.DisableColor || other.DisableColor
	o.DisableStack = o.DisableStack || other.DisableStack
	o.DisableTimestamp = o.DisableTimestamp || other.DisableTimestamp
	o.EnableTrace = o.EnableTrace || other.EnableTrace
	o.EnableAccessLog = o.EnableAccessLog || other.EnableAccessLog
}

// RegisterFuncUpdateLogger stores fct in the options; Clone copies it. The
// logger does not call it: Logger.RegisterFuncUpdateLogger sets the callback
// that SetOptions runs. Pass nil to clear it.
func (o *Options) RegisterFuncUpdateLogger(fct FuncCustomConfig) {
	o.init = fct
}

// RegisterFuncUpdateLevel stores fct in the options; Clone copies it. The
// logger does not call it: Logger.RegisterFuncUpdateLevel sets the callback
// that SetLevel runs. Pass nil to clear it.
func (o *Options) RegisterFuncUpdateLevel(fct FuncCustomConfig) {
	o.change = fct
}
