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

package runtimeconfig

import (
	"sync"

	liberr "github.com/nabbar/evloop/errors"
	liblog "github.com/nabbar/evloop/logger"
	netio "github.com/nabbar/evloop/netio"

	fsnotify "github.com/fsnotify/fsnotify"
	spfvpr "github.com/spf13/viper"
)

// Loader wraps a *viper.Viper carrying evloop's own tunables, the same way
// the teacher's config.configModel wraps a spf13/viper.Viper behind a
// mutex and a slice of registered callbacks, rather than letting callers
// reach into the *viper.Viper directly.
type Loader struct {
	mu sync.Mutex

	vpr *spfvpr.Viper
	log liblog.FuncLog

	cur      Tunables
	fctAfter ReconfigureFunc
}

// New builds a Loader with every default from this package pre-set, so
// Load can succeed against a config file that only overrides a subset of
// keys, or against no file at all.
func New(log liblog.FuncLog) *Loader {
	v := spfvpr.New()

	v.SetDefault(keyPollTimeout, DefaultPollTimeout)
	v.SetDefault(keyMinTimerInterval, DefaultMinTimerInterval)
	v.SetDefault(keyReadBufferSize, DefaultReadBufferSize)
	v.SetDefault(keyMaxEventsPerPoll, DefaultMaxEventsPerPoll)
	v.SetDefault(keySIPListenTCP, "127.0.0.1:5060")
	v.SetDefault(keySIPListenUDP, "127.0.0.1:5060")

	l := &Loader{vpr: v, log: log}
	l.cur = l.readLocked()
	return l
}

// RegisterReconfigure records the function called with the new Tunables
// after Load and after every change observed by Watch. Only one function
// is kept, matching config.configModel's single fctReloadAfter slot.
func (l *Loader) RegisterReconfigure(fct ReconfigureFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fctAfter = fct
}

// Current returns the last successfully validated Tunables.
func (l *Loader) Current() Tunables {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cur
}

// Load reads path into the underlying Viper instance, validates the
// result, and - if it validates - stores it as Current and invokes the
// registered ReconfigureFunc. A validation failure leaves Current and the
// live Tunables untouched.
func (l *Loader) Load(path string) liberr.Error {
	l.mu.Lock()
	l.vpr.SetConfigFile(path)
	rerr := l.vpr.ReadInConfig()
	l.mu.Unlock()

	if rerr != nil {
		return liberr.CodeConfigInvalid.Error(rerr)
	}

	return l.applyLocked()
}

// Watch starts an fsnotify watch on the loaded config file (via Viper's
// WatchConfig, which is itself fsnotify-backed) and re-applies the
// Tunables on every write, exactly once per debounced event. Load must be
// called with a real path before Watch for there to be a file to watch.
func (l *Loader) Watch() {
	l.vpr.OnConfigChange(func(_ fsnotify.Event) {
		if err := l.applyLocked(); err != nil && l.log != nil {
			if lg := l.log(); lg != nil {
				lg.Warning("runtimeconfig: reload rejected", map[string]interface{}{"error": err.Error()})
			}
		}
	})
	l.vpr.WatchConfig()
}

func (l *Loader) readLocked() Tunables {
	return Tunables{
		PollTimeout:      l.vpr.GetDuration(keyPollTimeout),
		MinTimerInterval: l.vpr.GetDuration(keyMinTimerInterval),
		ReadBufferSize:   l.vpr.GetInt(keyReadBufferSize),
		MaxEventsPerPoll: l.vpr.GetInt(keyMaxEventsPerPoll),
		SIPListenTCP:     mustParseAddr(l.vpr.GetString(keySIPListenTCP)),
		SIPListenUDP:     mustParseAddr(l.vpr.GetString(keySIPListenUDP)),
	}
}

func (l *Loader) applyLocked() liberr.Error {
	l.mu.Lock()
	t := l.readLocked()
	if err := validate(t); err != nil {
		l.mu.Unlock()
		return err
	}
	l.cur = t
	fct := l.fctAfter
	l.mu.Unlock()

	if fct != nil {
		fct(t)
	}
	return nil
}

func mustParseAddr(s string) netio.Address {
	a, err := netio.ParseAddress(s)
	if err != nil {
		return netio.Address{}
	}
	return a
}
