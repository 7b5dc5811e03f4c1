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

package main

import (
	"context"
	"fmt"

	facade "github.com/nabbar/evloop/facade"
	ioengine "github.com/nabbar/evloop/ioengine"
	liblog "github.com/nabbar/evloop/logger"
	loglvl "github.com/nabbar/evloop/logger/level"
	netio "github.com/nabbar/evloop/netio"
	runtimeconfig "github.com/nabbar/evloop/runtimeconfig"

	spfcbr "github.com/spf13/cobra"
	spfvpr "github.com/spf13/viper"
)

const (
	flagConfig    = "config"
	flagListenTCP = "listen-tcp"
	flagListenUDP = "listen-udp"
	flagSIPListen = "sip-listen"
)

func newRootCommand() *spfcbr.Command {
	v := spfvpr.New()
	log := liblog.New(context.Background())
	log.SetLevel(loglvl.InfoLevel)
	logFn := func() liblog.Logger { return log }

	cmd := &spfcbr.Command{
		Use:   "loopctl",
		Short: "Run an evloop event loop with optional echo and SIP services",
		Long: "loopctl boots one event loop through the evloop public facade and, " +
			"depending on the flags given, binds a TCP echo stream server, a UDP " +
			"echo datagram socket, and a SIP UAS that answers every request with " +
			"a 200 OK.",
		RunE: func(cmd *spfcbr.Command, args []string) error {
			return run(v, logFn)
		},
	}

	flags := cmd.PersistentFlags()
	flags.String(flagConfig, "", "path to a YAML config file (watched for live reload)")
	flags.String(flagListenTCP, "", "address:port to bind a TCP echo server on")
	flags.String(flagListenUDP, "", "address:port to bind a UDP echo socket on")
	flags.String(flagSIPListen, "", "address:port to bind a SIP UAS (UDP) on")

	_ = v.BindPFlag(flagConfig, flags.Lookup(flagConfig))
	_ = v.BindPFlag(flagListenTCP, flags.Lookup(flagListenTCP))
	_ = v.BindPFlag(flagListenUDP, flags.Lookup(flagListenUDP))
	_ = v.BindPFlag(flagSIPListen, flags.Lookup(flagSIPListen))

	log.SetSPF13Level(loglvl.WarnLevel, nil)

	return cmd
}

func run(v *spfvpr.Viper, logFn liblog.FuncLog) error {
	loader := runtimeconfig.New(logFn)

	loopH, err := facade.CreateLoop(logFn)
	if err != nil {
		return fmt.Errorf("create loop: %w", err)
	}
	defer func() { _ = facade.DestroyLoop(loopH) }()

	loader.RegisterReconfigure(func(t runtimeconfig.Tunables) {
		_ = facade.Reconfigure(loopH, t.PollTimeout, t.MaxEventsPerPoll)
		ioengine.SetReadBufferSize(t.ReadBufferSize)
	})

	if cfgPath := v.GetString(flagConfig); cfgPath != "" {
		if lerr := loader.Load(cfgPath); lerr != nil {
			return fmt.Errorf("load config: %w", lerr)
		}
		loader.Watch()
	} else {
		ioengine.SetReadBufferSize(loader.Current().ReadBufferSize)
	}

	if addr := v.GetString(flagListenTCP); addr != "" {
		a, aerr := netio.ParseAddress(addr)
		if aerr != nil {
			return fmt.Errorf("listen-tcp: %w", aerr)
		}
		if serr := startEchoStreamServer(loopH, a); serr != nil {
			return fmt.Errorf("start tcp echo: %w", serr)
		}
	}

	if addr := v.GetString(flagListenUDP); addr != "" {
		a, aerr := netio.ParseAddress(addr)
		if aerr != nil {
			return fmt.Errorf("listen-udp: %w", aerr)
		}
		if derr := startEchoDatagram(loopH, a); derr != nil {
			return fmt.Errorf("start udp echo: %w", derr)
		}
	}

	if addr := v.GetString(flagSIPListen); addr != "" {
		a, aerr := netio.ParseAddress(addr)
		if aerr != nil {
			return fmt.Errorf("sip-listen: %w", aerr)
		}
		if serr := startSIPUAS(loopH, logFn, a); serr != nil {
			return fmt.Errorf("start sip uas: %w", serr)
		}
	}

	if err := facade.Run(loopH); err != nil {
		return fmt.Errorf("run loop: %w", err)
	}
	return nil
}
