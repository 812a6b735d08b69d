/*
Copyright (c) The mac154 Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// mac154d is the long-running daemon: it loads a bootstrap config,
// installs it into a fresh context, runs the TSCH state machine until
// signalled to stop, and exports stats over Prometheus.
package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/daemon"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/go154/mac154/config"
	"github.com/go154/mac154/driver"
	"github.com/go154/mac154/frame"
	"github.com/go154/mac154/macctx"
	"github.com/go154/mac154/nettime"
	"github.com/go154/mac154/stats"
	"github.com/go154/mac154/tschsm"
)

var (
	configFlag    string
	pidFileFlag   string
	logLevelFlag  string
	nullRadioFlag bool
)

func init() {
	flag.StringVar(&configFlag, "config", "/etc/mac154/mac154.yaml", "path to the bootstrap config file")
	flag.StringVar(&pidFileFlag, "pidfile", "/var/run/mac154d.pid", "pid file location")
	flag.StringVar(&logLevelFlag, "loglevel", "info", "log level: debug, info, warning, error")
	flag.BoolVar(&nullRadioFlag, "null-radio", false, "run against a software-only radio stub instead of real hardware")
}

func configureLogLevel() {
	switch logLevelFlag {
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "info":
		log.SetLevel(log.InfoLevel)
	case "warning":
		log.SetLevel(log.WarnLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	default:
		log.Fatalf("unrecognized log level: %v", logLevelFlag)
	}
}

func writePIDFile(path string) error {
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0644)
}

// sdNotifyReady notifies systemd this process is ready, grounded on
// ptp/c4u/c4u.go's SdNotify: unsupported (NOTIFY_SOCKET unset) is
// logged at debug level and skipped, not a fatal error, since mac154d
// runs standalone in tests.
func sdNotifyReady() {
	supported, err := daemon.SdNotify(false, daemon.SdNotifyReady)
	switch {
	case !supported && err != nil:
		log.Errorf("sd_notify failed: %v", err)
	case !supported:
		log.Debug("sd_notify not supported, skipping readiness notification")
	default:
		log.Info("sent sd_notify readiness notification")
	}
}

func buildRadio(clock *nettime.Reference) driver.Radio {
	if nullRadioFlag {
		return driver.NewNullRadio(
			driver.CapTimedTX|driver.CapTimedRX|driver.CapAutoRXTXAck,
			driver.ChannelPage2450MHzOQPSK,
			[][2]uint16{{11, 26}},
			clock,
		)
	}
	log.Fatal("no hardware radio backend is wired in; rerun with -null-radio for a software-only stub")
	return nil
}

func parseExtAddr(s string) (frame.ExtAddr, error) {
	var ext frame.ExtAddr
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != 8 {
		return ext, fmt.Errorf("bad extended address %q", s)
	}
	copy(ext[:], b)
	return ext, nil
}

// wallClockCounters drives nettime.Reference off the process wall
// clock, standing in for the hardware sleep/hi-res counter pair a real
// radio's TimeReference would expose.
type wallClockCounters struct{ start time.Time }

func (w wallClockCounters) SleepTicks() uint64 {
	return uint64(time.Since(w.start)/time.Second) * uint64(nettime.SleepCounterHz)
}

func (w wallClockCounters) HiResTicks() (uint64, bool) {
	return uint64(time.Since(w.start)) * uint64(nettime.HiResCounterHz) / uint64(time.Second), true
}

func (w wallClockCounters) PowerHiRes(on bool) {}

// memoryTXQueue is the outgoing-frame queue tschsm.Machine dequeues
// from per neighbor; it has no producer wired in yet since §1 scopes
// the upper-layer data-request path (how frames get enqueued in the
// first place) out as an external collaborator.
type memoryTXQueue struct {
	pending map[frame.Addr][][]byte
}

func newMemoryTXQueue() *memoryTXQueue {
	return &memoryTXQueue{pending: make(map[frame.Addr][][]byte)}
}

func (q *memoryTXQueue) Dequeue(addr frame.Addr) ([]byte, bool) {
	pkts := q.pending[addr]
	if len(pkts) == 0 {
		return nil, false
	}
	q.pending[addr] = pkts[1:]
	return pkts[0], true
}

func (q *memoryTXQueue) depth(addr frame.Addr) int { return len(q.pending[addr]) }

func run(ctx context.Context) error {
	cfg, err := config.ReadConfig(configFlag)
	if err != nil {
		return err
	}

	clock := nettime.NewReference(wallClockCounters{start: time.Now()}, nettime.SleepCounterHz, nettime.HiResCounterHz)
	radio := buildRadio(clock)

	extAddr, err := parseExtAddr(cfg.ExtAddr)
	if err != nil {
		return err
	}

	mctx := macctx.New(extAddr, radio, clock)
	if err := cfg.Build(mctx); err != nil {
		return err
	}

	counters := stats.NewCounters()
	if cfg.StatsListen != "" {
		interval := cfg.StatsInterval
		if interval == 0 {
			interval = time.Minute
		}
		exporter := stats.NewPrometheusExporter(counters, cfg.StatsListen, interval)
		go func() {
			if err := exporter.Start(); err != nil {
				log.Errorf("stats exporter: %v", err)
			}
		}()
	}

	queue := newMemoryTXQueue()
	mctx.SetQueueDepthFunc(queue.depth)

	sm := tschsm.New(mctx, queue)
	sm.SetTimeslotTemplate(cfg.Timeslot())
	sm.SetCounters(counters)

	if err := writePIDFile(pidFileFlag); err != nil {
		log.Warnf("writing pid file: %v", err)
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return sm.Run(egCtx)
	})

	sdNotifyReady()
	return eg.Wait()
}

func main() {
	flag.Parse()
	configureLogLevel()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil && err != context.Canceled {
		log.Fatal(err)
	}
}
