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

package tschsm

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/go154/mac154/driver"
	"github.com/go154/mac154/frame"
	"github.com/go154/mac154/ie"
	"github.com/go154/mac154/macctx"
	"github.com/go154/mac154/nettime"
	"github.com/go154/mac154/stats"
	"github.com/go154/mac154/tsch"
)

// TXQueue is the per-neighbor outgoing FIFO the state machine dequeues
// from when operating a TX link; the unbounded-FIFO-with-atomic-
// back-pressure-counter of §5 lives behind this interface so this
// package never has to know how packets are actually queued upstream.
type TXQueue interface {
	// Dequeue removes and returns the next queued packet for addr, if
	// any. The packet is already a fully written frame (MHR, security,
	// and payload applied) ready for the driver.
	Dequeue(addr frame.Addr) (pkt []byte, ok bool)
}

// activeLink is the slot's operating state, set by operate_link and
// read by HandleRX to correlate an arriving frame (§4.7).
type activeLink struct {
	link            *tsch.Link
	programmedNS    uint64 // tx/rx time the driver was told to use
	rxWindowStartNS uint64
}

// Machine is the TSCH state machine for one interface: the cooperative
// loop described in §4.7, plus the incoming-frame correlation it feeds.
type Machine struct {
	ctx   *macctx.Context
	queue TXQueue

	timeslotTemplate ie.Timeslot

	asn                uint64
	currentSlotStartNS uint64
	timers             *nettime.TimeoutQueue
	counters           *stats.Counters

	activeMu sync.Mutex
	active   *activeLink
}

// New builds a Machine for the given context and TX queue. ASN starts
// at 0 and Machine offers no way to set it (persisted state is out of
// scope, §6 "Persisted state: none" — a fresh interface always starts
// at 0).
func New(ctx *macctx.Context, queue TXQueue) *Machine {
	return &Machine{ctx: ctx, queue: queue, timers: nettime.NewTimeoutQueue()}
}

// ASN returns the current absolute slot number.
func (m *Machine) ASN() uint64 {
	return m.asn
}

// SetCounters installs the counter set ProcessIncoming folds its
// per-frame time-correction samples into; nil (the default) disables
// observation.
func (m *Machine) SetCounters(c *stats.Counters) {
	m.counters = c
}

// SetTimeslotTemplate installs the timeslot timing template
// (tx/rx offsets and windows, §4.2/§4.7) operateLink uses to place TX
// and RX windows within a slot.
func (m *Machine) SetTimeslotTemplate(t ie.Timeslot) {
	m.timeslotTemplate = t
}

// Run executes the cooperative loop of §4.7 until ctx is cancelled or
// the interface's TSCH mode is turned off. On entry, if the interface
// is associated it captures a current-slot-start timepoint before
// looping; otherwise it returns immediately (the caller re-invokes Run
// once association completes and EnterOperating has been called).
func (m *Machine) Run(stop context.Context) error {
	if m.ctx.Mode() != macctx.ModeOperating {
		return nil
	}
	clock := m.ctx.Clock()
	clock.WakeUp()
	m.currentSlotStartNS = clock.GetTime()

	for m.ctx.Mode() == macctx.ModeOperating {
		select {
		case <-stop.Done():
			return stop.Err()
		default:
		}

		sched := m.ctx.Schedule()
		active, ok := sched.GetNextActiveLink(m.asn)
		if !ok {
			log.Error("tsch: schedule empty, no active link to operate")
			time.Sleep(time.Millisecond)
			continue
		}

		deadline := m.currentSlotStartNS + active.OffsetNS
		m.sleepUntil(clock, deadline)
		m.currentSlotStartNS = deadline
		m.asn++

		m.operateLink(active.Primary, active.Backup)
	}
	return nil
}

// sleepUntil blocks the calling goroutine until the net-time reference
// reports deadlineNS, releasing no lock of its own — the context lock
// is never held across this call because every macctx accessor takes
// and releases it internally (§5 "releases the context lock around
// blocking sleeps"). It chains off the §4.6 timer queue rather than
// sleeping directly on deadlineNS: clock.TimerStart programs the wake
// point onto m.timers the way operate_link is specified to schedule
// its next slot, and the node fires through TimeoutQueue.Announce. The
// lone time.AfterFunc below stands in for the compare-match interrupt
// that would call Announce on real silicon — this host runtime has no
// such interrupt source, so it is the one place a wall-clock wait
// still drives the queue forward.
func (m *Machine) sleepUntil(clock *nettime.Reference, deadlineNS uint64) {
	now := clock.GetTime()
	if deadlineNS <= now {
		return
	}
	done := make(chan struct{})
	_, programmed := clock.TimerStart(m.timers, deadlineNS, 0, nettime.RoundNearest, func() { close(done) })
	wait := time.Duration(programmed-now) * time.Nanosecond
	time.AfterFunc(wait, func() { m.timers.Announce(int64(programmed - now)) })
	<-done
}

// operateLink implements §4.7 operate_link. It must stay light because
// on real hardware this runs inside the compare-timer expiry callback;
// here it runs inline in Run's loop body, which is the cooperative-task
// equivalent.
func (m *Machine) operateLink(primary, backup *tsch.Link) {
	link := primary
	channel, err := m.ctx.ChannelOfOffset(link.ChannelOffset, m.asn)
	if err != nil {
		log.Errorf("tsch: slot %d: %v", m.asn, err)
		return
	}

	radio := m.ctx.Radio()
	role := m.ctx.Role()

	if role == frame.RolePANCoordinator && link.Advertising {
		m.sendBeacon(radio, link, channel)
		return
	}

	var pkt []byte
	havePkt := false
	if link.TX {
		pkt, havePkt = m.queue.Dequeue(link.Addr)
		if !havePkt && backup != nil {
			link = backup
			if link.TX {
				pkt, havePkt = m.queue.Dequeue(link.Addr)
			}
		}
	}

	if havePkt {
		m.transmit(radio, link, channel, pkt)
		return
	}

	if link.RX {
		m.receive(radio, link, channel)
	}
}

// usToNS converts a Timeslot template field (microseconds, the only
// unit a uint16 can express a TSCH slot's sub-timings in) to
// nanoseconds.
func usToNS(us uint16) uint64 { return uint64(us) * 1000 }

func (m *Machine) sendBeacon(radio driver.Radio, link *tsch.Link, channel uint16) {
	sched, err := m.ctx.EnhBeaconSchedule(m.asn, false, false, m.timeslotTemplate)
	if err != nil {
		log.Debugf("tsch: slot %d: beacon schedule: %v", m.asn, err)
		return
	}
	var pkt []byte
	err = m.ctx.WithLock(func(id frame.WriteIdentity) error {
		var werr error
		pkt, werr = frame.CreateEnhBeacon(id, sched)
		return werr
	})
	if err != nil {
		log.Debugf("tsch: slot %d: create enh beacon: %v", m.asn, err)
		return
	}
	m.submit(radio, channel, pkt, m.currentSlotStartNS+usToNS(m.timeslotTemplate.TXOffset))
}

func (m *Machine) transmit(radio driver.Radio, link *tsch.Link, channel uint16, pkt []byte) {
	if radio.CurrentChannelPage() != driver.ChannelPage2450MHzOQPSK && !radio.VerifyChannel(channel) {
		log.Debugf("tsch: slot %d: channel %d not usable, dropping slot", m.asn, channel)
		return
	}
	txTimeNS := m.currentSlotStartNS + usToNS(m.timeslotTemplate.TXOffset)
	m.submit(radio, channel, pkt, txTimeNS)
}

func (m *Machine) submit(radio driver.Radio, channel uint16, pkt []byte, txTimeNS uint64) {
	caps := radio.HWCapabilities()
	if caps.Has(driver.CapTimedTX) {
		if err := radio.SetChannel(channel); err != nil {
			log.Debugf("tsch: slot %d: set channel %d: %v", m.asn, channel, err)
			return
		}
	}
	if result, err := radio.CCA(); err == nil && result == driver.CCABusy {
		log.Debugf("tsch: slot %d: cca busy, aborting slot", m.asn)
		return
	}
	if err := radio.Send(pkt, txTimeNS); err != nil {
		log.Debugf("tsch: slot %d: send: %v", m.asn, err)
	}
}

func (m *Machine) receive(radio driver.Radio, link *tsch.Link, channel uint16) {
	rxStart := m.currentSlotStartNS + usToNS(m.timeslotTemplate.RXOffset)
	rxWait := usToNS(m.timeslotTemplate.RXWait)
	if err := radio.SetChannel(channel); err != nil {
		log.Debugf("tsch: slot %d: set channel %d for rx: %v", m.asn, channel, err)
		return
	}
	if err := radio.Configure(driver.ConfigureRXSlot, driver.RXSlotConfig{
		StartNS: rxStart, DurationNS: rxWait, Channel: channel,
	}); err != nil {
		log.Debugf("tsch: slot %d: configure rx slot: %v", m.asn, err)
		return
	}
	if radio.HWCapabilities().Has(driver.CapAutoRXTXAck) {
		_ = radio.Configure(driver.ConfigureExpectedRXTime, driver.ExpectedRXTimeConfig{
			NS: rxStart + rxWait/2,
		})
	}

	m.activeMu.Lock()
	m.active = &activeLink{link: link, programmedNS: rxStart, rxWindowStartNS: rxStart}
	m.activeMu.Unlock()
}
