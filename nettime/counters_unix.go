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

package nettime

import (
	"sync"

	"golang.org/x/sys/unix"
)

// UnixCounters backs Counters with the kernel's own monotonic clocks in
// place of real sleep/radio hardware registers: CLOCK_BOOTTIME, which
// keeps advancing across suspend, stands in for the always-on sleep
// counter; CLOCK_MONOTONIC_RAW, sampled only while "powered", stands in
// for the radio counter.
type UnixCounters struct {
	mu      sync.Mutex
	powered bool
}

// NewUnixCounters returns a Counters backed by the host's clocks.
func NewUnixCounters() *UnixCounters { return &UnixCounters{} }

func clockGettimeNS(clockID int32) uint64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(clockID, &ts); err != nil {
		// Both clock ids are mandatory on any Linux kernel this package
		// targets; a failure here means the host is misconfigured
		// beyond anything the caller can recover from.
		panic("nettime: clock_gettime failed: " + err.Error())
	}
	return uint64(ts.Sec)*nsPerSec + uint64(ts.Nsec)
}

// SleepTicks converts CLOCK_BOOTTIME nanoseconds to SleepCounterHz ticks.
func (c *UnixCounters) SleepTicks() uint64 {
	ns := clockGettimeNS(unix.CLOCK_BOOTTIME)
	return uint64(TimepointFromNS(ns, SleepCounterHz, RoundNearest))
}

// HiResTicks converts CLOCK_MONOTONIC_RAW nanoseconds to HiResCounterHz
// ticks, and reports whether the counter is currently powered.
func (c *UnixCounters) HiResTicks() (uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.powered {
		return 0, false
	}
	ns := clockGettimeNS(unix.CLOCK_MONOTONIC_RAW)
	return uint64(TimepointFromNS(ns, HiResCounterHz, RoundNearest)), true
}

// PowerHiRes toggles whether HiResTicks samples the host clock.
func (c *UnixCounters) PowerHiRes(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.powered = on
}
