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

package macctx

import (
	"fmt"

	"github.com/go154/mac154/driver"
	"github.com/go154/mac154/ie"
)

// Mode is a TSCH-mode state, §4.7 "off → waiting-for-association →
// operating ⇄ waiting-for-association → off".
type Mode int

const (
	ModeOff Mode = iota
	ModeWaitingForAssociation
	ModeOperating
)

func (m Mode) String() string {
	switch m {
	case ModeOff:
		return "off"
	case ModeWaitingForAssociation:
		return "waiting-for-association"
	case ModeOperating:
		return "operating"
	default:
		return "unknown"
	}
}

// timeCorrectionHeaderIE is the default Enhanced-ACK header IE
// tsch_mode_on installs on radios that support auto-ACK (§4.7): an
// empty Time Correction IE, filled in per-ACK by the driver itself
// once it knows the correction value.
func timeCorrectionHeaderIE() ie.HeaderIE {
	return ie.HeaderIE{ElementID: ie.HeaderIDTimeCorrection, Content: make([]byte, 2)}
}

// ModeOn transitions TSCH mode off → waiting-for-association (or
// straight to operating, if already associated), per §4.7. It
// requires the radio to declare both timed-TX and timed-RX; lacking
// either returns ErrNotSupported. Mode transitions are serialized by
// the scan lock, which is held only long enough to flip state and
// install the default Enhanced-ACK header IE — never across a
// blocking sleep.
func (c *Context) ModeOn() error {
	c.scanMu.Lock()
	defer c.scanMu.Unlock()
	if c.mode != ModeOff {
		return nil
	}
	caps := c.radio.HWCapabilities()
	if !caps.Has(driver.CapTimedTX) || !caps.Has(driver.CapTimedRX) {
		return fmt.Errorf("%w: radio lacks timed tx/rx capability", ErrNotSupported)
	}
	if caps.Has(driver.CapAutoRXTXAck) {
		if err := c.radio.Configure(driver.ConfigureEnhAckHeaderIE, driver.EnhAckHeaderIEConfig{
			IE: timeCorrectionHeaderIE(),
		}); err != nil {
			return fmt.Errorf("%w: %v", ErrNotSupported, err)
		}
	}
	if c.Associated() {
		c.mode = ModeOperating
	} else {
		c.mode = ModeWaitingForAssociation
	}
	return nil
}

// ModeOff transitions TSCH mode to off unconditionally (§4.7
// cancellation: "tsch_mode_off sets tsch_mode=false under the scan
// lock").
func (c *Context) ModeOff() {
	c.scanMu.Lock()
	defer c.scanMu.Unlock()
	c.mode = ModeOff
}

// EnterOperating transitions waiting-for-association → operating once
// association completes; a no-op unless currently waiting.
func (c *Context) EnterOperating() {
	c.scanMu.Lock()
	defer c.scanMu.Unlock()
	if c.mode == ModeWaitingForAssociation {
		c.mode = ModeOperating
	}
}

// LeaveOperating transitions operating → waiting-for-association, e.g.
// after losing synchronization with the coordinator.
func (c *Context) LeaveOperating() {
	c.scanMu.Lock()
	defer c.scanMu.Unlock()
	if c.mode == ModeOperating {
		c.mode = ModeWaitingForAssociation
	}
}

// Mode reports the current TSCH-mode state.
func (c *Context) Mode() Mode {
	c.scanMu.Lock()
	defer c.scanMu.Unlock()
	return c.mode
}

// BeginScan marks the interface as scanning, returning false (without
// blocking) if a scan is already in progress. Scanning is guarded by
// its own lock so it can run concurrently with normal TSCH operation,
// per §4.8.
func (c *Context) BeginScan() (abort <-chan struct{}, ok bool) {
	c.scanMu.Lock()
	defer c.scanMu.Unlock()
	if c.scanning {
		return nil, false
	}
	c.scanning = true
	c.scanAbort = make(chan struct{})
	return c.scanAbort, true
}

// EndScan clears scanning state; idempotent.
func (c *Context) EndScan() {
	c.scanMu.Lock()
	defer c.scanMu.Unlock()
	c.scanning = false
	c.scanAbort = nil
}

// AbortScan signals the channel BeginScan returned, if a scan is in
// progress; otherwise a no-op.
func (c *Context) AbortScan() {
	c.scanMu.Lock()
	defer c.scanMu.Unlock()
	if c.scanning && c.scanAbort != nil {
		close(c.scanAbort)
		c.scanAbort = nil
	}
}

// Scanning reports whether a scan is currently in progress.
func (c *Context) Scanning() bool {
	c.scanMu.Lock()
	defer c.scanMu.Unlock()
	return c.scanning
}
