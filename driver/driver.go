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

// Package driver defines the Radio trait (§6 "Driver trait") the TSCH
// state machine and context layer drive: a thin boundary between the
// core and whatever PHY actually ships bytes. Nothing in this package
// talks to real hardware; concrete radios implement Radio elsewhere
// and are wired in at startup.
package driver

import (
	"fmt"

	"github.com/go154/mac154/ie"
)

// Capability is a bitset returned by Radio.HWCapabilities.
type Capability uint8

const (
	CapTimedTX Capability = 1 << iota
	CapTimedRX
	CapAutoRXTXAck
)

func (c Capability) Has(bit Capability) bool { return c&bit != 0 }

// CCAResult is the outcome of a clear-channel assessment.
type CCAResult int

const (
	CCAIdle CCAResult = iota
	CCABusy
	CCAIO
)

func (r CCAResult) String() string {
	switch r {
	case CCAIdle:
		return "idle"
	case CCABusy:
		return "busy"
	case CCAIO:
		return "io"
	default:
		return "unknown"
	}
}

// ConfigureKind selects which Configure value shape is being set.
type ConfigureKind int

const (
	ConfigureRXSlot ConfigureKind = iota
	ConfigureExpectedRXTime
	ConfigureEnhAckHeaderIE
)

// RXSlotConfig is the value for ConfigureRXSlot: a timed RX window.
type RXSlotConfig struct {
	StartNS    uint64
	DurationNS uint64
	Channel    uint16
}

// ExpectedRXTimeConfig is the value for ConfigureExpectedRXTime: the
// driver uses it to tighten its RX window around a known ACK arrival.
type ExpectedRXTimeConfig struct {
	NS uint64
}

// EnhAckHeaderIEConfig is the value for ConfigureEnhAckHeaderIE: the
// Header IE (almost always a Time Correction IE) the driver's
// auto-ACK logic should stamp into the enhanced ACK it generates for
// the next frame received from Addr, when CapAutoRXTXAck is set.
type EnhAckHeaderIEConfig struct {
	IE   ie.HeaderIE
	Addr [8]byte
}

// ChannelPage distinguishes PHY channel numbering schemes (§6,
// current_channel_page); 2.4GHz O-QPSK is the only page this
// implementation's TSCH scheduling logic assumes.
type ChannelPage int

const (
	ChannelPage2450MHzOQPSK ChannelPage = iota
	ChannelPageSubGHz
)

// ErrNotSupported is returned by Radio methods for capabilities the
// concrete radio does not implement; the context layer maps it to the
// NotSupported error kind (§7).
var ErrNotSupported = fmt.Errorf("driver: not supported")

// ErrBusy is returned when the driver's TX queue is full or its CCA
// detected energy; maps to the Busy error kind (§7).
var ErrBusy = fmt.Errorf("driver: busy")

// TimeReference is the subset of nettime.Reference a Radio exposes
// through its TimeReference method; kept as a narrow interface here so this
// package does not import nettime for the one method driver callers
// actually need from it.
type TimeReference interface {
	GetTime() uint64
}

// Radio is the driver trait (§6): everything the TSCH core needs from
// the PHY, and nothing else. A concrete implementation wraps one
// physical or simulated radio and must be safe for the same
// serialized-access pattern the context lock already provides — Radio
// implementations are not required to be safe for concurrent calls
// from multiple goroutines.
type Radio interface {
	// HWCapabilities reports which of CapTimedTX / CapTimedRX /
	// CapAutoRXTXAck this radio implements in hardware or firmware.
	HWCapabilities() Capability

	// SetChannel tunes the radio. Returns ErrNotSupported if ch is
	// outside SupportedChannelRanges.
	SetChannel(ch uint16) error

	// CCA performs one clear-channel assessment.
	CCA() (CCAResult, error)

	// Configure installs a driver-side hint ahead of a Send: an RX
	// slot window, an expected-ACK arrival time, or the header IE to
	// auto-stamp into a hardware-generated enhanced ACK.
	Configure(kind ConfigureKind, value any) error

	// Send transmits pkt, optionally at timestampNS (timed TX, when
	// CapTimedTX is set); a zero timestampNS means "now".
	Send(pkt []byte, timestampNS uint64) error

	// TimeReference returns the radio's net-time reference, shared
	// with the TSCH state machine so driver timestamps and scheduler
	// deadlines speak the same clock.
	TimeReference() TimeReference

	// CurrentChannelPage reports the active channel-numbering scheme.
	CurrentChannelPage() ChannelPage

	// VerifyChannel reports whether ch is usable on the current page
	// without actually tuning to it.
	VerifyChannel(ch uint16) bool

	// SupportedChannelRanges lists the inclusive [from, to] channel
	// ranges this radio can tune to on its current page.
	SupportedChannelRanges() [][2]uint16
}
