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

// Package macctx implements the link-layer context (§3, §4.8): the
// one-per-interface bundle of PAN/address/channel/sequence/security/
// TSCH state, guarded by a single context lock, plus a second scan
// lock so scanning can run concurrently with normal operation.
//
// Context is deliberately the only package that imports frame, ie,
// security, tsch, nettime, and driver together — it is the assembly
// point that builds the narrow structs each of those packages accepts
// (frame.WriteIdentity, frame.FilterIdentity, a tsch.Schedule) out of
// its own locked state, the way daemonState in the teacher's fbclock
// daemon is the one place that owns every ring buffer and stat the
// rest of the daemon reads a snapshot of.
package macctx

import (
	"fmt"
	"sync"

	"github.com/go154/mac154/driver"
	"github.com/go154/mac154/frame"
	"github.com/go154/mac154/ie"
	"github.com/go154/mac154/nettime"
	"github.com/go154/mac154/security"
	"github.com/go154/mac154/tsch"
)

// Error taxonomy (§7). Each kind is a sentinel rather than a type, the
// same convention frame/security/tsch already use; callers test with
// errors.Is.
var (
	ErrInvalid       = fmt.Errorf("macctx: invalid")
	ErrNotSupported  = fmt.Errorf("macctx: not supported")
	ErrNotAssociated = fmt.Errorf("macctx: not associated")
	ErrBusy          = fmt.Errorf("macctx: busy")
	ErrNoMemory      = fmt.Errorf("macctx: no memory")
)

const (
	// ShortAddrNotAssociated is the reserved short-address value
	// meaning "no PAN association yet" (§3).
	ShortAddrNotAssociated = frame.ShortAddr(0xFFFF)
	// ShortAddrNoShort is the reserved short-address value meaning
	// "associated, but operating on the extended address only" (§3).
	ShortAddrNoShort = frame.ShortAddr(0xFFFE)
)

// SecurityConfig is the setter payload for SetSecuritySettings.
type SecurityConfig struct {
	Level security.Level
	Key   [16]byte
}

// HoppingSequence is the setter payload for SetHoppingSequence: the
// channel list a TSCH link's ChannelOffset indexes into (§4.1
// get_hopping_sequence, §4.4).
type HoppingSequence struct {
	Page     uint8
	Channels []uint8
}

// securityState is the §3 security sub-context: level, implicit
// key-id material, and the monotonic outgoing frame counter, plus the
// AEAD session built from the key.
type securityState struct {
	level        security.Level
	key          [16]byte
	frameCounter uint32
	session      *security.Session
}

// Context is the link-layer context: one per interface, per §3/§4.8.
// The zero value is not usable; construct with New.
type Context struct {
	mu sync.Mutex

	pan      frame.PANID
	short    frame.ShortAddr
	ext      frame.ExtAddr
	sequence uint8
	channel  uint16
	txPower  int8
	role     frame.Role
	ackReq   bool

	lastSentAckSeq uint8
	coordShort     *frame.ShortAddr
	coordExt       *frame.ExtAddr

	sec securityState

	schedule *tsch.Schedule
	store    *tsch.Store
	hopping  HoppingSequence

	clock *nettime.Reference
	radio driver.Radio

	scanMu    sync.Mutex
	scanning  bool
	scanAbort chan struct{}
	mode      Mode
}

// New builds a Context for an interface with the given extended
// address (permanent, set once at construction) and radio/clock
// collaborators. The PAN id and short address start unassociated.
func New(ext frame.ExtAddr, radio driver.Radio, clock *nettime.Reference) *Context {
	store := tsch.NewStore()
	c := &Context{
		ext:      ext,
		pan:      frame.PANID(0xFFFF),
		short:    ShortAddrNotAssociated,
		role:     frame.RoleEndDevice,
		store:    store,
		radio:    radio,
		clock:    clock,
	}
	sess, _ := security.NewSession([16]byte{})
	c.sec = securityState{level: 0, session: sess}
	c.schedule = &tsch.Schedule{
		Store:            store,
		QueueDepth:       func(frame.Addr) int { return 0 },
		TimeslotLengthUS: 10000,
	}
	return c
}

// SetQueueDepthFunc wires the real per-neighbor TX queue depth lookup
// into the link selector's tie-break rule; the zero Context starts
// with a depth of 0 for everyone so Schedule.GetNextActiveLink is
// usable before the queueing layer exists.
func (c *Context) SetQueueDepthFunc(fn tsch.NeighborQueueDepth) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.schedule.QueueDepth = fn
}

// --- getters: each snapshots under the lock (§4.8) ---

func (c *Context) PANID() frame.PANID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pan
}

func (c *Context) ShortAddr() frame.ShortAddr {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.short
}

func (c *Context) ExtAddr() frame.ExtAddr {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ext
}

func (c *Context) Channel() uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.channel
}

func (c *Context) TXPower() int8 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.txPower
}

func (c *Context) Role() frame.Role {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.role
}

func (c *Context) AckRequested() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ackReq
}

func (c *Context) Associated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pan != frame.PANID(0xFFFF) && c.short != ShortAddrNotAssociated
}

// Sequence returns the current outgoing sequence number without
// consuming it; WriteIdentity advances it as a side effect of use.
func (c *Context) Sequence() uint8 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sequence
}

// HoppingSequence returns the interface's configured channel hopping
// sequence.
func (c *Context) HoppingSequence() HoppingSequence {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hopping
}

// --- setters: each acquires the context lock (§4.8) ---

// SetAck sets or clears whether unicast emissions request an ACK.
func (c *Context) SetAck(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ackReq = on
}

// UnsetAck is SetAck(false) spelled out to match the net-management
// request surface's SET_ACK/UNSET_ACK pair (§6) one-to-one.
func (c *Context) UnsetAck() { c.SetAck(false) }

// SetChannel validates ch against the radio's supported ranges, tunes
// the radio, and records the channel. NotSupported (§7) on a channel
// outside every supported range or a driver-level tuning failure.
func (c *Context) SetChannel(ch uint16) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.radio.VerifyChannel(ch) {
		return fmt.Errorf("%w: channel %d not supported by radio", ErrNotSupported, ch)
	}
	if err := c.radio.SetChannel(ch); err != nil {
		return fmt.Errorf("%w: %v", ErrNotSupported, err)
	}
	c.channel = ch
	return nil
}

// SetPANID sets the PAN id. A PAN-coordinator role requires a
// non-broadcast id (§3 invariant); callers configuring the role and
// the id together should call SetPANID before SetDeviceRole.
func (c *Context) SetPANID(pan frame.PANID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.role == frame.RolePANCoordinator && pan == frame.PANID(0xFFFF) {
		return fmt.Errorf("%w: pan coordinator requires a non-broadcast pan id", ErrInvalid)
	}
	c.pan = pan
	return nil
}

// SetShortAddr sets the short address. A PAN-coordinator role requires
// short ∈ [0, 0xFFFD] (§3 invariant).
func (c *Context) SetShortAddr(short frame.ShortAddr) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.role == frame.RolePANCoordinator && short > 0xFFFD {
		return fmt.Errorf("%w: pan coordinator requires short address in [0, 0xFFFD]", ErrInvalid)
	}
	c.short = short
	return nil
}

// SetTXPower sets the radio's transmit power.
func (c *Context) SetTXPower(dbm int8) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.txPower = dbm
}

// SetDeviceRole changes the interface's role, re-checking the §3
// PAN-coordinator invariants against whatever PAN id/short address are
// already set.
func (c *Context) SetDeviceRole(role frame.Role) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if role == frame.RolePANCoordinator {
		if c.pan == frame.PANID(0xFFFF) {
			return fmt.Errorf("%w: pan coordinator requires a non-broadcast pan id", ErrInvalid)
		}
		if c.short > 0xFFFD {
			return fmt.Errorf("%w: pan coordinator requires short address in [0, 0xFFFD]", ErrInvalid)
		}
	}
	c.role = role
	return nil
}

// SetCoordinator records the addresses of the coordinator this
// interface is (or is attempting to become) associated with.
func (c *Context) SetCoordinator(short frame.ShortAddr, ext frame.ExtAddr) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, e := short, ext
	c.coordShort, c.coordExt = &s, &e
}

// Coordinator returns the recorded coordinator addresses, if any.
func (c *Context) Coordinator() (short *frame.ShortAddr, ext *frame.ExtAddr) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.coordShort, c.coordExt
}

// LastSentAckSeq returns the sequence number of the most recent
// immediate/enhanced ACK this interface emitted, used by callers
// deduplicating retransmitted requests.
func (c *Context) LastSentAckSeq() uint8 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSentAckSeq
}

// RecordSentAck records the sequence number of an ACK this interface
// just emitted.
func (c *Context) RecordSentAck(seq uint8) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastSentAckSeq = seq
}

// SetSecuritySettings installs a new security level and key,
// rebuilding the AEAD session and resetting the outgoing frame
// counter to 0 (a new key always starts its own counter space, §3/§9).
func (c *Context) SetSecuritySettings(cfg SecurityConfig) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cfg.Level > security.LevelEncMIC128 || cfg.Level == 4 {
		return fmt.Errorf("%w: reserved security level %d", ErrInvalid, cfg.Level)
	}
	sess, err := security.NewSession(cfg.Key)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	c.sec = securityState{level: cfg.Level, key: cfg.Key, session: sess}
	return nil
}

// SetHoppingSequence installs the channel list TSCH links index into
// by ChannelOffset (§4.1, §4.4).
func (c *Context) SetHoppingSequence(seq HoppingSequence) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hopping = seq
}

// SetTSCHSlotframe inserts or replaces a slotframe in the schedule
// store, returning the displaced slotframe if any (§4.4 CRUD contract).
func (c *Context) SetTSCHSlotframe(sf tsch.Slotframe) *tsch.Slotframe {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.SetSlotframe(sf)
}

// DeleteTSCHSlotframe removes a slotframe and its links.
func (c *Context) DeleteTSCHSlotframe(handle uint8) *tsch.Slotframe {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.DeleteSlotframe(handle)
}

// SetTSCHLink inserts or replaces a link in the schedule store.
func (c *Context) SetTSCHLink(l tsch.Link) (*tsch.Link, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.SetLink(l)
}

// DeleteTSCHLink removes a link from the schedule store.
func (c *Context) DeleteTSCHLink(handle uint16) *tsch.Link {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.DeleteLink(handle)
}

// ChannelOfOffset resolves a TSCH channel offset against the hopping
// sequence and the current ASN, per §4.1 get_current_channel: channel
// = channels[(offset + asn) % len(channels)].
func (c *Context) ChannelOfOffset(offset uint16, asn uint64) (uint16, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.hopping.Channels) == 0 {
		return 0, fmt.Errorf("%w: no hopping sequence configured", ErrNotSupported)
	}
	idx := (uint64(offset) + asn) % uint64(len(c.hopping.Channels))
	return uint16(c.hopping.Channels[idx]), nil
}

// FilterIdentity snapshots the addressing state frame.Filter needs.
func (c *Context) FilterIdentity() frame.FilterIdentity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return frame.FilterIdentity{PAN: c.pan, Short: c.short, Ext: c.ext, Role: c.role}
}

// writeIdentityLocked snapshots the addressing/security state frame's
// writer operations need. The returned value embeds pointers into the
// context's own sequence/frame-counter fields on purpose: writer
// operations mutate them as a side effect (advancing the sequence,
// incrementing the frame counter) and those mutations must be visible
// to subsequent WriteIdentity snapshots — so any caller that isn't
// already holding the context lock itself must wrap the write in
// WithLock.
func (c *Context) writeIdentityLocked() frame.WriteIdentity {
	return frame.WriteIdentity{
		PAN:          c.pan,
		Short:        c.short,
		Ext:          c.ext,
		AckDefault:   c.ackReq,
		Sequence:     &c.sequence,
		SecLevel:     c.sec.level,
		Session:      c.sec.session,
		FrameCounter: &c.sec.frameCounter,
	}
}

// WithLock runs fn with the context lock held and a WriteIdentity
// snapshot that shares the context's live sequence/frame-counter
// storage, so a single write under one lock acquisition both reads
// and advances interface state atomically. This is the seam between
// macctx and frame: frame never imports macctx, so every call into
// frame's writer operations must be wrapped here.
func (c *Context) WithLock(fn func(id frame.WriteIdentity) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fn(c.writeIdentityLocked())
}

// Radio returns the interface's driver collaborator.
func (c *Context) Radio() driver.Radio {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.radio
}

// Clock returns the interface's net-time reference.
func (c *Context) Clock() *nettime.Reference {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clock
}

// Schedule returns the interface's active-link selector, backed by
// the context's own schedule store.
func (c *Context) Schedule() *tsch.Schedule {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.schedule
}

// SecuritySettings returns the interface's configured security level
// and AEAD session, the narrow read an incoming-frame validate/decrypt
// path (§4.3, §9.2.5) needs without taking on macctx's full write
// surface.
func (c *Context) SecuritySettings() (security.Level, *security.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sec.level, c.sec.session
}

// EnhBeaconSchedule assembles the nested-IE input CreateEnhBeacon
// needs from the current schedule store and hopping sequence, per
// §4.1: a TSCH Slotframe-and-Link IE enumerating every slotframe whose
// Advertise flag is set, each carrying only its Advertising links, plus
// the Synchronization IE's ASN (the caller's current slot, so a
// receiver can join the network's absolute slot numbering) and the
// hopping sequence. fullTimeslot/fullHopping select each IE's wire form
// independently, the way a first-ever beacon after a hopping-sequence
// change needs the full Channel Hopping IE but can keep advertising
// the already-known timeslot template in its short form.
func (c *Context) EnhBeaconSchedule(asn uint64, fullTimeslot, fullHopping bool, timeslot ie.Timeslot) (frame.EnhBeaconSchedule, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var slotframes []ie.SlotframeDescriptor
	for _, sf := range c.store.Slotframes() {
		if !sf.Advertise {
			continue
		}
		desc := ie.SlotframeDescriptor{Handle: sf.Handle, Size: sf.Size}
		for _, l := range sf.Links() {
			if !l.Advertising {
				continue
			}
			desc.Links = append(desc.Links, ie.LinkInfo{
				Timeslot:      l.Timeslot,
				ChannelOffset: l.ChannelOffset,
				Options:       slotframeLinkOptions(l),
			})
		}
		slotframes = append(slotframes, desc)
	}
	return frame.EnhBeaconSchedule{
		Sync:         ie.Synchronization{ASN: asn, JoinMetric: 0},
		Timeslot:     timeslot,
		FullTimeslot: fullTimeslot,
		Slotframes:   slotframes,
		ChannelHopping: ie.ChannelHopping{
			Page:             c.hopping.Page,
			NumberOfChannels: uint8(len(c.hopping.Channels)),
			SequenceLength:   uint8(len(c.hopping.Channels)),
			Channels:         c.hopping.Channels,
		},
		FullHopping: fullHopping,
	}, nil
}

func slotframeLinkOptions(l *tsch.Link) uint8 {
	var opts uint8
	if l.TX {
		opts |= 0x01
	}
	if l.RX {
		opts |= 0x02
	}
	if l.Shared {
		opts |= 0x04
	}
	if l.Timekeeping {
		opts |= 0x08
	}
	return opts
}
