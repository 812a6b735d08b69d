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

package tsch

import "github.com/go154/mac154/frame"

// NeighborQueueDepth reports how many frames are currently queued for a
// given link-layer neighbor. The link selector calls this to break ties
// between TX links to different neighbors in the same timeslot; the
// state machine owns the actual per-neighbor queues, so the dependency
// runs through a function value rather than an import.
type NeighborQueueDepth func(frame.Addr) int

// ActiveLink is the result of GetNextActiveLink: the link to operate at
// the current ASN, an optional backup RX link covering the same slot,
// and how far in the future that slot is.
type ActiveLink struct {
	Primary         *Link
	Backup          *Link
	OffsetTimeslots uint32
	OffsetNS        uint64
}

// Schedule pairs a schedule Store with the inputs the selector needs
// that the store itself doesn't own: per-neighbor queue depth and the
// active timeslot length.
type Schedule struct {
	Store            *Store
	QueueDepth       NeighborQueueDepth
	TimeslotLengthUS uint32
}

// linkCompare implements the §4.5 tie-break rules, in the same
// cascading-rule style as a best-master-clock comparator: each rule
// returns as soon as it distinguishes the two links, falling through to
// the next only on an exact tie.
//
//  1. a TX link beats an RX-only link.
//  2. among two TX links, the lower slotframe handle wins.
//  3. two links to the same neighbor, or two RX-only links: lower link
//     handle wins.
//  4. two TX links to different neighbors: deeper queue wins, ties
//     broken by link handle.
//
// Returns >0 if a wins, <0 if b wins, 0 only when a and b are the same
// link (handles are globally unique, so an exact tie never otherwise
// occurs).
func linkCompare(a, b *Link, queueDepth NeighborQueueDepth) int {
	if a.Handle == b.Handle {
		return 0
	}
	if a.TX != b.TX {
		if a.TX {
			return 1
		}
		return -1
	}
	if !a.TX {
		return compareHandle(a.Handle, b.Handle)
	}
	if a.SlotframeHandle != b.SlotframeHandle {
		if a.SlotframeHandle < b.SlotframeHandle {
			return 1
		}
		return -1
	}
	if a.Addr.Equal(b.Addr) {
		return compareHandle(a.Handle, b.Handle)
	}
	qa, qb := queueDepth(a.Addr), queueDepth(b.Addr)
	if qa != qb {
		if qa > qb {
			return 1
		}
		return -1
	}
	return compareHandle(a.Handle, b.Handle)
}

func compareHandle(a, b uint16) int {
	if a < b {
		return 1
	}
	return -1
}

// offsetOf returns how many timeslots from cur until ts next occurs in
// a slotframe of the given size, wrapping forward. ts == cur yields 0:
// the link is active in the current slot.
func offsetOf(ts, cur, size uint16) uint32 {
	if ts >= cur {
		return uint32(ts - cur)
	}
	return uint32(size) - uint32(cur) + uint32(ts)
}

// GetNextActiveLink walks every slotframe in the store, §4.5
// get_next_active_link: for each, it computes the current timeslot as
// asn mod slotframe.size and finds the link with the smallest offset to
// its next occurrence, breaking ties with linkCompare across
// slotframes. The backup link is the lowest-slotframe-handle RX link
// sharing the winning offset, excluding the primary itself. Returns
// false if the store has no slotframes (or none with a nonzero size).
func (s *Schedule) GetNextActiveLink(asn uint64) (ActiveLink, bool) {
	var best *Link
	var bestOffset uint32
	found := false

	for _, sf := range s.Store.Slotframes() {
		if sf.Size == 0 {
			continue
		}
		cur := uint16(asn % uint64(sf.Size))
		for _, l := range sf.links {
			off := offsetOf(l.Timeslot, cur, sf.Size)
			switch {
			case !found || off < bestOffset:
				best, bestOffset, found = l, off, true
			case off == bestOffset && linkCompare(l, best, s.QueueDepth) > 0:
				best = l
			}
		}
	}
	if !found {
		return ActiveLink{}, false
	}

	backup := s.findBackup(best, bestOffset, asn)
	return ActiveLink{
		Primary:         best,
		Backup:          backup,
		OffsetTimeslots: bestOffset,
		OffsetNS:        uint64(bestOffset) * uint64(s.TimeslotLengthUS) * 1000,
	}, true
}

func (s *Schedule) findBackup(primary *Link, primaryOffset uint32, asn uint64) *Link {
	var backup *Link
	for _, sf := range s.Store.Slotframes() {
		if sf.Size == 0 {
			continue
		}
		cur := uint16(asn % uint64(sf.Size))
		for _, l := range sf.links {
			if l.Handle == primary.Handle || !l.RX {
				continue
			}
			if offsetOf(l.Timeslot, cur, sf.Size) != primaryOffset {
				continue
			}
			if backup == nil || l.SlotframeHandle < backup.SlotframeHandle ||
				(l.SlotframeHandle == backup.SlotframeHandle && l.Handle < backup.Handle) {
				backup = l
			}
		}
	}
	return backup
}
