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

package ie

import (
	"encoding/binary"
	"fmt"
)

// GroupID identifies a Payload IE group, §7.4.3.
type GroupID uint8

const (
	GroupMLME               GroupID = 0x1
	GroupPayloadTermination GroupID = 0xf
)

const payloadIEHeaderSize = 2

// PayloadIE is one parsed Payload IE.
type PayloadIE struct {
	Group   GroupID
	Content []byte
}

func payloadIEHeaderWord(group GroupID, length int) uint16 {
	// {length:11, group-id:4, type:1=payload(1)}, little-endian.
	return uint16(length&0x7ff) | uint16(group&0xf)<<11 | 0x8000
}

// MarshalTo writes the IE header followed by Content.
func (p PayloadIE) MarshalTo(b []byte) (int, error) {
	n := payloadIEHeaderSize + len(p.Content)
	if len(b) < n {
		return 0, fmt.Errorf("%w: buffer too small for payload IE group 0x%x", ErrBadFormat, p.Group)
	}
	if len(p.Content) > 0x7ff {
		return 0, fmt.Errorf("%w: payload IE content too long (%d)", ErrBadFormat, len(p.Content))
	}
	binary.LittleEndian.PutUint16(b, payloadIEHeaderWord(p.Group, len(p.Content)))
	copy(b[payloadIEHeaderSize:], p.Content)
	return n, nil
}

// ParsePayloadIEs walks b decoding Payload IEs until the Payload
// Termination group or end of buffer. Unsupported groups are skipped by
// consuming their declared length, per §4.2.
func ParsePayloadIEs(b []byte) (ies []PayloadIE, consumed int, err error) {
	pos := 0
	for pos < len(b) {
		if len(b)-pos < payloadIEHeaderSize {
			return nil, 0, fmt.Errorf("%w: truncated payload IE", ErrBadFormat)
		}
		word := binary.LittleEndian.Uint16(b[pos:])
		length := int(word & 0x7ff)
		group := GroupID(word >> 11 & 0xf)
		pos += payloadIEHeaderSize
		if group == GroupPayloadTermination {
			return ies, pos, nil
		}
		if len(b)-pos < length {
			return nil, 0, fmt.Errorf("%w: payload IE group 0x%x declares %d bytes, only %d remain", ErrBadFormat, group, length, len(b)-pos)
		}
		ies = append(ies, PayloadIE{Group: group, Content: b[pos : pos+length]})
		pos += length
	}
	return ies, pos, nil
}

// NestedSubID identifies a nested IE within the MLME payload IE,
// §7.4.3.2 (TSCH nested IEs).
type NestedSubID uint8

const (
	NestedTSCHSynchronization NestedSubID = 0x1a
	NestedTSCHSlotframeLink   NestedSubID = 0x1b
	NestedTSCHTimeslot        NestedSubID = 0x1c
	NestedChannelHopping      NestedSubID = 0x09
)

// long reports whether a sub-id uses the long nested-IE format
// (11-bit length, 4-bit sub-id) as opposed to the short format (8-bit
// length, 7-bit sub-id). Only the full Channel Hopping IE uses the long
// format; the TSCH IEs, Slotframe-and-Link included, use the short
// format and so carry at most 255 content bytes.
func (id NestedSubID) long() bool {
	return id == NestedChannelHopping
}

const nestedIEHeaderSize = 2

// NestedIE is one parsed nested IE inside an MLME Payload IE.
type NestedIE struct {
	SubID   NestedSubID
	Content []byte
}

func nestedIEHeaderWord(id NestedSubID, length int) uint16 {
	if id.long() {
		// long format: bit15=0, length bits0-10, sub-id bits11-14
		return uint16(length&0x7ff) | uint16(id&0xf)<<11
	}
	// short format: bit15=1, length bits0-7, sub-id bits8-14
	return uint16(length&0xff) | uint16(id&0x7f)<<8 | 0x8000
}

// MarshalTo writes the nested IE header followed by Content.
func (n NestedIE) MarshalTo(b []byte) (int, error) {
	total := nestedIEHeaderSize + len(n.Content)
	if len(b) < total {
		return 0, fmt.Errorf("%w: buffer too small for nested IE 0x%x", ErrBadFormat, n.SubID)
	}
	maxLen := 0xff
	if n.SubID.long() {
		maxLen = 0x7ff
	}
	if len(n.Content) > maxLen {
		return 0, fmt.Errorf("%w: nested IE 0x%x content too long (%d)", ErrBadFormat, n.SubID, len(n.Content))
	}
	binary.LittleEndian.PutUint16(b, nestedIEHeaderWord(n.SubID, len(n.Content)))
	copy(b[nestedIEHeaderSize:], n.Content)
	return total, nil
}

// ParseNestedIEs walks the content of an MLME Payload IE decoding each
// nested IE until the buffer is exhausted. Invariant: the remaining
// length is always >= 0 (§4.2).
func ParseNestedIEs(b []byte) (ies []NestedIE, err error) {
	pos := 0
	for pos < len(b) {
		if len(b)-pos < nestedIEHeaderSize {
			return nil, fmt.Errorf("%w: truncated nested IE", ErrBadFormat)
		}
		word := binary.LittleEndian.Uint16(b[pos:])
		var length int
		var subID NestedSubID
		if word&0x8000 != 0 {
			length = int(word & 0xff)
			subID = NestedSubID(word >> 8 & 0x7f)
		} else {
			length = int(word & 0x7ff)
			subID = NestedSubID(word >> 11 & 0xf)
		}
		pos += nestedIEHeaderSize
		if len(b)-pos < length {
			return nil, fmt.Errorf("%w: nested IE 0x%x declares %d bytes, only %d remain", ErrBadFormat, subID, length, len(b)-pos)
		}
		ies = append(ies, NestedIE{SubID: subID, Content: b[pos : pos+length]})
		pos += length
	}
	if pos != len(b) {
		return nil, fmt.Errorf("%w: %d trailing bytes after nested IEs", ErrBadFormat, len(b)-pos)
	}
	return ies, nil
}
