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

package frame

// Type is the 3-bit MAC frame type, §7.2.2.1 Table 7-1.
type Type uint8

const (
	TypeBeacon     Type = 0
	TypeData       Type = 1
	TypeAck        Type = 2
	TypeMACCommand Type = 3
	// 4-7 are reserved for the subset of the standard this package
	// implements (multipurpose/fragment/extended frames are out of
	// scope).
)

func (t Type) valid() bool {
	return t <= TypeMACCommand
}

func (t Type) String() string {
	switch t {
	case TypeBeacon:
		return "beacon"
	case TypeData:
		return "data"
	case TypeAck:
		return "ack"
	case TypeMACCommand:
		return "mac-command"
	}
	return "reserved"
}

// Version is the 2-bit frame version, §7.2.2.1 Table 7-2. This package
// only ever writes Version2006 (the pre-2015 baseline; 802.15.4-2003 is
// never produced, though a received frame carrying that wire value is
// still accepted as pre-2015) and Version2015.
type Version uint8

const (
	Version2006 Version = 0
	Version2003 Version = 1
	Version2015 Version = 2
	// 3 is reserved.
)

func (v Version) valid() bool {
	return v <= Version2015
}

// AddrMode is the 2-bit addressing mode, §7.2.2.1 Table 7-3.
type AddrMode uint8

const (
	AddrModeNone     AddrMode = 0
	AddrModeReserved AddrMode = 1
	AddrModeShort    AddrMode = 2
	AddrModeExtended AddrMode = 3
)

func (m AddrMode) valid() bool {
	return m != AddrModeReserved
}

// addrLen returns the on-wire length in bytes of an address in this mode.
func (m AddrMode) addrLen() int {
	switch m {
	case AddrModeShort:
		return 2
	case AddrModeExtended:
		return 8
	default:
		return 0
	}
}

// on-wire bit layout of the 16-bit frame control field, little-endian.
const (
	fcTypeShift           = 0
	fcTypeMask            = 0x7
	fcSecurityEnabledBit  = 1 << 3
	fcFramePendingBit     = 1 << 4
	fcAckRequestBit       = 1 << 5
	fcPanIDCompressionBit = 1 << 6
	fcSeqSuppressionBit   = 1 << 8
	fcIEPresentBit        = 1 << 9
	fcDstAddrModeShift    = 10
	fcDstAddrModeMask     = 0x3
	fcVersionShift        = 12
	fcVersionMask         = 0x3
	fcSrcAddrModeShift    = 14
	fcSrcAddrModeMask     = 0x3
)

// Control is the version-independent decoded form of the frame control
// field (§7.2.2.1). It is always built/read through decodeRawControl/encode, never
// by reinterpreting raw bits directly.
type Control struct {
	FrameType          Type
	Version            Version
	DstAddrMode        AddrMode
	SrcAddrMode        AddrMode
	HasDstPAN          bool
	HasSrcPAN          bool
	SecurityEnabled    bool
	FramePending       bool
	AckRequested       bool
	HasSequenceNumber  bool
	IEPresent          bool
	PANIDCompression   bool
}

// decodeRawControl decodes a raw 16-bit frame control word into its
// fields, minus the HasDstPAN/HasSrcPAN derivation which deriveAddressing
// performs once the version is known.
func decodeRawControl(raw uint16) Control {
	return Control{
		FrameType:        Type(raw >> fcTypeShift & fcTypeMask),
		Version:          Version(raw >> fcVersionShift & fcVersionMask),
		DstAddrMode:      AddrMode(raw >> fcDstAddrModeShift & fcDstAddrModeMask),
		SrcAddrMode:      AddrMode(raw >> fcSrcAddrModeShift & fcSrcAddrModeMask),
		SecurityEnabled:  raw&fcSecurityEnabledBit != 0,
		FramePending:     raw&fcFramePendingBit != 0,
		AckRequested:     raw&fcAckRequestBit != 0,
		PANIDCompression: raw&fcPanIDCompressionBit != 0,
		IEPresent:        raw&fcIEPresentBit != 0,
		// sequence-number-suppression is inverted into HasSequenceNumber
		// here; ParseMHR rejects suppression on pre-2015 versions.
		HasSequenceNumber: raw&fcSeqSuppressionBit == 0,
	}
}

// encode packs Control back into the 16-bit on-wire word.
func (c Control) encode() uint16 {
	var raw uint16
	raw |= uint16(c.FrameType) & fcTypeMask << fcTypeShift
	raw |= uint16(c.Version) & fcVersionMask << fcVersionShift
	raw |= uint16(c.DstAddrMode) & fcDstAddrModeMask << fcDstAddrModeShift
	raw |= uint16(c.SrcAddrMode) & fcSrcAddrModeMask << fcSrcAddrModeShift
	if c.SecurityEnabled {
		raw |= fcSecurityEnabledBit
	}
	if c.FramePending {
		raw |= fcFramePendingBit
	}
	if c.AckRequested {
		raw |= fcAckRequestBit
	}
	if c.PANIDCompression {
		raw |= fcPanIDCompressionBit
	}
	if c.IEPresent {
		raw |= fcIEPresentBit
	}
	if !c.HasSequenceNumber {
		raw |= fcSeqSuppressionBit
	}
	return raw
}
