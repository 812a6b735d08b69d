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

import (
	"encoding/binary"
	"fmt"

	"github.com/go154/mac154/ie"
)

// deriveAddressing applies the §7.2.2.6-style compatibility rule this
// package enforces uniformly across frame versions: pan-id-compression
// may only be set when both destination and source addresses are
// present, in which case the source PAN is considered identical to the
// destination PAN and omitted from the wire.
func deriveAddressing(dstMode, srcMode AddrMode, panIDCompression bool) (hasDstPAN, hasSrcPAN bool, err error) {
	dstPresent := dstMode != AddrModeNone
	srcPresent := srcMode != AddrModeNone
	if panIDCompression && !(dstPresent && srcPresent) {
		return false, false, fmt.Errorf("%w: pan-id-compression set without both addresses present", ErrInvalid)
	}
	switch {
	case !dstPresent && !srcPresent:
		return false, false, nil
	case dstPresent && !srcPresent:
		return true, false, nil
	case !dstPresent && srcPresent:
		return false, true, nil
	default: // both present
		if panIDCompression {
			return true, false, nil
		}
		return true, true, nil
	}
}

// ParseMHR decodes the MAC header of pkt, per §4.1 parse_mhr. pkt must
// be writable: a pre-2015 MAC command with FramePending set has that
// bit silently cleared in place, per the in-place repair rule.
func ParseMHR(pkt []byte) (MPDU, error) {
	if len(pkt) < MinMHRSize {
		return MPDU{}, fmt.Errorf("%w: mpdu shorter than %d bytes", ErrInvalid, MinMHRSize)
	}
	if len(pkt) > MTU {
		return MPDU{}, fmt.Errorf("%w: mpdu longer than %d bytes", ErrInvalid, MTU)
	}

	raw := binary.LittleEndian.Uint16(pkt)
	ctl := decodeRawControl(raw)
	if !ctl.FrameType.valid() {
		return MPDU{}, fmt.Errorf("%w: reserved frame type %d", ErrInvalid, ctl.FrameType)
	}
	if !ctl.Version.valid() {
		return MPDU{}, fmt.Errorf("%w: reserved frame version %d", ErrInvalid, ctl.Version)
	}
	if !ctl.DstAddrMode.valid() || !ctl.SrcAddrMode.valid() {
		return MPDU{}, fmt.Errorf("%w: reserved addressing mode", ErrInvalid)
	}

	pre2015 := ctl.Version != Version2015
	if pre2015 {
		if ctl.FrameType == TypeData && ctl.DstAddrMode == AddrModeNone && ctl.SrcAddrMode == AddrModeNone {
			return MPDU{}, fmt.Errorf("%w: pre-2015 data frame with no addressing", ErrInvalid)
		}
		if !ctl.HasSequenceNumber || ctl.IEPresent {
			return MPDU{}, fmt.Errorf("%w: sequence suppression/IE-present requires 2015+ version", ErrInvalid)
		}
	}
	if ctl.FrameType == TypeBeacon && ctl.DstAddrMode != AddrModeNone {
		return MPDU{}, fmt.Errorf("%w: beacon with a destination address", ErrInvalid)
	}

	hasDstPAN, hasSrcPAN, err := deriveAddressing(ctl.DstAddrMode, ctl.SrcAddrMode, ctl.PANIDCompression)
	if err != nil {
		return MPDU{}, err
	}
	ctl.HasDstPAN = hasDstPAN
	ctl.HasSrcPAN = hasSrcPAN

	// In-place repair: pre-2015 MAC command frames never carry a
	// meaningful frame-pending bit (§4.1).
	if pre2015 && ctl.FrameType == TypeMACCommand && ctl.FramePending {
		pkt[0] &^= fcFramePendingBit
		ctl.FramePending = false
	}

	m := MPDU{Control: ctl}
	pos := 2

	if ctl.HasSequenceNumber {
		if len(pkt)-pos < 1 {
			return MPDU{}, fmt.Errorf("%w: truncated before sequence number", ErrInvalid)
		}
		m.Sequence = pkt[pos]
		pos++
	}

	if hasDstPAN {
		if len(pkt)-pos < 2 {
			return MPDU{}, fmt.Errorf("%w: truncated before destination PAN", ErrInvalid)
		}
		m.HasDstPAN = true
		m.DstPAN = PANID(binary.LittleEndian.Uint16(pkt[pos:]))
		pos += 2
	}
	if ctl.DstAddrMode != AddrModeNone {
		n := ctl.DstAddrMode.addrLen()
		if len(pkt)-pos < n {
			return MPDU{}, fmt.Errorf("%w: truncated destination address", ErrInvalid)
		}
		m.Dst = addrFromWire(ctl.DstAddrMode, pkt[pos:pos+n])
		pos += n
	}

	if hasSrcPAN {
		if len(pkt)-pos < 2 {
			return MPDU{}, fmt.Errorf("%w: truncated before source PAN", ErrInvalid)
		}
		m.HasSrcPAN = true
		m.SrcPAN = PANID(binary.LittleEndian.Uint16(pkt[pos:]))
		pos += 2
	}
	if ctl.SrcAddrMode != AddrModeNone {
		n := ctl.SrcAddrMode.addrLen()
		if len(pkt)-pos < n {
			return MPDU{}, fmt.Errorf("%w: truncated source address", ErrInvalid)
		}
		m.Src = addrFromWire(ctl.SrcAddrMode, pkt[pos:pos+n])
		pos += n
	}

	if ctl.SecurityEnabled {
		aux, n, err := unmarshalAuxSecurityHeader(pkt[pos:])
		if err != nil {
			return MPDU{}, err
		}
		m.HasAux = true
		m.Aux = aux
		pos += n
	}

	if ctl.IEPresent {
		ies, payloadPresent, n, err := ie.ParseHeaderIEs(pkt[pos:])
		if err != nil {
			return MPDU{}, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		m.HeaderIEs = ies
		m.PayloadIEPresent = payloadPresent
		pos += n
	}

	m.MACPayload = pkt[pos:]
	return m, nil
}

func addrFromWire(mode AddrMode, b []byte) Addr {
	switch mode {
	case AddrModeShort:
		return Addr{Mode: AddrModeShort, Short: ShortAddr(binary.LittleEndian.Uint16(b))}
	case AddrModeExtended:
		var e ExtAddr
		copy(e[:], b)
		return Addr{Mode: AddrModeExtended, Ext: e}
	default:
		return NoAddr
	}
}
