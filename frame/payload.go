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
	"fmt"

	"github.com/go154/mac154/ie"
)

// ParsePayload interprets m.MACPayload according to m.Control.FrameType
// and frame version, per §4.1 parse_payload. It splits out Payload IEs
// (if present) into m.FramePayload/m.PayloadIEs and decodes the variant
// body. m is mutated in place; the bool reports whether the payload was
// accepted.
func ParsePayload(m *MPDU) (bool, error) {
	payload := m.MACPayload
	if m.PayloadIEPresent {
		ies, consumed, err := ie.ParsePayloadIEs(payload)
		if err != nil {
			return false, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		m.PayloadIEs = ies
		m.FramePayload = payload[consumed:]
	} else {
		m.FramePayload = payload
	}

	switch m.Control.FrameType {
	case TypeData:
		if len(m.FramePayload) == 0 {
			return false, fmt.Errorf("%w: data frame with empty payload", ErrInvalid)
		}
	case TypeAck:
		if len(m.FramePayload) != 0 {
			return false, fmt.Errorf("%w: ack with non-empty payload", ErrInvalid)
		}
	case TypeBeacon:
		// A 2015+ enhanced beacon carries no legacy superframe/GTS/PAS
		// body — its content lives entirely in the payload IEs already
		// captured above.
		if m.Control.Version != Version2015 {
			bp, err := parseBeaconPayload(m.FramePayload)
			if err != nil {
				return false, err
			}
			m.Variant.Beacon = &bp
		}
	case TypeMACCommand:
		cmd, err := parseMACCommandPayload(m.FramePayload, m.Dst, m.Src)
		if err != nil {
			return false, err
		}
		m.Variant.MACCmd = &cmd
	}
	return true, nil
}

func parseBeaconPayload(b []byte) (BeaconPayload, error) {
	if len(b) < 3 {
		return BeaconPayload{}, fmt.Errorf("%w: beacon payload too short", ErrInvalid)
	}
	// superframe spec (2B) is not re-derived here; the GTS spec byte
	// follows it and carries the descriptor count in its low 3 bits.
	bp := BeaconPayload{GTSDescriptorCount: b[2] & 0x7}
	pos := 3
	if bp.GTSDescriptorCount > 0 {
		pos += 1 + 3*int(bp.GTSDescriptorCount) // GTS directions + descriptors
	}
	if pos+1 > len(b) {
		return bp, nil
	}
	pas := b[pos]
	numShort := int(pas & 0x7)
	numExt := int(pas >> 4 & 0x7)
	pos++
	for i := 0; i < numShort; i++ {
		if pos+2 > len(b) {
			return BeaconPayload{}, fmt.Errorf("%w: truncated pending short address list", ErrInvalid)
		}
		bp.PendingShortAddrs = append(bp.PendingShortAddrs, ShortAddr(uint16(b[pos])|uint16(b[pos+1])<<8))
		pos += 2
	}
	for i := 0; i < numExt; i++ {
		if pos+8 > len(b) {
			return BeaconPayload{}, fmt.Errorf("%w: truncated pending extended address list", ErrInvalid)
		}
		var e ExtAddr
		copy(e[:], b[pos:pos+8])
		bp.PendingExtAddrs = append(bp.PendingExtAddrs, e)
		pos += 8
	}
	return bp, nil
}

type cfiRule struct {
	bodyLen  int // -1 means any length is acceptable
	needsSrc AddrMode
	needsDst AddrMode // AddrModeReserved means "any"
	dstBroadcastOnly bool
}

var cfiRules = map[CFI]cfiRule{
	CFIAssociationRequest:  {bodyLen: 1, needsSrc: AddrModeExtended, needsDst: AddrModeReserved},
	CFIAssociationResponse: {bodyLen: 3, needsSrc: AddrModeExtended, needsDst: AddrModeExtended},
	CFIDisassociation:      {bodyLen: 1, needsSrc: AddrModeReserved, needsDst: AddrModeReserved},
	CFIDataRequest:         {bodyLen: 0, needsSrc: AddrModeReserved, needsDst: AddrModeReserved},
	CFIOrphanNotification:  {bodyLen: 0, needsSrc: AddrModeExtended, needsDst: AddrModeNone},
	CFIBeaconRequest:       {bodyLen: 0, needsSrc: AddrModeNone, needsDst: AddrModeShort, dstBroadcastOnly: true},
}

func parseMACCommandPayload(b []byte, dst, src Addr) (MACCommandPayload, error) {
	if len(b) < 1 {
		return MACCommandPayload{}, fmt.Errorf("%w: empty mac command payload", ErrInvalid)
	}
	cfi := CFI(b[0])
	cmd := MACCommandPayload{CFI: cfi, Body: b[1:]}
	rule, ok := cfiRules[cfi]
	if !ok {
		// unknown CFI: pass through without further validation, the
		// standard reserves room for vendor/future command ids.
		return cmd, nil
	}
	if rule.bodyLen >= 0 && len(cmd.Body) != rule.bodyLen {
		return MACCommandPayload{}, fmt.Errorf("%w: cfi 0x%02x expects body length %d, got %d", ErrInvalid, cfi, rule.bodyLen, len(cmd.Body))
	}
	if rule.needsSrc != AddrModeReserved && src.Mode != rule.needsSrc {
		return MACCommandPayload{}, fmt.Errorf("%w: cfi 0x%02x requires source addressing mode %v", ErrInvalid, cfi, rule.needsSrc)
	}
	if rule.needsDst != AddrModeReserved && dst.Mode != rule.needsDst {
		return MACCommandPayload{}, fmt.Errorf("%w: cfi 0x%02x requires destination addressing mode %v", ErrInvalid, cfi, rule.needsDst)
	}
	if rule.dstBroadcastOnly && !dst.IsBroadcast() {
		return MACCommandPayload{}, fmt.Errorf("%w: cfi 0x%02x requires a broadcast destination", ErrInvalid, cfi)
	}
	return cmd, nil
}
