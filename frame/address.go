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

import "encoding/binary"

// PANID is a 16-bit PAN identifier, host byte order once decoded.
type PANID uint16

// BroadcastPANID is the reserved "broadcast"/"not present" PAN id.
const BroadcastPANID PANID = 0xFFFF

// ShortAddr is a 16-bit short address, host byte order once decoded.
type ShortAddr uint16

const (
	// AddrNotAssociated marks an interface that has not yet associated.
	AddrNotAssociated ShortAddr = 0xFFFF
	// AddrNoShortAddr marks an interface associated but using only its
	// extended address.
	AddrNoShortAddr ShortAddr = 0xFFFE
	// BroadcastShortAddr is the reserved broadcast short address.
	BroadcastShortAddr ShortAddr = 0xFFFF
)

func (a ShortAddr) isBroadcast() bool { return a == BroadcastShortAddr }

// ExtAddr is a 64-bit extended address, stored in the little-endian
// on-wire byte order the standard uses for address fields.
type ExtAddr [8]byte

// BroadcastExtAddr per §7.2.1.3 (all-ones extended address).
var BroadcastExtAddr = ExtAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

func (a ExtAddr) isBroadcast() bool { return a == BroadcastExtAddr }

// Uint64 returns the extended address as a little-endian-decoded uint64,
// the natural form for nonce construction and comparisons.
func (a ExtAddr) Uint64() uint64 { return binary.LittleEndian.Uint64(a[:]) }

// ExtAddrFromUint64 builds an ExtAddr from a native uint64, writing it
// little-endian as the wire format requires.
func ExtAddrFromUint64(v uint64) ExtAddr {
	var a ExtAddr
	binary.LittleEndian.PutUint64(a[:], v)
	return a
}

// Addr is an addressing-mode-tagged address, used wherever a frame
// field may be absent, short or extended.
type Addr struct {
	Mode  AddrMode
	Short ShortAddr
	Ext   ExtAddr
}

// NoAddr is the absent address (AddrModeNone).
var NoAddr = Addr{Mode: AddrModeNone}

// ShortAddress builds a short-mode Addr.
func ShortAddress(a ShortAddr) Addr { return Addr{Mode: AddrModeShort, Short: a} }

// ExtAddress builds an extended-mode Addr.
func ExtAddress(a ExtAddr) Addr { return Addr{Mode: AddrModeExtended, Ext: a} }

// IsBroadcast reports whether the address is the broadcast address for
// its mode. A None-mode address is never broadcast.
func (a Addr) IsBroadcast() bool {
	switch a.Mode {
	case AddrModeShort:
		return a.Short.isBroadcast()
	case AddrModeExtended:
		return a.Ext.isBroadcast()
	default:
		return false
	}
}

// Equal reports whether two addresses have the same mode and value.
func (a Addr) Equal(b Addr) bool {
	if a.Mode != b.Mode {
		return false
	}
	switch a.Mode {
	case AddrModeShort:
		return a.Short == b.Short
	case AddrModeExtended:
		return a.Ext == b.Ext
	default:
		return true
	}
}
