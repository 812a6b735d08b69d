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

import "github.com/go154/mac154/ie"

// MPDU is a parsed MAC frame: a non-owning snapshot over the packet
// buffer it was parsed from (§3 "Parsed frame", §9 "Raw packet pointers
// in parsed frames"). It must not outlive the buffer it points into.
type MPDU struct {
	Control  Control
	Sequence uint8 // valid iff Control.HasSequenceNumber

	HasDstPAN bool
	DstPAN    PANID
	Dst       Addr

	HasSrcPAN bool
	SrcPAN    PANID
	Src       Addr

	HasAux bool
	Aux    AuxSecurityHeader

	HeaderIEs []ie.HeaderIE

	// PayloadIEPresent mirrors Control.IEPresent && an HT1 terminator was
	// seen; ParsePayload fills PayloadIEs/FramePayload from MACPayload.
	PayloadIEPresent bool
	PayloadIEs       []ie.PayloadIE

	// MACPayload is everything after the header (including payload IEs,
	// if any). FramePayload is MACPayload with the payload IE section
	// stripped off; it is only valid after ParsePayload runs.
	MACPayload   []byte
	FramePayload []byte

	// Variant is set by ParsePayload once the frame's payload has been
	// interpreted according to its type.
	Variant Variant
}

// Variant carries the type-specific decoded payload of an MPDU.
type Variant struct {
	Beacon  *BeaconPayload
	MACCmd  *MACCommandPayload
}

// BeaconPayload is the pre-2015 beacon body, §4.1 "beacon (pre-2015) is
// decoded with GTS descriptor count and PAS specification".
type BeaconPayload struct {
	GTSDescriptorCount uint8
	PendingShortAddrs  []ShortAddr
	PendingExtAddrs    []ExtAddr
}

// CFI is the Command Frame Identifier, first byte of a MAC command
// payload, §7.5.
type CFI uint8

const (
	CFIAssociationRequest    CFI = 0x01
	CFIAssociationResponse   CFI = 0x02
	CFIDisassociation        CFI = 0x03
	CFIDataRequest           CFI = 0x04
	CFIOrphanNotification    CFI = 0x06
	CFIBeaconRequest         CFI = 0x07
)

// MACCommandPayload is the decoded MAC command body.
type MACCommandPayload struct {
	CFI  CFI
	Body []byte
}
