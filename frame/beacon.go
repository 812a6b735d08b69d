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

// EnhBeaconSchedule is the schedule/timing snapshot the caller (which
// holds the TSCH context lock) assembles for CreateEnhBeacon. Keeping
// this package from reaching into a schedule store directly is what
// keeps frame a leaf of the TSCH packages, not the other way around.
type EnhBeaconSchedule struct {
	Sync           ie.Synchronization
	Timeslot       ie.Timeslot
	FullTimeslot   bool
	Slotframes     []ie.SlotframeDescriptor
	ChannelHopping ie.ChannelHopping
	FullHopping    bool
}

// CreateEnhBeacon assembles a 2015+ enhanced beacon payload: TSCH
// Synchronization, Timeslot, Slotframe-and-Link, and Channel Hopping
// nested IEs inside one MLME Payload IE, §4.1 create_enh_beacon.
// sched.FullTimeslot and sched.FullHopping each independently select the
// full (vs. shortened) wire form for their own IE — a node advertising a
// custom timeslot template still only needs the full Channel Hopping IE
// the first time a new hopping sequence is announced.
func CreateEnhBeacon(id WriteIdentity, sched EnhBeaconSchedule) ([]byte, error) {
	var nested []ie.NestedIE

	nested = append(nested, ie.NestedIE{
		SubID:   ie.NestedTSCHSynchronization,
		Content: sched.Sync.MarshalContent(),
	})

	var tsContent []byte
	if sched.FullTimeslot {
		tsContent = sched.Timeslot.MarshalFullContent()
	} else {
		tsContent = sched.Timeslot.MarshalShortContent()
	}
	nested = append(nested, ie.NestedIE{SubID: ie.NestedTSCHTimeslot, Content: tsContent})

	sl := ie.SlotframeLink{Slotframes: sched.Slotframes}
	slContent, err := sl.MarshalContent()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	nested = append(nested, ie.NestedIE{SubID: ie.NestedTSCHSlotframeLink, Content: slContent})

	var chContent []byte
	if sched.FullHopping {
		chContent, err = sched.ChannelHopping.MarshalFullContent()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	} else {
		chContent = sched.ChannelHopping.MarshalShortContent()
	}
	nested = append(nested, ie.NestedIE{SubID: ie.NestedChannelHopping, Content: chContent})

	nestedTotal := 0
	for _, n := range nested {
		nestedTotal += 2 + len(n.Content) // each nested IE's own 2-byte header
	}
	mlmeContent := make([]byte, nestedTotal)
	pos := 0
	for _, n := range nested {
		written, err := n.MarshalTo(mlmeContent[pos:])
		if err != nil {
			return nil, err
		}
		pos += written
	}

	payloadIE := ie.PayloadIE{Group: ie.GroupMLME, Content: mlmeContent}
	term := ie.PayloadIE{Group: ie.GroupPayloadTermination}

	payloadLen := 2 + len(mlmeContent) + 2 // MLME IE header+content, then termination IE
	payload := make([]byte, payloadLen)
	n, err := payloadIE.MarshalTo(payload)
	if err != nil {
		return nil, err
	}
	if _, err := term.MarshalTo(payload[n:]); err != nil {
		return nil, err
	}

	ctl := Control{
		FrameType:         TypeBeacon,
		Version:           Version2015,
		HasSequenceNumber: true,
		IEPresent:         true,
	}
	ht1 := ie.HeaderIE{ElementID: ie.HeaderIDHT1}

	buf := make([]byte, 2+1+2+payloadLen)
	binary.LittleEndian.PutUint16(buf, ctl.encode())
	buf[2] = *id.Sequence
	*id.Sequence++
	pos = 3
	n, err = ht1.MarshalTo(buf[pos:])
	if err != nil {
		return nil, err
	}
	pos += n
	copy(buf[pos:], payload)
	return buf, nil
}
