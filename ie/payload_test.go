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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayloadIERoundTrip(t *testing.T) {
	p := PayloadIE{Group: GroupMLME, Content: []byte{1, 2, 3, 4}}
	b := make([]byte, 16)
	n, err := p.MarshalTo(b)
	require.NoError(t, err)

	ies, consumed, err := ParsePayloadIEs(b[:n])
	require.NoError(t, err)
	assert.Equal(t, n, consumed)
	require.Len(t, ies, 1)
	assert.Equal(t, p.Group, ies[0].Group)
	assert.Equal(t, p.Content, ies[0].Content)
}

func TestPayloadIEStopsAtTermination(t *testing.T) {
	b := make([]byte, 32)
	n1, err := (PayloadIE{Group: GroupMLME, Content: []byte{9}}).MarshalTo(b)
	require.NoError(t, err)
	n2, err := (PayloadIE{Group: GroupPayloadTermination}).MarshalTo(b[n1:])
	require.NoError(t, err)

	ies, consumed, err := ParsePayloadIEs(b[:n1+n2])
	require.NoError(t, err)
	assert.Equal(t, n1+n2, consumed)
	require.Len(t, ies, 1)
}

func TestNestedIERoundTrip(t *testing.T) {
	n1 := NestedIE{SubID: NestedTSCHSynchronization, Content: []byte{1, 2, 3, 4, 5, 6}}
	n2 := NestedIE{SubID: NestedTSCHTimeslot, Content: []byte{0x01}}
	b := make([]byte, 32)
	off, err := n1.MarshalTo(b)
	require.NoError(t, err)
	off2, err := n2.MarshalTo(b[off:])
	require.NoError(t, err)

	ies, err := ParseNestedIEs(b[:off+off2])
	require.NoError(t, err)
	require.Len(t, ies, 2)
	assert.Equal(t, n1.SubID, ies[0].SubID)
	assert.Equal(t, n1.Content, ies[0].Content)
	assert.Equal(t, n2.SubID, ies[1].SubID)
	assert.Equal(t, n2.Content, ies[1].Content)
}

func TestNestedIELongFormat(t *testing.T) {
	content := make([]byte, 300)
	n := NestedIE{SubID: NestedChannelHopping, Content: content}
	b := make([]byte, 320)
	off, err := n.MarshalTo(b)
	require.NoError(t, err)

	ies, err := ParseNestedIEs(b[:off])
	require.NoError(t, err)
	require.Len(t, ies, 1)
	assert.Equal(t, NestedChannelHopping, ies[0].SubID)
	assert.Len(t, ies[0].Content, 300)
}

func TestSynchronizationRoundTrip(t *testing.T) {
	s := Synchronization{ASN: 0x1122334455, JoinMetric: 7}
	content := s.MarshalContent()
	got, err := ParseSynchronization(content)
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestSlotframeLinkRoundTrip(t *testing.T) {
	sl := SlotframeLink{Slotframes: []SlotframeDescriptor{
		{Handle: 0, Size: 13, Links: []LinkInfo{
			{Timeslot: 0, ChannelOffset: 0, Options: 0x1},
			{Timeslot: 1, ChannelOffset: 0, Options: 0x2},
		}},
		{Handle: 1, Size: 5, Links: nil},
	}}
	content, err := sl.MarshalContent()
	require.NoError(t, err)
	got, err := ParseSlotframeLink(content)
	require.NoError(t, err)
	assert.Equal(t, sl, got)
}

func TestSlotframeLinkTruncated(t *testing.T) {
	_, err := ParseSlotframeLink([]byte{1, 0, 13, 0, 2 /* claims 2 links but none follow */})
	assert.ErrorIs(t, err, ErrBadFormat)
}

func TestTimeslotRoundTrip(t *testing.T) {
	short := Timeslot{ID: 0}
	got, err := ParseTimeslot(short.MarshalShortContent())
	require.NoError(t, err)
	assert.Equal(t, short, got)

	full := Timeslot{ID: 0, CCAOffset: 1800, TXOffset: 2120, RXOffset: 1020, RXAckDelay: 800,
		TXAckDelay: 1000, RXWait: 2200, AckWait: 400, RXTXOffset: 192, MaxAck: 2400, MaxTX: 4256, Length: 10000}
	got, err = ParseTimeslot(full.MarshalFullContent())
	require.NoError(t, err)
	assert.Equal(t, full, got)
}

func TestChannelHoppingRoundTrip(t *testing.T) {
	short := ChannelHopping{ID: 0}
	got, err := ParseChannelHopping(short.MarshalShortContent())
	require.NoError(t, err)
	assert.Equal(t, short, got)

	full := ChannelHopping{ID: 0, Page: 0, NumberOfChannels: 16, PhyBitmap: 0x07fff800,
		SequenceLength: 4, Channels: []byte{20, 25, 26, 15}, CurrentHop: 0}
	content, err := full.MarshalFullContent()
	require.NoError(t, err)
	got, err = ParseChannelHopping(content)
	require.NoError(t, err)
	assert.Equal(t, full, got)
}

func TestChannelHoppingLengthMismatch(t *testing.T) {
	full := ChannelHopping{SequenceLength: 4, Channels: []byte{20, 25, 26}}
	_, err := full.MarshalFullContent()
	assert.ErrorIs(t, err, ErrBadFormat)
}
