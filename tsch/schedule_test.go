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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go154/mac154/frame"
)

func TestSetSlotframeInsertsInHandleOrder(t *testing.T) {
	st := NewStore()
	st.SetSlotframe(Slotframe{Handle: 5, Size: 13})
	st.SetSlotframe(Slotframe{Handle: 1, Size: 7})
	st.SetSlotframe(Slotframe{Handle: 3, Size: 11})

	var handles []uint8
	for _, sf := range st.Slotframes() {
		handles = append(handles, sf.Handle)
	}
	assert.Equal(t, []uint8{1, 3, 5}, handles)
}

func TestSetSlotframeReplaceReturnsOld(t *testing.T) {
	st := NewStore()
	st.SetSlotframe(Slotframe{Handle: 0, Size: 13})
	old := st.SetSlotframe(Slotframe{Handle: 0, Size: 20})
	require.NotNil(t, old)
	assert.Equal(t, uint16(13), old.Size)
	sf, ok := st.GetSlotframe(0)
	require.True(t, ok)
	assert.Equal(t, uint16(20), sf.Size)
}

func TestDeleteSlotframeDropsItsLinks(t *testing.T) {
	st := NewStore()
	st.SetSlotframe(Slotframe{Handle: 0, Size: 13})
	_, err := st.SetLink(Link{Handle: 7, SlotframeHandle: 0, Timeslot: 1, TX: true})
	require.NoError(t, err)

	st.DeleteSlotframe(0)
	_, ok := st.GetLink(7)
	assert.False(t, ok)
}

func TestSetLinkRejectsNeitherTXNorRX(t *testing.T) {
	st := NewStore()
	st.SetSlotframe(Slotframe{Handle: 0, Size: 13})
	_, err := st.SetLink(Link{Handle: 1, SlotframeHandle: 0, Timeslot: 0})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestSetLinkRejectsUnknownSlotframe(t *testing.T) {
	st := NewStore()
	_, err := st.SetLink(Link{Handle: 1, SlotframeHandle: 9, Timeslot: 0, TX: true})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestLinksSortedByTimeslotThenHandle(t *testing.T) {
	st := NewStore()
	st.SetSlotframe(Slotframe{Handle: 0, Size: 13})
	_, err := st.SetLink(Link{Handle: 9, SlotframeHandle: 0, Timeslot: 5, TX: true})
	require.NoError(t, err)
	_, err = st.SetLink(Link{Handle: 1, SlotframeHandle: 0, Timeslot: 5, TX: true})
	require.NoError(t, err)
	_, err = st.SetLink(Link{Handle: 2, SlotframeHandle: 0, Timeslot: 1, RX: true})
	require.NoError(t, err)

	sf, ok := st.GetSlotframe(0)
	require.True(t, ok)
	var handles []uint16
	for _, l := range sf.Links() {
		handles = append(handles, l.Handle)
	}
	assert.Equal(t, []uint16{2, 1, 9}, handles)
}

func TestSetLinkMovesHandleBetweenSlotframes(t *testing.T) {
	st := NewStore()
	st.SetSlotframe(Slotframe{Handle: 0, Size: 13})
	st.SetSlotframe(Slotframe{Handle: 1, Size: 11})
	_, err := st.SetLink(Link{Handle: 4, SlotframeHandle: 0, Timeslot: 0, TX: true})
	require.NoError(t, err)

	old, err := st.SetLink(Link{Handle: 4, SlotframeHandle: 1, Timeslot: 2, RX: true})
	require.NoError(t, err)
	require.NotNil(t, old)
	assert.Equal(t, uint8(0), old.SlotframeHandle)

	sf0, _ := st.GetSlotframe(0)
	assert.Empty(t, sf0.Links())
	sf1, _ := st.GetSlotframe(1)
	require.Len(t, sf1.Links(), 1)
	assert.Equal(t, uint16(4), sf1.Links()[0].Handle)
}

func TestDeleteLinkRemovesFromOwningSlotframe(t *testing.T) {
	st := NewStore()
	st.SetSlotframe(Slotframe{Handle: 0, Size: 13})
	_, err := st.SetLink(Link{Handle: 4, SlotframeHandle: 0, Timeslot: 0, TX: true, Addr: frame.ShortAddress(frame.BroadcastShortAddr)})
	require.NoError(t, err)

	removed := st.DeleteLink(4)
	require.NotNil(t, removed)
	_, ok := st.GetLink(4)
	assert.False(t, ok)
	sf, _ := st.GetSlotframe(0)
	assert.Empty(t, sf.Links())
}
