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
	"fmt"
	"sort"

	"golang.org/x/exp/slices"

	"github.com/go154/mac154/frame"
)

// ErrInvalid is returned for malformed CRUD input: a link with neither
// tx nor rx set, or a link referencing an unknown slotframe. Setting an
// existing handle replaces it rather than failing.
var ErrInvalid = fmt.Errorf("tsch: invalid")

// ErrNotFound names the absent-handle condition. The Store's own Get
// and Delete operations report an absent handle with a false or nil
// result and do not return it.
var ErrNotFound = fmt.Errorf("tsch: not found")

// Link is one slot in the TSCH schedule, §4 TSCH link. Handle is
// globally unique across all slotframes in a Store.
type Link struct {
	Handle          uint16
	SlotframeHandle uint8
	Timeslot        uint16
	ChannelOffset   uint16
	Addr            frame.Addr

	TX          bool
	RX          bool
	Shared      bool
	Timekeeping bool
	Priority    bool
	Advertising bool
}

func (l Link) validate() error {
	if !l.TX && !l.RX {
		return fmt.Errorf("%w: link %d has neither tx nor rx set", ErrInvalid, l.Handle)
	}
	return nil
}

// Slotframe is a cyclic sequence of timeslots, §4 TSCH slotframe. Its
// links are kept in ascending (Timeslot, Handle) order so link selection
// over one slotframe is O(size).
type Slotframe struct {
	Handle    uint8
	Size      uint16
	Advertise bool

	links []*Link
}

// Links returns the slotframe's links in their canonical
// (timeslot, handle) order. The returned slice must not be mutated.
func (sf *Slotframe) Links() []*Link { return sf.links }

func linkLess(a, b *Link) bool {
	if a.Timeslot != b.Timeslot {
		return a.Timeslot < b.Timeslot
	}
	return a.Handle < b.Handle
}

func (sf *Slotframe) insert(l *Link) {
	i := sort.Search(len(sf.links), func(i int) bool { return !linkLess(sf.links[i], l) })
	sf.links = slices.Insert(sf.links, i, l)
}

func (sf *Slotframe) remove(handle uint16) *Link {
	for i, l := range sf.links {
		if l.Handle == handle {
			sf.links = slices.Delete(sf.links, i, i+1)
			return l
		}
	}
	return nil
}

// Store is the CRUD surface over slotframes (keyed by handle) and links
// (keyed by handle, unique across every slotframe in the store), §4.4.
type Store struct {
	slotframes []*Slotframe     // ascending handle order
	linkOwner  map[uint16]uint8 // link handle -> owning slotframe handle
}

// NewStore returns an empty schedule store.
func NewStore() *Store {
	return &Store{linkOwner: make(map[uint16]uint8)}
}

func (st *Store) slotframeIndex(handle uint8) (int, bool) {
	i := sort.Search(len(st.slotframes), func(i int) bool { return st.slotframes[i].Handle >= handle })
	if i < len(st.slotframes) && st.slotframes[i].Handle == handle {
		return i, true
	}
	return i, false
}

// GetSlotframe looks up a slotframe by handle.
func (st *Store) GetSlotframe(handle uint8) (*Slotframe, bool) {
	i, ok := st.slotframeIndex(handle)
	if !ok {
		return nil, false
	}
	return st.slotframes[i], true
}

// Slotframes returns every slotframe in ascending handle order. The
// returned slice must not be mutated.
func (st *Store) Slotframes() []*Slotframe { return st.slotframes }

// SetSlotframe inserts or replaces the slotframe at sf.Handle, returning
// the replaced slotframe (and its links) if one existed so the caller
// can release it. A replaced slotframe's links are dropped from the
// store along with it — the caller is expected to re-add any that
// should survive under the new descriptor.
func (st *Store) SetSlotframe(sf Slotframe) *Slotframe {
	i, exists := st.slotframeIndex(sf.Handle)
	fresh := &Slotframe{Handle: sf.Handle, Size: sf.Size, Advertise: sf.Advertise}
	if exists {
		old := st.slotframes[i]
		for _, l := range old.links {
			delete(st.linkOwner, l.Handle)
		}
		st.slotframes[i] = fresh
		return old
	}
	st.slotframes = slices.Insert(st.slotframes, i, fresh)
	return nil
}

// DeleteSlotframe removes a slotframe and all of its links.
func (st *Store) DeleteSlotframe(handle uint8) *Slotframe {
	i, ok := st.slotframeIndex(handle)
	if !ok {
		return nil
	}
	sf := st.slotframes[i]
	for _, l := range sf.links {
		delete(st.linkOwner, l.Handle)
	}
	st.slotframes = slices.Delete(st.slotframes, i, i+1)
	return sf
}

// GetLink looks up a link by its store-wide handle regardless of which
// slotframe owns it.
func (st *Store) GetLink(handle uint16) (*Link, bool) {
	sfHandle, ok := st.linkOwner[handle]
	if !ok {
		return nil, false
	}
	sf, _ := st.GetSlotframe(sfHandle)
	for _, l := range sf.links {
		if l.Handle == handle {
			return l, true
		}
	}
	return nil, false
}

// SetLink inserts or replaces the link at l.Handle under its
// SlotframeHandle, returning the replaced link if one existed (from any
// slotframe — a SetLink can move a handle to a different slotframe).
func (st *Store) SetLink(l Link) (*Link, error) {
	if err := l.validate(); err != nil {
		return nil, err
	}
	sf, ok := st.GetSlotframe(l.SlotframeHandle)
	if !ok {
		return nil, fmt.Errorf("%w: link %d references unknown slotframe %d", ErrInvalid, l.Handle, l.SlotframeHandle)
	}

	var old *Link
	if prevOwner, exists := st.linkOwner[l.Handle]; exists {
		if prevSF, ok := st.GetSlotframe(prevOwner); ok {
			old = prevSF.remove(l.Handle)
		}
	}

	fresh := l
	sf.insert(&fresh)
	st.linkOwner[l.Handle] = l.SlotframeHandle
	return old, nil
}

// DeleteLink removes a link by its store-wide handle.
func (st *Store) DeleteLink(handle uint16) *Link {
	sfHandle, ok := st.linkOwner[handle]
	if !ok {
		return nil
	}
	sf, _ := st.GetSlotframe(sfHandle)
	removed := sf.remove(handle)
	delete(st.linkOwner, handle)
	return removed
}
