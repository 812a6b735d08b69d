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

package nettime

import (
	"fmt"
	"math"
	"sync"
)

// Forever marks a timeout that should never expire; AddTimeout rejects it.
const Forever = int64(math.MaxInt64)

// ErrForever is returned by AddTimeout for a Forever delta.
var ErrForever = fmt.Errorf("nettime: timeout delta is Forever")

// timeoutNode is one entry in the delta-sorted expiry list: dt is the
// gap, in nanoseconds, between this node and the one before it (or the
// present moment, for the list head), not an absolute deadline. This
// keeps insertion and announcement O(1) amortized per node touched
// instead of needing absolute-time comparisons against a moving "now".
type timeoutNode struct {
	dt     int64
	period int64 // > 0 re-arms the node for periodic firing
	fn     func()
	next   *timeoutNode
	prev   *timeoutNode
}

// TimeoutQueue is the sorted delta-linked list of pending expiries that
// drives TSCH slot scheduling, §4.6 "Timeout queue".
type TimeoutQueue struct {
	mu         sync.Mutex
	head       *timeoutNode
	announcing bool
}

// NewTimeoutQueue returns an empty queue.
func NewTimeoutQueue() *TimeoutQueue { return &TimeoutQueue{} }

// AddTimeout schedules fn to run once dt nanoseconds of announced time
// have elapsed. It rejects Forever.
func (q *TimeoutQueue) AddTimeout(fn func(), dt int64) (*timeoutNode, error) {
	if dt == Forever {
		return nil, ErrForever
	}
	if dt < 0 {
		dt = 0
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	node := &timeoutNode{fn: fn, dt: dt}
	q.insertLocked(node)
	return node, nil
}

// insertLocked walks the list decrementing dt by each node's own delta
// until it finds a node whose delta is larger than what remains (or the
// end of the list), splices node in there, and re-bases the following
// node's delta onto node.
func (q *TimeoutQueue) insertLocked(node *timeoutNode) {
	dt := node.dt
	var prev *timeoutNode
	cur := q.head
	for cur != nil && dt >= cur.dt {
		dt -= cur.dt
		prev = cur
		cur = cur.next
	}
	node.dt = dt
	if cur != nil {
		cur.dt -= dt
		cur.prev = node
	}
	node.prev = prev
	node.next = cur
	if prev != nil {
		prev.next = node
	} else {
		q.head = node
	}
}

// Remove cancels a pending timeout (timer_stop). Removing an already-
// fired one-shot node is a no-op.
func (q *TimeoutQueue) Remove(node *timeoutNode) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if node.next == nil && node.prev == nil && q.head != node {
		return // already fired and detached
	}
	if node.next != nil {
		node.next.dt += node.dt
		node.next.prev = node.prev
	}
	if node.prev != nil {
		node.prev.next = node.next
	} else if q.head == node {
		q.head = node.next
	}
	node.next, node.prev = nil, nil
}

// Announce expires every node whose cumulative delta is <= ticks
// (nanoseconds here), invoking each fn with the queue unlocked so a
// callback may itself call AddTimeout/Remove. Periodic nodes are
// re-armed at their period once their callback returns. While a
// callback runs, Elapsed reports 0: the firing node's own tick is "now"
// for anything it schedules, not the value of ticks passed to this call.
func (q *TimeoutQueue) Announce(ticks int64) {
	q.mu.Lock()
	remaining := ticks
	var fired []*timeoutNode
	for q.head != nil && q.head.dt <= remaining {
		n := q.head
		remaining -= n.dt
		q.head = n.next
		if q.head != nil {
			q.head.prev = nil
		}
		n.next, n.prev = nil, nil
		fired = append(fired, n)
	}
	if q.head != nil {
		q.head.dt -= remaining
	}
	q.announcing = true
	q.mu.Unlock()

	for _, n := range fired {
		n.fn()
		if n.period > 0 {
			q.mu.Lock()
			n.dt = n.period
			q.insertLocked(n)
			q.mu.Unlock()
		}
	}

	q.mu.Lock()
	q.announcing = false
	q.mu.Unlock()
}

// Elapsed reports nanoseconds elapsed since this Announce call started
// consuming the list; it is always 0 outside of Announce and while a
// callback is running, so a callback scheduling a new timeout computes
// its delta directly from the firing tick instead of double-counting
// time already spent walking the list.
func (q *TimeoutQueue) Elapsed() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.announcing {
		return 0
	}
	return 0
}

// Empty reports whether the queue holds no pending timeouts.
func (q *TimeoutQueue) Empty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.head == nil
}
