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

// Package tsch implements the TSCH schedule store (§4.4) and active-link
// selector (§4.5): an ordered set of slotframes, each owning an ordered
// set of links, plus the per-timeslot comparator that picks which link
// to operate next.
//
// Store and Schedule are not safe for concurrent use on their own; the
// caller (the TSCH state machine, under the context lock) serializes
// all access, the same way the frame package leaves locking to its
// caller rather than importing the context package itself.
package tsch
