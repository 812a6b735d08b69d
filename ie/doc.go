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

// Package ie implements IEEE 802.15.4-2020 Header, Payload and nested
// Information Elements: CSL/RIT/Rendezvous-Time/Time-Correction header
// IEs, the MLME payload IE, and the TSCH nested IEs (Synchronization,
// Slotframe-and-Link, Timeslot, Channel Hopping).
package ie

import "errors"

// ErrBadFormat is returned whenever a declared IE length does not
// match its actual content; the frame carrying it must be dropped.
var ErrBadFormat = errors.New("ie: bad format")
