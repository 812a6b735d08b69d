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

// Package nettime implements the network-time reference (§4.6): a
// monotonic, syntonized uptime bridging a low-power sleep counter and a
// high-resolution radio counter, timepoint/ns conversion, and the
// expiry timeout queue TSCH scheduling is driven from.
package nettime
