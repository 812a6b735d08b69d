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

// Package tschsm implements the TSCH state machine (§4.7): the single
// cooperative task that drives slot-by-slot operation once an
// interface's TSCH mode is on, and the incoming-frame correlation
// (handle_rx) that ties a received frame back to the link the state
// machine believes is active.
//
// This is the one package that sits above macctx, tsch, driver, and
// nettime all at once — it is the orchestrator, not a collaborator any
// of those packages import back.
package tschsm
