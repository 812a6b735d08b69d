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

// Role is the device's role within the PAN, §3 "Link-layer context".
type Role uint8

const (
	RoleEndDevice Role = iota
	RoleCoordinator
	RolePANCoordinator
)

// FilterIdentity is the minimal local addressing state Filter needs.
// macctx.Context.FilterIdentity builds one of these under its lock;
// the caller (tschsm.Machine.ProcessIncoming) passes it to Filter,
// keeping this package free of any dependency on macctx.
type FilterIdentity struct {
	PAN   PANID
	Short ShortAddr
	Ext   ExtAddr
	Role  Role
}

// Filter implements §4.1 filter: drop frames not addressed to us or
// whose addressing is incoherent with our role. It is a pure function
// of (identity, m) and is therefore idempotent (§8).
func Filter(id FilterIdentity, m MPDU) bool {
	if m.HasDstPAN && m.DstPAN != BroadcastPANID && m.DstPAN != id.PAN {
		return false
	}
	if m.Dst.Mode != AddrModeNone && !m.Dst.IsBroadcast() {
		switch m.Dst.Mode {
		case AddrModeShort:
			if m.Dst.Short != id.Short {
				return false
			}
		case AddrModeExtended:
			if m.Dst.Ext != id.Ext {
				return false
			}
		}
	}
	if m.Control.FrameType == TypeMACCommand && id.Role == RoleEndDevice && len(m.MACPayload) > 0 {
		if CFI(m.MACPayload[0]) == CFIOrphanNotification {
			// Orphan notification seeks a coordinator; a plain end
			// device has nothing to answer it with.
			return false
		}
	}
	return true
}
