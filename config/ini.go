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

package config

import (
	"fmt"

	"github.com/go-ini/ini"
)

// ReadLegacyINI loads a flat key=value commissioning file, the format
// older provisioning tools in the field still emit, and maps it onto a
// Config. Grounded on calnex/config/config.go's ini.Load +
// Section.Key usage; unlike the YAML path this has no nested
// slotframe/link support — an INI-provisioned node still needs its
// schedule set up afterwards through the net-management request
// surface.
func ReadLegacyINI(path string) (*Config, error) {
	f, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("config: loading legacy ini %s: %w", path, err)
	}
	s := f.Section("")

	c := &Config{}
	c.FormatVersion = s.Key("format_version").MustString(CurrentFormatVersion)
	c.Device = s.Key("device").String()
	c.ExtAddr = s.Key("ext_addr").String()
	c.LogLevel = s.Key("log_level").MustString("info")
	c.StatsListen = s.Key("stats_listen").String()

	c.PANID = uint16(s.Key("pan_id").MustUint(0xFFFF))
	c.ShortAddr = uint16(s.Key("short_addr").MustUint(0xFFFF))
	c.Channel = uint16(s.Key("channel").MustUint(0))
	c.TXPowerDBm = int8(s.Key("tx_power_dbm").MustInt(0))
	c.Role = s.Key("role").MustString("device")
	c.AckDefault = s.Key("ack_default").MustBool(true)
	c.Security.Level = uint8(s.Key("security_level").MustUint(0))
	c.Security.KeyHex = s.Key("security_key_hex").String()

	if err := c.EvalAndValidate(); err != nil {
		return nil, err
	}
	return c, nil
}
