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
	"encoding/hex"
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"

	"github.com/go154/mac154/frame"
	"github.com/go154/mac154/ie"
	"github.com/go154/mac154/macctx"
	"github.com/go154/mac154/security"
	"github.com/go154/mac154/tsch"
)

// StaticConfig is the set of options that require an interface
// restart to take effect, split out from DynamicConfig the same way
// facebook-time/ptp/ptp4u/server/config.go splits its own Config in
// two: a StaticConfig (interface, ports, log level) and a
// DynamicConfig (everything that can be hot-reloaded).
type StaticConfig struct {
	FormatVersion  string        `yaml:"format_version"`
	Device         string        `yaml:"device"`
	ExtAddr        string        `yaml:"ext_addr"` // 16 lowercase hex chars
	LogLevel       string        `yaml:"log_level"`
	StatsListen    string        `yaml:"stats_listen"`
	StatsInterval  time.Duration `yaml:"stats_interval"`
	TimeslotLenUS  uint32        `yaml:"timeslot_length_us"`
}

// SecurityConfig is the bootstrap security sub-context, §3/§9.2.
type SecurityConfig struct {
	Level  uint8  `yaml:"level"`
	KeyHex string `yaml:"key_hex"` // 32 lowercase hex chars (16 bytes)
}

// SlotframeConfig mirrors tsch.Slotframe for the bootstrap file.
type SlotframeConfig struct {
	Handle    uint8  `yaml:"handle"`
	Size      uint16 `yaml:"size"`
	Advertise bool   `yaml:"advertise"`
}

// LinkConfig mirrors tsch.Link for the bootstrap file; Addr is a short
// address in hex ("0x0102") or an extended one (16 hex chars).
type LinkConfig struct {
	Handle          uint16 `yaml:"handle"`
	SlotframeHandle uint8  `yaml:"slotframe_handle"`
	Timeslot        uint16 `yaml:"timeslot"`
	ChannelOffset   uint16 `yaml:"channel_offset"`
	Addr            string `yaml:"addr"`

	TX          bool `yaml:"tx"`
	RX          bool `yaml:"rx"`
	Shared      bool `yaml:"shared"`
	Timekeeping bool `yaml:"timekeeping"`
	Priority    bool `yaml:"priority"`
	Advertising bool `yaml:"advertising"`
}

// HoppingConfig mirrors macctx.HoppingSequence for the bootstrap file.
type HoppingConfig struct {
	Page     uint8   `yaml:"page"`
	Channels []uint8 `yaml:"channels"`
}

// DynamicConfig is everything that can change without an interface
// restart: attributes the net-management request surface (§6) could
// also set one at a time.
type DynamicConfig struct {
	PANID      uint16            `yaml:"pan_id"`
	ShortAddr  uint16            `yaml:"short_addr"`
	Channel    uint16            `yaml:"channel"`
	TXPowerDBm int8              `yaml:"tx_power_dbm"`
	Role       string            `yaml:"role"` // "coordinator" or "device"
	AckDefault bool              `yaml:"ack_default"`
	TSCHModeOn bool              `yaml:"tsch_mode_on"`
	Security   SecurityConfig    `yaml:"security"`
	Hopping    HoppingConfig     `yaml:"hopping"`
	Slotframes []SlotframeConfig `yaml:"slotframes"`
	Links      []LinkConfig      `yaml:"links"`
}

// Config is the full bootstrap file: static interface identity plus
// the dynamic attributes and schedule.
type Config struct {
	StaticConfig  `yaml:",inline"`
	DynamicConfig `yaml:",inline"`
}

// EvalAndValidate sanity-checks the config before Build is called,
// the same fail-fast role facebook-time/fbclock/daemon/config.go's
// EvalAndValidate plays for its own Config.
func (c *Config) EvalAndValidate() error {
	if len(c.ExtAddr) != 16 {
		return fmt.Errorf("config: 'ext_addr' must be 16 hex chars, got %q", c.ExtAddr)
	}
	if _, err := hex.DecodeString(c.ExtAddr); err != nil {
		return fmt.Errorf("config: 'ext_addr': %w", err)
	}
	if c.Role != "" && c.Role != "coordinator" && c.Role != "device" {
		return fmt.Errorf("config: 'role' must be 'coordinator' or 'device', got %q", c.Role)
	}
	if c.TimeslotLenUS == 0 {
		c.TimeslotLenUS = 10000 // 10ms, the common TSCH default
	}
	return CheckFormatVersion(c.FormatVersion)
}

// ReadConfig reads and strictly unmarshals a YAML bootstrap file,
// the same os.ReadFile + yaml.UnmarshalStrict pattern
// facebook-time/fbclock/daemon/config.go's ReadConfig uses.
func ReadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	c := &Config{}
	if err := yaml.UnmarshalStrict(data, c); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if err := c.EvalAndValidate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Write serializes c back to path, the same yaml.Marshal + os.WriteFile
// round trip facebook-time/ptp/ptp4u/server/config.go's
// DynamicConfig.Write uses — cmd/mac154ctl's SET_* subcommands load,
// mutate, and write back through this.
func (c *Config) Write(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshaling: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func parseExtAddr(s string) (frame.ExtAddr, error) {
	var ext frame.ExtAddr
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != 8 {
		return ext, fmt.Errorf("config: bad extended address %q", s)
	}
	copy(ext[:], b)
	return ext, nil
}

func parseLinkAddr(s string) (frame.Addr, error) {
	if s == "" {
		return frame.Addr{}, nil
	}
	if len(s) == 16 {
		ext, err := parseExtAddr(s)
		if err != nil {
			return frame.Addr{}, err
		}
		return frame.ExtAddress(ext), nil
	}
	var short uint16
	if _, err := fmt.Sscanf(s, "0x%04x", &short); err != nil {
		return frame.Addr{}, fmt.Errorf("config: bad link address %q", s)
	}
	return frame.ShortAddress(frame.ShortAddr(short)), nil
}

func parseSecurityKey(s string) ([16]byte, error) {
	var key [16]byte
	if s == "" {
		return key, nil
	}
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != 16 {
		return key, fmt.Errorf("config: bad security key_hex %q", s)
	}
	copy(key[:], b)
	return key, nil
}

// Build installs every attribute, the schedule store, and the hopping
// sequence this config describes into ctx, §6 "Persisted state: none
// ... re-installed at interface start from the configuration
// collaborator". ctx must already be constructed (macctx.New) with its
// radio and clock wired in; Build only sets attributes on it.
func (c *Config) Build(ctx *macctx.Context) error {
	if err := ctx.SetPANID(frame.PANID(c.PANID)); err != nil {
		return fmt.Errorf("config: pan_id: %w", err)
	}
	if err := ctx.SetShortAddr(frame.ShortAddr(c.ShortAddr)); err != nil {
		return fmt.Errorf("config: short_addr: %w", err)
	}
	if c.Channel != 0 {
		if err := ctx.SetChannel(c.Channel); err != nil {
			return fmt.Errorf("config: channel: %w", err)
		}
	}
	ctx.SetTXPower(c.TXPowerDBm)
	ctx.SetAck(c.AckDefault)

	role := frame.RoleEndDevice
	if c.Role == "coordinator" {
		role = frame.RolePANCoordinator
	}
	if err := ctx.SetDeviceRole(role); err != nil {
		return fmt.Errorf("config: role: %w", err)
	}

	key, err := parseSecurityKey(c.Security.KeyHex)
	if err != nil {
		return err
	}
	if err := ctx.SetSecuritySettings(macctx.SecurityConfig{
		Level: security.Level(c.Security.Level),
		Key:   key,
	}); err != nil {
		return fmt.Errorf("config: security: %w", err)
	}

	ctx.SetHoppingSequence(macctx.HoppingSequence{Page: c.Hopping.Page, Channels: c.Hopping.Channels})

	for _, sf := range c.Slotframes {
		ctx.SetTSCHSlotframe(tsch.Slotframe{Handle: sf.Handle, Size: sf.Size, Advertise: sf.Advertise})
	}
	for _, l := range c.Links {
		addr, err := parseLinkAddr(l.Addr)
		if err != nil {
			return err
		}
		link := tsch.Link{
			Handle:          l.Handle,
			SlotframeHandle: l.SlotframeHandle,
			Timeslot:        l.Timeslot,
			ChannelOffset:   l.ChannelOffset,
			Addr:            addr,
			TX:              l.TX,
			RX:              l.RX,
			Shared:          l.Shared,
			Timekeeping:     l.Timekeeping,
			Priority:        l.Priority,
			Advertising:     l.Advertising,
		}
		if _, err := ctx.SetTSCHLink(link); err != nil {
			return fmt.Errorf("config: link %d: %w", l.Handle, err)
		}
	}

	if c.TSCHModeOn {
		if err := ctx.ModeOn(); err != nil {
			return fmt.Errorf("config: tsch_mode_on: %w", err)
		}
	}
	return nil
}

// Timeslot returns the timeslot timing template the TSCH state
// machine should use; the bootstrap file describes it implicitly via
// TimeslotLenUS today (§4.7 schedules every link with the same offsets
// scaled off the slot length), matching the short/IE-free template a
// node advertises before a custom one is negotiated.
func (c *Config) Timeslot() ie.Timeslot {
	length := c.TimeslotLenUS
	if length == 0 {
		length = 10000
	}
	return ie.Timeslot{
		ID:         0,
		CCAOffset:  1800,
		TXOffset:   uint16(length / 5),
		RXOffset:   uint16(length / 10),
		RXAckDelay: uint16(length / 10),
		TXAckDelay: uint16(length / 10),
		RXWait:     uint16(length / 5),
		AckWait:    400,
		RXTXOffset: 192,
		MaxAck:     uint16(length / 5),
		MaxTX:      uint16(length / 2),
		Length:     uint16(length),
	}
}
