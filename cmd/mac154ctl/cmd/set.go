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

package cmd

import (
	"fmt"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/go154/mac154/config"
)

func init() {
	RootCmd.AddCommand(setAckCmd, unsetAckCmd, setChannelCmd, setPANIDCmd, setShortAddrCmd,
		setTXPowerCmd, setDeviceRoleCmd, setSecuritySettingsCmd, setTSCHSlotframeCmd,
		setTSCHLinkCmd, setHoppingSequenceCmd, setTSCHModeCmd)
}

func runMutate(fn func(c *config.Config) error) {
	ConfigureVerbosity()
	if err := mutate(fn); err != nil {
		log.Fatal(err)
	}
}

var setAckCmd = &cobra.Command{
	Use:   "set-ack",
	Short: "SET_ACK: request an immediate/enhanced ACK by default",
	Run: func(cmd *cobra.Command, args []string) {
		runMutate(func(c *config.Config) error { c.AckDefault = true; return nil })
	},
}

var unsetAckCmd = &cobra.Command{
	Use:   "unset-ack",
	Short: "UNSET_ACK: stop requesting ACKs by default",
	Run: func(cmd *cobra.Command, args []string) {
		runMutate(func(c *config.Config) error { c.AckDefault = false; return nil })
	},
}

var setChannelCmd = &cobra.Command{
	Use:   "set-channel CHANNEL",
	Short: "SET_CHANNEL: change the operating channel",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ch, err := strconv.ParseUint(args[0], 10, 16)
		if err != nil {
			log.Fatalf("invalid channel %q: %v", args[0], err)
		}
		runMutate(func(c *config.Config) error { c.Channel = uint16(ch); return nil })
	},
}

var setPANIDCmd = &cobra.Command{
	Use:   "set-pan-id PANID",
	Short: "SET_PAN_ID: change the PAN identifier (hex, e.g. 0xCAFE)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		pan, err := parseHex16(args[0])
		if err != nil {
			log.Fatalf("invalid pan id %q: %v", args[0], err)
		}
		runMutate(func(c *config.Config) error { c.PANID = pan; return nil })
	},
}

var setShortAddrCmd = &cobra.Command{
	Use:   "set-short-addr ADDR",
	Short: "SET_SHORT_ADDR: change the short address (hex, e.g. 0x0102)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		addr, err := parseHex16(args[0])
		if err != nil {
			log.Fatalf("invalid short address %q: %v", args[0], err)
		}
		runMutate(func(c *config.Config) error { c.ShortAddr = addr; return nil })
	},
}

var setTXPowerCmd = &cobra.Command{
	Use:   "set-tx-power DBM",
	Short: "SET_TX_POWER: change the transmit power in dBm",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dbm, err := strconv.ParseInt(args[0], 10, 8)
		if err != nil {
			log.Fatalf("invalid tx power %q: %v", args[0], err)
		}
		runMutate(func(c *config.Config) error { c.TXPowerDBm = int8(dbm); return nil })
	},
}

var setDeviceRoleCmd = &cobra.Command{
	Use:   "set-device-role {coordinator|device}",
	Short: "SET_DEVICE_ROLE: change the device's role",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		role := strings.ToLower(args[0])
		if role != "coordinator" && role != "device" {
			log.Fatalf("role must be 'coordinator' or 'device', got %q", args[0])
		}
		runMutate(func(c *config.Config) error { c.Role = role; return nil })
	},
}

var setSecurityLevelFlag uint8

var setSecuritySettingsCmd = &cobra.Command{
	Use:   "set-security-settings KEY_HEX",
	Short: "SET_SECURITY_SETTINGS: change the security level and 128-bit key",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runMutate(func(c *config.Config) error {
			c.Security.Level = setSecurityLevelFlag
			c.Security.KeyHex = args[0]
			return nil
		})
	},
}

func init() {
	setSecuritySettingsCmd.Flags().Uint8VarP(&setSecurityLevelFlag, "level", "l", 0, "security level (0 none, 1-3 MIC-only, 5-7 encrypted)")
}

var setTSCHSlotframeHandleFlag uint8
var setTSCHSlotframeSizeFlag uint16
var setTSCHSlotframeAdvertiseFlag bool

var setTSCHSlotframeCmd = &cobra.Command{
	Use:   "set-tsch-slotframe",
	Short: "SET_TSCH_SLOTFRAME: add or replace a slotframe",
	Run: func(cmd *cobra.Command, args []string) {
		runMutate(func(c *config.Config) error {
			for i, sf := range c.Slotframes {
				if sf.Handle == setTSCHSlotframeHandleFlag {
					c.Slotframes[i] = config.SlotframeConfig{
						Handle: setTSCHSlotframeHandleFlag, Size: setTSCHSlotframeSizeFlag, Advertise: setTSCHSlotframeAdvertiseFlag,
					}
					return nil
				}
			}
			c.Slotframes = append(c.Slotframes, config.SlotframeConfig{
				Handle: setTSCHSlotframeHandleFlag, Size: setTSCHSlotframeSizeFlag, Advertise: setTSCHSlotframeAdvertiseFlag,
			})
			return nil
		})
	},
}

func init() {
	setTSCHSlotframeCmd.Flags().Uint8VarP(&setTSCHSlotframeHandleFlag, "handle", "H", 0, "slotframe handle")
	setTSCHSlotframeCmd.Flags().Uint16VarP(&setTSCHSlotframeSizeFlag, "size", "s", 101, "slotframe size in timeslots")
	setTSCHSlotframeCmd.Flags().BoolVar(&setTSCHSlotframeAdvertiseFlag, "advertise", false, "advertise this slotframe in enhanced beacons")
}

var (
	setTSCHLinkHandleFlag          uint16
	setTSCHLinkSlotframeFlag       uint8
	setTSCHLinkTimeslotFlag        uint16
	setTSCHLinkChannelOffsetFlag   uint16
	setTSCHLinkAddrFlag            string
	setTSCHLinkTXFlag              bool
	setTSCHLinkRXFlag              bool
	setTSCHLinkSharedFlag          bool
	setTSCHLinkTimekeepingFlag     bool
	setTSCHLinkPriorityFlag        bool
	setTSCHLinkAdvertisingFlag     bool
)

var setTSCHLinkCmd = &cobra.Command{
	Use:   "set-tsch-link",
	Short: "SET_TSCH_LINK: add or replace a link",
	Run: func(cmd *cobra.Command, args []string) {
		link := config.LinkConfig{
			Handle:          setTSCHLinkHandleFlag,
			SlotframeHandle: setTSCHLinkSlotframeFlag,
			Timeslot:        setTSCHLinkTimeslotFlag,
			ChannelOffset:   setTSCHLinkChannelOffsetFlag,
			Addr:            setTSCHLinkAddrFlag,
			TX:              setTSCHLinkTXFlag,
			RX:              setTSCHLinkRXFlag,
			Shared:          setTSCHLinkSharedFlag,
			Timekeeping:     setTSCHLinkTimekeepingFlag,
			Priority:        setTSCHLinkPriorityFlag,
			Advertising:     setTSCHLinkAdvertisingFlag,
		}
		runMutate(func(c *config.Config) error {
			for i, l := range c.Links {
				if l.Handle == link.Handle {
					c.Links[i] = link
					return nil
				}
			}
			c.Links = append(c.Links, link)
			return nil
		})
	},
}

func init() {
	f := setTSCHLinkCmd.Flags()
	f.Uint16VarP(&setTSCHLinkHandleFlag, "handle", "H", 0, "link handle")
	f.Uint8Var(&setTSCHLinkSlotframeFlag, "slotframe", 0, "owning slotframe handle")
	f.Uint16Var(&setTSCHLinkTimeslotFlag, "timeslot", 0, "timeslot offset within the slotframe")
	f.Uint16Var(&setTSCHLinkChannelOffsetFlag, "channel-offset", 0, "channel offset")
	f.StringVar(&setTSCHLinkAddrFlag, "addr", "", "neighbor address (hex short '0x0102' or 16 hex chars extended)")
	f.BoolVar(&setTSCHLinkTXFlag, "tx", false, "link can transmit")
	f.BoolVar(&setTSCHLinkRXFlag, "rx", false, "link can receive")
	f.BoolVar(&setTSCHLinkSharedFlag, "shared", false, "link is shared")
	f.BoolVar(&setTSCHLinkTimekeepingFlag, "timekeeping", false, "link is a timekeeping link")
	f.BoolVar(&setTSCHLinkPriorityFlag, "priority", false, "link is a priority link (stored only; link selection does not consult it)")
	f.BoolVar(&setTSCHLinkAdvertisingFlag, "advertising", false, "link advertises enhanced beacons")
}

var setHoppingSequencePageFlag uint8

var setHoppingSequenceCmd = &cobra.Command{
	Use:   "set-hopping-sequence CHANNEL[,CHANNEL...]",
	Short: "SET_HOPPING_SEQUENCE: replace the channel hopping sequence",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		parts := strings.Split(args[0], ",")
		channels := make([]uint8, 0, len(parts))
		for _, p := range parts {
			v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
			if err != nil {
				log.Fatalf("invalid channel %q: %v", p, err)
			}
			channels = append(channels, uint8(v))
		}
		runMutate(func(c *config.Config) error {
			c.Hopping = config.HoppingConfig{Page: setHoppingSequencePageFlag, Channels: channels}
			return nil
		})
	},
}

func init() {
	setHoppingSequenceCmd.Flags().Uint8VarP(&setHoppingSequencePageFlag, "page", "p", 0, "channel page")
}

var setTSCHModeOnFlag bool

var setTSCHModeCmd = &cobra.Command{
	Use:   "set-tsch-mode {on|off}",
	Short: "SET_TSCH_MODE: request the interface start in or out of TSCH mode",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		switch strings.ToLower(args[0]) {
		case "on":
			setTSCHModeOnFlag = true
		case "off":
			setTSCHModeOnFlag = false
		default:
			log.Fatalf("expected 'on' or 'off', got %q", args[0])
		}
		runMutate(func(c *config.Config) error { c.TSCHModeOn = setTSCHModeOnFlag; return nil })
	},
}

func parseHex16(s string) (uint16, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", s, err)
	}
	return uint16(v), nil
}
