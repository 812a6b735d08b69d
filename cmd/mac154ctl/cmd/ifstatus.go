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
	"net"

	"github.com/jsimonetti/rtnetlink/rtnl"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var ifstatusIfaceFlag string

func init() {
	RootCmd.AddCommand(ifstatusCmd)
	ifstatusCmd.Flags().StringVarP(&ifstatusIfaceFlag, "iface", "i", "lowpan0", "network interface the radio is attached to")
}

var ifstatusCmd = &cobra.Command{
	Use:   "ifstatus",
	Short: "Report the kernel-visible state of the interface the radio is attached to",
	Run: func(cmd *cobra.Command, args []string) {
		ConfigureVerbosity()

		// Confirm a netlink connection can be established the same way
		// an address-add/remove would need one, even though this command
		// only reads interface state through the stdlib afterwards.
		conn, err := rtnl.Dial(nil)
		if err != nil {
			log.Fatalf("can't establish netlink connection: %v", err)
		}
		defer conn.Close()

		iface, err := net.InterfaceByName(ifstatusIfaceFlag)
		if err != nil {
			log.Fatalf("interface %s: %v", ifstatusIfaceFlag, err)
		}

		fmt.Printf("name: %s\n", iface.Name)
		fmt.Printf("index: %d\n", iface.Index)
		fmt.Printf("mtu: %d\n", iface.MTU)
		fmt.Printf("hw addr: %s\n", iface.HardwareAddr)
		fmt.Printf("flags: %s\n", iface.Flags)

		addrs, err := iface.Addrs()
		if err != nil {
			log.Fatalf("listing addresses: %v", err)
		}
		for _, a := range addrs {
			fmt.Printf("addr: %s\n", a.String())
		}
	},
}
