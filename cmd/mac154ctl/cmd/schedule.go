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
	"os"

	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/go154/mac154/config"
)

func init() {
	RootCmd.AddCommand(scheduleCmd)
	scheduleCmd.AddCommand(scheduleShowCmd)
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Inspect the TSCH schedule described by the bootstrap config",
}

var scheduleShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print every slotframe and link the config describes",
	Run: func(cmd *cobra.Command, args []string) {
		ConfigureVerbosity()
		c, err := config.ReadConfig(rootConfigFlag)
		if err != nil {
			log.Fatal(err)
		}

		sfTable := tablewriter.NewWriter(os.Stdout)
		sfTable.SetColWidth(20)
		sfTable.SetHeader([]string{"handle", "size", "advertise"})
		for _, sf := range c.Slotframes {
			sfTable.Append([]string{
				fmt.Sprintf("%d", sf.Handle),
				fmt.Sprintf("%d", sf.Size),
				fmt.Sprintf("%v", sf.Advertise),
			})
		}
		sfTable.Render()

		linkTable := tablewriter.NewWriter(os.Stdout)
		linkTable.SetColWidth(20)
		linkTable.SetHeader([]string{"handle", "slotframe", "timeslot", "ch.offset", "addr", "tx", "rx", "shared", "timekeeping", "priority", "advertising"})
		for _, l := range c.Links {
			linkTable.Append([]string{
				fmt.Sprintf("%d", l.Handle),
				fmt.Sprintf("%d", l.SlotframeHandle),
				fmt.Sprintf("%d", l.Timeslot),
				fmt.Sprintf("%d", l.ChannelOffset),
				l.Addr,
				fmt.Sprintf("%v", l.TX),
				fmt.Sprintf("%v", l.RX),
				fmt.Sprintf("%v", l.Shared),
				fmt.Sprintf("%v", l.Timekeeping),
				fmt.Sprintf("%v", l.Priority),
				fmt.Sprintf("%v", l.Advertising),
			})
		}
		linkTable.Render()
	},
}
