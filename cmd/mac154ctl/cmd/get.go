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

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/go154/mac154/config"
)

func init() {
	RootCmd.AddCommand(getDeviceRoleCmd)
}

var getDeviceRoleCmd = &cobra.Command{
	Use:   "get-device-role",
	Short: "GET_DEVICE_ROLE: print the configured device role",
	Run: func(cmd *cobra.Command, args []string) {
		ConfigureVerbosity()
		c, err := config.ReadConfig(rootConfigFlag)
		if err != nil {
			log.Fatal(err)
		}
		role := c.Role
		if role == "" {
			role = "device"
		}
		fmt.Println(role)
	},
}
