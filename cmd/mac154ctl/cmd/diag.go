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

	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/go154/mac154/stats"
)

var okString = color.GreenString("[ OK ]")
var failString = color.RedString("[FAIL]")

func init() {
	RootCmd.AddCommand(diagCmd)
}

var diagCmd = &cobra.Command{
	Use:   "diag EXPR [EXPR...]",
	Short: "Evaluate operator-supplied threshold expressions against a counters snapshot",
	Long: "Each EXPR is a govaluate boolean expression over the named counters " +
		"mac154d exposes, plus correction_mean_us/correction_stddev_us/correction_samples. " +
		"Since mac154ctl has no live channel to a running daemon's counters (§6 defines " +
		"no net-management wire protocol), this always evaluates against a freshly " +
		"created, zero-valued Counters; no snapshot can be loaded.",
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ConfigureVerbosity()
		counters := stats.NewCounters()

		allOK := true
		for _, expr := range args {
			th, err := stats.NewThreshold(expr)
			if err != nil {
				log.Fatalf("parsing %q: %v", expr, err)
			}
			tripped, err := th.Evaluate(counters)
			if err != nil {
				log.Fatalf("evaluating %q: %v", expr, err)
			}
			if tripped {
				allOK = false
				fmt.Printf("%s %s\n", failString, expr)
			} else {
				fmt.Printf("%s %s\n", okString, expr)
			}
		}
		if !allOK {
			log.Fatal("one or more thresholds tripped")
		}
	},
}
