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
	"strconv"

	"github.com/fatih/color"
	"github.com/shirou/gopsutil/process"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// isTerminal reports whether stdout is an interactive terminal, the
// same check sa53fw/main.go makes before emitting ANSI color codes.
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func colorize(f func(format string, a ...interface{}) string, format string, a ...interface{}) string {
	if !isTerminal() {
		return fmt.Sprintf(format, a...)
	}
	return f(format, a...)
}

var statusPIDFlag int

func init() {
	RootCmd.AddCommand(statusCmd)
	statusCmd.Flags().IntVarP(&statusPIDFlag, "pid", "p", 0, "pid of a running mac154d, defaults to looking up /var/run/mac154d.pid")
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print process stats for a running mac154d",
	Run: func(cmd *cobra.Command, args []string) {
		ConfigureVerbosity()
		pid := statusPIDFlag
		if pid == 0 {
			var err error
			pid, err = readPIDFile("/var/run/mac154d.pid")
			if err != nil {
				log.Fatal(err)
			}
		}

		proc, err := process.NewProcess(int32(pid))
		if err != nil {
			fmt.Println(colorize(color.RedString, "mac154d (pid %d) is not running: %v", pid, err))
			os.Exit(1)
		}

		fmt.Println(colorize(color.GreenString, "mac154d (pid %d) is running", pid))
		if cpuPct, err := proc.Percent(0); err == nil {
			fmt.Printf("cpu: %.1f%%\n", cpuPct)
		}
		if mem, err := proc.MemoryInfo(); err == nil {
			fmt.Printf("rss: %d bytes, vms: %d bytes\n", mem.RSS, mem.VMS)
		}
		if numFDs, err := proc.NumFDs(); err == nil {
			fmt.Printf("open fds: %d\n", numFDs)
		}
		if numThreads, err := proc.NumThreads(); err == nil {
			fmt.Printf("threads: %d\n", numThreads)
		}
	},
}

func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading pid file %s: %w", path, err)
	}
	pid, err := strconv.Atoi(string(trimNewline(data)))
	if err != nil {
		return 0, fmt.Errorf("parsing pid file %s: %w", path, err)
	}
	return pid, nil
}

func trimNewline(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return b
}
