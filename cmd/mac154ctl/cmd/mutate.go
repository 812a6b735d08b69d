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

	"github.com/go154/mac154/config"
)

// mutate loads the config at rootConfigFlag, applies fn, validates the
// result, and writes it back. Every SET_* subcommand (§6 net-management
// request surface) is this same load/mutate/validate/write round trip,
// since no wire/IPC protocol to a running daemon is defined — the
// config file itself is the net-management channel, reread at the next
// interface start.
func mutate(fn func(c *config.Config) error) error {
	c, err := config.ReadConfig(rootConfigFlag)
	if err != nil {
		return fmt.Errorf("loading %s: %w", rootConfigFlag, err)
	}
	if err := fn(c); err != nil {
		return err
	}
	if err := c.EvalAndValidate(); err != nil {
		return fmt.Errorf("validating updated config: %w", err)
	}
	if err := c.Write(rootConfigFlag); err != nil {
		return fmt.Errorf("writing %s: %w", rootConfigFlag, err)
	}
	return nil
}
