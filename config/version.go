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

	version "github.com/hashicorp/go-version"
)

// MinFormatVersion is the oldest bootstrap file format this package
// still reads. Bumped whenever a field changes meaning, not just when
// a field is added.
const MinFormatVersion = "1.0.0"

// CurrentFormatVersion is written into every config this package
// serializes.
const CurrentFormatVersion = "1.0.0"

// CheckFormatVersion rejects a bootstrap file written by an older,
// incompatible loader. Grounded on
// calnex/firmware/firmware.go's ShouldUpgrade, which parses both sides
// with version.NewVersion and compares with LessThan rather than a
// string equality check, so a config's patch version can drift ahead
// of MinFormatVersion without tripping the gate.
func CheckFormatVersion(raw string) error {
	if raw == "" {
		return fmt.Errorf("config: missing required 'format_version' field")
	}
	got, err := version.NewVersion(raw)
	if err != nil {
		return fmt.Errorf("config: 'format_version' %q: %w", raw, err)
	}
	min, err := version.NewVersion(MinFormatVersion)
	if err != nil {
		return fmt.Errorf("config: internal MinFormatVersion %q: %w", MinFormatVersion, err)
	}
	if got.LessThan(min) {
		return fmt.Errorf("config: format_version %s predates the oldest supported version %s", got, min)
	}
	return nil
}
