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

// Package config is the typed bootstrap loader an interface starts
// from: a YAML primary format with a legacy INI fallback for
// interop with older commissioning tools, plus the
// format_version compatibility gate. §6 "Persisted state: none" — the
// schedule store, hopping sequence, and attributes this package builds
// are re-installed from the config file every time the interface
// starts, never read back from runtime state.
package config
