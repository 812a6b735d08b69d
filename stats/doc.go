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

// Package stats is the observability layer every teacher runtime
// package ships alongside its protocol core: named drop/slot counters,
// an online mean/variance of the Enhanced-ACK time-correction series,
// a Prometheus exporter, and an operator-supplied alarm-threshold
// expression evaluator.
package stats
