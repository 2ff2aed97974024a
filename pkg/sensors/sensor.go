/*
Copyright 2024 The Flowtable Authors.

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

// Package sensors defines the observer interface notified on table access.
// Sensors are fire-and-forget: they run synchronously after the operation has
// completed locally and never gate correctness. A failing sensor is a logging
// problem, not a table problem.
package sensors

// Sensor is notified after table operations complete.
type Sensor interface {
	// OnGet is called after a key was read, hit or miss.
	OnGet(table, key string)
	// OnSet is called after a key was written.
	OnSet(table, key string, value []byte)
	// OnDelete is called after a key was deleted.
	OnDelete(table, key string)
}

type noopSensor struct{}

func (noopSensor) OnGet(_, _ string)           {}
func (noopSensor) OnSet(_, _ string, _ []byte) {}
func (noopSensor) OnDelete(_, _ string)        {}

// Noop returns a sensor that ignores every notification.
func Noop() Sensor {
	return noopSensor{}
}
