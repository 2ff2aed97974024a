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

package table

import "github.com/flowtable/flowtable/pkg/sensors"

// Option customizes a Table.
type Option[V any] func(*Table[V])

// WithDefault configures the value returned for absent keys. The factory is
// invoked on every missing read and its result is never written back.
func WithDefault[V any](fn func() V) Option[V] {
	return func(t *Table[V]) {
		t.defaultFn = fn
	}
}

// WithSensor attaches a sensor notified on every get, set and delete.
func WithSensor[V any](s sensors.Sensor) Option[V] {
	return func(t *Table[V]) {
		t.sensor = s
	}
}

// WithCompacting sets whether the changelog keeps only the latest record per
// physical key. Windowing forces this on.
func WithCompacting[V any](compacting bool) Option[V] {
	return func(t *Table[V]) {
		t.compacting = compacting
	}
}

// WithDeleting sets whether the changelog accepts tombstones. Windowing
// forces this on.
func WithDeleting[V any](deleting bool) Option[V] {
	return func(t *Table[V]) {
		t.deleting = deleting
	}
}
