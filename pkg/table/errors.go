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

import "errors"

var (
	// ErrKeyNotFound is returned by Get when the key is absent and the table
	// has no default factory. Expected control flow, callers match with
	// errors.Is.
	ErrKeyNotFound = errors.New("table: key not found")

	// ErrNoActiveContext is returned when a mutation is attempted while no
	// event is bound to the context. Mutating table state outside event
	// processing is a caller bug, not a recoverable race.
	ErrNoActiveContext = errors.New("table: mutation outside of event processing")

	// ErrAlreadyWindowed is returned when a table is wrapped with a window
	// policy a second time. The policy is immutable for the table's lifetime.
	ErrAlreadyWindowed = errors.New("table: table is already windowed")
)
