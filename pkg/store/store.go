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

// Package store defines the physical key-value storage engine backing a table.
// The engine is byte oriented and opaque to the table core; windowed tables
// multiplex logical keys onto physical keys above this interface.
package store

import "io"

// Storer is the physical storage engine owned by a table. The table core is
// the only writer; wrappers never bypass it. Implementations must support
// concurrent access, distinct partition tasks may touch disjoint keys at the
// same time.
type Storer interface {
	io.Closer
	// Get returns the stored value for key, and whether it was present.
	Get(key string) ([]byte, bool)
	// Set stores value under key, replacing any previous value.
	Set(key string, value []byte)
	// Delete removes key. Deleting an absent key is a no-op.
	Delete(key string)
	// Keys returns a snapshot of all keys currently present, in no
	// particular order.
	Keys() []string
	// Len returns the number of keys currently present.
	Len() int
}
