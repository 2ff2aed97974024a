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

// Package window defines how event timestamps map onto the time buckets of a
// windowed table. A windower is a pure function of its parameters; it keeps no
// state about which windows exist, the table owns that.
package window

import (
	"errors"
	"time"
)

// ErrInvalidWindow is returned when a windower is constructed with invalid
// durations, e.g. a non-positive length or a slide larger than the length.
var ErrInvalidWindow = errors.New("invalid window configuration")

// ID identifies a single time bucket of a windowed table. For tumbling windows
// it is the bucket index; for hopping windows it is the index of the slide the
// window starts on. A timestamp may map to several IDs when windows overlap.
type ID int64

// Windower assigns event times to window buckets and knows when a bucket's
// retention deadline passes.
type Windower interface {
	// AssignWindows returns the IDs of every window containing eventTime,
	// in ascending order. Writes fan out to all of them.
	AssignWindows(eventTime time.Time) []ID
	// MostRecent returns the most recent window containing eventTime.
	// Single-window reads resolve through this.
	MostRecent(eventTime time.Time) ID
	// StartTime returns the inclusive start of the window.
	StartTime(id ID) time.Time
	// EndTime returns the exclusive end of the window.
	EndTime(id ID) time.Time
	// Deadline returns the instant after which the window may be expired.
	// The second return is false when the windower has no expiry configured,
	// in which case windows are retained indefinitely.
	Deadline(id ID) (time.Time, bool)
}
