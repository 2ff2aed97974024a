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

// Package tumbling implements tumbling windows. Tumbling windows are defined by
// a static window size, e.g. minutely windows or hourly windows. They are
// aligned and non-overlapping, so every timestamp belongs to exactly one window.
package tumbling

import (
	"fmt"
	"time"

	"github.com/flowtable/flowtable/pkg/window"
)

// Tumbling implements fixed-size, non-overlapping windows.
type Tumbling struct {
	// Length is the temporal length of the window.
	Length time.Duration
	// Expiry is how long after a window closes its state is retained.
	// Zero means windows are retained indefinitely.
	Expiry time.Duration
}

var _ window.Windower = (*Tumbling)(nil)

// Option customizes a Tumbling windower.
type Option func(*Tumbling)

// WithExpiry bounds the retention of closed windows. A window that ended at e
// may be expired once event time passes e+expiry.
func WithExpiry(expiry time.Duration) Option {
	return func(t *Tumbling) {
		t.Expiry = expiry
	}
}

// NewWindower returns a Tumbling windower of the given length.
func NewWindower(length time.Duration, opts ...Option) (*Tumbling, error) {
	if length <= 0 {
		return nil, fmt.Errorf("%w: length %v must be positive", window.ErrInvalidWindow, length)
	}
	t := &Tumbling{
		Length: length,
	}
	for _, o := range opts {
		o(t)
	}
	if t.Expiry < 0 {
		return nil, fmt.Errorf("%w: expiry %v must not be negative", window.ErrInvalidWindow, t.Expiry)
	}
	return t, nil
}

// AssignWindows assigns the window for the given eventTime.
// Assignment follows a left inclusive and right exclusive principle, so an
// element on the boundary falls into the window to the right of the boundary.
func (t *Tumbling) AssignWindows(eventTime time.Time) []window.ID {
	return []window.ID{t.MostRecent(eventTime)}
}

// MostRecent returns the single window covering eventTime.
func (t *Tumbling) MostRecent(eventTime time.Time) window.ID {
	return window.ID(floorDiv(eventTime.UnixMilli(), t.Length.Milliseconds()))
}

// StartTime returns the inclusive start of window id.
func (t *Tumbling) StartTime(id window.ID) time.Time {
	return time.UnixMilli(int64(id) * t.Length.Milliseconds())
}

// EndTime returns the exclusive end of window id.
func (t *Tumbling) EndTime(id window.ID) time.Time {
	return t.StartTime(id).Add(t.Length)
}

// Deadline returns when window id becomes eligible for expiry.
func (t *Tumbling) Deadline(id window.ID) (time.Time, bool) {
	if t.Expiry == 0 {
		return time.Time{}, false
	}
	return t.EndTime(id).Add(t.Expiry), true
}

// floorDiv is integer division rounding towards negative infinity, so
// timestamps before the epoch still land in the window to their right.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
