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

// Package hopping implements hopping windows. Hopping windows are defined by a
// static window size and a fixed slide which is the duration by which the
// boundaries of successive windows are phased out. With slide smaller than
// length the windows overlap and a single timestamp belongs to several windows
// at once. A slide equal to the length degenerates to tumbling windows.
package hopping

import (
	"fmt"
	"time"

	"github.com/flowtable/flowtable/pkg/window"
)

// Hopping implements fixed-size, overlapping windows.
type Hopping struct {
	// Length is the temporal length of the window.
	Length time.Duration
	// Slide is the offset between successive windows.
	Slide time.Duration
	// Expiry is how long after a window closes its state is retained.
	// Zero means windows are retained indefinitely.
	Expiry time.Duration
}

var _ window.Windower = (*Hopping)(nil)

// Option customizes a Hopping windower.
type Option func(*Hopping)

// WithExpiry bounds the retention of closed windows.
func WithExpiry(expiry time.Duration) Option {
	return func(h *Hopping) {
		h.Expiry = expiry
	}
}

// NewWindower returns a Hopping windower of the given length and slide.
// The slide must be positive and must not exceed the length.
func NewWindower(length time.Duration, slide time.Duration, opts ...Option) (*Hopping, error) {
	if length <= 0 {
		return nil, fmt.Errorf("%w: length %v must be positive", window.ErrInvalidWindow, length)
	}
	if slide <= 0 {
		return nil, fmt.Errorf("%w: slide %v must be positive", window.ErrInvalidWindow, slide)
	}
	if slide > length {
		return nil, fmt.Errorf("%w: slide %v must not exceed length %v", window.ErrInvalidWindow, slide, length)
	}
	h := &Hopping{
		Length: length,
		Slide:  slide,
	}
	for _, o := range opts {
		o(h)
	}
	if h.Expiry < 0 {
		return nil, fmt.Errorf("%w: expiry %v must not be negative", window.ErrInvalidWindow, h.Expiry)
	}
	return h, nil
}

// AssignWindows returns every window containing eventTime in ascending order.
// Window w spans [w*slide, w*slide+length), so the covering windows are the
// contiguous run ending at the highest integer multiple of the slide which is
// not greater than eventTime.
func (h *Hopping) AssignWindows(eventTime time.Time) []window.ID {
	last := int64(h.MostRecent(eventTime))
	ids := make([]window.ID, 0, (h.Length.Milliseconds()+h.Slide.Milliseconds()-1)/h.Slide.Milliseconds())
	first := floorDiv(eventTime.UnixMilli()-h.Length.Milliseconds(), h.Slide.Milliseconds()) + 1
	for w := first; w <= last; w++ {
		ids = append(ids, window.ID(w))
	}
	return ids
}

// MostRecent returns the most recent window covering eventTime, the one whose
// start is the highest multiple of the slide not after the event.
func (h *Hopping) MostRecent(eventTime time.Time) window.ID {
	return window.ID(floorDiv(eventTime.UnixMilli(), h.Slide.Milliseconds()))
}

// StartTime returns the inclusive start of window id.
func (h *Hopping) StartTime(id window.ID) time.Time {
	return time.UnixMilli(int64(id) * h.Slide.Milliseconds())
}

// EndTime returns the exclusive end of window id.
func (h *Hopping) EndTime(id window.ID) time.Time {
	return h.StartTime(id).Add(h.Length)
}

// Deadline returns when window id becomes eligible for expiry.
func (h *Hopping) Deadline(id window.ID) (time.Time, bool) {
	if h.Expiry == 0 {
		return time.Time{}, false
	}
	return h.EndTime(id).Add(h.Expiry), true
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
