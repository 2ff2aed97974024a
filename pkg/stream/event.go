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

// Package stream carries the identity of the event currently driving execution.
// Every table mutation is causally tied to exactly one inbound event; the event
// is bound into the context for the duration of processing and cleared when the
// context goes out of scope. There is deliberately no process-wide current event,
// partition tasks run concurrently and each binds its own.
package stream

import (
	"context"
	"time"
)

// Event identifies the inbound stream event currently being processed.
// It exists only for the duration of processing that one event and is
// never persisted.
type Event struct {
	// Partition is the source partition the event was read from.
	Partition int32
	// Timestamp is the event time of the event.
	Timestamp time.Time
	// Offset is the event's offset within its partition.
	Offset int64
}

type eventKey struct{}

// WithEvent returns a copy of parent context carrying the given event.
// The processing loop binds the event before invoking user code and the
// binding lives exactly as long as the derived context.
func WithEvent(ctx context.Context, ev Event) context.Context {
	return context.WithValue(ctx, eventKey{}, ev)
}

// EventFrom returns the event bound to the context, if any.
// Absence of an event means the caller is outside event processing,
// which gates all table mutations.
func EventFrom(ctx context.Context) (Event, bool) {
	ev, ok := ctx.Value(eventKey{}).(Event)
	return ev, ok
}
