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

// Package table implements the stateful table at the heart of a partitioned
// stream-processing task: a key-value store whose every mutation is causally
// tied to the event currently being processed and mirrored into an append-only
// changelog for crash recovery. Mutations apply to the in-memory store
// synchronously, so reads in the same thread of execution see them
// immediately; changelog emission may complete later. A process crash between
// the in-memory commit and the changelog append loses that mutation on
// recovery. That trade-off favors read-your-write latency over strict
// durability and is deliberate.
package table

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/flowtable/flowtable/pkg/changelog"
	"github.com/flowtable/flowtable/pkg/sensors"
	"github.com/flowtable/flowtable/pkg/shared/logging"
	"github.com/flowtable/flowtable/pkg/store"
	"github.com/flowtable/flowtable/pkg/stream"
	"github.com/flowtable/flowtable/pkg/window"
)

// Table is a partitioned key-value table with changelog-backed recovery.
// A table is constructed once at topology-build time and lives for the
// lifetime of the owning process. Values are encoded as JSON in both the
// physical store and the changelog.
type Table[V any] struct {
	name    string
	store   store.Storer
	emitter changelog.Emitter
	sensor  sensors.Sensor
	// defaultFn, when set, produces the value returned for absent keys.
	defaultFn func() V
	// compacting means the changelog retains only the latest record per
	// physical key; deleting means it accepts tombstones.
	compacting bool
	deleting   bool

	// windower is set at most once, by NewWindowed.
	windower window.Windower
	ttl      *ttlManager
	log      *zap.SugaredLogger
}

// New returns a table backed by the given physical store and changelog
// emitter. The table owns the store exclusively; nothing else writes to it.
func New[V any](ctx context.Context, name string, st store.Storer, em changelog.Emitter, opts ...Option[V]) *Table[V] {
	t := &Table[V]{
		name:    name,
		store:   st,
		emitter: em,
		sensor:  sensors.Noop(),
		log:     logging.FromContext(ctx).With("table", name),
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Name returns the table name.
func (t *Table[V]) Name() string {
	return t.name
}

// Compacting returns whether the changelog keeps only the latest record per
// physical key.
func (t *Table[V]) Compacting() bool {
	return t.compacting
}

// Deleting returns whether the changelog accepts tombstones.
func (t *Table[V]) Deleting() bool {
	return t.deleting
}

// Windowed returns whether the table has been wrapped with a window policy.
func (t *Table[V]) Windowed() bool {
	return t.windower != nil
}

// Get returns the value stored under key. If the key is absent and a default
// factory is configured, the freshly computed default is returned without
// being written back; otherwise ErrKeyNotFound. The sensor is notified of the
// read either way.
func (t *Table[V]) Get(key string) (V, error) {
	var v V
	raw, ok := t.store.Get(key)
	t.notify(func() { t.sensor.OnGet(t.name, key) })
	if !ok {
		if t.defaultFn != nil {
			return t.defaultFn(), nil
		}
		return v, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("failed to decode value of key %q: %w", key, err)
	}
	return v, nil
}

// Set stores value under key. The mutation requires an active event in the
// context; it is applied to the store first, then mirrored to the changelog
// tagged with the event's partition, then TTL bookkeeping runs, then the
// sensor is notified. That order is the contract: the changelog reflects
// exactly the sequence of applied mutations.
func (t *Table[V]) Set(ctx context.Context, key string, value V) error {
	ev, ok := stream.EventFrom(ctx)
	if !ok {
		return ErrNoActiveContext
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode value of key %q: %w", key, err)
	}
	t.store.Set(key, payload)
	if err := t.emitter.Append(ctx, changelog.Record{
		Key:       key,
		Value:     payload,
		Partition: ev.Partition,
		Mode:      changelog.ModeJSON,
	}); err != nil {
		// the in-memory mutation stays applied; durability is at-least-once
		t.log.Errorw("Failed to append changelog record", zap.String("key", key), zap.Error(err))
	}
	t.maybeSetKeyTTL(ctx, ev, key)
	t.notify(func() { t.sensor.OnSet(t.name, key, payload) })
	return nil
}

// Delete removes key, emitting a tombstone to the changelog. Same context
// requirement and side-effect order as Set.
func (t *Table[V]) Delete(ctx context.Context, key string) error {
	ev, ok := stream.EventFrom(ctx)
	if !ok {
		return ErrNoActiveContext
	}
	t.store.Delete(key)
	if err := t.emitter.Append(ctx, changelog.Record{
		Key:       key,
		Partition: ev.Partition,
		Mode:      changelog.ModeRaw,
	}); err != nil {
		t.log.Errorw("Failed to append changelog tombstone", zap.String("key", key), zap.Error(err))
	}
	t.maybeDelKeyTTL(ctx, ev, key)
	t.notify(func() { t.sensor.OnDelete(t.name, key) })
	return nil
}

// deleteExpired removes a physical key whose window's retention deadline has
// passed. The expiry entry has already been popped, so TTL bookkeeping is
// skipped; the tombstone still goes through the changelog in mutation order.
func (t *Table[V]) deleteExpired(ctx context.Context, partition int32, key string) {
	t.store.Delete(key)
	if err := t.emitter.Append(ctx, changelog.Record{
		Key:       key,
		Partition: partition,
		Mode:      changelog.ModeRaw,
	}); err != nil {
		t.log.Errorw("Failed to append expiry tombstone", zap.String("key", key), zap.Error(err))
	}
	t.notify(func() { t.sensor.OnDelete(t.name, key) })
}

func (t *Table[V]) maybeSetKeyTTL(ctx context.Context, ev stream.Event, key string) {
	if t.ttl == nil {
		return
	}
	// observe before touch: a write into a window whose deadline is already
	// behind the partition clock reopens it, and the fresh entry must survive
	// until the next observed event rather than be purged by its own mutation.
	t.ttl.observe(ctx, ev)
	t.ttl.touch(ev, key)
}

func (t *Table[V]) maybeDelKeyTTL(ctx context.Context, ev stream.Event, key string) {
	if t.ttl == nil {
		return
	}
	t.ttl.forget(ev.Partition, key)
	t.ttl.observe(ctx, ev)
}

// notify runs a sensor callback, containing any panic. Sensors are
// observational and must never affect table correctness.
func (t *Table[V]) notify(f func()) {
	defer func() {
		if r := recover(); r != nil {
			t.log.Errorw("Sensor callback panicked", zap.Any("panic", r))
		}
	}()
	f()
}

// Rows returns a snapshot of the table's physical keys and their raw encoded
// values, for rendering and inspection. Read-only, no sensor notification.
func (t *Table[V]) Rows() map[string]string {
	rows := make(map[string]string, t.store.Len())
	for _, key := range t.store.Keys() {
		if raw, ok := t.store.Get(key); ok {
			rows[key] = string(raw)
		}
	}
	return rows
}

// Close closes the changelog emitter and the physical store.
func (t *Table[V]) Close() error {
	emitterErr := t.emitter.Close()
	if err := t.store.Close(); err != nil {
		return err
	}
	return emitterErr
}
