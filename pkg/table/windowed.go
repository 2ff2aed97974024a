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

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/flowtable/flowtable/pkg/stream"
	"github.com/flowtable/flowtable/pkg/window"
)

// windowKeySeparator joins a logical key and its window ID into a physical
// key. NUL cannot appear in a window ID's decimal form, so splitting on the
// last separator is unambiguous.
const windowKeySeparator = "\x00"

func physicalKey(key string, id window.ID) string {
	return key + windowKeySeparator + strconv.FormatInt(int64(id), 10)
}

func splitPhysicalKey(physical string) (string, window.ID, bool) {
	i := strings.LastIndex(physical, windowKeySeparator)
	if i < 0 {
		return "", 0, false
	}
	n, err := strconv.ParseInt(physical[i+1:], 10, 64)
	if err != nil {
		return "", 0, false
	}
	return physical[:i], window.ID(n), true
}

// WindowedTable translates logical key access into one or more physical
// accesses keyed by (logical key, window ID). Writes fan out to every window
// containing the timestamp, in ascending window order, so replay outcome is
// order-independent; reads resolve to the most recent covering window.
type WindowedTable[V any] struct {
	table    *Table[V]
	windower window.Windower
	// index, when enabled, tracks the live windows of each logical key so
	// they can be enumerated without scanning the store. A storage-layout
	// choice only; read and write semantics are identical either way.
	index *xsync.MapOf[string, *xsync.MapOf[window.ID, struct{}]]
}

// WindowedOption customizes a WindowedTable.
type WindowedOption func(*windowedConfig)

type windowedConfig struct {
	keyIndex bool
}

// WithKeyIndex maintains a per-key index of live windows, making WindowsOf
// cheap at the cost of extra bookkeeping per write.
func WithKeyIndex() WindowedOption {
	return func(c *windowedConfig) {
		c.keyIndex = true
	}
}

// NewWindowed wraps a table with a window policy. Wrapping is a one-time
// configuration step: it fails if the table is already windowed, and it
// forces the changelog into compacting+deleting mode since a windowed table
// needs tombstones and only the latest value per physical key.
func NewWindowed[V any](t *Table[V], w window.Windower, opts ...WindowedOption) (*WindowedTable[V], error) {
	if t.windower != nil {
		return nil, ErrAlreadyWindowed
	}
	cfg := &windowedConfig{}
	for _, o := range opts {
		o(cfg)
	}

	wt := &WindowedTable[V]{
		table:    t,
		windower: w,
	}
	if cfg.keyIndex {
		wt.index = xsync.NewMapOf[string, *xsync.MapOf[window.ID, struct{}]]()
	}

	t.windower = w
	t.compacting = true
	t.deleting = true
	t.ttl = newTTLManager(w, wt.expireWindow, t.log)
	return wt, nil
}

// Set writes value into every window containing the active event's timestamp.
func (wt *WindowedTable[V]) Set(ctx context.Context, key string, value V) error {
	ev, ok := stream.EventFrom(ctx)
	if !ok {
		return ErrNoActiveContext
	}
	return wt.SetAt(ctx, key, value, ev.Timestamp)
}

// SetAt writes value into every window containing the explicit timestamp.
// Physical writes happen in ascending window order; each one runs the full
// store, changelog, TTL, sensor sequence.
func (wt *WindowedTable[V]) SetAt(ctx context.Context, key string, value V, eventTime time.Time) error {
	for _, id := range wt.windower.AssignWindows(eventTime) {
		if err := wt.table.Set(ctx, physicalKey(key, id), value); err != nil {
			return err
		}
		wt.indexAdd(key, id)
	}
	return nil
}

// Get reads the value of key in the most recent window covering the active
// event's timestamp.
func (wt *WindowedTable[V]) Get(ctx context.Context, key string) (V, error) {
	ev, ok := stream.EventFrom(ctx)
	if !ok {
		var v V
		return v, ErrNoActiveContext
	}
	return wt.GetAt(key, ev.Timestamp)
}

// GetAt reads the value of key in the most recent window covering the
// explicit timestamp. An expired or never-written window reads as the
// table's default, or ErrKeyNotFound without one.
func (wt *WindowedTable[V]) GetAt(key string, eventTime time.Time) (V, error) {
	return wt.table.Get(physicalKey(key, wt.windower.MostRecent(eventTime)))
}

// GetWindow reads the value of key in one specific window.
func (wt *WindowedTable[V]) GetWindow(key string, id window.ID) (V, error) {
	return wt.table.Get(physicalKey(key, id))
}

// Delete removes key from every window containing the active event's
// timestamp, emitting one tombstone per window.
func (wt *WindowedTable[V]) Delete(ctx context.Context, key string) error {
	ev, ok := stream.EventFrom(ctx)
	if !ok {
		return ErrNoActiveContext
	}
	return wt.DeleteAt(ctx, key, ev.Timestamp)
}

// DeleteAt mirrors SetAt's fan-out with tombstones.
func (wt *WindowedTable[V]) DeleteAt(ctx context.Context, key string, eventTime time.Time) error {
	for _, id := range wt.windower.AssignWindows(eventTime) {
		if err := wt.table.Delete(ctx, physicalKey(key, id)); err != nil {
			return err
		}
		wt.indexRemove(key, id)
	}
	return nil
}

// WindowsOf returns the live windows of a logical key in ascending order.
// With the key index enabled this is a map lookup; without it the store's
// keys are scanned.
func (wt *WindowedTable[V]) WindowsOf(key string) []window.ID {
	var ids []window.ID
	if wt.index != nil {
		if windows, ok := wt.index.Load(key); ok {
			windows.Range(func(id window.ID, _ struct{}) bool {
				ids = append(ids, id)
				return true
			})
		}
	} else {
		for _, physical := range wt.table.store.Keys() {
			k, id, ok := splitPhysicalKey(physical)
			if ok && k == key {
				ids = append(ids, id)
			}
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Table returns the underlying table core.
func (wt *WindowedTable[V]) Table() *Table[V] {
	return wt.table
}

// expireWindow is the TTL manager's delete path: tombstone the physical key
// and drop it from the key index.
func (wt *WindowedTable[V]) expireWindow(ctx context.Context, partition int32, key string) {
	wt.table.deleteExpired(ctx, partition, key)
	if k, id, ok := splitPhysicalKey(key); ok {
		wt.indexRemove(k, id)
	}
}

func (wt *WindowedTable[V]) indexAdd(key string, id window.ID) {
	if wt.index == nil {
		return
	}
	windows, _ := wt.index.LoadOrCompute(key, func() *xsync.MapOf[window.ID, struct{}] {
		return xsync.NewMapOf[window.ID, struct{}]()
	})
	windows.Store(id, struct{}{})
}

func (wt *WindowedTable[V]) indexRemove(key string, id window.ID) {
	if wt.index == nil {
		return
	}
	if windows, ok := wt.index.Load(key); ok {
		windows.Delete(id)
	}
}
