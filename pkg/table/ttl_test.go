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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowtable/flowtable/pkg/changelog"
	"github.com/flowtable/flowtable/pkg/window/strategy/tumbling"
)

func tombstones(records []changelog.Record) []changelog.Record {
	var out []changelog.Record
	for _, r := range records {
		if r.IsTombstone() {
			out = append(out, r)
		}
	}
	return out
}

func TestTTL_ExpiryAtDeadline(t *testing.T) {
	w, err := tumbling.NewWindower(time.Minute, tumbling.WithExpiry(30*time.Second))
	require.NoError(t, err)
	wt, emitter := newWindowedTable(t, w, nil,
		WithDefault[string](func() string { return "default" }))

	// write at t=100s: window [60s, 120s), deadline 150s
	require.NoError(t, wt.Set(eventCtx(0, 100_000, 1), "k", "v"))

	// an event just before the deadline keeps the window alive
	require.NoError(t, wt.Set(eventCtx(0, 149_000, 2), "other", "x"))
	v, err := wt.GetAt("k", time.UnixMilli(100_000))
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	// event time passing the deadline purges the window
	require.NoError(t, wt.Set(eventCtx(0, 151_000, 3), "other", "y"))
	v, err = wt.GetAt("k", time.UnixMilli(100_000))
	require.NoError(t, err)
	assert.Equal(t, "default", v)

	emitter.Flush()
	tombs := tombstones(emitter.Records(0))
	require.Len(t, tombs, 1)
	logical, id, ok := splitPhysicalKey(tombs[0].Key)
	require.True(t, ok)
	assert.Equal(t, "k", logical)
	assert.Equal(t, w.MostRecent(time.UnixMilli(100_000)), id)
}

func TestTTL_PartitionIsolation(t *testing.T) {
	w, err := tumbling.NewWindower(time.Minute, tumbling.WithExpiry(30*time.Second))
	require.NoError(t, err)
	wt, emitter := newWindowedTable(t, w, nil)

	require.NoError(t, wt.Set(eventCtx(0, 100_000, 1), "k", "v"))

	// partition 1 races far ahead; partition 0's windows must not expire
	require.NoError(t, wt.Set(eventCtx(1, 1_000_000, 1), "other", "x"))

	v, err := wt.GetAt("k", time.UnixMilli(100_000))
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	emitter.Flush()
	assert.Empty(t, tombstones(emitter.Records(0)))
	assert.Empty(t, tombstones(emitter.Records(1)))
}

func TestTTL_ClockNeverRegresses(t *testing.T) {
	w, err := tumbling.NewWindower(time.Minute, tumbling.WithExpiry(30*time.Second))
	require.NoError(t, err)
	wt, emitter := newWindowedTable(t, w, nil,
		WithDefault[string](func() string { return "default" }))

	// advance the partition clock to 151s, expiring nothing yet
	require.NoError(t, wt.Set(eventCtx(0, 151_000, 1), "late", "x"))

	// a late write at t=100s lands in window [60s, 120s) whose deadline
	// (150s) already passed; the next observation purges it and the stale
	// event time does not pull the clock back
	require.NoError(t, wt.SetAt(eventCtx(0, 100_000, 2), "k", "v", time.UnixMilli(100_000)))
	require.NoError(t, wt.Set(eventCtx(0, 151_500, 3), "late", "y"))

	v, err := wt.GetAt("k", time.UnixMilli(100_000))
	require.NoError(t, err)
	assert.Equal(t, "default", v)

	emitter.Flush()
	assert.Len(t, tombstones(emitter.Records(0)), 1)
}

func TestTTL_LateWriteSurvivesOwnMutation(t *testing.T) {
	w, err := tumbling.NewWindower(time.Minute, tumbling.WithExpiry(30*time.Second))
	require.NoError(t, err)
	wt, emitter := newWindowedTable(t, w, nil)

	// advance the partition clock past the deadline of window [60s, 120s)
	require.NoError(t, wt.Set(eventCtx(0, 151_000, 1), "other", "x"))

	// a write into that window must not be purged by its own TTL sweep;
	// the value is readable the moment Set returns
	require.NoError(t, wt.SetAt(eventCtx(0, 100_000, 2), "k", "v", time.UnixMilli(100_000)))
	v, err := wt.GetAt("k", time.UnixMilli(100_000))
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	emitter.Flush()
	assert.Empty(t, tombstones(emitter.Records(0)))

	// only the next observed event expires it
	require.NoError(t, wt.Set(eventCtx(0, 152_000, 3), "other", "y"))
	_, err = wt.GetAt("k", time.UnixMilli(100_000))
	assert.ErrorIs(t, err, ErrKeyNotFound)

	emitter.Flush()
	assert.Len(t, tombstones(emitter.Records(0)), 1)
}

func TestTTL_ReopenedWindowExpiresAgain(t *testing.T) {
	w, err := tumbling.NewWindower(time.Minute, tumbling.WithExpiry(30*time.Second))
	require.NoError(t, err)
	wt, emitter := newWindowedTable(t, w, nil,
		WithDefault[string](func() string { return "default" }))

	require.NoError(t, wt.Set(eventCtx(0, 100_000, 1), "k", "v"))
	require.NoError(t, wt.Set(eventCtx(0, 151_000, 2), "other", "x"))

	// the tombstone was emitted; re-writing the same window reopens it
	require.NoError(t, wt.SetAt(eventCtx(0, 151_100, 3), "k", "v2", time.UnixMilli(100_000)))
	v, err := wt.GetAt("k", time.UnixMilli(100_000))
	require.NoError(t, err)
	assert.Equal(t, "v2", v)

	// and it expires again on the next clock advance
	require.NoError(t, wt.Set(eventCtx(0, 200_000, 4), "other", "y"))
	v, err = wt.GetAt("k", time.UnixMilli(100_000))
	require.NoError(t, err)
	assert.Equal(t, "default", v)

	emitter.Flush()
	assert.Len(t, tombstones(emitter.Records(0)), 2)
}

func TestTTL_NoExpiryConfigured(t *testing.T) {
	w, err := tumbling.NewWindower(time.Minute)
	require.NoError(t, err)
	wt, emitter := newWindowedTable(t, w, nil)

	require.NoError(t, wt.Set(eventCtx(0, 100_000, 1), "k", "v"))
	require.NoError(t, wt.Set(eventCtx(0, 10_000_000, 2), "other", "x"))

	v, err := wt.GetAt("k", time.UnixMilli(100_000))
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	emitter.Flush()
	assert.Empty(t, tombstones(emitter.Records(0)))
}

func TestTTL_ExplicitDeleteDropsEntry(t *testing.T) {
	w, err := tumbling.NewWindower(time.Minute, tumbling.WithExpiry(30*time.Second))
	require.NoError(t, err)
	wt, emitter := newWindowedTable(t, w, nil)

	require.NoError(t, wt.Set(eventCtx(0, 100_000, 1), "k", "v"))
	require.NoError(t, wt.DeleteAt(eventCtx(0, 101_000, 2), "k", time.UnixMilli(100_000)))

	// passing the deadline afterwards must not emit a second tombstone
	require.NoError(t, wt.Set(eventCtx(0, 151_000, 3), "other", "x"))

	emitter.Flush()
	assert.Len(t, tombstones(emitter.Records(0)), 1)
}
