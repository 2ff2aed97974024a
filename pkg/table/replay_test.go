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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowtable/flowtable/pkg/changelog/noop"
	storeinmem "github.com/flowtable/flowtable/pkg/store/inmem"
)

func TestReplay_RebuildsState(t *testing.T) {
	source, emitter := newTestTable(t)

	require.NoError(t, source.Set(eventCtx(0, 100, 1), "k1", "v1"))
	require.NoError(t, source.Set(eventCtx(0, 101, 2), "k2", "v2"))
	require.NoError(t, source.Set(eventCtx(0, 102, 3), "k1", "v1-updated"))
	require.NoError(t, source.Delete(eventCtx(0, 103, 4), "k2"))
	emitter.Flush()

	ctx := context.Background()
	restored := New[string](ctx, "restored", storeinmem.NewStore("restored"), noop.NewEmitter())
	defer func() { _ = restored.Close() }()
	restored.Replay(emitter.Records(0))

	assert.Equal(t, source.Rows(), restored.Rows())

	v, err := restored.Get("k1")
	require.NoError(t, err)
	assert.Equal(t, "v1-updated", v)
	_, err = restored.Get("k2")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestReplay_Idempotent(t *testing.T) {
	source, emitter := newTestTable(t)

	require.NoError(t, source.Set(eventCtx(0, 100, 1), "k1", "a"))
	require.NoError(t, source.Set(eventCtx(0, 101, 2), "k2", "b"))
	require.NoError(t, source.Delete(eventCtx(0, 102, 3), "k1"))
	require.NoError(t, source.Set(eventCtx(0, 103, 4), "k1", "c"))
	emitter.Flush()
	records := emitter.Records(0)

	ctx := context.Background()
	once := New[string](ctx, "once", storeinmem.NewStore("once"), noop.NewEmitter())
	defer func() { _ = once.Close() }()
	once.Replay(records)

	twice := New[string](ctx, "twice", storeinmem.NewStore("twice"), noop.NewEmitter())
	defer func() { _ = twice.Close() }()
	twice.Replay(records)
	twice.Replay(records)

	// last write wins per physical key, so replaying again changes nothing
	assert.Equal(t, once.Rows(), twice.Rows())
	assert.Equal(t, map[string]string{"k1": `"c"`, "k2": `"b"`}, once.Rows())
}
