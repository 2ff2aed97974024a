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

package jetstream

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowtable/flowtable/pkg/changelog"
	jsclient "github.com/flowtable/flowtable/pkg/shared/clients/nats"
	natstest "github.com/flowtable/flowtable/pkg/shared/clients/nats/test"
)

func TestEmitter_AppendAndReadBack(t *testing.T) {
	server := natstest.RunJetStreamServer(t)
	defer natstest.ShutdownJetStreamServer(t, server)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := jsclient.NewClient(ctx, server.ClientURL())
	require.NoError(t, err)
	defer client.Close()

	emitter, err := NewEmitter(ctx, client, "testchangelog", WithMemoryStorage())
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		require.NoError(t, emitter.Append(ctx, changelog.Record{
			Key:       fmt.Sprintf("k%d", i),
			Value:     []byte(fmt.Sprintf(`"v%d"`, i)),
			Partition: int32(i % 2),
			Mode:      changelog.ModeJSON,
		}))
	}
	// a tombstone on partition 0
	require.NoError(t, emitter.Append(ctx, changelog.Record{
		Key:       "k0",
		Partition: 0,
		Mode:      changelog.ModeRaw,
	}))
	require.NoError(t, emitter.Close())

	records, err := ReadPartition(ctx, client, "testchangelog", 0)
	require.NoError(t, err)
	require.Len(t, records, 6)
	// per-partition append order is preserved
	for i := 0; i < 5; i++ {
		assert.Equal(t, fmt.Sprintf("k%d", i*2), records[i].Key)
		assert.False(t, records[i].IsTombstone())
		assert.Equal(t, int32(0), records[i].Partition)
	}
	assert.True(t, records[5].IsTombstone())

	records, err = ReadPartition(ctx, client, "testchangelog", 1)
	require.NoError(t, err)
	assert.Len(t, records, 5)
}

func TestEmitter_ExistingStream(t *testing.T) {
	server := natstest.RunJetStreamServer(t)
	defer natstest.ShutdownJetStreamServer(t, server)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := jsclient.NewClient(ctx, server.ClientURL())
	require.NoError(t, err)
	defer client.Close()

	first, err := NewEmitter(ctx, client, "sharedstream", WithMemoryStorage())
	require.NoError(t, err)
	require.NoError(t, first.Close())

	// second emitter binds to the already-created stream
	second, err := NewEmitter(ctx, client, "sharedstream", WithMemoryStorage())
	require.NoError(t, err)
	require.NoError(t, second.Append(ctx, changelog.Record{Key: "k", Value: []byte(`"v"`), Partition: 0, Mode: changelog.ModeJSON}))
	require.NoError(t, second.Close())

	records, err := ReadPartition(ctx, client, "sharedstream", 0)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestReadPartition_MissingStream(t *testing.T) {
	server := natstest.RunJetStreamServer(t)
	defer natstest.ShutdownJetStreamServer(t, server)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := jsclient.NewClient(ctx, server.ClientURL())
	require.NoError(t, err)
	defer client.Close()

	records, err := ReadPartition(ctx, client, "nosuchstream", 0)
	require.NoError(t, err)
	assert.Empty(t, records)
}
