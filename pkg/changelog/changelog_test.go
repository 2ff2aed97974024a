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

package changelog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_TombstoneSurvivesTheWire(t *testing.T) {
	tomb := Record{Key: "k", Partition: 2, Mode: ModeRaw}
	require.True(t, tomb.IsTombstone())

	data, err := tomb.MarshalBinary()
	require.NoError(t, err)

	var decoded Record
	require.NoError(t, decoded.UnmarshalBinary(data))
	assert.True(t, decoded.IsTombstone(), "tombstone must remain a tombstone after decoding")
	assert.Equal(t, tomb, decoded)
}

func TestRecord_UnmarshalInvalid(t *testing.T) {
	var r Record
	assert.Error(t, r.UnmarshalBinary([]byte("not json")))
}
