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

// Package changelog defines the append-only, partition-aligned log of table
// mutations used to rebuild table state after a restart. Emission is an
// at-least-once durability sink: the in-memory mutation has already been
// applied by the time a record reaches the emitter, and an append failure
// never rolls it back. Records for one partition must reach the log in the
// same relative order the mutations occurred on that partition.
package changelog

import (
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-json"
)

// SerializerMode describes how a record's value payload was encoded.
type SerializerMode string

const (
	// ModeJSON marks a value encoded as JSON.
	ModeJSON SerializerMode = "json"
	// ModeRaw marks an unencoded payload. Tombstones are always raw.
	ModeRaw SerializerMode = "raw"
)

// Record is one table mutation bound for the changelog. A nil Value marks a
// tombstone, the deletion of Key.
type Record struct {
	// Key is the physical key the mutation applied to.
	Key string `json:"key"`
	// Value is the encoded value, or nil for a tombstone.
	Value []byte `json:"value"`
	// Partition is the partition of the event that drove the mutation.
	// Records are partition-aligned with the source stream.
	Partition int32 `json:"partition"`
	// Mode is the serializer mode of Value.
	Mode SerializerMode `json:"mode"`
}

// IsTombstone returns true if the record deletes its key.
func (r Record) IsTombstone() bool {
	return r.Value == nil
}

// MarshalBinary encodes the record for the wire.
func (r Record) MarshalBinary() ([]byte, error) {
	return json.Marshal(r)
}

// UnmarshalBinary decodes a record off the wire.
func (r *Record) UnmarshalBinary(data []byte) error {
	if err := json.Unmarshal(data, r); err != nil {
		return fmt.Errorf("failed to decode changelog record: %w", err)
	}
	return nil
}

// Emitter appends mutation records to a durable, partition-aligned log.
// Append may buffer and complete asynchronously, but per-partition ordering
// of appends must match the call order.
type Emitter interface {
	io.Closer
	// Append schedules the record for the log. A nil error means the record
	// was accepted for emission, not that it is durable yet.
	Append(ctx context.Context, r Record) error
}
