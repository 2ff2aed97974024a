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
	"go.uber.org/zap"

	"github.com/flowtable/flowtable/pkg/changelog"
)

// Replay rebuilds the table's state from an ordered sequence of changelog
// records, typically after a restart. Records must be in offset order per
// partition; last write wins per physical key, and a tombstone removes the
// key, so replaying the same log again yields the same state. Replay writes
// the physical store directly: no event context is required, nothing is
// re-emitted to the changelog and sensors are not notified.
func (t *Table[V]) Replay(records []changelog.Record) {
	for _, r := range records {
		if r.IsTombstone() {
			t.store.Delete(r.Key)
		} else {
			t.store.Set(r.Key, r.Value)
		}
	}
	t.log.Infow("Replayed changelog records", zap.Int("count", len(records)))
}
