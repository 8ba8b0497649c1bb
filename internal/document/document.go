// Package document implements the LWW (last-write-wins) document
// model: a field-addressed document whose fields carry hybrid
// timestamps and merge deterministically on conflict.
package document

import (
	"github.com/synckit-dev/synckit/internal/clock"
	"github.com/synckit-dev/synckit/internal/timestamp"
)

// Field is a single value slot: a JSON-shaped value plus the hybrid
// timestamp of the write that installed it. Tombstone marks a
// deletion; a tombstoned field carries no meaningful Value.
type Field struct {
	Value     any                        `json:"value"`
	Timestamp timestamp.HybridTimestamp  `json:"timestamp"`
	Tombstone bool                       `json:"-"`
}

// Document is a map of field path to LWW field, plus the vector clock
// recording every write this document has observed. A Document is
// never destroyed; deletion is represented by a tombstone field.
type Document struct {
	ID      string
	Fields  map[string]Field
	Version clock.VectorClock
}

// New returns an empty document with the given id.
func New(id string) *Document {
	return &Document{
		ID:      id,
		Fields:  make(map[string]Field),
		Version: clock.New(),
	}
}

// SetField constructs a HybridTimestamp from (clockValue, replica) and
// unconditionally installs (value, ts) at path. The caller is
// responsible for choosing clockValue greater than any clock
// previously observed for this field; typically the caller ticks its
// vector clock first and passes the resulting value here.
func (d *Document) SetField(path string, value any, clockValue uint64, replica string) {
	ts := timestamp.New(clockValue, replica)
	d.Fields[path] = Field{Value: value, Timestamp: ts}
	d.Version = d.Version.Update(replica, max(d.Version.Get(replica), clockValue))
}

// GetField returns the value at path and whether it is present and
// not tombstoned.
func (d *Document) GetField(path string) (any, bool) {
	f, ok := d.Fields[path]
	if !ok || f.Tombstone {
		return nil, false
	}
	return f.Value, true
}

// DeleteField installs a tombstone marker at path with a fresh
// timestamp, distinct from "no entry".
func (d *Document) DeleteField(path string, clockValue uint64, replica string) {
	ts := timestamp.New(clockValue, replica)
	d.Fields[path] = Field{Timestamp: ts, Tombstone: true}
	d.Version = d.Version.Update(replica, max(d.Version.Get(replica), clockValue))
}

// MergeField merges a single remote field into the document: if the
// local path is missing, the remote field is installed unconditionally;
// otherwise the remote timestamp is compared against the local one and
// the remote field is installed iff strictly greater. Returns whether
// the field changed.
func (d *Document) MergeField(path string, remote Field) bool {
	local, ok := d.Fields[path]
	if !ok {
		d.Fields[path] = remote
		return true
	}
	if remote.Timestamp.After(local.Timestamp) {
		d.Fields[path] = remote
		return true
	}
	return false
}

// Merge merges every field of other into d, then merges the vector
// clocks. Returns the count of fields that changed.
func (d *Document) Merge(other *Document) int {
	updated := 0
	for path, field := range other.Fields {
		if d.MergeField(path, field) {
			updated++
		}
	}
	d.Version = d.Version.Merge(other.Version)
	return updated
}

// FieldPaths returns the set of paths currently held, including
// tombstoned ones.
func (d *Document) FieldPaths() []string {
	paths := make([]string, 0, len(d.Fields))
	for path := range d.Fields {
		paths = append(paths, path)
	}
	return paths
}

// FieldCount returns the number of paths held, including tombstoned
// ones.
func (d *Document) FieldCount() int {
	return len(d.Fields)
}

// IsEmpty reports whether the document holds no fields at all.
func (d *Document) IsEmpty() bool {
	return len(d.Fields) == 0
}

// ToJSON returns a flattened value-only view of the document: live
// fields keyed by path, tombstoned and absent paths omitted. This is
// distinct from the full wire shape, which retains timestamps.
func (d *Document) ToJSON() map[string]any {
	out := make(map[string]any, len(d.Fields))
	for path, field := range d.Fields {
		if field.Tombstone {
			continue
		}
		out[path] = field.Value
	}
	return out
}

// Clone returns a deep-enough copy of d: independent Fields map and
// Version, with Field values copied by reference (values are expected
// to be JSON-shaped immutable data).
func (d *Document) Clone() *Document {
	clone := &Document{
		ID:      d.ID,
		Fields:  make(map[string]Field, len(d.Fields)),
		Version: d.Version.Clone(),
	}
	for path, field := range d.Fields {
		clone.Fields[path] = field
	}
	return clone
}

