// Package delta computes, applies, and merges minimal change sets
// between document states, enabling bandwidth-efficient sync.
package delta

import (
	"github.com/synckit-dev/synckit/internal/clock"
	"github.com/synckit-dev/synckit/internal/document"
	"github.com/synckit-dev/synckit/internal/syncerr"
)

// FieldChange describes a single field's new state within a delta.
// IsDelete marks the change as a tombstone rather than a value write.
type FieldChange struct {
	Path     string          `json:"path"`
	Field    document.Field  `json:"field"`
	IsDelete bool            `json:"is_delete"`
}

// Delta bundles the field changes needed to move a document from
// BaseVersion to NewVersion.
type Delta struct {
	DocumentID  string            `json:"document_id"`
	BaseVersion clock.VectorClock `json:"base_version"`
	NewVersion  clock.VectorClock `json:"new_version"`
	Changes     []FieldChange     `json:"changes"`
}

// Compute diffs old and new, producing the minimal set of field
// changes that transforms old into new: modified or newly-present
// fields are included as value changes, fields present in old but
// absent from new are included as tombstone changes carrying old's
// timestamp for that field.
func Compute(old, newDoc *document.Document) (*Delta, error) {
	if old.ID != newDoc.ID {
		return nil, syncerr.New(syncerr.InvalidOperation, "cannot compute delta across mismatched document ids")
	}

	var changes []FieldChange

	for path, field := range newDoc.Fields {
		oldField, existed := old.Fields[path]
		if !existed || oldField.Timestamp.Compare(field.Timestamp) != 0 || oldField.Tombstone != field.Tombstone {
			changes = append(changes, FieldChange{Path: path, Field: field, IsDelete: field.Tombstone})
		}
	}

	for path, oldField := range old.Fields {
		if _, stillPresent := newDoc.Fields[path]; !stillPresent {
			changes = append(changes, FieldChange{Path: path, Field: oldField, IsDelete: true})
		}
	}

	return &Delta{
		DocumentID:  old.ID,
		BaseVersion: old.Version.Clone(),
		NewVersion:  newDoc.Version.Clone(),
		Changes:     changes,
	}, nil
}

// Apply applies every change in d to doc using per-field LWW merge
// (a tombstone is treated as a value-less field carrying a timestamp;
// it wins, and therefore removes the local entry, only if its
// timestamp is strictly greater), then merges doc's vector clock with
// d.NewVersion.
func Apply(doc *document.Document, d *Delta) error {
	if doc.ID != d.DocumentID {
		return syncerr.New(syncerr.InvalidOperation, "cannot apply delta to mismatched document")
	}

	for _, change := range d.Changes {
		field := change.Field
		field.Tombstone = change.IsDelete
		doc.MergeField(change.Path, field)
	}

	doc.Version = doc.Version.Merge(d.NewVersion)
	return nil
}

// Merge coalesces two deltas for the same document: the union of
// paths, keeping on each shared path the field with the greater
// timestamp, and the union of both deltas' vector clocks. Required for
// batching outbound changes before a sync round-trip.
func Merge(d1, d2 *Delta) (*Delta, error) {
	if d1.DocumentID != d2.DocumentID {
		return nil, syncerr.New(syncerr.InvalidOperation, "cannot merge deltas for different documents")
	}

	byPath := make(map[string]FieldChange, len(d1.Changes)+len(d2.Changes))
	for _, c := range d1.Changes {
		byPath[c.Path] = c
	}
	for _, c := range d2.Changes {
		existing, ok := byPath[c.Path]
		if !ok || c.Field.Timestamp.After(existing.Field.Timestamp) {
			byPath[c.Path] = c
		}
	}

	changes := make([]FieldChange, 0, len(byPath))
	for _, c := range byPath {
		changes = append(changes, c)
	}

	return &Delta{
		DocumentID:  d1.DocumentID,
		BaseVersion: d1.BaseVersion.Merge(d2.BaseVersion),
		NewVersion:  d1.NewVersion.Merge(d2.NewVersion),
		Changes:     changes,
	}, nil
}

// IsEmpty reports whether d carries no changes at all.
func (d *Delta) IsEmpty() bool {
	return len(d.Changes) == 0
}

// Len returns the number of field changes carried by d.
func (d *Delta) Len() int {
	return len(d.Changes)
}
