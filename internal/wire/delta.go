package wire

import (
	"encoding/json"

	"github.com/synckit-dev/synckit/internal/clock"
	"github.com/synckit-dev/synckit/internal/delta"
	"github.com/synckit-dev/synckit/internal/syncerr"
)

// Tag numbers for Delta's binary form, chosen to mirror the field
// order of a protobuf-generated message: stable, and safe to extend
// by adding new tags without breaking old readers.
const (
	tagDocumentID  uint8 = 1
	tagBaseVersion uint8 = 2
	tagNewVersion  uint8 = 3
	tagChange      uint8 = 4

	tagClockEntry       uint8 = 1
	tagClockEntryValue  uint8 = 2
	tagChangePath       uint8 = 1
	tagChangeFieldJSON  uint8 = 2
	tagChangeIsDelete   uint8 = 3
)

// EncodeVectorClock produces the tagged binary form of a VectorClock:
// one nested tagClockEntry record per (replica, counter) pair.
func EncodeVectorClock(vc clock.VectorClock) []byte {
	w := NewWriter()
	for replica, value := range vc {
		entry := NewWriter()
		entry.WriteString(tagClockEntry, replica)
		entry.WriteUint64(tagClockEntryValue, value)
		w.WriteBytes(tagClockEntry, entry.Bytes())
	}
	return w.Bytes()
}

// DecodeVectorClock parses the output of EncodeVectorClock.
func DecodeVectorClock(data []byte) (clock.VectorClock, error) {
	records, err := ReadAll(data)
	if err != nil {
		return nil, err
	}
	vc := clock.New()
	for _, rec := range records {
		inner, err := ReadAll(rec.Payload)
		if err != nil {
			return nil, err
		}
		var replica string
		var value uint64
		for _, field := range inner {
			switch field.Tag {
			case tagClockEntry:
				replica = field.String()
			case tagClockEntryValue:
				v, err := field.Uint64()
				if err != nil {
					return nil, err
				}
				value = v
			}
		}
		vc = vc.Update(replica, value)
	}
	return vc, nil
}

// EncodeDelta produces the tagged binary form of a Delta. Each field
// change is carried as a nested record with its path, JSON-encoded
// field, and tombstone flag.
func EncodeDelta(d *delta.Delta) ([]byte, error) {
	w := NewWriter()
	w.WriteString(tagDocumentID, d.DocumentID)
	w.WriteBytes(tagBaseVersion, EncodeVectorClock(d.BaseVersion))
	w.WriteBytes(tagNewVersion, EncodeVectorClock(d.NewVersion))

	for _, change := range d.Changes {
		fieldJSON, err := json.Marshal(change.Field)
		if err != nil {
			return nil, syncerr.Wrap(syncerr.Serialization, "encoding field change", err)
		}
		entry := NewWriter()
		entry.WriteString(tagChangePath, change.Path)
		entry.WriteBytes(tagChangeFieldJSON, fieldJSON)
		isDelete := uint64(0)
		if change.IsDelete {
			isDelete = 1
		}
		entry.WriteUint64(tagChangeIsDelete, isDelete)
		w.WriteBytes(tagChange, entry.Bytes())
	}

	return w.Bytes(), nil
}

// DecodeDelta parses the output of EncodeDelta. Unknown top-level tags
// are silently skipped, per the wire format's forward-compatibility
// requirement.
func DecodeDelta(data []byte) (*delta.Delta, error) {
	records, err := ReadAll(data)
	if err != nil {
		return nil, err
	}

	d := &delta.Delta{}
	for _, rec := range records {
		switch rec.Tag {
		case tagDocumentID:
			d.DocumentID = rec.String()
		case tagBaseVersion:
			vc, err := DecodeVectorClock(rec.Payload)
			if err != nil {
				return nil, err
			}
			d.BaseVersion = vc
		case tagNewVersion:
			vc, err := DecodeVectorClock(rec.Payload)
			if err != nil {
				return nil, err
			}
			d.NewVersion = vc
		case tagChange:
			change, err := decodeChange(rec.Payload)
			if err != nil {
				return nil, err
			}
			d.Changes = append(d.Changes, change)
		}
	}

	if d.DocumentID == "" {
		return nil, syncerr.New(syncerr.Protocol, "delta missing required document_id field")
	}

	return d, nil
}

func decodeChange(data []byte) (delta.FieldChange, error) {
	records, err := ReadAll(data)
	if err != nil {
		return delta.FieldChange{}, err
	}

	var change delta.FieldChange
	for _, rec := range records {
		switch rec.Tag {
		case tagChangePath:
			change.Path = rec.String()
		case tagChangeFieldJSON:
			if err := json.Unmarshal(rec.Payload, &change.Field); err != nil {
				return delta.FieldChange{}, syncerr.Wrap(syncerr.Deserialization, "decoding field change", err)
			}
		case tagChangeIsDelete:
			v, err := rec.Uint64()
			if err != nil {
				return delta.FieldChange{}, err
			}
			change.IsDelete = v != 0
		}
	}
	return change, nil
}
