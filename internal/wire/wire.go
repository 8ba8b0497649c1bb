// Package wire implements the tagged binary framing shared by every
// core value: each field is written as a (tag, length, payload)
// record so that a reader encountering an unrecognized tag can skip
// it rather than fail, matching the "older readers MUST ignore
// unknown tags" requirement for the wire format.
package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/synckit-dev/synckit/internal/syncerr"
)

// Writer accumulates tagged records into a single binary payload.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// WriteBytes appends a record with the given tag carrying raw bytes.
func (w *Writer) WriteBytes(tag uint8, payload []byte) {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	w.buf = append(w.buf, tag)
	w.buf = append(w.buf, lenBuf[:]...)
	w.buf = append(w.buf, payload...)
}

// WriteString appends a record with the given tag carrying a UTF-8
// string.
func (w *Writer) WriteString(tag uint8, s string) {
	w.WriteBytes(tag, []byte(s))
}

// WriteUint64 appends a record with the given tag carrying a
// big-endian uint64.
func (w *Writer) WriteUint64(tag uint8, v uint64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	w.WriteBytes(tag, buf[:])
}

// Bytes returns the accumulated payload.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Record is a single decoded (tag, payload) pair.
type Record struct {
	Tag     uint8
	Payload []byte
}

// ReadAll decodes every record in data. A truncated trailing record is
// reported as a Protocol error; individual record tags are left for
// the caller to interpret, so unknown tags never cause a failure here.
func ReadAll(data []byte) ([]Record, error) {
	var records []Record
	for len(data) > 0 {
		if len(data) < 5 {
			return nil, syncerr.New(syncerr.Protocol, "truncated wire record header")
		}
		tag := data[0]
		length := binary.BigEndian.Uint32(data[1:5])
		data = data[5:]
		if uint32(len(data)) < length {
			return nil, syncerr.New(syncerr.Protocol, fmt.Sprintf("truncated wire record payload for tag %d", tag))
		}
		records = append(records, Record{Tag: tag, Payload: data[:length]})
		data = data[length:]
	}
	return records, nil
}

// Uint64 decodes a record's payload as a big-endian uint64.
func (r Record) Uint64() (uint64, error) {
	if len(r.Payload) != 8 {
		return 0, syncerr.New(syncerr.Protocol, "expected an 8-byte uint64 payload")
	}
	return binary.BigEndian.Uint64(r.Payload), nil
}

// String decodes a record's payload as a UTF-8 string.
func (r Record) String() string {
	return string(r.Payload)
}
