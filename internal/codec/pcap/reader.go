package pcap

import (
	"fmt"
	"iter"

	"firestige.xyz/wirecap/internal/core"
	"firestige.xyz/wirecap/internal/core/cursor"
)

// Reader walks the records of a fully buffered capture. It holds no cursor
// of its own; every call to Records starts over from the first record.
type Reader struct {
	buf    []byte
	header core.CaptureHeader
}

// Open decodes the global header of buf.
func Open(buf []byte) (*Reader, error) {
	h, err := CaptureHeaderCodec{}.Decode(cursor.New(buf))
	if err != nil {
		return nil, fmt.Errorf("capture header: %w", err)
	}
	return &Reader{buf: buf, header: h}, nil
}

// Header returns the decoded global header.
func (r *Reader) Header() core.CaptureHeader { return r.header }

// Records yields every record in order, stopping exactly at the end of the
// buffer. Each record carries the resolution announced by the magic. A record that cannot be decoded is yielded once as an error and
// ends the sequence; records yielded before it stay valid.
func (r *Reader) Records() iter.Seq2[core.Record, error] {
	return func(yield func(core.Record, error) bool) {
		c := cursor.New(r.buf)
		nanos := IsNanos(r.header)
		_ = c.Skip(core.CaptureHeaderLen)
		for i := 0; !c.AtEnd(); i++ {
			off := c.Offset()
			rec, err := DecodeRecord(c)
			if err != nil {
				yield(core.Record{Index: i}, fmt.Errorf("record %d at offset %d: %w", i, off, err))
				return
			}
			rec.Index = i
			rec.Header.Nanos = nanos
			if !yield(rec, nil) {
				return
			}
		}
	}
}

// DecodeAll decodes a whole capture buffer. On failure it returns the
// records decoded before the failing one together with the error.
func DecodeAll(buf []byte) (core.CaptureHeader, []core.Record, error) {
	r, err := Open(buf)
	if err != nil {
		return core.CaptureHeader{}, nil, err
	}
	var out []core.Record
	for rec, err := range r.Records() {
		if err != nil {
			return r.header, out, err
		}
		out = append(out, rec)
	}
	return r.header, out, nil
}
