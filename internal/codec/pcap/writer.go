package pcap

import (
	"fmt"
	"io"

	"firestige.xyz/wirecap/internal/core"
	"firestige.xyz/wirecap/internal/core/cursor"
)

// Writer streams a capture to w: the global header once, then one record
// per WriteRecord call.
type Writer struct {
	w       io.Writer
	snapLen uint32
	nanos   bool
	count   int
	started bool
}

// NewWriter returns a writer that has not yet emitted anything.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteHeader emits the global header.
func (w *Writer) WriteHeader(h core.CaptureHeader) error {
	if w.started {
		return fmt.Errorf("capture header already written")
	}
	out := cursor.NewWriter(core.CaptureHeaderLen)
	_ = CaptureHeaderCodec{}.Encode(out, h)
	if _, err := w.w.Write(out.Bytes()); err != nil {
		return fmt.Errorf("failed to write capture header: %w", err)
	}
	w.snapLen = h.SnapLen
	w.nanos = IsNanos(h)
	w.started = true
	return nil
}

// WriteRecord emits one record, rescaling its timestamp fraction to the
// resolution of the written header. Records longer than the snapshot length
// are rejected rather than cut, since a cut record could not be read back.
func (w *Writer) WriteRecord(rec core.Record) error {
	if !w.started {
		if err := w.WriteHeader(NewCaptureHeader(DefaultSnapLen, LinkTypeEthernet)); err != nil {
			return err
		}
	}
	if w.snapLen != 0 && rec.Header.CaptureLen > w.snapLen {
		return fmt.Errorf("%w: record of %d bytes exceeds snapshot length %d", core.ErrFieldOverflow, rec.Header.CaptureLen, w.snapLen)
	}
	rec.Header = rec.Header.WithResolution(w.nanos)
	out := cursor.NewWriter(core.RecordHeaderLen + int(rec.Header.CaptureLen))
	if err := (RecordCodec{}).Encode(out, rec); err != nil {
		return err
	}
	if _, err := w.w.Write(out.Bytes()); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	w.count++
	return nil
}

// Count returns the number of records written.
func (w *Writer) Count() int { return w.count }
