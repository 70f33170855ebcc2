package pcap

import (
	"fmt"
	"time"

	"firestige.xyz/wirecap/internal/core"
	"firestige.xyz/wirecap/internal/core/cursor"
)

// RecordHeaderCodec decodes and encodes the per-record header. It does not
// compare the two lengths; DecodeRecord does. The timestamp resolution is
// a property of the capture header, so Nanos is left for the Reader to set.
type RecordHeaderCodec struct{}

func (RecordHeaderCodec) Decode(c *cursor.Cursor) (core.RecordHeader, error) {
	var h core.RecordHeader
	if c.Remaining() < core.RecordHeaderLen {
		return h, fmt.Errorf("%w: record header needs %d bytes, have %d", core.ErrTruncated, core.RecordHeaderLen, c.Remaining())
	}
	h.TsSec, _ = c.ReadUint32(order)
	h.TsFrac, _ = c.ReadUint32(order)
	h.CaptureLen, _ = c.ReadUint32(order)
	h.OrigLen, _ = c.ReadUint32(order)
	return h, nil
}

func (RecordHeaderCodec) Encode(w *cursor.Writer, h core.RecordHeader) error {
	w.WriteUint32(h.TsSec, order)
	w.WriteUint32(h.TsFrac, order)
	w.WriteUint32(h.CaptureLen, order)
	w.WriteUint32(h.OrigLen, order)
	return nil
}

// EthernetFrameCodec decodes a frame occupying exactly FrameLen bytes:
// 14 bytes of envelope, FrameLen-18 bytes of payload and a 4-byte FCS.
type EthernetFrameCodec struct {
	FrameLen uint32
}

func (e EthernetFrameCodec) Decode(c *cursor.Cursor) (core.EthernetFrame, error) {
	var f core.EthernetFrame
	if e.FrameLen < core.EthernetOverhead {
		return f, fmt.Errorf("%w: frame of %d bytes cannot hold the %d-byte envelope and FCS", core.ErrTruncated, e.FrameLen, core.EthernetOverhead)
	}
	if uint64(c.Remaining()) < uint64(e.FrameLen) {
		return f, fmt.Errorf("%w: frame needs %d bytes, have %d", core.ErrTruncated, e.FrameLen, c.Remaining())
	}

	dst, _ := c.ReadBytes(6)
	src, _ := c.ReadBytes(6)
	copy(f.DstMAC[:], dst)
	copy(f.SrcMAC[:], src)
	f.EtherType, _ = c.ReadUint16(cursor.BigEndian)
	f.Payload, _ = c.ReadBytes(int(e.FrameLen) - core.EthernetOverhead)
	f.FCS, _ = c.ReadBytes(core.FrameCheckLen)
	return f, nil
}

// Encode writes the frame; a nil FCS is written as four zero bytes.
func (EthernetFrameCodec) Encode(w *cursor.Writer, f core.EthernetFrame) error {
	fcs := f.FCS
	if fcs == nil {
		fcs = make([]byte, core.FrameCheckLen)
	}
	if len(fcs) != core.FrameCheckLen {
		return fmt.Errorf("%w: FCS is %d bytes, want %d", core.ErrFieldOverflow, len(fcs), core.FrameCheckLen)
	}
	w.WriteBytes(f.DstMAC[:])
	w.WriteBytes(f.SrcMAC[:])
	w.WriteUint16(f.EtherType, cursor.BigEndian)
	w.WriteBytes(f.Payload)
	w.WriteBytes(fcs)
	return nil
}

// RecordCodec decodes a record header followed by its frame.
type RecordCodec struct{}

func (RecordCodec) Decode(c *cursor.Cursor) (core.Record, error) {
	return DecodeRecord(c)
}

func (RecordCodec) Encode(w *cursor.Writer, rec core.Record) error {
	h := rec.Header
	if h.CaptureLen != h.OrigLen {
		return fmt.Errorf("%w: captured %d, original %d", core.ErrLengthMismatch, h.CaptureLen, h.OrigLen)
	}
	if n := core.EthernetOverhead + len(rec.Frame.Payload); uint64(h.CaptureLen) != uint64(n) {
		return fmt.Errorf("%w: header says %d bytes, frame has %d", core.ErrLengthMismatch, h.CaptureLen, n)
	}
	// Validate the frame before the header so a failure emits nothing.
	frame := cursor.NewWriter(int(h.CaptureLen))
	if err := (EthernetFrameCodec{}).Encode(frame, rec.Frame); err != nil {
		return err
	}
	_ = RecordHeaderCodec{}.Encode(w, h)
	w.WriteBytes(frame.Bytes())
	return nil
}

// DecodeRecord consumes one record header and exactly captured-length bytes
// of Ethernet frame. Captured and original lengths must agree; a mismatch is
// core.ErrLengthMismatch and means the capture is corrupt or unsupported.
func DecodeRecord(c *cursor.Cursor) (core.Record, error) {
	var rec core.Record
	h, err := RecordHeaderCodec{}.Decode(c)
	if err != nil {
		return rec, err
	}
	if h.CaptureLen != h.OrigLen {
		return rec, fmt.Errorf("%w: captured %d, original %d", core.ErrLengthMismatch, h.CaptureLen, h.OrigLen)
	}
	f, err := EthernetFrameCodec{FrameLen: h.CaptureLen}.Decode(c)
	if err != nil {
		return rec, err
	}
	rec.Header, rec.Frame = h, f
	return rec, nil
}

// NewRecord wraps a frame in a record header stamped with ts. A nil FCS is
// counted as the four zero bytes Encode will write.
func NewRecord(ts time.Time, frame core.EthernetFrame) core.Record {
	n := uint32(core.EthernetOverhead + len(frame.Payload))
	return core.Record{
		Header: core.RecordHeader{
			TsSec:      uint32(ts.Unix()),
			TsFrac:     uint32(ts.Nanosecond() / 1000),
			CaptureLen: n,
			OrigLen:    n,
		},
		Frame: frame,
	}
}
