// Package pcap implements the capture-container codecs: the 24-byte global
// header, the 16-byte record header and the Ethernet II frame each record
// wraps.
package pcap

import (
	"fmt"

	"firestige.xyz/wirecap/internal/core"
	"firestige.xyz/wirecap/internal/core/cursor"
	"firestige.xyz/wirecap/pkg/codec"
)

const (
	// MagicMicroseconds and MagicNanoseconds as read little-endian.
	MagicMicroseconds = uint32(0xa1b2c3d4)
	MagicNanoseconds  = uint32(0xa1b23c4d)

	VersionMajor = 2
	VersionMinor = 4

	// LinkTypeEthernet is the only link type the record codec understands.
	LinkTypeEthernet = uint32(1)

	DefaultSnapLen = uint32(65535)
)

// All container fields are little-endian.
const order = cursor.LittleEndian

var (
	_ codec.Codec[core.CaptureHeader] = CaptureHeaderCodec{}
	_ codec.Codec[core.RecordHeader]  = RecordHeaderCodec{}
	_ codec.Codec[core.EthernetFrame] = EthernetFrameCodec{}
	_ codec.Codec[core.Record]        = RecordCodec{}
)

// CaptureHeaderCodec decodes and encodes the global header. The magic number
// is carried through unchecked; see CheckMagic.
type CaptureHeaderCodec struct{}

func (CaptureHeaderCodec) Decode(c *cursor.Cursor) (core.CaptureHeader, error) {
	var h core.CaptureHeader
	if c.Remaining() < core.CaptureHeaderLen {
		return h, fmt.Errorf("%w: capture header needs %d bytes, have %d", core.ErrTruncated, core.CaptureHeaderLen, c.Remaining())
	}
	// Length was checked above; the reads below cannot fail.
	h.Magic, _ = c.ReadUint32(order)
	h.VersionMajor, _ = c.ReadUint16(order)
	h.VersionMinor, _ = c.ReadUint16(order)
	zone, _ := c.ReadUint32(order)
	h.ThisZone = int32(zone)
	h.SigFigs, _ = c.ReadUint32(order)
	h.SnapLen, _ = c.ReadUint32(order)
	h.LinkType, _ = c.ReadUint32(order)
	return h, nil
}

func (CaptureHeaderCodec) Encode(w *cursor.Writer, h core.CaptureHeader) error {
	w.WriteUint32(h.Magic, order)
	w.WriteUint16(h.VersionMajor, order)
	w.WriteUint16(h.VersionMinor, order)
	w.WriteUint32(uint32(h.ThisZone), order)
	w.WriteUint32(h.SigFigs, order)
	w.WriteUint32(h.SnapLen, order)
	w.WriteUint32(h.LinkType, order)
	return nil
}

// NewCaptureHeader returns a microsecond-resolution header for the given
// snapshot length and link type.
func NewCaptureHeader(snapLen, linkType uint32) core.CaptureHeader {
	return core.CaptureHeader{
		Magic:        MagicMicroseconds,
		VersionMajor: VersionMajor,
		VersionMinor: VersionMinor,
		SnapLen:      snapLen,
		LinkType:     linkType,
	}
}

// IsNanos reports whether the header's magic announces nanosecond
// timestamps.
func IsNanos(h core.CaptureHeader) bool { return h.Magic == MagicNanoseconds }

// CheckMagic is the acceptance policy applied by callers that want it:
// little-endian micro- or nanosecond magic and an Ethernet link type.
func CheckMagic(h core.CaptureHeader) error {
	if h.Magic != MagicMicroseconds && h.Magic != MagicNanoseconds {
		return fmt.Errorf("%w: 0x%08x", core.ErrBadMagic, h.Magic)
	}
	if h.LinkType != LinkTypeEthernet {
		return fmt.Errorf("%w: link type %d is not Ethernet", core.ErrUnrecognizedField, h.LinkType)
	}
	return nil
}
