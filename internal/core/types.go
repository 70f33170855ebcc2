// Package core defines core types with zero external dependencies.
package core

import (
	"fmt"
	"time"
)

// Fixed sizes of the capture container format.
const (
	CaptureHeaderLen  = 24
	RecordHeaderLen   = 16
	EthernetHeaderLen = 14
	FrameCheckLen     = 4

	// EthernetOverhead is the envelope plus the trailing frame check sequence.
	EthernetOverhead = EthernetHeaderLen + FrameCheckLen
)

// MAC is a 48-bit hardware address.
type MAC [6]byte

func (m MAC) String() string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", m[0], m[1], m[2], m[3], m[4], m[5])
}

// CaptureHeader is the 24-byte global header of a capture buffer.
type CaptureHeader struct {
	Magic        uint32
	VersionMajor uint16
	VersionMinor uint16
	ThisZone     int32  // GMT to local correction, seconds
	SigFigs      uint32 // timestamp accuracy
	SnapLen      uint32
	LinkType     uint32
}

// RecordHeader precedes every captured frame.
type RecordHeader struct {
	TsSec      uint32
	TsFrac     uint32 // microseconds, or nanoseconds when Nanos is set
	CaptureLen uint32
	OrigLen    uint32

	// Nanos is not on the wire; it comes from the capture header's magic.
	Nanos bool
}

// Timestamp converts the seconds/fraction pair to a UTC time.
func (h RecordHeader) Timestamp() time.Time {
	frac := int64(h.TsFrac) * int64(time.Microsecond)
	if h.Nanos {
		frac = int64(h.TsFrac)
	}
	return time.Unix(int64(h.TsSec), frac).UTC()
}

// WithResolution returns h with its fraction rescaled to nanoseconds or
// microseconds. Scaling down truncates.
func (h RecordHeader) WithResolution(nanos bool) RecordHeader {
	switch {
	case nanos && !h.Nanos:
		h.TsFrac *= 1000
	case !nanos && h.Nanos:
		h.TsFrac /= 1000
	}
	h.Nanos = nanos
	return h
}

// EthernetFrame is an Ethernet II frame as stored in a capture record.
// Payload and FCS are zero-copy slices of the decoded buffer.
type EthernetFrame struct {
	DstMAC    MAC
	SrcMAC    MAC
	EtherType uint16 // 0x0800=IPv4, 0x86DD=IPv6, 0x0806=ARP
	Payload   []byte
	FCS       []byte // present, never validated
}

// Len is the number of bytes the frame occupies on the wire.
func (f EthernetFrame) Len() int {
	return EthernetHeaderLen + len(f.Payload) + len(f.FCS)
}
